// Package tui renders the live circulation view: asciigraph waveform
// panels and a braille pressure-volume loop over the rolling output
// window, with keyboard control of speed, pause, and live parameters.
// Wall-clock deltas between frames drive the runtime, so simulated time
// tracks real time regardless of render rate.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/g960059/hemosim/internal/analysis"
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/sim"
)

const (
	chartWidth   = 64
	chartHeight  = 5
	loopWidth    = 36
	loopHeight   = 11
	waveWindowMs = 3000.0
	loopWindowMs = 2200.0
	paramRows    = 9
)

type TickMsg time.Time

// Model is the bubbletea state for the live view. It owns the runtime:
// nothing else mutates it while the program runs.
type Model struct {
	rt       *sim.Runtime
	focus    int
	keys     []string
	defaults map[string]float64
	selected int
	lastTick time.Time
	loop     *Canvas
	showHelp bool
	status   string
}

func NewModel(rt *sim.Runtime) Model {
	defaults := circ.Defaults()
	base := defaults.Map()
	for k, v := range base {
		if v == 0 {
			base[k] = 1e-6
		}
	}
	keys := circ.Names()
	sort.Strings(keys)

	return Model{
		rt:       rt,
		keys:     keys,
		defaults: base,
		lastTick: time.Now(),
		loop:     NewCanvas(loopWidth, loopHeight),
	}
}

// Run starts the live view and blocks until the user quits.
func Run(rt *sim.Runtime) error {
	p := tea.NewProgram(NewModel(rt))
	_, err := p.Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.rt.SetPaused(!m.rt.Paused())
		case "+", "=":
			m.rt.SetSpeed(m.rt.Speed() * 2)
		case "-", "_":
			m.rt.SetSpeed(m.rt.Speed() / 2)
		case "1":
			m.rt.SetSpeed(1.0)
		case "n":
			m.cycleFocus()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			m.cycleTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		wallMs := now.Sub(m.lastTick).Seconds() * 1000.0
		m.lastTick = now
		m.rt.Tick(wallMs)
		return m, tick()
	}
	return m, nil
}

func (m *Model) cycleFocus() {
	if m.rt.Len() == 0 {
		return
	}
	m.focus = (m.focus + 1) % m.rt.Len()
	m.status = ""
}

func (m *Model) cycleParam() {
	if len(m.keys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.keys)
}

func (m *Model) cycleTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			SetTheme(Themes[(i+1)%len(Themes)].Name)
			m.status = "theme: " + CurrentTheme.Name
			return
		}
	}
	SetTheme(Themes[0].Name)
}

// adjustParam scales the selected live parameter. The edit lands at the
// next phase boundary, never mid-beat.
func (m *Model) adjustParam(factor float64) {
	inst := m.focused()
	if inst == nil || len(m.keys) == 0 {
		return
	}
	name := m.keys[m.selected]
	live := inst.Live()
	val, err := live.Get(name)
	if err != nil {
		return
	}
	next := val * factor
	if err := inst.SetParam(name, next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s -> %.4g at next boundary", name, next)
}

func (m Model) focused() *sim.Instance {
	list := m.rt.List()
	if len(list) == 0 {
		return nil
	}
	return list[m.focus%len(list)]
}

// View renders the full frame. The runtime is only read here; stepping
// happens in Update.
func (m Model) View() string {
	inst := m.focused()
	if inst == nil {
		return "no instances loaded\n"
	}

	latest, ok := inst.Buffer().Latest()
	if !ok {
		return "waiting for first step...\n"
	}
	recs := inst.Buffer().Since(latest.T - waveWindowMs)

	var left strings.Builder
	left.WriteString(m.renderCharts(recs))
	left.WriteString(m.renderLoop(inst, latest.T))

	right := statsStyle.Render(m.renderStats(inst, latest.T))

	header := headerStyle.Render("HEMOSIM") + "  " + m.renderStatus(inst)

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(left.String()), right)
	out := header + "\n\n" + body
	if m.status != "" {
		out += "\n" + alertStyle.Render(m.status)
	}
	if m.showHelp {
		out += helpStyle.Render("\nSP:pause  +/-:speed  1:realtime  N:subject  Tab:param  " +
			"k/j:tune  T:theme  ?:help  Q:quit")
	} else {
		out += helpStyle.Render("\n?:help  Q:quit")
	}
	return out
}

func (m Model) renderStatus(inst *sim.Instance) string {
	status := "RUNNING"
	if m.rt.Paused() {
		status = "PAUSED"
	}
	return fmt.Sprintf("%s  x%.2g  t=%.1fs  subject=%s  beats=%d",
		status, m.rt.Speed(), inst.Time()/1000.0, inst.ID, inst.Beats())
}

func (m Model) renderCharts(recs []sim.Record) string {
	if len(recs) < 2 {
		return ""
	}
	aop := make([]float64, len(recs))
	pap := make([]float64, len(recs))
	vlv := make([]float64, len(recs))
	for i, r := range recs {
		aop[i] = r.Aux.AoP
		pap[i] = r.Aux.PAP
		vlv[i] = r.Y[circ.LeftVentricle]
	}

	var b strings.Builder
	for _, panel := range []struct {
		series  []float64
		caption string
	}{
		{aop, "aortic pressure (mmHg)"},
		{pap, "pulmonary artery pressure (mmHg)"},
		{vlv, "LV volume (mL)"},
	} {
		chart := asciigraph.Plot(panel.series,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption(panel.caption))
		b.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	return b.String()
}

// renderLoop draws the LV pressure-volume loop of the last full beat,
// autoscaled with a small margin.
func (m Model) renderLoop(inst *sim.Instance, latestT float64) string {
	recs := inst.Buffer().Since(latestT - loopWindowMs)
	xs, ys, ok := analysis.PVLoop(recs, inst.Active().HR)
	if !ok || len(xs) < 2 {
		return menuStyle.Render("collecting first loop...") + "\n"
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	padX := (maxX - minX) * 0.08
	padY := (maxY - minY) * 0.08

	m.loop.Clear()
	area := NewPlotArea(m.loop, minX-padX, maxX+padX, minY-padY, maxY+padY)
	area.Polyline(xs, ys)

	var b strings.Builder
	b.WriteString(m.loop.String())
	b.WriteString(fmt.Sprintf("PV loop  V %.0f-%.0f mL  P %.0f-%.0f mmHg\n", minX, maxX, minY, maxY))
	return b.String()
}

func (m Model) renderStats(inst *sim.Instance, latestT float64) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("HEMODYNAMICS") + "\n")

	hr := inst.Active().HR
	lookback := 60000.0/hr + sim.StepMs
	beat := inst.Buffer().Since(latestT - lookback)
	if sum, ok := metrics.Compute(beat, hr); ok {
		rows := []struct {
			label  string
			format string
			value  float64
		}{
			{"HR", "%.0f bpm", sum.HeartRate},
			{"AoP", "", 0},
			{"MAP", "%.0f mmHg", sum.MAP},
			{"PAP mean", "%.0f mmHg", sum.MeanPAP},
			{"CVP", "%.1f mmHg", sum.CVP},
			{"PCWP", "%.1f mmHg", sum.PCWP},
			{"EDV / ESV", "", 0},
			{"SV", "%.0f mL", sum.StrokeVolume},
			{"EF", "%.0f %%", sum.EF * 100},
			{"CO", "%.2f L/min", sum.CO},
		}
		for _, row := range rows {
			switch row.label {
			case "AoP":
				b.WriteString(labelStyle.Render("AoP") +
					valueStyle.Render(fmt.Sprintf("%.0f/%.0f mmHg", sum.SysAoP, sum.DiaAoP)) + "\n")
			case "EDV / ESV":
				b.WriteString(labelStyle.Render("EDV / ESV") +
					valueStyle.Render(fmt.Sprintf("%.0f / %.0f mL", sum.EDV, sum.ESV)) + "\n")
			default:
				b.WriteString(labelStyle.Render(row.label) +
					valueStyle.Render(fmt.Sprintf(row.format, row.value)) + "\n")
			}
		}
		if work, ok := analysis.StrokeWork(beat, hr); ok {
			b.WriteString(labelStyle.Render("stroke work") +
				valueStyle.Render(fmt.Sprintf("%.0f mmHg*mL", work)) + "\n")
		}
	} else {
		b.WriteString(menuStyle.Render("collecting first beat...") + "\n")
	}
	b.WriteString(labelStyle.Render("volume target") +
		valueStyle.Render(fmt.Sprintf("%.0f mL", inst.TargetVolume())) + "\n")

	b.WriteString("\n" + headerStyle.Render("PARAMETERS") + "\n")
	b.WriteString(m.renderParams(inst))
	return b.String()
}

// renderParams shows a window of the parameter list centered on the
// selection, each with a bar scaled against twice its default.
func (m Model) renderParams(inst *sim.Instance) string {
	live := inst.Live()
	start := m.selected - paramRows/2
	if start > len(m.keys)-paramRows {
		start = len(m.keys) - paramRows
	}
	if start < 0 {
		start = 0
	}
	end := start + paramRows
	if end > len(m.keys) {
		end = len(m.keys)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		name := m.keys[i]
		val, err := live.Get(name)
		if err != nil {
			continue
		}
		ratio := val / (2.0 * m.defaults[name])
		if ratio > 1 {
			ratio = 1
		} else if ratio < 0 {
			ratio = 0
		}
		barWidth := 10
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-12s %s %.4g", name, bar, val)
		if i == m.selected {
			b.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + menuStyle.Render(line) + "\n")
		}
	}
	return b.String()
}
