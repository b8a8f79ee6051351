package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/g960059/hemosim/internal/config"
	"github.com/g960059/hemosim/internal/sim"
)

const (
	statePick = iota
	stateLive
)

// Picker is the selection front end: pick a subject preset, then hand the
// session to the live view on a fresh runtime.
type Picker struct {
	state   int
	cursor  int
	presets []string
	live    Model
}

func NewPicker() Picker {
	return Picker{presets: config.ListPresets()}
}

// RunPicker starts the interactive program at the preset menu.
func RunPicker() error {
	p := tea.NewProgram(NewPicker())
	_, err := p.Run()
	return err
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		if live, ok := next.(Model); ok {
			p.live = live
		}
		return p, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.presets)-1 {
				p.cursor++
			}
		case "enter":
			return p.start()
		}
	}
	return p, nil
}

// start builds a runtime seeded with the chosen preset and switches to the
// live view.
func (p Picker) start() (tea.Model, tea.Cmd) {
	name := p.presets[p.cursor]
	preset, ok := config.GetPreset(name)
	if !ok {
		return p, nil
	}
	params, err := preset.Params()
	if err != nil {
		return p, nil
	}

	rt := sim.NewRuntime()
	inst, err := rt.Add(name, params)
	if err != nil {
		return p, nil
	}
	if preset.VolumeDelta != 0 {
		inst.SetTargetVolume(inst.TargetVolume() + preset.VolumeDelta)
	}

	p.state = stateLive
	p.live = NewModel(rt)
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("HEMOSIM") + "\n\n")
	b.WriteString("select a subject preset\n\n")
	for i, name := range p.presets {
		preset, _ := config.GetPreset(name)
		line := fmt.Sprintf("%-22s %s", name, preset.Description)
		if i == p.cursor {
			b.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + menuStyle.Render(line) + "\n")
		}
	}
	b.WriteString(helpStyle.Render("\nenter:start  j/k:move  q:quit"))
	return b.String()
}
