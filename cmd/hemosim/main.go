// Command hemosim runs lumped-parameter circulation simulations from the
// terminal: headless batch runs, a live TUI, and a websocket daemon.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/g960059/hemosim/internal/analysis"
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/config"
	"github.com/g960059/hemosim/internal/control"
	"github.com/g960059/hemosim/internal/export"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/optim"
	"github.com/g960059/hemosim/internal/server"
	"github.com/g960059/hemosim/internal/sim"
	"github.com/g960059/hemosim/internal/storage"
	"github.com/g960059/hemosim/internal/tui"
)

// headlessTickMs is one full frame budget, so batch runs advance in exact
// whole frames and never trip the overload clamp.
const headlessTickMs = sim.StepMs * sim.MaxStepsPerTick

const (
	compareWindowMs = 20000.0
	benchWindowMs   = 10000.0
)

var (
	dataDir     string
	configFile  string
	subjectID   string
	durationS   float64
	speed       float64
	withReflex  bool
	targetMAP   float64
	serveConfig string
	addr        string
	themeName   string

	sweepParam   string
	sweepValues  string
	sweepTimeS   float64
	sweepWorkers int

	fitParams  []string
	fitTargets []string
	fitTimeS   float64
	fitWorkers int

	svgSignal string
	svgOut    string
	svgWidth  int
	svgHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hemosim",
		Short: "real-time lumped-parameter circulation simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunPicker()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hemosim", "run storage directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and save the output",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	runCmd.Flags().StringVar(&subjectID, "subject", "patient-1", "subject id for single-preset runs")
	runCmd.Flags().Float64Var(&durationS, "time", config.DefaultDurationMs/1000.0, "simulated duration in seconds")
	runCmd.Flags().BoolVar(&withReflex, "reflex", false, "close the baroreflex heart-rate loop")
	runCmd.Flags().Float64Var(&targetMAP, "target-map", config.DefaultTargetMAP, "baroreflex MAP setpoint in mmHg")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch and steer a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	liveCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "initial playback speed multiplier")
	liveCmd.Flags().StringVar(&themeName, "theme", "", "color scheme (monitor, phosphor, mono)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve simulations over websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "daemon config file (ini)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address override")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in pathology presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				preset, _ := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\n", name, preset.Description)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run as ascii charts",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a saved run to stdout as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a saved run to stdout as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "run presets side by side and tabulate their hemodynamics",
		Args:  cobra.MinimumNArgs(1),
		RunE:  comparePresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure stepping throughput against the real-time budget",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchRuntime,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter and tabulate the settled hemodynamics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepParameter,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep (e.g. Rcs)")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "", "comma-separated values (e.g. 600,830,1200)")
	sweepCmd.Flags().Float64Var(&sweepTimeS, "time", 12, "settle time per point in simulated seconds")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel workers, 0 for one per cpu")

	fitCmd := &cobra.Command{
		Use:   "fit [preset]",
		Short: "grid-search parameters to match target hemodynamics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  fitParameters,
	}
	fitCmd.Flags().StringArrayVar(&fitParams, "param", nil, "grid dimension, name=min:max:steps or name=v1,v2,...")
	fitCmd.Flags().StringArrayVar(&fitTargets, "target", nil, "target metric, key=value (map, co, sv, ...)")
	fitCmd.Flags().Float64Var(&fitTimeS, "time", 12, "settle time per candidate in simulated seconds")
	fitCmd.Flags().IntVar(&fitWorkers, "workers", 0, "parallel workers, 0 for one per cpu")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a saved run as an svg waveform or pv loop",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgSignal, "signal", "aop", "signal to draw (plv, pla, prv, pra, aop, pap, pvloop)")
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output path, default <run_id>-<signal>.svg")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 960, "image width in px")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 320, "image height in px")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "estimate the beat frequency of a saved run from its aortic trace",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, presetsCmd, listCmd,
		plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, compareCmd,
		benchCmd, sweepCmd, fitCmd, spectrumCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves the effective run scenario: defaults, then the
// config file, then a preset argument and explicit flags on top.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(args) == 1 {
		cfg.Subjects = []config.Subject{{ID: subjectID, Preset: args[0]}}
	}
	if cmd.Flags().Changed("time") {
		cfg.DurationMs = durationS * 1000.0
	}
	if cmd.Flags().Changed("reflex") {
		cfg.Reflex.Enabled = withReflex
	}
	if cmd.Flags().Changed("target-map") {
		cfg.Reflex.TargetMAP = targetMAP
	}
	return cfg, nil
}

func buildRuntime(cfg *config.Config) (*sim.Runtime, map[string]string, error) {
	rt := sim.NewRuntime()
	presetOf := make(map[string]string)
	for _, sub := range cfg.Subjects {
		p, err := sub.Params()
		if err != nil {
			return nil, nil, err
		}
		inst, err := rt.Add(sub.ID, p)
		if err != nil {
			return nil, nil, err
		}
		if preset, ok := config.GetPreset(sub.Preset); ok && preset.VolumeDelta != 0 {
			inst.SetTargetVolume(inst.TargetVolume() + preset.VolumeDelta)
		}
		if sub.TargetVolume > 0 {
			inst.SetTargetVolume(sub.TargetVolume)
		}
		presetOf[sub.ID] = sub.Preset
	}
	return rt, presetOf, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	rt, presetOf, err := buildRuntime(cfg)
	if err != nil {
		return err
	}

	reflexes := make(map[string]*control.Baroreflex)
	if cfg.Reflex.Enabled {
		for _, inst := range rt.List() {
			reflexes[inst.ID] = control.NewBaroreflex(cfg.Reflex.TargetMAP, inst.Active().HR)
		}
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	sched := control.NewSchedule(cfg.Protocol)

	fmt.Printf("running %d subject(s) for %.1fs simulated...\n", rt.Len(), cfg.DurationMs/1000.0)

	start := time.Now()
	steps := 0
	ticks := 0
	for rt.Time() < cfg.DurationMs {
		steps += rt.Tick(headlessTickMs)
		ticks++
		for _, step := range sched.Due(rt.Time()) {
			if err := applyStep(rt, step); err != nil {
				return err
			}
			fmt.Printf("  t=%.1fs  protocol %s=%g\n", rt.Time()/1000.0, step.Name, step.Value)
		}
		if cfg.Reflex.Enabled && ticks%10 == 0 {
			if err := updateReflexes(rt, reflexes); err != nil {
				return err
			}
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v (%d steps per subject)\n", elapsed.Round(time.Millisecond), steps)

	for _, inst := range rt.List() {
		records := inst.Buffer().Snapshot()
		sum, ok := metrics.Compute(records, inst.Active().HR)
		var summary map[string]float64
		if ok {
			summary = sum.Map()
		}
		runID, err := store.SaveRun(inst.ID, presetOf[inst.ID], inst.Active(), summary, records)
		if err != nil {
			return err
		}
		fmt.Printf("\nsubject %s (%s), %d beats\n", inst.ID, presetOf[inst.ID], inst.Beats())
		fmt.Printf("  run id: %s\n", runID)
		if ok {
			printSummary(sum)
			if work, wok := analysis.StrokeWork(records, sum.HeartRate); wok {
				fmt.Printf("  stroke work %.0f mmHg*mL\n", work)
			}
			if n, sok := metrics.SettledBeat(records, sum.HeartRate, 1.0); sok {
				fmt.Printf("  settled by beat %d\n", n)
			}
		}
	}
	return nil
}

// applyStep delivers one protocol edit to its subject, or to every
// instance when the step names none.
func applyStep(rt *sim.Runtime, step control.Step) error {
	if step.Subject != "" {
		inst, ok := rt.Get(step.Subject)
		if !ok {
			return fmt.Errorf("protocol step at %gms: unknown subject %s", step.AtMs, step.Subject)
		}
		return inst.SetParam(step.Name, step.Value)
	}
	for _, inst := range rt.List() {
		if err := inst.SetParam(step.Name, step.Value); err != nil {
			return err
		}
	}
	return nil
}

func updateReflexes(rt *sim.Runtime, reflexes map[string]*control.Baroreflex) error {
	for _, inst := range rt.List() {
		reflex, ok := reflexes[inst.ID]
		if !ok {
			continue
		}
		sum, ok := analysis.LastBeat(inst)
		if !ok {
			continue
		}
		hr := reflex.Update(sum.MAP, inst.Time())
		if err := inst.SetParam("HR", hr); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(sum metrics.Summary) {
	fmt.Printf("  hr %.0f bpm, aop %.0f/%.0f mmHg, map %.0f mmHg\n",
		sum.HeartRate, sum.SysAoP, sum.DiaAoP, sum.MAP)
	fmt.Printf("  co %.2f L/min, sv %.0f mL, ef %.0f%%\n",
		sum.CO, sum.StrokeVolume, sum.EF*100)
	fmt.Printf("  cvp %.1f, pcwp %.1f, mean pap %.1f mmHg\n",
		sum.CVP, sum.PCWP, sum.MeanPAP)
	fmt.Printf("  edv %.0f mL, esv %.0f mL\n", sum.EDV, sum.ESV)
}

func runLive(cmd *cobra.Command, args []string) error {
	if themeName != "" {
		tui.SetTheme(themeName)
	}
	if len(args) == 0 && configFile == "" {
		return tui.RunPicker()
	}
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	rt, _, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("speed") {
		rt.SetSpeed(speed)
	} else if cfg.Speed > 0 {
		rt.SetSpeed(cfg.Speed)
	}
	return tui.Run(rt)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := server.LoadConfig(serveConfig)
	if err != nil {
		log.WithFields(log.Fields{"path": serveConfig, "err": err}).Warn("config not loaded, using defaults")
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg).Run(ctx)
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBJECT\tPRESET\tTIME\tDURATION\tMAP\tCO")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1fs\t%.0f\t%.2f\n",
			run.ID, run.Subject, run.Preset,
			run.Timestamp.Format("2006-01-02 15:04"),
			run.DurationMs/1000.0,
			run.Summary["map"], run.Summary["co"])
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %s has no samples", args[0])
	}

	fmt.Printf("run %s: subject %s (%s), %.1fs\n\n",
		meta.ID, meta.Subject, meta.Preset, meta.DurationMs/1000.0)

	panels := []struct {
		caption string
		pick    func(sim.Record) float64
	}{
		{"aortic pressure (mmHg)", func(r sim.Record) float64 { return r.Aux.AoP }},
		{"left ventricular pressure (mmHg)", func(r sim.Record) float64 { return r.Aux.Plv }},
		{"pulmonary artery pressure (mmHg)", func(r sim.Record) float64 { return r.Aux.PAP }},
		{"left ventricular volume (mL)", func(r sim.Record) float64 { return r.Y[circ.LeftVentricle] }},
	}
	for _, panel := range panels {
		data := make([]float64, len(records))
		for i, r := range records {
			data[i] = panel.pick(r)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(panel.caption)))
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append([]string{"time"}, circ.StateNames()...)
	header = append(header, "plv", "pla", "prv", "pra", "aop", "pap")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(r.T, 'f', 6, 64))
		for _, v := range r.Y {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range []float64{r.Aux.Plv, r.Aux.Pla, r.Aux.Prv, r.Aux.Pra, r.Aux.AoP, r.Aux.PAP} {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, records)
}

func comparePresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tHR\tAOP\tMAP\tCO\tEF\tSV\tCVP")
	for _, name := range args {
		preset, ok := config.GetPreset(name)
		if !ok {
			return fmt.Errorf("unknown preset: %s", name)
		}
		p, err := preset.Params()
		if err != nil {
			return err
		}
		rt := sim.NewRuntime()
		inst, err := rt.Add(name, p)
		if err != nil {
			return err
		}
		if preset.VolumeDelta != 0 {
			inst.SetTargetVolume(inst.TargetVolume() + preset.VolumeDelta)
		}
		for rt.Time() < compareWindowMs {
			rt.Tick(headlessTickMs)
		}
		sum, ok := analysis.LastBeat(inst)
		if !ok {
			fmt.Fprintf(w, "%s\tno output\n", name)
			continue
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.0f/%.0f\t%.0f\t%.2f\t%.0f%%\t%.0f\t%.1f\n",
			name, sum.HeartRate, sum.SysAoP, sum.DiaAoP, sum.MAP,
			sum.CO, sum.EF*100, sum.StrokeVolume, sum.CVP)
	}
	return w.Flush()
}

func benchRuntime(cmd *cobra.Command, args []string) error {
	p, _, err := presetParams(args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INSTANCES\tSIM TIME\tWALL TIME\tSTEPS/S\tREAL-TIME X")
	for _, n := range []int{1, 2, 4, 8, 16} {
		rt := sim.NewRuntime()
		for i := 0; i < n; i++ {
			if _, err := rt.Add(fmt.Sprintf("bench-%d", i), p); err != nil {
				return err
			}
		}
		start := time.Now()
		steps := 0
		for rt.Time() < benchWindowMs {
			steps += rt.Tick(headlessTickMs) * n
		}
		elapsed := time.Since(start)
		fmt.Fprintf(w, "%d\t%.0fs\t%v\t%.0f\t%.1f\n",
			n, benchWindowMs/1000.0, elapsed.Round(time.Millisecond),
			float64(steps)/elapsed.Seconds(),
			benchWindowMs/1000.0/elapsed.Seconds())
	}
	return w.Flush()
}

// presetParams resolves an optional preset argument, defaulting to the
// healthy baseline.
func presetParams(args []string) (circ.Params, string, error) {
	name := "normal"
	if len(args) == 1 {
		name = args[0]
	}
	preset, ok := config.GetPreset(name)
	if !ok {
		return circ.Params{}, "", fmt.Errorf("unknown preset: %s", name)
	}
	p, err := preset.Params()
	return p, name, err
}

func sweepParameter(cmd *cobra.Command, args []string) error {
	if sweepParam == "" || sweepValues == "" {
		return fmt.Errorf("--param and --values are required")
	}
	values, err := parseFloatList(sweepValues)
	if err != nil {
		return err
	}
	base, name, err := presetParams(args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("sweeping %s over %d values from %s, %.0fs settle each...\n",
		sweepParam, len(values), name, sweepTimeS)
	points, err := analysis.ParameterResponse(ctx, base, sweepParam, values, sweepTimeS*1000.0, sweepWorkers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tHR\tAOP\tMAP\tCO\tEF\tSV\tCVP\n", strings.ToUpper(sweepParam))
	for _, pt := range points {
		if !pt.OK {
			fmt.Fprintf(w, "%g\tout of range\n", pt.Value)
			continue
		}
		sum := pt.Summary
		fmt.Fprintf(w, "%g\t%.0f\t%.0f/%.0f\t%.0f\t%.2f\t%.0f%%\t%.0f\t%.1f\n",
			pt.Value, sum.HeartRate, sum.SysAoP, sum.DiaAoP, sum.MAP,
			sum.CO, sum.EF*100, sum.StrokeVolume, sum.CVP)
	}
	return w.Flush()
}

func fitParameters(cmd *cobra.Command, args []string) error {
	if len(fitParams) == 0 || len(fitTargets) == 0 {
		return fmt.Errorf("at least one --param and one --target are required")
	}
	var g optim.GridSearch
	for _, spec := range fitParams {
		name, values, err := parseGridFlag(spec)
		if err != nil {
			return err
		}
		g.Names = append(g.Names, name)
		g.Values = append(g.Values, values)
	}
	target := make(map[string]float64, len(fitTargets))
	for _, spec := range fitTargets {
		key, value, err := parseTargetFlag(spec)
		if err != nil {
			return err
		}
		target[key] = value
	}
	base, name, err := presetParams(args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("fitting %d grid points from %s, %.0fs settle each...\n",
		g.Size(), name, fitTimeS)
	best, err := g.Fit(ctx, base, target, fitTimeS*1000.0, fitWorkers)
	if err != nil {
		return err
	}

	fmt.Printf("\nbest candidate, loss %.4g\n", best.Loss)
	for _, n := range g.Names {
		fmt.Printf("  %s = %g\n", n, best.Edits[n])
	}
	printSummary(best.Summary)
	return nil
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// parseGridFlag reads one grid dimension, either an explicit list
// (Rcs=600,830,1200) or a linear range (Rcs=600:1600:5).
func parseGridFlag(spec string) (string, []float64, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad grid dimension %q, want name=min:max:steps", spec)
	}
	if !strings.Contains(rest, ":") {
		values, err := parseFloatList(rest)
		return name, values, err
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad range %q, want min:max:steps", rest)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, err
	}
	steps, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, err
	}
	if steps < 1 {
		return "", nil, fmt.Errorf("need at least 1 step in %q", spec)
	}
	if steps == 1 {
		return name, []float64{lo}, nil
	}
	values := make([]float64, steps)
	for i := range values {
		values[i] = lo + (hi-lo)*float64(i)/float64(steps-1)
	}
	return name, values, nil
}

func parseTargetFlag(spec string) (string, float64, error) {
	key, rest, ok := strings.Cut(spec, "=")
	if !ok || key == "" {
		return "", 0, fmt.Errorf("bad target %q, want key=value", spec)
	}
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad target %q: %w", spec, err)
	}
	return key, v, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}

	var svg string
	if svgSignal == "pvloop" {
		hr := meta.Params["HR"]
		if hr <= 0 {
			return fmt.Errorf("run %s has no stored heart rate", args[0])
		}
		svg, err = export.PVLoopSVG(records, hr, svgWidth, svgHeight)
	} else {
		svg, err = export.WaveformSVG(records, svgSignal, svgWidth, svgHeight)
	}
	if err != nil {
		return err
	}

	out := svgOut
	if out == "" {
		out = fmt.Sprintf("%s-%s.svg", args[0], svgSignal)
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}

	bpm, ok := analysis.EstimatedRate(records)
	if !ok {
		return fmt.Errorf("run %s is too short for spectral analysis", args[0])
	}

	samples := make([]float64, len(records))
	for i, r := range records {
		samples[i] = r.Aux.AoP
	}
	ps := analysis.PowerSpectrum(samples, 1000.0/sim.StepMs)
	var power []float64
	for i, f := range ps.Freqs {
		if f > 8 {
			break
		}
		power = append(power, ps.Power[i])
	}
	fmt.Println(asciigraph.Plot(power,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("aortic pressure amplitude, 0-8 Hz")))
	fmt.Printf("\ndominant rate %.1f bpm (stored hr %.0f bpm)\n", bpm, meta.Summary["hr"])
	return nil
}
