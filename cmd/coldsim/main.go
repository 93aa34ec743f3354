package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/coldsim/internal/analysis"
	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/experiment"
	"github.com/san-kum/coldsim/internal/export"
	"github.com/san-kum/coldsim/internal/optim"
	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
	"github.com/san-kum/coldsim/internal/storage"
	"github.com/san-kum/coldsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	dt         float64
	duration   float64
	seed       int64
	runs       int
	snapshot   int
	noSave     bool
	stepsTick  int
	viewSize   float64
	plotWidth  int
	plotHeight int
	outDir     string
	axisName   string
	initPreset string

	escapeRadius float64

	sweepParam  string
	sweepLo     float64
	sweepHi     float64
	sweepN      int
	sweepMetric string
	sweepMax    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "coldsim",
		Short:         "particle source and sink simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coldsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and store the result",
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of runs with consecutive seeds")
	runCmd.Flags().IntVar(&snapshot, "snapshot-every", 0, "snapshot interval in steps (0 disables)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scenario with live visualization",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsTick, "steps-per-frame", 4, "simulation steps per frame")
	liveCmd.Flags().Float64Var(&viewSize, "view", 2.0, "half width of the shown x-z region")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the series of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run as SVG images",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "phase space analysis of the final particles of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&axisName, "axis", "x", "phase space axis (x, y or z)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search a scenario parameter",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter path, e.g. forces[0].k or sinks[0].offset")
	sweepCmd.Flags().Float64Var(&sweepLo, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepHi, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "final_count", "objective: final_count or a metric name")
	sweepCmd.Flags().BoolVar(&sweepMax, "maximize", false, "maximize instead of minimize")
	_ = sweepCmd.MarkFlagRequired("param")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a scenario config file",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	initCmd.Flags().StringVar(&initPreset, "preset", "", "preset to start from (group/name)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, svgCmd, analyzeCmd, sweepCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "scenario config file (yaml)")
	cmd.Flags().StringVarP(&preset, "preset", "p", "beam/free", "scenario preset (group/name)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&escapeRadius, "escape-radius", 0, "count particles beyond this distance from the escape center")
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "coldsim",
		ReportTimestamp: true,
	}), nil
}

// loadScenario resolves the scenario from --config or --preset and applies
// the explicitly set flag overrides.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		group, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be group/name, got %q", preset)
		}
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("escape-radius") {
		cfg.Escape.Radius = escapeRadius
	}
	if flags.Changed("snapshot-every") {
		cfg.SnapshotEvery = snapshot
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := experiment.NewRegistry()
	exp, err := experiment.New(cfg, reg)
	if err != nil {
		return err
	}
	exp.GetSimulator().SetLogger(logger.WithPrefix(cfg.Name))

	if runs > 1 {
		return runBatch(ctx, exp, reg, logger)
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	rows := [][2]string{
		{"scenario", cfg.Name},
		{"steps", fmt.Sprintf("%d", result.StepsTaken)},
		{"particles", fmt.Sprintf("%d", exp.Ensemble().NumPtcls())},
		{"injected", fmt.Sprintf("%d", result.TotalInjected)},
		{"absorbed", fmt.Sprintf("%d", result.TotalAbsorbed)},
	}
	for _, name := range sortedMetricNames(result.Metrics) {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", result.Metrics[name])})
	}

	if !noSave {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{
			Scenario: cfg.Name,
			Seed:     cfg.Seed,
			Dt:       cfg.Dt,
			Duration: cfg.Duration,
		}
		runID, err := store.Save(meta, result, exp.Ensemble())
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		logger.Info("run saved", "id", runID, "dir", dataDir)
		rows = append(rows, [2]string{"run id", runID})
	}

	fmt.Println(viz.Summary("run complete", rows))
	return nil
}

func runBatch(ctx context.Context, exp *experiment.Experiment, reg *experiment.Registry, logger *log.Logger) error {
	results, err := exp.Batch(ctx, reg, runs)
	if err != nil {
		return err
	}

	final := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tFINAL\tINJECTED\tABSORBED")
	for i, r := range results {
		final[i] = float64(r.Counts[len(r.Counts)-1])
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%d\t%d\n",
			exp.Config().Seed+int64(i), r.StepsTaken, final[i], r.TotalInjected, r.TotalAbsorbed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := stat.MeanStdDev(final, nil)
	logger.Info("batch finished", "runs", len(results), "final_mean", mean, "final_std", std)
	return nil
}

func sortedMetricNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	build := func(seed int64) (*sim.Simulator, *particles.Ensemble, error) {
		return experiment.Build(cfg, reg, seed)
	}
	m, err := viz.NewModel(build, cfg.Seed, cfg.Dt, cfg.Name)
	if err != nil {
		return err
	}
	m = m.WithStepsPerTick(stepsTick).
		WithViewport(viz.Viewport{MinX: -viewSize, MaxX: viewSize, MinY: -viewSize, MaxY: viewSize})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	stored, err := store.List()
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		fmt.Println("no runs stored in", dataDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tSTEPS\tFINAL\tINJECTED\tABSORBED\tTIME")
	for _, r := range stored {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.Scenario, r.Steps, r.FinalPtcls, r.TotalInjected, r.TotalAbsorbed,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	series, err := store.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("run %s has no series data", args[0])
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%s)", meta.ID, meta.Scenario)))
	fmt.Println(viz.PlotSeries(series, plotWidth, plotHeight))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runID := args[0]

	series, err := store.LoadSeries(runID)
	if err != nil {
		return err
	}
	counts := make([]float64, len(series.Counts))
	for i, c := range series.Counts {
		counts[i] = float64(c)
	}
	files := map[string]string{
		runID + "_count.svg": export.SeriesSVG(series.Times, counts, 800, 400, "#00ccff"),
	}

	final, err := store.LoadParticles(runID)
	if err == nil {
		files[runID+"_particles.svg"] = export.ParticlesSVG(final, 600, 600)
	}

	for name, body := range files {
		if body == "" {
			continue
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	axis, err := analysis.ParseAxis(axisName)
	if err != nil {
		return err
	}
	final, err := storage.New(dataDir).LoadParticles(args[0])
	if err != nil {
		return err
	}

	m, err := analysis.ComputeMoments(final, axis)
	if err != nil {
		return err
	}
	fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(final, axis), 60, 20))
	fmt.Println(viz.Summary("phase space "+axis.String(), [][2]string{
		{"particles", fmt.Sprintf("%d", m.N)},
		{"mean pos", fmt.Sprintf("%.6g", m.MeanX)},
		{"mean vel", fmt.Sprintf("%.6g", m.MeanV)},
		{"rms pos", fmt.Sprintf("%.6g", m.RMSX)},
		{"rms vel", fmt.Sprintf("%.6g", m.RMSV)},
		{"emittance", fmt.Sprintf("%.6g", m.Emittance)},
	}))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	var obj optim.Objective = optim.FinalCount
	if sweepMetric != "final_count" {
		obj = optim.Metric(sweepMetric)
	}
	g := optim.NewGridSearch([]string{sweepParam}, [][]float64{optim.Linspace(sweepLo, sweepHi, sweepN)})
	if sweepMax {
		g.Maximize()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, points, err := g.Search(ctx, cfg, experiment.NewRegistry(), obj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweepParam), strings.ToUpper(sweepMetric))
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%.6g\n", p.Params[sweepParam], p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(viz.Summary("best", [][2]string{
		{sweepParam, fmt.Sprintf("%g", best.Params[sweepParam])},
		{sweepMetric, fmt.Sprintf("%.6g", best.Value)},
	}))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDT\tDURATION\tFORCES\tSOURCES\tSINKS")
	for _, group := range config.ListGroups() {
		for _, name := range config.ListPresets(group) {
			c := config.GetPreset(group, name)
			fmt.Fprintf(w, "%s/%s\t%g\t%g\t%d\t%d\t%d\n",
				group, name, c.Dt, c.Duration, len(c.Forces), len(c.Sources), len(c.Sinks))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("forces: ", strings.Join(reg.ListForces(), ", "))
	fmt.Println("sources:", strings.Join(reg.ListSources(), ", "))
	fmt.Println("sinks:  ", strings.Join(reg.ListSinks(), ", "))
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if initPreset != "" {
		group, name, _ := strings.Cut(initPreset, "/")
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", initPreset)
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Println("wrote", args[0])
	return nil
}
