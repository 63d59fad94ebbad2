package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kandels/se-for-sci-example/internal/analysis"
	"github.com/kandels/se-for-sci-example/internal/automation"
	"github.com/kandels/se-for-sci-example/internal/config"
	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/experiment"
	"github.com/kandels/se-for-sci-example/internal/integrators"
	"github.com/kandels/se-for-sci-example/internal/physics"
	"github.com/kandels/se-for-sci-example/internal/storage"
	"github.com/kandels/se-for-sci-example/internal/viz"
)

var (
	method     string
	t0         float64
	t1         float64
	steps      int
	initState  []float64
	params     []string
	configFile string
	preset     string
	noValidate bool
	noSave     bool
	// export-svg axes
	xAxis   int
	yAxis   int
	outFile string
	// compare
	cmpT0       float64
	cmpT1       float64
	refinements []int
	// lyapunov
	lyaT1           float64
	lyaSteps        int
	lyaPerturbation float64
	// ensemble
	ensT1           float64
	ensSteps        int
	trials          int
	ensPerturbation float64
	workers         int
	seed            int64
	// scenario
	saveRuns bool
)

var stateLabels = map[string][]string{
	"decay":      {"y"},
	"logistic":   {"N"},
	"oscillator": {"x", "v"},
	"pendulum":   {"theta", "omega"},
	"lorenz":     {"x", "y", "z"},
	"vanderpol":  {"x", "v"},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "integrator",
		Short: "fixed-step ODE integration toolkit",
	}
	rootCmd.PersistentFlags().String("data", "data", "run storage directory (env INTEGRATOR_DATA)")
	viper.SetEnvPrefix("integrator")
	viper.AutomaticEnv()
	if err := viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data")); err != nil {
		panic(err)
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIntegration,
	}
	runCmd.Flags().StringVarP(&method, "method", "m", config.DefaultMethod, "step formula (euler, euler-inverted, rk4)")
	runCmd.Flags().Float64Var(&t0, "t0", config.DefaultT0, "start time")
	runCmd.Flags().Float64Var(&t1, "t1", config.DefaultT1, "end time")
	runCmd.Flags().IntVarP(&steps, "steps", "n", config.DefaultSteps, "number of intervals between t0 and t1")
	runCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state (defaults to the model's)")
	runCmd.Flags().StringSliceVarP(&params, "param", "p", nil, "model parameter as name=value")
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "problem file (YAML)")
	runCmd.Flags().StringVar(&preset, "preset", "", "named preset for the model")
	runCmd.Flags().BoolVar(&noValidate, "no-validate", false, "keep integrating through NaN/Inf states")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run]",
		Short: "plot each state component of a run (latest if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	viewCmd := &cobra.Command{
		Use:   "view [run]",
		Short: "step through a run interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run]",
		Short: "print a run as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run]",
		Short: "print a run as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run]",
		Short: "draw two state components of a run as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&xAxis, "x", 0, "state index for the horizontal axis")
	exportSVGCmd.Flags().IntVar(&yAxis, "y", 1, "state index for the vertical axis")
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout if empty)")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [methods...]",
		Short: "convergence table of step formulas against the exact solution",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	compareCmd.Flags().Float64Var(&cmpT0, "t0", config.DefaultT0, "start time")
	compareCmd.Flags().Float64Var(&cmpT1, "t1", config.DefaultT1, "end time")
	compareCmd.Flags().IntSliceVar(&refinements, "steps", []int{10, 20, 40, 80, 160}, "step counts to compare")
	compareCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state (defaults to the model's)")
	compareCmd.Flags().StringSliceVarP(&params, "param", "p", nil, "model parameter as name=value")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest Lyapunov exponent of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  lyapunov,
	}
	lyapunovCmd.Flags().StringVarP(&method, "method", "m", config.DefaultMethod, "step formula")
	lyapunovCmd.Flags().Float64Var(&lyaT1, "t1", 50, "end time")
	lyapunovCmd.Flags().IntVarP(&lyaSteps, "steps", "n", 10000, "number of intervals")
	lyapunovCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state (defaults to the model's)")
	lyapunovCmd.Flags().StringSliceVarP(&params, "param", "p", nil, "model parameter as name=value")
	lyapunovCmd.Flags().Float64Var(&lyaPerturbation, "perturbation", 1e-8, "initial separation")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "integrate randomly perturbed initial states concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().StringVarP(&method, "method", "m", config.DefaultMethod, "step formula")
	ensembleCmd.Flags().Float64Var(&ensT1, "t1", 10, "end time")
	ensembleCmd.Flags().IntVarP(&ensSteps, "steps", "n", 1000, "number of intervals")
	ensembleCmd.Flags().Float64SliceVar(&initState, "init", nil, "base initial state (defaults to the model's)")
	ensembleCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	ensembleCmd.Flags().Float64Var(&ensPerturbation, "perturbation", 0.01, "max absolute perturbation per component")
	ensembleCmd.Flags().IntVar(&workers, "workers", 4, "concurrent integrations")
	ensembleCmd.Flags().Int64Var(&seed, "seed", 42, "random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for %s\n", args[0])
				return nil
			}
			sort.Strings(names)
			fmt.Println(viz.Title.Render("presets for " + args[0]))
			for _, name := range names {
				p := config.GetPreset(args[0], name)
				fmt.Printf("  %-12s %s, t=[%g, %g], %d steps, y0=%v\n", name, p.Method, p.T0, p.T1, p.Steps, p.InitState)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models, their parameters and step formulas",
		RunE:  listModels,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every problem of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRuns, "save", true, "store runs that set save_as")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, viewCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		compareCmd, lyapunovCmd, ensembleCmd, presetsCmd, modelsCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorText.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func dataDir() string {
	return viper.GetString("data")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

// buildConfig merges preset, config file and flags, in that order of
// increasing precedence. Only flags the user set override earlier sources.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 && loaded.Model != args[0] {
			return nil, fmt.Errorf("model %s conflicts with %s in %s", args[0], loaded.Model, configFile)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t1") {
		cfg.T1 = t1
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("t0") || flags.Changed("t1") || flags.Changed("steps") {
		cfg.Times = nil
	}
	if flags.Changed("init") {
		cfg.InitState = initState
	}
	if flags.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}
	if len(params) > 0 {
		extra, err := parseParams(params)
		if err != nil {
			return nil, err
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		for k, v := range extra {
			cfg.Params[k] = v
		}
	}

	return cfg, cfg.Validate()
}

func runIntegration(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		return fmt.Errorf("need a model name or --config")
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	traj, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	info := integrators.InfoOf(exp.Method().New())
	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s · %s (order %d)", cfg.Model, info.Name, info.Order)))
	fmt.Printf("%s %d points, t=[%g, %g]\n", viz.MetricLabel.Render("grid"), traj.Len(), exp.Times()[0], exp.Times()[len(exp.Times())-1])
	fmt.Printf("%s %v\n", viz.MetricLabel.Render("y0  "), exp.InitState())
	fmt.Printf("%s %v\n", viz.MetricLabel.Render("y(T)"), traj.Final())
	fmt.Printf("%s %d steps, %d evaluations in %s\n\n", viz.MetricLabel.Render("work"), traj.Stats.Steps, traj.Stats.Evaluations, elapsed.Round(time.Microsecond))
	if len(traj.Metrics) > 0 {
		fmt.Println(viz.KeyValues(traj.Metrics))
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir())
	meta := storage.NewMetadata(traj)
	meta.Model = cfg.Model
	meta.Method = exp.Method().String()
	meta.Params = exp.Model().Params()
	id, err := st.Save(meta, traj)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s %s\n", viz.Subtle.Render("saved"), id)
	return nil
}

func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func loadRun(args []string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir())
	runID, err := resolveRun(st, args)
	if err != nil {
		return nil, nil, err
	}
	return st.LoadTrajectory(runID)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tMODEL\tMETHOD\tTIME\tSPAN\tPOINTS\tEVALS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t[%g, %g]\t%d\t%d\n",
			run.ID,
			run.Label,
			run.Model,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0,
			run.T1,
			run.Points,
			run.Evaluations,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args)
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Method)
	fmt.Printf("samples: %d\n\n", traj.Len())

	opts := viz.DefaultPlotOptions()
	opts.Labels = stateLabels[meta.Model]
	fmt.Println(viz.PlotColumns(traj.Times, traj.States, opts))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s · %s · %s", meta.ID, meta.Model, meta.Method)
	_, err = tea.NewProgram(viz.NewViewer(title, traj, stateLabels[meta.Model]), tea.WithAltScreen()).Run()
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, traj.Times, traj.States)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args)
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, traj.Times, traj.States)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := storage.TrajectorySVG(out, traj.States, xAxis, yAxis, storage.DefaultSVGOptions()); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("wrote %s\n", outFile)
	}
	return nil
}

// modelFromFlags builds a model with --param applied and returns it with
// the initial state from --init or the model default.
func modelFromFlags(name string) (physics.Model, dynamo.State, error) {
	model, err := experiment.NewRegistry().GetModel(name)
	if err != nil {
		return nil, nil, err
	}
	ps, err := parseParams(params)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range ps {
		if err := model.SetParam(k, v); err != nil {
			return nil, nil, err
		}
	}
	y0 := model.DefaultState()
	if len(initState) > 0 {
		y0 = dynamo.State(initState)
	}
	return model, y0, physics.CheckState(model, y0)
}

func compareMethods(cmd *cobra.Command, args []string) error {
	model, y0, err := modelFromFlags(args[0])
	if err != nil {
		return err
	}
	problem, ok := model.(analysis.Problem)
	if !ok {
		return fmt.Errorf("%s has no closed-form solution to compare against", args[0])
	}

	names := args[1:]
	if len(names) == 0 {
		names = []string{"euler", "rk4"}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("convergence for %s on [%g, %g], y0=%v\n\n", args[0], cmpT0, cmpT1, y0)

	var logErrors [][]float64
	for _, name := range names {
		m, err := integrators.ParseMethod(name)
		if err != nil {
			return err
		}
		rows, err := analysis.Convergence(ctx, problem, m.New(), cmpT0, cmpT1, y0, refinements)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		fmt.Println(viz.Title.Render(m.String()))
		fmt.Printf("%8s  %12s  %12s  %8s  %8s\n", "steps", "h", "error", "order", "evals")
		fmt.Println(strings.Repeat("-", 56))
		for _, r := range rows {
			order := "-"
			if !math.IsNaN(r.Order) {
				order = fmt.Sprintf("%.3f", r.Order)
			}
			fmt.Printf("%8d  %12.4e  %12.4e  %8s  %8d\n", r.Steps, r.H, r.Error, order, r.Evaluations)
		}
		fmt.Println()

		series := make([]float64, 0, len(rows))
		for _, r := range rows {
			if r.Error > 0 {
				series = append(series, math.Log10(r.Error))
			}
		}
		logErrors = append(logErrors, series)
	}

	if len(refinements) > 1 {
		opts := viz.DefaultPlotOptions()
		opts.Height = 12
		opts.Width = 60
		fmt.Println(viz.PlotOverlay(logErrors, "log10 error per refinement: "+strings.Join(names, ", "), opts))
	}
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	model, y0, err := modelFromFlags(args[0])
	if err != nil {
		return err
	}
	m, err := integrators.ParseMethod(method)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	ts := dynamo.Linspace(0, lyaT1, lyaSteps+1)
	lambda, err := analysis.LyapunovExponent(ctx, model, m.New(), y0, ts, lyaPerturbation)
	if err != nil {
		return err
	}

	verdict := "stable"
	if lambda > 0.01 {
		verdict = "chaotic"
	} else if lambda > -0.01 {
		verdict = "marginal"
	}

	fmt.Printf("%s %s\n", viz.MetricLabel.Render("largest exponent"), viz.MetricValue.Render(fmt.Sprintf("%.4f", lambda)))
	fmt.Printf("%s %s\n", viz.MetricLabel.Render("behaviour       "), verdict)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Model = args[0]
	cfg.Method = method
	cfg.T0, cfg.T1, cfg.Steps = 0, ensT1, ensSteps
	cfg.InitState = initState

	mc := &automation.MonteCarloConfig{
		Base:         *cfg,
		Perturbation: ensPerturbation,
		NumTrials:    trials,
		Workers:      workers,
		Seed:         seed,
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%d trials of %s in %s (%d workers)\n", len(results), args[0], time.Since(start).Round(time.Millisecond), workers)
	fmt.Printf("%s %d\n", viz.MetricLabel.Render("stable  "), stable)
	fmt.Printf("%s %d\n", viz.MetricLabel.Render("unstable"), unstable)

	if len(results) > 0 && len(results[0].FinalState) > 0 {
		finals := make([]float64, len(results))
		for i, r := range results {
			finals[i] = r.FinalState[0]
		}
		fmt.Printf("%s %s\n", viz.MetricLabel.Render("final y0"), viz.Sparkline(finals, 60))
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tDIM\tPARAMETERS\tEXACT\tENERGY")
	for _, name := range reg.ListModels() {
		m, err := reg.GetModel(name)
		if err != nil {
			return err
		}
		ps := m.Params()
		parts := make([]string, 0, len(ps))
		for _, p := range physics.ParamNames(m) {
			parts = append(parts, fmt.Sprintf("%s=%g", p, ps[p]))
		}
		_, exact := m.(dynamo.Analytic)
		_, energy := m.(dynamo.Hamiltonian)
		fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%v\n", name, m.Dim(), strings.Join(parts, " "), exact, energy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Title.Render("step formulas"))
	for _, m := range integrators.Methods() {
		info := integrators.InfoOf(m.New())
		fmt.Printf("  %-15s stages=%d order=%d\n", info.Name, info.Stages, info.Order)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render(sc.Name))
	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}
	fmt.Println()

	var st *storage.Store
	if saveRuns {
		st = storage.New(dataDir())
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st)
	for i, r := range results {
		fmt.Printf("%d/%d %-24s y(T)=%v", i+1, len(sc.Runs), r.Label, r.Trajectory.Final())
		if r.RunID != "" {
			fmt.Printf("  %s", viz.Subtle.Render("saved "+r.RunID))
		}
		fmt.Println()
	}
	return err
}
