package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/huckl3b3rry87/ctrlab/internal/analysis"
	"github.com/huckl3b3rry87/ctrlab/internal/config"
	"github.com/huckl3b3rry87/ctrlab/internal/control"
	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
	"github.com/huckl3b3rry87/ctrlab/internal/experiment"
	"github.com/huckl3b3rry87/ctrlab/internal/lti"
	"github.com/huckl3b3rry87/ctrlab/internal/store"
	"github.com/huckl3b3rry87/ctrlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	model      string
	integrator string
	sigName    string
	ts         float64
	dt         float64
	duration   float64
	seed       int64
	noise      float64
	amplitude  float64

	identMethod string
	na, nb      int
	delay       int
	split       float64

	designMethod string
	zeta         float64
	wn           float64

	kp, ki, kd float64
	target     float64

	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ctrlab",
		Short: "dc motor identification and control design lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			}))
			slog.SetDefault(logger)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ctrlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset name for the model")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addSimFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&model, "model", "motor_speed", "plant model")
		cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
		cmd.Flags().StringVar(&sigName, "signal", "prbs", "excitation signal")
		cmd.Flags().Float64Var(&ts, "ts", config.DefaultTs, "sample period")
		cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration step")
		cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
		cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
		cmd.Flags().Float64Var(&noise, "noise", 0, "output noise std dev")
		cmd.Flags().Float64Var(&amplitude, "amplitude", 1.0, "signal amplitude")
	}
	addIdentFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&identMethod, "method", "oe", "arx, oe or search")
		cmd.Flags().IntVar(&na, "na", config.DefaultOrderA, "denominator order")
		cmd.Flags().IntVar(&nb, "nb", config.DefaultOrderB, "numerator order")
		cmd.Flags().IntVar(&delay, "delay", config.DefaultDelay, "input delay in samples")
		cmd.Flags().Float64Var(&split, "split", config.DefaultSplit, "estimation fraction")
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate the plant open loop or under the configured controller",
		RunE:  runSimulate,
	}
	addSimFlags(simulateCmd)
	simulateCmd.Flags().Float64Var(&kp, "kp", 0, "pid kp")
	simulateCmd.Flags().Float64Var(&ki, "ki", 0, "pid ki")
	simulateCmd.Flags().Float64Var(&kd, "kd", 0, "pid kd")
	simulateCmd.Flags().Float64Var(&target, "target", 0, "pid target")

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "excite the plant and record a sampled dataset",
		RunE:  runCollect,
	}
	addSimFlags(collectCmd)

	identifyCmd := &cobra.Command{
		Use:   "identify [run_id]",
		Short: "fit a discrete model to a stored or freshly collected dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIdentify,
	}
	addSimFlags(identifyCmd)
	addIdentFlags(identifyCmd)

	designCmd := &cobra.Command{
		Use:   "design",
		Short: "design state feedback by pole placement, lqr or root locus",
		RunE:  runDesign,
	}
	addSimFlags(designCmd)
	designCmd.Flags().StringVar(&designMethod, "method", "place", "place, lqr or locus")
	designCmd.Flags().Float64Var(&zeta, "zeta", config.DefaultZeta, "target damping ratio")
	designCmd.Flags().Float64Var(&wn, "wn", config.DefaultWn, "target natural frequency")

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "open-loop step response with timing summary",
		RunE:  runStep,
	}
	addSimFlags(stepCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive loop view with keyboard gain tuning",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().Float64Var(&kp, "kp", 40.0, "pid kp")
	liveCmd.Flags().Float64Var(&ki, "ki", 100.0, "pid ki")
	liveCmd.Flags().Float64Var(&kd, "kd", 0.2, "pid kd")
	liveCmd.Flags().Float64Var(&target, "target", 1.0, "pid target")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	rootCmd.AddCommand(simulateCmd, collectCmd, identifyCmd, designCmd, stepCmd, liveCmd, presetsCmd, runsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: preset, then config
// file, then any explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.Preset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for model %q (available: %v)",
				preset, model, config.ListPresets(model))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flagSet := func(name string) bool { return cmd.Flags().Changed(name) }
	if flagSet("model") {
		cfg.Model = model
	}
	if flagSet("integrator") {
		cfg.Integrator = integrator
	}
	if flagSet("signal") {
		cfg.Signal = sigName
	}
	if flagSet("ts") {
		cfg.Ts = ts
	}
	if flagSet("dt") {
		cfg.Dt = dt
	}
	if flagSet("time") {
		cfg.Duration = duration
	}
	if flagSet("seed") {
		cfg.Seed = seed
	}
	if flagSet("noise") {
		cfg.Noise = noise
	}
	if flagSet("amplitude") {
		cfg.SignalOpts.Amplitude = amplitude
	}
	// Both identify and design register a --method flag, bound to
	// different variables; only the registered one is non-empty.
	if flagSet("method") {
		if identMethod != "" {
			cfg.Ident.Method = identMethod
		}
		if designMethod != "" {
			cfg.Design.Method = designMethod
		}
	}
	if flagSet("na") {
		cfg.Ident.NA = na
	}
	if flagSet("nb") {
		cfg.Ident.NB = nb
	}
	if flagSet("delay") {
		cfg.Ident.Delay = delay
	}
	if flagSet("split") {
		cfg.Ident.Split = split
	}
	if flagSet("zeta") {
		cfg.Design.Zeta = zeta
	}
	if flagSet("wn") {
		cfg.Design.Wn = wn
	}
	if flagSet("kp") || flagSet("ki") || flagSet("kd") {
		cfg.Controller = config.ControlConfig{Kind: "pid", Kp: kp, Ki: ki, Kd: kd, Target: target}
	}
	return cfg, cfg.Validate()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := experiment.New(cfg, logger)

	start := time.Now()
	result, err := p.OpenLoopRun(context.Background())
	if err != nil {
		return err
	}
	logger.Info("simulation finished", "steps", result.StepsTaken, "elapsed", time.Since(start))

	if len(result.Outputs) > 1 {
		y := make([]float64, len(result.Outputs))
		for i, out := range result.Outputs {
			y[i] = out[0]
		}
		fmt.Println(viz.Series(y, "output y", 80, 10))
	}
	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := experiment.New(cfg, logger)

	d, err := p.Collect(context.Background())
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(p.Metadata(""), d)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d at ts=%.4fs\n\n", d.Len(), cfg.Ts)
	fmt.Println(viz.Series(d.Outputs, "measured output", 80, 10))
	return nil
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := experiment.New(cfg, logger)

	var d *store.Dataset
	if len(args) == 1 {
		st := store.New(dataDir)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		d, err = st.LoadData(args[0])
		if err != nil {
			return err
		}
		logger.Info("loaded stored run", "id", meta.ID, "model", meta.Model, "samples", d.Len())
	} else {
		d, err = p.Collect(context.Background())
		if err != nil {
			return err
		}
	}

	m, rep, err := p.Identify(d)
	if err != nil {
		if m == nil {
			return err
		}
		logger.Warn("identification degraded", "err", err)
	}

	fmt.Printf("model: %s\n\n", m)
	fmt.Printf("one-step rmse:  %.6f\n", rep.RMSE)
	fmt.Printf("free-run rmse:  %.6f\n", rep.SimRMSE)
	fmt.Printf("baseline rmse:  %.6f\n", rep.BaselineRMSE)
	fmt.Printf("fit:            %.2f%%\n\n", rep.FitPercent)

	_, valSet := d.Split(cfg.Ident.Split)
	sim := m.Simulate(valSet)
	fmt.Println(viz.ComparePlot(valSet.Outputs, sim, "validation: measured vs simulated", 80, 12))
	return nil
}

func runDesign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := experiment.New(cfg, logger)

	if cfg.Design.Method == "locus" {
		return runLocus(cfg)
	}

	k, poles, err := p.Design()
	if err != nil {
		return err
	}

	_, nx := k.Dims()
	fmt.Print("gain K = [")
	for j := 0; j < nx; j++ {
		fmt.Printf(" %.4f", k.At(0, j))
	}
	fmt.Println(" ]")
	fmt.Println(viz.PolePlot(poles, 40, 12))

	result, err := p.ClosedLoopStep(context.Background(), k, 1.0)
	if err != nil {
		return err
	}
	y := make([]float64, len(result.States))
	for i, x := range result.States {
		y[i] = x[len(x)-1]
	}
	fmt.Println()
	fmt.Println(viz.StepPlot(result.Times, y, 80, 12))
	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
}

func runLocus(cfg *config.Config) error {
	g, err := plantTF(cfg)
	if err != nil {
		return err
	}

	gains := control.LogGains(0.01, 1000, 300)
	locus, err := control.RootLocus(g, gains)
	if err != nil {
		return err
	}
	fmt.Println(viz.LocusPlot(locus, 60, 18))

	k, err := control.GainForDamping(g, gains, cfg.Design.Zeta)
	if err != nil {
		logger.Warn("no gain reaches requested damping", "zeta", cfg.Design.Zeta, "err", err)
		return nil
	}
	fmt.Printf("\ngain for zeta=%.2f: k=%.4f\n", cfg.Design.Zeta, k)
	cl, err := g.Feedback(k)
	if err != nil {
		return err
	}
	poles, err := cl.Poles()
	if err != nil {
		return err
	}
	fmt.Println(viz.PolePlot(poles, 40, 12))
	return nil
}

func runStep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Signal = "step"
	cfg.Controller.Kind = "none"
	p := experiment.New(cfg, logger)

	g, err := plantTF(cfg)
	if err != nil {
		return err
	}
	fmt.Println(viz.Header(cfg.Model + " open loop"))
	fmt.Println(viz.KV("dc gain", fmt.Sprintf("%.4f", g.DCGain())))
	poles, err := g.Poles()
	if err == nil {
		for _, pole := range poles {
			fmt.Println(viz.KV("pole", fmt.Sprintf("%7.3f %+7.3fi", real(pole), imag(pole))))
		}
	}
	bw := analysis.Bandwidth(g, 0.01, 1000, 400)
	fmt.Println(viz.KV("bandwidth", fmt.Sprintf("%.3f rad/s", bw)))

	fmt.Println()
	fmt.Println(viz.BodeMagnitude(analysis.FrequencyResponse(g, 0.01, 1000, 120), 80, 10))
	fmt.Println()

	result, err := p.OpenLoopRun(context.Background())
	if err != nil {
		return err
	}
	y := make([]float64, len(result.Outputs))
	for i, out := range result.Outputs {
		y[i] = out[0]
	}
	fmt.Println(viz.StepPlot(result.Times, y, 80, 12))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := experiment.New(cfg, logger)

	sys, err := p.Plant()
	if err != nil {
		return err
	}
	integ, err := p.Registry().Integrator(cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl := control.NewPID(kp, ki, kd, target)

	m := viz.NewLive(sys, integ, measuredPID(sys, ctrl), make([]float64, sys.StateDim()), cfg.Dt, cfg.Model)
	prog := tea.NewProgram(m)
	_, err = prog.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tTS\tSIGNAL\tCTRL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Ts,
			run.Signal,
			run.Controller,
		)
	}
	return w.Flush()
}

// measuredLoop closes a PID over the plant's measured output rather
// than its first state, and forwards tuning so the live view can
// adjust gains.
type measuredLoop struct {
	sys dynamo.OutputSystem
	pid *control.PID
}

func measuredPID(sys dynamo.OutputSystem, pid *control.PID) dynamo.Controller {
	return &measuredLoop{sys: sys, pid: pid}
}

func (m *measuredLoop) Compute(x dynamo.State, t float64) dynamo.Input {
	return m.pid.Compute(m.sys.Output(x, nil, t), t)
}

func (m *measuredLoop) GetParams() map[string]float64 { return m.pid.GetParams() }

func (m *measuredLoop) SetParam(name string, value float64) error {
	return m.pid.SetParam(name, value)
}

func plantTF(cfg *config.Config) (*lti.TransferFunction, error) {
	switch cfg.Model {
	case "motor_speed":
		return lti.MotorSpeedTF(cfg.MotorParams())
	case "motor_position":
		return lti.MotorPositionTF(cfg.MotorParams())
	default:
		return nil, fmt.Errorf("no transfer function for model: %s", cfg.Model)
	}
}
