package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fdgsim/internal/config"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/export"
	"github.com/san-kum/fdgsim/internal/graph"
	"github.com/san-kum/fdgsim/internal/jsongraph"
	"github.com/san-kum/fdgsim/internal/metrics"
	"github.com/san-kum/fdgsim/internal/optim"
	"github.com/san-kum/fdgsim/internal/server"
	"github.com/san-kum/fdgsim/internal/sim"
	"github.com/san-kum/fdgsim/internal/storage"
	"github.com/san-kum/fdgsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool
	// graph source
	generateKind string
	generateSize int
	pinned       []string
	keepLocs     bool
	// config
	configFile string
	preset     string
	dims       int
	dt         float64
	damping    float64
	repulsion  float64
	attraction float64
	idealLen   float64
	centering  float64
	drag       float64
	seed       int64
	maxSteps   int
	epsilon    float64
	// run
	ensemble int
	svgOut   string
	// live
	frameRate     int
	stepsPerFrame int
	theme         string
	gifPath       string
	// svg
	outFile     string
	historyOut  string
	rotX, rotY  float64
	svgSize     int
	plotColumns []string
	// tune
	gridSpecs []string
	objective string
	// serve
	listenAddr string
)

func main() {
	logger := newLogger(os.Stderr, log.InfoLevel)

	rootCmd := &cobra.Command{
		Use:          "fdgsim",
		Short:        "force-directed graph layout simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fdgsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "run a layout to rest and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLayout,
	}
	addGraphFlags(runCmd)
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&ensemble, "ensemble", 1, "number of seeded runs; the calmest is kept")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "also write the final layout as svg")

	liveCmd := &cobra.Command{
		Use:   "live [graph.json]",
		Short: "run a layout with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addGraphFlags(liveCmd)
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "neon", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&gifPath, "gif", "layout.gif", "gif capture output")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and final positions",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot convergence history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotColumns, "series", []string{"max_displacement", "kinetic_energy"},
		"series to plot (max_displacement, total_displacement, kinetic_energy, frozen)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored layout as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	svgCmd.Flags().StringVar(&historyOut, "history", "", "also plot max displacement to this file")
	svgCmd.Flags().Float64Var(&rotX, "rot-x", 0.4, "rotation about x for 3d layouts (radians)")
	svgCmd.Flags().Float64Var(&rotY, "rot-y", 0.6, "rotation about y for 3d layouts (radians)")
	svgCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [ring|grid|complete|star] [size]",
		Short: "write a generated graph as json",
		Args:  cobra.ExactArgs(2),
		RunE:  generateGraph,
	}
	generateCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration (.yaml or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				p, err := presetConfig(preset)
				if err != nil {
					return err
				}
				cfg = p
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("config written", "path", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset (family/name)")

	tuneCmd := &cobra.Command{
		Use:   "tune [graph.json]",
		Short: "grid-search force parameters for the fastest settling layout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneLayout,
	}
	addGraphFlags(tuneCmd)
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", []string{"repulsion=5,10,20", "attraction=0.5,1,2"},
		"name=v1,v2,... per tuned parameter ("+strings.Join(tunable(), ", ")+")")
	tuneCmd.Flags().StringVar(&objective, "objective", "steps", "what to minimise: steps or energy")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve stored runs and on-demand layouts over http",
		Args:  cobra.NoArgs,
		RunE:  serveRuns,
	}
	addConfigFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:8080", "listen address")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, svgCmd, presetsCmd, generateCmd, initCmd, tuneCmd, serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(withLogger(ctx, logger))
	stop()
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&generateKind, "generate", "", "use a generated graph (ring, grid, complete, star)")
	cmd.Flags().IntVar(&generateSize, "size", 12, "size of the generated graph")
	cmd.Flags().StringSliceVar(&pinned, "pin", nil, "names of nodes to pin in place")
	cmd.Flags().BoolVar(&keepLocs, "keep-locations", false, "start from imported node locations; only nodes at the origin are scattered")
}

func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	f.StringVar(&preset, "preset", "", "use preset configuration (family/name)")
	f.IntVar(&dims, "dims", d.Dimensions, "dimensions (2 or 3)")
	f.Float64Var(&dt, "dt", d.Dt, "timestep")
	f.Float64Var(&damping, "damping", d.Damping, "velocity retained per step, in (0, 1]")
	f.Float64Var(&repulsion, "repulsion", d.Repulsion, "repulsion strength")
	f.Float64Var(&attraction, "attraction", d.Attraction, "spring strength")
	f.Float64Var(&idealLen, "ideal-length", d.IdealLength, "spring rest length (0 selects d^2 attraction)")
	f.Float64Var(&centering, "centering", d.Centering, "pull toward the origin")
	f.Float64Var(&drag, "drag", d.Drag, "velocity drag coefficient")
	f.Int64Var(&seed, "seed", d.Seed, "random seed for placement")
	f.IntVar(&maxSteps, "steps", d.Run.MaxSteps, "step budget")
	f.Float64Var(&epsilon, "epsilon", d.Run.Epsilon, "settle threshold on max displacement")
}

func presetConfig(name string) (*config.Config, error) {
	family, variant, ok := strings.Cut(name, "/")
	if !ok {
		return nil, fmt.Errorf("preset must be family/name, got %q", name)
	}
	cfg := config.GetPreset(family, variant)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}

// resolveConfig layers preset or config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case preset != "" && configFile != "":
		return nil, errors.New("use either --preset or --config")
	case preset != "":
		p, err := presetConfig(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	f := cmd.Flags()
	if f.Changed("dims") {
		cfg.Dimensions = dims
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("damping") {
		cfg.Damping = damping
	}
	if f.Changed("repulsion") {
		cfg.Repulsion = repulsion
	}
	if f.Changed("attraction") {
		cfg.Attraction = attraction
	}
	if f.Changed("ideal-length") {
		cfg.IdealLength = idealLen
	}
	if f.Changed("centering") {
		cfg.Centering = centering
	}
	if f.Changed("drag") {
		cfg.Drag = drag
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("steps") {
		cfg.Run.MaxSteps = maxSteps
	}
	if f.Changed("epsilon") {
		cfg.Run.Epsilon = epsilon
	}
	return cfg, cfg.Validate()
}

func loadGraph(args []string) (*jsongraph.Graph, string, error) {
	if generateKind != "" {
		g, err := graph.Generate(generateKind, generateSize)
		return g, fmt.Sprintf("%s:%d", generateKind, generateSize), err
	}
	if len(args) == 0 {
		return nil, "", errors.New("need a graph file or --generate")
	}
	g, err := jsongraph.ReadFile(args[0])
	return g, args[0], err
}

// newSimulation builds a simulation over a freshly scattered layout.
func newSimulation(cmd *cobra.Command, args []string) (*sim.Simulation[string, string], *config.Config, string, error) {
	logger := loggerFromContext(cmd.Context())

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	g, source, err := loadGraph(args)
	if err != nil {
		return nil, nil, "", err
	}

	for _, name := range pinned {
		found := false
		for _, n := range g.Nodes() {
			if n.Name == name {
				n.Pinned, found = true, true
			}
		}
		if !found {
			return nil, nil, "", fmt.Errorf("pin %q: %w", name, dynamo.ErrInvalidReference)
		}
	}

	s, err := sim.New(g, cfg.Parameters())
	if err != nil {
		return nil, nil, "", err
	}
	placeNodes(s)

	logger.Debug("graph loaded", "source", source, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "pinned", len(pinned))
	logger.Debug("parameters", "dims", cfg.Dimensions, "dt", cfg.Dt, "damping", cfg.Damping,
		"repulsion", cfg.Repulsion, "attraction", cfg.Attraction, "ideal_length", cfg.IdealLength, "seed", cfg.Seed)
	return s, cfg, source, nil
}

func placeNodes[N, E any](s *sim.Simulation[N, E]) {
	if keepLocs {
		s.ScatterUnplaced()
		return
	}
	s.ResetNodePlacement()
}

func runLayout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	s, cfg, source, err := newSimulation(cmd, args)
	if err != nil {
		return err
	}
	if ensemble < 1 {
		return fmt.Errorf("ensemble must be at least 1, got %d", ensemble)
	}

	rc := cfg.RunConfig()
	p := newProgress(logger)

	final := s
	var result *sim.Result
	if ensemble > 1 {
		er, err := sim.NewEnsemble(s, ensemble, cfg.Seed).Run(ctx, rc)
		if err != nil {
			return err
		}
		final, result = er.Best, er.Results[er.BestIndex]
		result.Metrics = replayMetrics(result.History, cfg)
		logger.Debug("ensemble finished", "runs", ensemble, "best_seed", cfg.Seed+int64(er.BestIndex))
	} else {
		for _, m := range metrics.Defaults(rc.Epsilon, rc.SettleSteps) {
			s.AddMetric(m)
		}
		result, err = s.Run(ctx, rc)
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted, saving partial layout", "steps", result.StepsTaken)
		} else if err != nil {
			return err
		}
	}

	p.done("layout finished", "steps", result.StepsTaken, "settled", result.Settled,
		"kinetic_energy", result.Final.KineticEnergy)
	if result.Final.Frozen > 0 {
		logger.Warn("nodes froze on non-finite updates", "count", result.Final.Frozen)
	}

	g := final.Graph()
	doc, err := jsongraph.Marshal(g)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Run{
		Name:      runName(source),
		Source:    source,
		Params:    final.Parameters(),
		Result:    result,
		Positions: storage.PositionsOf(final.Snapshot()),
		Edges:     g.EdgeCount(),
		Graph:     doc,
	})
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "dir", dataDir)

	if svgOut != "" {
		opts := export.DefaultSVGOptions()
		if final.Parameters().Dimensions == dynamo.ThreeD {
			opts.Camera = viz.NewCamera()
			opts.Camera.RotX, opts.Camera.RotY, opts.Camera.Perspective = 0.4, 0.6, true
		}
		if err := os.WriteFile(svgOut, []byte(export.LayoutToSVG(g, opts)), 0644); err != nil {
			return err
		}
		logger.Info("svg written", "path", svgOut)
	}

	fmt.Println(runID)
	return nil
}

// replayMetrics feeds a finished history through fresh metrics; ensemble runs
// do not carry registered metrics.
func replayMetrics(history []sim.Stats, cfg *config.Config) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range metrics.Defaults(cfg.Run.Epsilon, cfg.Run.SettleSteps) {
		for _, st := range history {
			m.Observe(st)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

func runName(source string) string {
	name := source
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".json")
}

func runLive(cmd *cobra.Command, args []string) error {
	s, cfg, source, err := newSimulation(cmd, args)
	if err != nil {
		return err
	}

	m := viz.NewModel(s, viz.Options{
		Title:         runName(source),
		StepsPerFrame: stepsPerFrame,
		FPS:           frameRate,
		Epsilon:       cfg.Run.Epsilon,
		SettleSteps:   cfg.Run.SettleSteps,
		Theme:         theme,
		GIFPath:       gifPath,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDIMS\tNODES\tEDGES\tSTEPS\tSETTLED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dD\t%d\t%d\t%d\t%v\n",
			shortID(run.ID),
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dimensions,
			run.Nodes,
			run.Edges,
			run.Steps,
			run.Settled,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s\n", meta.ID)
	fmt.Printf("name:       %s\n", meta.Name)
	fmt.Printf("source:     %s\n", meta.Source)
	fmt.Printf("time:       %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("graph:      %d nodes, %d edges, %dD\n", meta.Nodes, meta.Edges, meta.Dimensions)
	fmt.Printf("params:     dt=%g damping=%g repulsion=%g attraction=%g ideal_length=%g centering=%g seed=%d\n",
		meta.Dt, meta.Damping, meta.Repulsion, meta.Attraction, meta.IdealLength, meta.Centering, meta.Seed)
	fmt.Printf("steps:      %d (settled: %v)\n", meta.Steps, meta.Settled)

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		names := make([]string, 0, len(meta.Metrics))
		for k := range meta.Metrics {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, k := range names {
			fmt.Printf("  %-18s %.6g\n", k, meta.Metrics[k])
		}
	}

	positions, err := st.LoadPositions(runID)
	if err != nil {
		return err
	}
	fmt.Println("\npositions:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NODE\tX\tY\tZ\tPINNED")
	for _, p := range positions {
		fmt.Fprintf(w, "  %s\t%.3f\t%.3f\t%.3f\t%v\n", p.Name, p.Location.X, p.Location.Y, p.Location.Z, p.Pinned)
	}
	return w.Flush()
}

func historySeries(history []sim.Stats, name string) ([]float64, error) {
	out := make([]float64, len(history))
	for i, st := range history {
		switch name {
		case "max_displacement":
			out[i] = st.MaxDisplacement
		case "total_displacement":
			out[i] = st.TotalDisplacement
		case "kinetic_energy":
			out[i] = st.KineticEnergy
		case "frozen":
			out[i] = float64(st.Frozen)
		default:
			return nil, fmt.Errorf("unknown series: %s", name)
		}
	}
	return out, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no history to plot")
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d\n\n", len(history))

	for _, name := range plotColumns {
		data, err := historySeries(history, name)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()
	}
	return nil
}

func renderSVG(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	st := storage.New(dataDir)
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	g, err := st.LoadGraph(runID)
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.Width, opts.Height = svgSize, svgSize
	if meta.Dimensions == int(dynamo.ThreeD) {
		opts.Camera = viz.NewCamera()
		opts.Camera.RotX, opts.Camera.RotY, opts.Camera.Perspective = rotX, rotY, true
	}

	// Pinned flags live in positions.csv, not in the graph document.
	if positions, err := st.LoadPositions(runID); err == nil {
		pins := make(map[string]bool, len(positions))
		for _, p := range positions {
			pins[p.Name] = p.Pinned
		}
		for _, n := range g.Nodes() {
			n.Pinned = pins[n.Name]
		}
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(export.LayoutToSVG(g, opts)), 0644); err != nil {
		return err
	}
	logger.Info("svg written", "path", path)

	if historyOut != "" {
		history, err := st.LoadHistory(runID)
		if err != nil {
			return err
		}
		data, _ := historySeries(history, "max_displacement")
		plot := export.SeriesToSVG(data, svgSize, svgSize/3, "#00ff88")
		if plot == "" {
			return fmt.Errorf("not enough history to plot")
		}
		if err := os.WriteFile(historyOut, []byte(plot), 0644); err != nil {
			return err
		}
		logger.Info("history svg written", "path", historyOut)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	families := config.Families()
	if len(args) == 1 {
		families = []string{args[0]}
	}
	for _, family := range families {
		names := config.ListPresets(family)
		if len(names) == 0 {
			fmt.Printf("no presets for family: %s\n", family)
			continue
		}
		fmt.Printf("%s:\n", family)
		for _, name := range names {
			p := config.GetPreset(family, name)
			fmt.Printf("  %s/%-10s %dD dt=%g repulsion=%g attraction=%g ideal_length=%g\n",
				family, name, p.Dimensions, p.Dt, p.Repulsion, p.Attraction, p.IdealLength)
		}
	}
	return nil
}

func generateGraph(cmd *cobra.Command, args []string) error {
	var size int
	if _, err := fmt.Sscanf(args[1], "%d", &size); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	g, err := graph.Generate(args[0], size)
	if err != nil {
		return err
	}
	if outFile == "" {
		return jsongraph.Write(os.Stdout, g)
	}
	if err := jsongraph.WriteFile(outFile, g); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("graph written", "path", outFile, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func tunable() []string {
	names := make([]string, 0)
	for k := range sim.DefaultParameters().Force.Get() {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || !slices.Contains(tunable(), name) {
			return nil, nil, fmt.Errorf("bad grid spec %q", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func tuneLayout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	base, cfg, _, err := newSimulation(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	if objective != "steps" && objective != "energy" {
		return fmt.Errorf("unknown objective: %s", objective)
	}

	rc := cfg.RunConfig()
	rc.KeepHistory = false
	p := newProgress(logger)

	out, err := search.Search(ctx, func(ctx context.Context, values map[string]float64) (float64, error) {
		params := base.Parameters()
		for name, v := range values {
			if err := params.Force.Set(name, v); err != nil {
				return 0, err
			}
		}
		s, err := sim.New(base.Graph().Clone(), params)
		if err != nil {
			return 0, err
		}
		placeNodes(s)
		result, err := s.Run(ctx, rc)
		if err != nil {
			return 0, err
		}

		score := result.Final.KineticEnergy
		if objective == "steps" {
			score = float64(result.StepsTaken)
			if !result.Settled {
				score += float64(rc.MaxSteps)
			}
		}
		logger.Debug("trial", "params", values, "score", score, "settled", result.Settled)
		return score, nil
	})
	if err != nil {
		return err
	}
	p.done("tuning finished", "trials", len(out.Trials), "objective", objective, "score", out.Score)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tSCORE")
	for _, trial := range out.Trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", trial.Params[name])
		}
		if trial.Err != nil {
			fmt.Fprintf(w, "error: %v\n", trial.Err)
		} else {
			fmt.Fprintf(w, "%g\n", trial.Score)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Print("\nbest:")
	for _, name := range names {
		fmt.Printf(" %s=%g", name, out.Best[name])
	}
	fmt.Println()
	return nil
}

func serveRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	srv := server.New(server.Config{
		Addr:       listenAddr,
		Parameters: cfg.Parameters(),
		Run:        cfg.RunConfig(),
	}, store, loggerFromContext(cmd.Context()))
	return srv.ListenAndServe(cmd.Context())
}
