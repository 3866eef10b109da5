package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/automation"
	"github.com/san-kum/aerotwin/internal/broadcast"
	"github.com/san-kum/aerotwin/internal/config"
	"github.com/san-kum/aerotwin/internal/metrics"
	"github.com/san-kum/aerotwin/internal/sim"
	"github.com/san-kum/aerotwin/internal/storage"
	"github.com/san-kum/aerotwin/internal/viz"
)

// loadAircraft resolves presets by name, or the --config file, and applies
// the stepping overrides and scenario.
func loadAircraft(cmd *cobra.Command, names []string) ([]*config.Aircraft, error) {
	var cfgs []*config.Aircraft
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfgs = append(cfgs, cfg)
	}
	for _, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
		cfgs = append(cfgs, cfg)
	}
	if len(cfgs) == 0 {
		cfgs = append(cfgs, config.Default())
	}

	var scenario *automation.Scenario
	if scriptFile != "" {
		s, err := automation.LoadScenario(scriptFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load script: %w", err)
		}
		scenario = s
	}

	for _, cfg := range cfgs {
		if cmd.Flags().Changed("dt") {
			d, err := time.ParseDuration(dtFlag)
			if err != nil {
				return nil, fmt.Errorf("invalid --dt: %w", err)
			}
			cfg.Dt = d
		}
		if cmd.Flags().Changed("time") {
			d, err := time.ParseDuration(timeFlag)
			if err != nil {
				return nil, fmt.Errorf("invalid --time: %w", err)
			}
			cfg.Duration = d
		}
		if scenario != nil {
			cfg.Script = append(cfg.Script, scenario.Events...)
		}
	}
	return cfgs, nil
}

// twin is one aircraft wired into a simulator.
type twin struct {
	cfg      *config.Aircraft
	systems  *aircraft.Systems
	sim      *sim.Simulator
	exporter *metrics.Exporter
}

func newTwin(cfg *config.Aircraft, store *broadcast.Store, logger *slog.Logger) (*twin, error) {
	logger = logger.With("aircraft", cfg.Name)
	sys, err := aircraft.New(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	timeline, err := automation.Compile(sys, cfg.Script, logger)
	if err != nil {
		return nil, err
	}

	s := sim.New(sys, timeline)
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	exporter := metrics.NewExporter(cfg.Name)
	s.AddObserver(exporter)

	return &twin{cfg: cfg, systems: sys, sim: s, exporter: exporter}, nil
}

func simConfig(cfg *config.Aircraft) sim.Config {
	return sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, ValidateSamples: true}
}

// serveMetrics runs the /metrics endpoint until ctx ends. It is a no-op
// without --metrics-addr.
func serveMetrics(ctx context.Context, g *errgroup.Group, twins []*twin, logger *slog.Logger) {
	if metricsAddr == "" {
		return
	}
	gatherers := make(prometheus.Gatherers, 0, len(twins))
	for _, t := range twins {
		gatherers = append(gatherers, t.exporter.Registry())
	}
	handler := promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
	g.Go(func() error { return metrics.Serve(ctx, metricsAddr, handler, logger) })
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	cfgs, err := loadAircraft(cmd, args)
	if err != nil {
		return err
	}

	twins := make([]*twin, 0, len(cfgs))
	jobs := make([]sim.Job, 0, len(cfgs))
	for _, cfg := range cfgs {
		t, err := newTwin(cfg, nil, logger)
		if err != nil {
			return err
		}
		twins = append(twins, t)
		jobs = append(jobs, sim.Job{Name: cfg.Name, Simulator: t.sim, Config: simConfig(cfg)})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	serveMetrics(gctx, g, twins, logger)

	fmt.Printf("running %d aircraft...\n", len(jobs))
	start := time.Now()
	results, runErr := sim.RunAll(ctx, jobs, parallel)
	elapsed := time.Since(start)
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("metrics server failed", "err", err)
	}
	if runErr != nil {
		return runErr
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	for i, result := range results {
		t := twins[i]
		fmt.Printf("\n%s\n", t.cfg.Name)
		if st != nil {
			runID, err := st.Save(t.cfg, result)
			if err != nil {
				return err
			}
			fmt.Printf("  run id: %s\n", runID)
		}
		fmt.Printf("  steps: %d\n", result.StepsTaken)
		fmt.Printf("  final: %s\n", t.systems.Snapshot().Summary())
		printMetrics(result.Metrics)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("  metrics:")
	for _, name := range names {
		fmt.Printf("    %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfgs, err := loadAircraft(cmd, args)
	if err != nil {
		return err
	}
	cfg := cfgs[0]

	// The viewer owns the terminal, so logs go to a file.
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.Create(filepath.Join(dataDir, "live.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger, err := newLogger(logFile)
	if err != nil {
		return err
	}

	store := broadcast.New(broadcast.WithRetention(64))
	t, err := newTwin(cfg, store, logger)
	if err != nil {
		return err
	}

	simCfg := simConfig(cfg)
	if !cmd.Flags().Changed("time") {
		simCfg.Duration = 0
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := t.sim.RunRealtime(gctx, simCfg, sim.NewDeltaTimer())
		return err
	})
	g.Go(func() error {
		defer cancel()
		return viz.Run(gctx, store, theme)
	})
	serveMetrics(gctx, g, []*twin{t}, logger)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Println(t.systems.Snapshot().Summary())
	return nil
}
