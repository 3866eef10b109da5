package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	dataDir     string
	logLevel    = "info"
	metricsAddr string

	configFile string
	scriptFile string
	dtFlag     string
	timeFlag   string
	parallel   int
	noSave     bool
	theme      string
	channels   []string
	tolerance  float64
	params     []string
	metric     string
	maximize   bool
	threshold  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "aerotwin",
		Short:         "aircraft systems digital twin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".aerotwin", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while running")

	runCmd := &cobra.Command{
		Use:   "run [preset...]",
		Short: "run presets headless and store the results",
		RunE:  runSimulation,
	}
	addAircraftFlags(runCmd)
	runCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = all)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run in real time with the cockpit viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addAircraftFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "glass", "viewer theme")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a parameter grid and rank the runs by a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addAircraftFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVarP(&params, "param", "p", nil, `swept parameter, e.g. "breaker.Heater CB.rating=8,10,12" (repeatable)`)
	sweepCmd.Flags().StringVar(&metric, "metric", "supply_quality", "metric to rank by")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "rank the largest metric first")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = all)")
	sweepCmd.Flags().Int("top", 10, "rows to print")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot channels of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVarP(&channels, "channel", "c", nil, "channels to plot (default: bus and actuator channels)")
	plotCmd.Flags().Int("width", 80, "plot width")
	plotCmd.Flags().Int("height", 10, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "statistics, settling and spectrum of run channels",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVarP(&channels, "channel", "c", nil, "channels to analyze (default: bus and actuator channels)")
	analyzeCmd.Flags().Float64Var(&tolerance, "tolerance", 0.02, "settling band as a fraction of the final value")
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 0, "report upward crossings of this value")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id] [x_channel] [y_channel]",
		Short: "plot one channel against another",
		Args:  cobra.ExactArgs(3),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().Int("width", 70, "plot width")
	phaseCmd.Flags().Int("height", 20, "plot height")

	channelsCmd := &cobra.Command{
		Use:   "channels [run_id]",
		Short: "list the channels recorded by a run",
		Args:  cobra.ExactArgs(1),
		RunE:  listChannels,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringP("out", "o", "-", "output file (- for stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export channel traces to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringSliceVarP(&channels, "channel", "c", nil, "channels to draw (default: bus and actuator channels)")
	exportSVGCmd.Flags().StringP("out", "o", "", "output file (default: <run_id>.svg)")
	exportSVGCmd.Flags().Int("width", 800, "image width")
	exportSVGCmd.Flags().Int("height", 400, "image height")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in aircraft configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	showCmd := &cobra.Command{
		Use:   "show [preset]",
		Short: "print a preset as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  showPreset,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [config.yaml...]",
		Short: "validate aircraft configuration files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  validateConfigs,
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, channelsCmd,
		exportJSONCmd, exportSVGCmd, deleteCmd, presetsCmd, showCmd, validateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addAircraftFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "aircraft config file (yaml)")
	cmd.Flags().StringVar(&scriptFile, "script", "", "scenario file (yaml) layered over the config's script")
	cmd.Flags().StringVar(&dtFlag, "dt", "", "override the timestep, e.g. 10ms")
	cmd.Flags().StringVar(&timeFlag, "time", "", "override the duration, e.g. 30s")
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
