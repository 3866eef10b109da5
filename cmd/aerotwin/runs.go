package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/analysis"
	"github.com/san-kum/aerotwin/internal/config"
	"github.com/san-kum/aerotwin/internal/export"
	"github.com/san-kum/aerotwin/internal/sim"
	"github.com/san-kum/aerotwin/internal/storage"
)

// openRun resolves a run ID prefix and loads its samples.
func openRun(ref string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	runID, err := st.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, result, nil
}

// selectChannels returns the requested channels, or by default every bus
// voltage, breaker current and actuator position.
func selectChannels(result *sim.Result, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	var out []string
	for _, ch := range result.Channels {
		kind, _, field, ok := aircraft.SplitChannel(ch)
		if !ok {
			continue
		}
		switch {
		case kind == aircraft.KindBus && field == "voltage",
			kind == aircraft.KindBreaker && field == "current",
			kind == aircraft.KindActuator && field == "position":
			out = append(out, ch)
		}
	}
	return out
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
	fmt.Fprintln(w, "ID\tAIRCRAFT\tTIME\tDURATION\tDT\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\n",
			run.ID[:min(8, len(run.ID))],
			run.Aircraft,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
		)
	}
	return w.Flush()
}

func listChannels(cmd *cobra.Command, args []string) error {
	meta, _, err := openRun(args[0])
	if err != nil {
		return err
	}
	for _, ch := range meta.Channels {
		fmt.Println(ch)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := openRun(args[0])
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("aircraft: %s\n", meta.Aircraft)
	fmt.Printf("samples: %d\n\n", len(result.Samples))

	for _, ch := range selectChannels(result, channels) {
		data, ok := result.Series(ch)
		if !ok {
			return fmt.Errorf("unknown channel %q", ch)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(ch),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := openRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s (%s)\n\n", meta.ID, meta.Aircraft)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tMIN\tMAX\tMEAN\tRMS\tFINAL\tSETTLED\tRIPPLE")
	for _, ch := range selectChannels(result, channels) {
		data, ok := result.Series(ch)
		if !ok {
			return fmt.Errorf("unknown channel %q", ch)
		}
		st := analysis.Describe(data)

		settled := "-"
		if at, ok := analysis.SettlingTime(result.Times, data, tolerance); ok {
			settled = at.String()
		}
		ripple := "-"
		if freq, _, ok := analysis.PowerSpectrum(data, meta.Dt).Dominant(); ok {
			ripple = fmt.Sprintf("%.2f Hz", freq)
		}

		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%s\t%s\n",
			ch, st.Min, st.Max, st.Mean, st.RMS, st.Final, settled, ripple)

		if cmd.Flags().Changed("threshold") {
			for _, at := range analysis.Crossings(result.Times, data, threshold) {
				fmt.Fprintf(w, "  rises through %g\tat %s\t\t\t\t\t\t\n", threshold, at)
			}
		}
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, result, err := openRun(args[0])
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	xs, ok := result.Series(args[1])
	if !ok {
		return fmt.Errorf("unknown channel %q", args[1])
	}
	ys, ok := result.Series(args[2])
	if !ok {
		return fmt.Errorf("unknown channel %q", args[2])
	}

	fmt.Printf("phase plot: %s (%s)\n", meta.ID, meta.Aircraft)
	fmt.Printf("x: %s\ny: %s\n\n", args[1], args[2])
	fmt.Print(analysis.PortraitToASCII(analysis.PhasePortrait(xs, ys), width, height))
	fmt.Printf("\nLegend: . = early, o = middle, • = late\n")
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := openRun(args[0])
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	h := export.Header{Aircraft: meta.Aircraft, RunID: meta.ID, Dt: meta.Dt, Duration: meta.Duration}
	return export.JSON(out, h, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := openRun(args[0])
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	if out == "" {
		out = meta.ID + ".svg"
	}

	series, err := export.SeriesFromResult(result, selectChannels(result, channels)...)
	if err != nil {
		return err
	}
	svg, err := export.SeriesToSVG(series, width, height)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(runID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", runID)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDT\tDURATION\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, cfg.Dt, cfg.Duration, cfg.Description)
	}
	return w.Flush()
}

func showPreset(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %s)", args[0], strings.Join(config.ListPresets(), ", "))
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func validateConfigs(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		cfg, err := config.Load(path)
		if err == nil {
			err = cfg.Validate()
		}
		if err == nil {
			fmt.Printf("%s: ok\n", path)
			continue
		}

		failed++
		fmt.Printf("%s: invalid\n", path)
		var verr *config.ValidationError
		for _, e := range splitJoined(err) {
			if errors.As(e, &verr) {
				fmt.Printf("  %s: %s\n", verr.Field, verr.Message)
			} else {
				fmt.Printf("  %v\n", e)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d configs invalid", failed, len(args))
	}
	return nil
}

// splitJoined unpacks an errors.Join result.
func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
