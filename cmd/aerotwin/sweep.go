package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/aerotwin/internal/optim"
	"github.com/san-kum/aerotwin/internal/sim"
)

func runSweep(cmd *cobra.Command, args []string) error {
	if len(params) == 0 {
		return errors.New("at least one --param is required")
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	cfgs, err := loadAircraft(cmd, args)
	if err != nil {
		return err
	}
	base := cfgs[0]

	grid := make([]optim.Param, 0, len(params))
	for _, raw := range params {
		p, err := optim.ParseParam(raw)
		if err != nil {
			return err
		}
		// Fail on a bad path before running anything.
		if err := base.SetParam(p.Name, p.Values[0]); err != nil {
			return err
		}
		grid = append(grid, p)
	}

	build := func(values map[string]float64) (sim.Job, error) {
		cfg := base.Clone()
		for name, v := range values {
			if err := cfg.SetParam(name, v); err != nil {
				return sim.Job{}, err
			}
		}
		t, err := newTwin(cfg, nil, logger.With("point", fmt.Sprint(values)))
		if err != nil {
			return sim.Job{}, err
		}
		return sim.Job{Name: cfg.Name, Simulator: t.sim, Config: simConfig(cfg)}, nil
	}

	search := optim.NewGridSearch(grid...)
	fmt.Printf("sweeping %d points on %s...\n", len(search.Points()), base.Name)
	points, err := search.Search(cmd.Context(), build, parallel)
	if err != nil {
		return err
	}

	ranked := optim.Rank(points, metric, maximize)
	top, _ := cmd.Flags().GetInt("top")
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}

	names := make([]string, 0, len(grid))
	for _, p := range grid {
		names = append(names, p.Name)
	}
	others := otherMetrics(points, metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", strings.Join(names, "\t"), strings.ToUpper(metric), strings.Join(others, "\t"))
	for _, p := range ranked {
		row := make([]string, 0, len(names)+1+len(others))
		for _, n := range names {
			row = append(row, fmt.Sprintf("%g", p.Params[n]))
		}
		row = append(row, fmt.Sprintf("%.6g", p.Metrics[metric]))
		for _, n := range others {
			row = append(row, fmt.Sprintf("%.4g", p.Metrics[n]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func otherMetrics(points []optim.Point, skip string) []string {
	if len(points) == 0 {
		return nil
	}
	var out []string
	for name := range points[0].Metrics {
		if name != skip {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
