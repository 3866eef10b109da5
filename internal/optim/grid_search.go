// Package optim sweeps configuration parameters over a grid and ranks the
// resulting runs by a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/aerotwin/internal/sim"
)

var ErrEmptyGrid = errors.New("optim: empty grid")

// Param is one swept parameter and its candidate values.
type Param struct {
	Name   string
	Values []float64
}

// ParseParam reads "path=v1,v2,...". The path may itself contain dots
// and spaces.
func ParseParam(s string) (Param, error) {
	idx := strings.LastIndex(s, "=")
	if idx <= 0 || idx == len(s)-1 {
		return Param{}, fmt.Errorf("optim: expected path=v1,v2,..., got %q", s)
	}
	p := Param{Name: s[:idx]}
	for _, field := range strings.Split(s[idx+1:], ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Param{}, fmt.Errorf("optim: %s: %w", p.Name, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

// Point is one evaluated grid cell.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
}

type GridSearch struct {
	params []Param
}

func NewGridSearch(params ...Param) *GridSearch {
	return &GridSearch{params: params}
}

// Points is the cartesian product of every parameter's values, the first
// parameter varying slowest.
func (g *GridSearch) Points() []map[string]float64 {
	if len(g.params) == 0 {
		return nil
	}
	var out []map[string]float64
	g.expand(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, maps.Clone(current))
		return
	}
	p := g.params[depth]
	for _, v := range p.Values {
		current[p.Name] = v
		g.expand(depth+1, current, out)
	}
	delete(current, p.Name)
}

// Search builds one job per grid point and runs them, at most limit at a
// time. Points come back in grid order.
func (g *GridSearch) Search(ctx context.Context, build func(params map[string]float64) (sim.Job, error), limit int) ([]Point, error) {
	grid := g.Points()
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}

	jobs := make([]sim.Job, len(grid))
	for i, params := range grid {
		job, err := build(params)
		if err != nil {
			return nil, fmt.Errorf("optim: point %v: %w", params, err)
		}
		jobs[i] = job
	}

	results, err := sim.RunAll(ctx, jobs, limit)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(grid))
	for i, params := range grid {
		points[i] = Point{Params: params, Metrics: results[i].Metrics}
	}
	return points, nil
}

// Rank orders points by metric, best first. Points missing the metric or
// holding NaN sort last.
func Rank(points []Point, metric string, maximize bool) []Point {
	ranked := slices.Clone(points)
	key := func(p Point) float64 {
		v, ok := p.Metrics[metric]
		if !ok || math.IsNaN(v) {
			return math.Inf(1)
		}
		if maximize {
			return -v
		}
		return v
	}
	sort.SliceStable(ranked, func(i, j int) bool { return key(ranked[i]) < key(ranked[j]) })
	return ranked
}
