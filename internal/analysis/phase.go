package analysis

import (
	"math"
	"strings"
)

// Point is one sample of a phase portrait.
type Point struct{ X, Y float64 }

// PhasePortrait pairs two equally long series point by point, dropping
// non-finite pairs.
func PhasePortrait(xs, ys []float64) []Point {
	n := min(len(xs), len(ys))
	points := make([]Point, 0, n)
	for i := range n {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		points = append(points, Point{xs[i], ys[i]})
	}
	return points
}

// PortraitToASCII renders points as a scatter plot. Early points are
// drawn '.', middle 'o' and late '•'; zero axes are drawn where visible.
func PortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	var xr, yr axis
	xr.fit(points, func(p Point) float64 { return p.X })
	yr.fit(points, func(p Point) float64 { return p.Y })

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	top := height - 1

	if xr.contains(0) {
		col := xr.cell(0, width)
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if yr.contains(0) {
		row := top - yr.cell(0, height)
		for col := range grid[row] {
			grid[row][col] = '─'
		}
	}

	third := len(points) / 3
	for i, p := range points {
		mark := '•'
		if i < third {
			mark = '.'
		} else if i < 2*third {
			mark = 'o'
		}
		grid[top-yr.cell(p.Y, height)][xr.cell(p.X, width)] = mark
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// axis is a plotted range with 10% padding either side.
type axis struct{ lo, hi float64 }

func (a *axis) fit(points []Point, get func(Point) float64) {
	a.lo, a.hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		a.lo, a.hi = math.Min(a.lo, get(p)), math.Max(a.hi, get(p))
	}
	pad := (a.hi - a.lo) * 0.1
	if pad == 0 {
		pad = 0.1
	}
	a.lo -= pad
	a.hi += pad
}

func (a axis) contains(v float64) bool { return a.lo <= v && v <= a.hi }

// cell maps v to one of n cells.
func (a axis) cell(v float64, n int) int {
	return int((v - a.lo) / (a.hi - a.lo) * float64(n-1))
}
