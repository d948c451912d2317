// Package layout plans near-square subplot grids.
package layout

import "math"

// Grid is a rows x cols arrangement holding N items.
type Grid struct {
	Rows int
	Cols int
	N    int
}

// Plan returns the grid for n items: cols = ceil(sqrt(n)), rows = ceil(n/cols).
// n <= 0 yields the zero grid, which has no cells at all.
func Plan(n int) Grid {
	if n <= 0 {
		return Grid{}
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	// guard against sqrt rounding for perfect squares
	for (cols-1)*(cols-1) >= n {
		cols--
	}
	for cols*cols < n {
		cols++
	}
	rows := (n + cols - 1) / cols
	return Grid{Rows: rows, Cols: cols, N: n}
}

// Cells is the total cell count.
func (g Grid) Cells() int { return g.Rows * g.Cols }

// Active returns the indices of cells that hold an item.
func (g Grid) Active() []int {
	out := make([]int, 0, g.N)
	for i := 0; i < g.N; i++ {
		out = append(out, i)
	}
	return out
}

// Inactive returns the indices of trailing cells that must not render content.
func (g Grid) Inactive() []int {
	var out []int
	for i := g.N; i < g.Cells(); i++ {
		out = append(out, i)
	}
	return out
}

// Cell maps a flat index to its row and column (row-major).
func (g Grid) Cell(i int) (row, col int) {
	if g.Cols == 0 {
		return 0, 0
	}
	return i / g.Cols, i % g.Cols
}

// IsActive reports whether flat index i holds an item.
func (g Grid) IsActive(i int) bool { return i >= 0 && i < g.N }
