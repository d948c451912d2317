package charts

import (
	"fmt"

	"github.com/KaramelBytes/churnscope/internal/analysis"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first column on top.
type corrGrid struct{ m *analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int) { n := len(g.m.Columns); return n, n }
func (g corrGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.Values[n-1-r][c]
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// Correlation renders the matrix as a single coolwarm heatmap over [-1, 1].
// Undefined cells are drawn gray.
func Correlation(m *analysis.CorrMatrix, st Style) (*Figure, error) {
	st = st.normalized()
	if m == nil || len(m.Columns) == 0 {
		return nil, fmt.Errorf("%s: %w", NameCorrelation, ErrNoPanels)
	}
	n := len(m.Columns)
	p := st.newPanel("Correlation Matrix", "", "")
	hm := plotter.NewHeatMap(corrGrid{m}, coolwarm(65))
	hm.Min, hm.Max = -1, 1
	hm.NaN = nanColor
	p.Add(hm)
	p.NominalX(m.Columns...)
	rev := make([]string, n)
	for i, c := range m.Columns {
		rev[n-1-i] = c
	}
	p.NominalY(rev...)

	side := 0.45*float64(n) + 4
	if side < 6 {
		side = 6
	}
	if side > st.WidthIn {
		side = st.WidthIn
	}
	size := vg.Length(side) * vg.Inch
	return renderSingle(NameCorrelation, "Correlation Matrix", append([]string(nil), m.Columns...), st, p, size, size), nil
}
