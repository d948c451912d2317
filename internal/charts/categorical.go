package charts

import (
	"fmt"

	"github.com/KaramelBytes/churnscope/internal/analysis"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"github.com/KaramelBytes/churnscope/internal/layout"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// CategoricalCounts draws one count bar chart per named categorical column.
// Bars are ordered by count descending and capped at Style.MaxCategories.
func CategoricalCounts(ds *dataset.Dataset, names []string, st Style) (*Figure, error) {
	st = st.normalized()
	cell := cellWidth(len(names), st)
	return renderGrid(NameCategorical, "Categorical Attribute Counts", names, st, func(name string) (*plot.Plot, error) {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column")
		}
		tops := analysis.TopValues(valueCounts(col), st.MaxCategories)
		if len(tops) == 0 {
			return st.placeholder(name, "no data"), nil
		}
		labels := make([]string, len(tops))
		vals := make(plotter.Values, len(tops))
		for i, t := range tops {
			labels[i] = t.Value
			vals[i] = float64(t.Count)
		}
		p := st.newPanel(name, name, "Count")
		bars, err := plotter.NewBarChart(vals, vg.Points(barWidth(cell, len(tops), 1)))
		if err != nil {
			return nil, err
		}
		bars.Color = barColor
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(labels...)
		return p, nil
	})
}

// valueCounts tallies the display values of non-null cells.
func valueCounts(c *dataset.Column) map[string]int {
	counts := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		counts[c.Cell(i)]++
	}
	return counts
}

// cellWidth is the width in points of one grid cell for n panels.
func cellWidth(n int, st Style) float64 {
	cols := layout.Plan(n).Cols
	if cols == 0 {
		cols = 1
	}
	return st.WidthIn * 72 / float64(cols)
}

// barWidth sizes bars so groups of categories fit inside a cell.
func barWidth(cell float64, categories, groups int) float64 {
	w := cell * 0.6 / float64(categories*groups)
	if w > 40 {
		w = 40
	}
	if w < 2 {
		w = 2
	}
	return w
}
