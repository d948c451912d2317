package charts

import (
	"fmt"

	"github.com/KaramelBytes/churnscope/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// NumericBoxplots draws one boxplot per named numeric column over its non-null values.
func NumericBoxplots(ds *dataset.Dataset, names []string, st Style) (*Figure, error) {
	st = st.normalized()
	width := cellWidth(len(names), st) * 0.3
	if width > 80 {
		width = 80
	}
	return renderGrid(NameNumerical, "Numerical Attribute Boxplots", names, st, func(name string) (*plot.Plot, error) {
		col, ok := ds.Column(name)
		if !ok || col.Kind != dataset.KindNumeric {
			return nil, fmt.Errorf("not a numeric column")
		}
		vals := col.Floats()
		if len(vals) == 0 {
			return st.placeholder(name, "no data"), nil
		}
		if !finiteSpan(floats.Min(vals), floats.Max(vals)) {
			return nil, ErrSpanOverflow
		}
		p := st.newPanel(name, name, "Value")
		box, err := plotter.NewBoxPlot(vg.Points(width), 0, plotter.Values(vals))
		if err != nil {
			return nil, err
		}
		box.FillColor = boxColor
		p.Add(box)
		p.NominalX(name)
		return p, nil
	})
}
