package charts

import (
	"fmt"

	"github.com/KaramelBytes/churnscope/internal/dataset"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// MissingMask returns a rows x columns matrix with true where a cell is null.
func MissingMask(ds *dataset.Dataset) [][]bool {
	mask := make([][]bool, ds.Rows)
	for i := range mask {
		row := make([]bool, len(ds.Columns))
		for j, c := range ds.Columns {
			row[j] = c.IsNull(i)
		}
		mask[i] = row
	}
	return mask
}

// maskGrid draws the first data row at the top of the heatmap.
type maskGrid struct {
	mask [][]bool
	cols int
}

func (g maskGrid) Dims() (c, r int) { return g.cols, len(g.mask) }
func (g maskGrid) Z(c, r int) float64 {
	if g.mask[len(g.mask)-1-r][c] {
		return 1
	}
	return 0
}
func (g maskGrid) X(c int) float64 { return float64(c) }
func (g maskGrid) Y(r int) float64 { return float64(r) }

// Missingness renders the null mask of the dataset as a two-color heatmap,
// one column per dataset column and one row per record.
func Missingness(ds *dataset.Dataset, st Style) (*Figure, error) {
	st = st.normalized()
	if ds == nil || len(ds.Columns) == 0 || ds.Rows == 0 {
		return nil, fmt.Errorf("%s: %w", NameMissing, ErrNoPanels)
	}
	p := st.newPanel("Missing Values", "", "")
	hm := plotter.NewHeatMap(maskGrid{mask: MissingMask(ds), cols: len(ds.Columns)}, gradient{presentColor, missingColor})
	hm.Min, hm.Max = 0, 1
	hm.Rasterized = true
	p.Add(hm)
	p.NominalX(ds.Names()...)
	p.HideY()

	w := vg.Length(st.WidthIn) * vg.Inch
	h := vg.Length(st.PanelHeightIn*2) * vg.Inch
	return renderSingle(NameMissing, "Missing Values", ds.Names(), st, p, w, h), nil
}
