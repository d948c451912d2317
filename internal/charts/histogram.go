package charts

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/churnscope/internal/analysis"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// TargetHistograms draws one panel per column except the target, split by target class.
// Numeric subjects share bins across classes; categorical subjects use grouped bars.
// The target must be binary: classes[0] is royal blue and classes[1] yellow.
func TargetHistograms(ds *dataset.Dataset, tgt *analysis.Target, st Style) (*Figure, error) {
	st = st.normalized()
	if tgt == nil {
		return nil, fmt.Errorf("%s: %w", NameHistograms, analysis.ErrTargetNotFound)
	}
	if err := tgt.CheckBinary(); err != nil {
		return nil, fmt.Errorf("%s: %w", NameHistograms, err)
	}
	if len(tgt.Classes) == 0 {
		return nil, fmt.Errorf("%s: target %q has no values: %w", NameHistograms, tgt.Name, ErrNoPanels)
	}
	target := ds.Columns[tgt.Index]
	classOf := make([]int, ds.Rows)
	for i := range classOf {
		classOf[i] = -1
		if !target.IsNull(i) {
			classOf[i] = tgt.ClassIndex(target.Cell(i))
		}
	}

	var subjects []string
	for i, c := range ds.Columns {
		if i != tgt.Index {
			subjects = append(subjects, c.Name)
		}
	}
	cell := cellWidth(len(subjects), st)
	return renderGrid(NameHistograms, "Histograms", subjects, st, func(name string) (*plot.Plot, error) {
		col, _ := ds.Column(name)
		p := st.newPanel(name, name, "Count")
		p.Legend.Top = true
		var drawn int
		if col.Kind == dataset.KindNumeric {
			layers, err := numericLayers(p, col, classOf, tgt, st)
			if err != nil {
				return nil, err
			}
			drawn = len(layers)
		} else {
			bars, err := categoricalGroups(p, col, classOf, tgt, st, cell)
			if err != nil {
				return nil, err
			}
			drawn = len(bars)
		}
		if drawn == 0 {
			return st.placeholder(name, "no data"), nil
		}
		return p, nil
	})
}

// numericLayers adds one translucent histogram per class over shared bin edges.
// Layer k is filled with classColors[k].
func numericLayers(p *plot.Plot, col *dataset.Column, classOf []int, tgt *analysis.Target, st Style) ([]*plotter.Histogram, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for i, v := range col.Nums {
		if col.IsNull(i) || classOf[i] < 0 {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		n++
	}
	if n == 0 {
		return nil, nil
	}
	bins := st.HistBins
	if bins <= 0 {
		bins = sturges(n)
	}
	if lo == hi {
		pad := math.Max(0.5, math.Abs(lo)*1e-9)
		lo, hi = lo-pad, hi+pad
		bins = 1
	}
	if !finiteSpan(lo, hi) {
		return nil, ErrSpanOverflow
	}
	width := (hi - lo) / float64(bins)
	layers := make([]*plotter.Histogram, 0, len(tgt.Classes))
	for k, class := range tgt.Classes {
		hb := make([]plotter.HistogramBin, bins)
		for b := range hb {
			hb[b] = plotter.HistogramBin{Min: lo + float64(b)*width, Max: lo + float64(b+1)*width}
		}
		for i, v := range col.Nums {
			if col.IsNull(i) || classOf[i] != k {
				continue
			}
			b := int((v - lo) / width)
			if b >= bins {
				b = bins - 1
			} else if b < 0 {
				b = 0
			}
			hb[b].Weight++
		}
		h := &plotter.Histogram{Bins: hb, Width: width, FillColor: translucent(classColors[k], 0x99)}
		h.LineStyle = plotter.DefaultLineStyle
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		p.Legend.Add(class, h)
		layers = append(layers, h)
	}
	return layers, nil
}

// categoricalGroups adds one bar series per class, offset side by side per category.
// Series k is colored classColors[k].
func categoricalGroups(p *plot.Plot, col *dataset.Column, classOf []int, tgt *analysis.Target, st Style, cell float64) ([]*plotter.BarChart, error) {
	total := map[string]int{}
	perClass := make([]map[string]int, len(tgt.Classes))
	for k := range perClass {
		perClass[k] = map[string]int{}
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) || classOf[i] < 0 {
			continue
		}
		v := col.Cell(i)
		total[v]++
		perClass[classOf[i]][v]++
	}
	tops := analysis.TopValues(total, st.MaxCategories)
	if len(tops) == 0 {
		return nil, nil
	}
	labels := make([]string, len(tops))
	for i, t := range tops {
		labels[i] = t.Value
	}
	w := vg.Points(barWidth(cell, len(tops), len(tgt.Classes)))
	series := make([]*plotter.BarChart, 0, len(tgt.Classes))
	for k, class := range tgt.Classes {
		vals := make(plotter.Values, len(tops))
		for i, t := range tops {
			vals[i] = float64(perClass[k][t.Value])
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return nil, err
		}
		bars.Color = classColors[k]
		bars.LineStyle.Width = 0
		bars.Offset = w * vg.Length(float64(k)-float64(len(tgt.Classes)-1)/2)
		p.Add(bars)
		p.Legend.Add(class, bars)
		series = append(series, bars)
	}
	p.NominalX(labels...)
	return series, nil
}

// sturges returns ceil(log2 n) + 1 bins.
func sturges(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}
