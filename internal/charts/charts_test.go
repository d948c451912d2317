package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/churnscope/internal/analysis"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func churnData(t *testing.T, rows int) *dataset.Dataset {
	t.Helper()
	cities := []string{"Paris", "Rome", "Berlin", "Madrid"}
	plans := []string{"basic", "gold"}
	var b strings.Builder
	b.WriteString("age,income,city,plan,churn\n")
	for i := 0; i < rows; i++ {
		churn := "no"
		if i%3 == 0 {
			churn = "yes"
		}
		income := fmt.Sprintf("%.1f", 20000+float64(i*37%5000)*3.5)
		if i%10 == 0 {
			income = ""
		}
		fmt.Fprintf(&b, "%d,%s,%s,%s,%s\n", 18+i%60, income, cities[i%len(cities)], plans[i%len(plans)], churn)
	}
	ds, err := dataset.LoadBytes("churn.csv", []byte(b.String()), dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func smallStyle() Style {
	st := DefaultStyle()
	st.WidthIn, st.PanelHeightIn, st.DPI = 6, 3, 30
	st.TitleSize, st.LabelSize, st.TickSize = 8, 6, 5
	return st
}

func decode(t *testing.T, f *Figure) (w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestMissingMaskFlagsExactNulls(t *testing.T) {
	body := "id,balance\n1,10\n2,\n3,30\n4,NA\n5,50\n6,60\n7,\n8,80\n9,90\n10,100\n"
	ds, err := dataset.LoadBytes("m.csv", []byte(body), dataset.DefaultOptions())
	require.NoError(t, err)

	mask := MissingMask(ds)
	require.Len(t, mask, 10)
	flagged := 0
	for _, row := range mask {
		require.Len(t, row, 2)
		assert.False(t, row[0])
		if row[1] {
			flagged++
		}
	}
	assert.Equal(t, 3, flagged)

	fig, err := Missingness(ds, smallStyle())
	require.NoError(t, err)
	defer fig.Close()
	assert.Equal(t, []string{"id", "balance"}, fig.Panels)
	w, h := decode(t, fig)
	assert.Equal(t, 180, w)
	assert.Equal(t, 180, h)
}

func TestCorrelationHeatmap(t *testing.T) {
	ds := churnData(t, 100)
	m := analysis.Correlate(analysis.Encode(ds))
	fig, err := Correlation(m, smallStyle())
	require.NoError(t, err)
	defer fig.Close()
	assert.Equal(t, ds.Names(), fig.Panels)
	w, h := decode(t, fig)
	assert.Equal(t, w, h)

	_, err = Correlation(&analysis.CorrMatrix{}, smallStyle())
	assert.ErrorIs(t, err, ErrNoPanels)
}

func TestGridRenderersPanels(t *testing.T) {
	ds := churnData(t, 100)
	num, cat := dataset.Classify(ds)
	require.Equal(t, []string{"age", "income"}, num)
	require.Equal(t, []string{"city", "plan", "churn"}, cat)

	fig, err := CategoricalCounts(ds, cat[:2], smallStyle())
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "plan"}, fig.Panels)
	assert.Equal(t, 1, fig.Grid.Rows)
	assert.Equal(t, 2, fig.Grid.Cols)
	decode(t, fig)
	fig.Close()

	fig, err = NumericBoxplots(ds, num, smallStyle())
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "income"}, fig.Panels)
	decode(t, fig)
	fig.Close()
}

func TestGridInactiveCellsAndHeight(t *testing.T) {
	ds, err := dataset.LoadBytes("n.csv", []byte("a,b,c\n1,2,3\n4,5,6\n7,8,\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	st := smallStyle()
	fig, err := NumericBoxplots(ds, ds.Names(), st)
	require.NoError(t, err)
	defer fig.Close()
	assert.Equal(t, 2, fig.Grid.Rows)
	assert.Equal(t, 2, fig.Grid.Cols)
	assert.Equal(t, []int{3}, fig.Grid.Inactive())
	_, h := fig.Pixels()
	assert.Greater(t, h, int(2*st.PanelHeightIn*float64(st.DPI)))
}

func TestEmptyInputs(t *testing.T) {
	ds := churnData(t, 10)
	_, err := CategoricalCounts(ds, nil, smallStyle())
	assert.ErrorIs(t, err, ErrNoPanels)
	_, err = NumericBoxplots(ds, []string{}, smallStyle())
	assert.ErrorIs(t, err, ErrNoPanels)

	empty, err := dataset.LoadBytes("e.csv", []byte("a,b\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	_, err = Missingness(empty, smallStyle())
	assert.ErrorIs(t, err, ErrNoPanels)

	allNull, err := dataset.LoadBytes("z.csv", []byte("a,b\n,1\n,2\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	fig, err := NumericBoxplots(allNull, []string{"a", "b"}, smallStyle())
	require.NoError(t, err)
	defer fig.Close()
	decode(t, fig)
}

func TestTargetHistogramsExcludeTarget(t *testing.T) {
	ds := churnData(t, 100)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	require.Equal(t, []string{"no", "yes"}, tgt.Classes)

	fig, err := TargetHistograms(ds, tgt, smallStyle())
	require.NoError(t, err)
	defer fig.Close()
	assert.Len(t, fig.Panels, len(ds.Columns)-1)
	assert.NotContains(t, fig.Panels, "churn")
	assert.Equal(t, []string{"age", "income", "city", "plan"}, fig.Panels)
	decode(t, fig)
}

func TestTargetHistogramsPreconditions(t *testing.T) {
	_, err := TargetHistograms(churnData(t, 10), nil, smallStyle())
	assert.ErrorIs(t, err, analysis.ErrTargetNotFound)

	ds, err := dataset.LoadBytes("m.csv", []byte("x,churn\n1,a\n2,b\n3,c\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	_, err = TargetHistograms(ds, tgt, smallStyle())
	assert.ErrorIs(t, err, analysis.ErrMultiClassTarget)

	ds, err = dataset.LoadBytes("n.csv", []byte("x,churn\n1,\n2,\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	tgt, err = analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	_, err = TargetHistograms(ds, tgt, smallStyle())
	assert.ErrorIs(t, err, ErrNoPanels)
}

func TestCloseReleasesCanvas(t *testing.T) {
	ds := churnData(t, 20)
	fig, err := Missingness(ds, smallStyle())
	require.NoError(t, err)
	require.False(t, fig.Closed())
	require.NoError(t, fig.Close())
	require.NoError(t, fig.Close())
	assert.True(t, fig.Closed())
	assert.ErrorIs(t, fig.WritePNG(&bytes.Buffer{}), ErrClosed)
}

func TestSturgesAndPalette(t *testing.T) {
	assert.Equal(t, 1, sturges(1))
	assert.Equal(t, 8, sturges(100))
	pal := coolwarm(5).Colors()
	require.Len(t, pal, 5)
	assert.NotEqual(t, pal[0], pal[4])
}

func TestOverflowingRangeDrawsPlaceholder(t *testing.T) {
	ds, err := dataset.LoadBytes("huge.csv", []byte("v,w,churn\n1e308,1,yes\n-1e308,2,no\n5,3,yes\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)

	done := make(chan struct{})
	var box, hist *Figure
	var boxErr, histErr error
	go func() {
		defer close(done)
		box, boxErr = NumericBoxplots(ds, []string{"v", "w"}, smallStyle())
		hist, histErr = TargetHistograms(ds, tgt, smallStyle())
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("renderers did not return for a column spanning the float64 range")
	}

	require.NoError(t, boxErr)
	defer box.Close()
	assert.Equal(t, map[string]string{"v": ErrSpanOverflow.Error()}, box.Skipped)
	decode(t, box)

	require.NoError(t, histErr)
	defer hist.Close()
	assert.Equal(t, map[string]string{"v": ErrSpanOverflow.Error()}, hist.Skipped)
	decode(t, hist)
}

func TestHugeConstantColumnHistogram(t *testing.T) {
	ds, err := dataset.LoadBytes("c.csv", []byte("v,churn\n1e308,yes\n1e308,no\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	fig, err := TargetHistograms(ds, tgt, smallStyle())
	require.NoError(t, err)
	defer fig.Close()
	assert.Empty(t, fig.Skipped)
	decode(t, fig)
}

func classesOf(ds *dataset.Dataset, tgt *analysis.Target) []int {
	out := make([]int, ds.Rows)
	col := ds.Columns[tgt.Index]
	for i := range out {
		out[i] = -1
		if !col.IsNull(i) {
			out[i] = tgt.ClassIndex(col.Cell(i))
		}
	}
	return out
}

func TestHistogramClassColors(t *testing.T) {
	require.NotEqual(t, classColors[0], classColors[1])
	ds := churnData(t, 60)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	require.Equal(t, []string{"no", "yes"}, tgt.Classes)
	st := smallStyle().normalized()
	classOf := classesOf(ds, tgt)

	age, _ := ds.Column("age")
	layers, err := numericLayers(st.newPanel("age", "age", "Count"), age, classOf, tgt, st)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	for k, h := range layers {
		assert.Equal(t, translucent(classColors[k], 0x99), h.FillColor, "layer %d", k)
	}

	city, _ := ds.Column("city")
	bars, err := categoricalGroups(st.newPanel("city", "city", "Count"), city, classOf, tgt, st, cellWidth(4, st))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	for k, b := range bars {
		assert.Equal(t, classColors[k], b.Color, "series %d", k)
	}
	assert.NotEqual(t, bars[0].Offset, bars[1].Offset)
}

func TestHistogramSingleClassUsesFirstColor(t *testing.T) {
	ds, err := dataset.LoadBytes("one.csv", []byte("age,plan,churn\n30,gold,yes\n41,basic,yes\n52,gold,yes\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	require.Equal(t, []string{"yes"}, tgt.Classes)
	st := smallStyle().normalized()
	classOf := classesOf(ds, tgt)

	age, _ := ds.Column("age")
	layers, err := numericLayers(st.newPanel("age", "age", "Count"), age, classOf, tgt, st)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, translucent(classColors[0], 0x99), layers[0].FillColor)

	plan, _ := ds.Column("plan")
	bars, err := categoricalGroups(st.newPanel("plan", "plan", "Count"), plan, classOf, tgt, st, cellWidth(2, st))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, classColors[0], bars[0].Color)
}

// hasPixel reports whether img contains a pixel of exactly c.
func hasPixel(img image.Image, c color.Color) bool {
	r0, g0, b0, _ := c.RGBA()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0xffff && r>>8 == r0>>8 && g>>8 == g0>>8 && b>>8 == b0>>8 {
				return true
			}
		}
	}
	return false
}

func TestHistogramPNGShowsBothClassColors(t *testing.T) {
	ds, err := dataset.LoadBytes("cat.csv", []byte("plan,churn\nbasic,yes\nbasic,no\ngold,no\ngold,no\nbasic,yes\ngold,yes\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	tgt, err := analysis.ResolveTarget(ds, "")
	require.NoError(t, err)
	st := smallStyle()
	st.DPI = 72
	fig, err := TargetHistograms(ds, tgt, st)
	require.NoError(t, err)
	defer fig.Close()

	var buf bytes.Buffer
	require.NoError(t, fig.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.True(t, hasPixel(img, classColors[0]), "no pixel in the first class color")
	assert.True(t, hasPixel(img, classColors[1]), "no pixel in the second class color")
}
