package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/churnscope/internal/layout"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Artifact names, one per renderer.
const (
	NameCorrelation = "correlation_matrix"
	NameMissing     = "missing_values"
	NameCategorical = "categorical_plots"
	NameNumerical   = "numerical_plots"
	NameHistograms  = "histograms"
)

var (
	// ErrNoPanels is returned when a renderer has nothing to draw.
	ErrNoPanels = errors.New("no panels to render")
	// ErrClosed is returned when a released figure is used.
	ErrClosed = errors.New("figure is closed")
	// ErrSpanOverflow marks a panel whose value range does not fit in a float64.
	// The panel is drawn as a placeholder and listed in Figure.Skipped.
	ErrSpanOverflow = errors.New("value range exceeds float64 limits")
)

// Figure is one rendered chart. It owns an in-memory canvas until Close is called.
type Figure struct {
	Name   string
	Title  string
	Panels []string
	Grid   layout.Grid

	// Skipped maps subjects whose values could not be drawn to the reason.
	Skipped map[string]string

	canvas *vgimg.Canvas
}

func newFigure(name, title string, panels []string, g layout.Grid, w, h vg.Length, dpi int) *Figure {
	return &Figure{
		Name:   name,
		Title:  title,
		Panels: panels,
		Grid:   g,
		canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi)),
	}
}

// Closed reports whether the canvas was released.
func (f *Figure) Closed() bool { return f == nil || f.canvas == nil }

// Close releases the canvas. It is safe to call more than once.
func (f *Figure) Close() error {
	if f != nil {
		f.canvas = nil
	}
	return nil
}

// Pixels returns the raster size of the figure.
func (f *Figure) Pixels() (w, h int) {
	if f.Closed() {
		return 0, 0
	}
	b := f.canvas.Image().Bounds()
	return b.Dx(), b.Dy()
}

// WritePNG encodes the canvas as PNG.
func (f *Figure) WritePNG(w io.Writer) error {
	if f.Closed() {
		return ErrClosed
	}
	if len(f.Panels) == 0 {
		return ErrNoPanels
	}
	if _, err := (vgimg.PngCanvas{Canvas: f.canvas}).WriteTo(w); err != nil {
		return fmt.Errorf("png: %w", err)
	}
	return nil
}

// panelFunc builds the plot for one grid subject.
type panelFunc func(subject string) (*plot.Plot, error)

// renderGrid lays subjects out on a near-square grid under a figure heading.
// Inactive cells stay nil so plot.Align leaves them empty (no axes, no border).
func renderGrid(name, title string, subjects []string, st Style, build panelFunc) (*Figure, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoPanels)
	}
	g := layout.Plan(len(subjects))
	plots := make([][]*plot.Plot, g.Rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, g.Cols)
	}
	skipped := map[string]string{}
	for _, i := range g.Active() {
		p, err := build(subjects[i])
		if errors.Is(err, ErrSpanOverflow) {
			skipped[subjects[i]] = err.Error()
			p, err = st.placeholder(subjects[i], "range too wide"), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s panel %q: %w", name, subjects[i], err)
		}
		r, c := g.Cell(i)
		plots[r][c] = p
	}

	header := st.headerHeight()
	w := vg.Length(st.WidthIn) * vg.Inch
	h := vg.Length(st.PanelHeightIn)*vg.Inch*vg.Length(g.Rows) + header
	fig := newFigure(name, title, append([]string(nil), subjects...), g, w, h, st.DPI)
	if len(skipped) > 0 {
		fig.Skipped = skipped
	}

	dc := draw.New(fig.canvas)
	st.drawHeading(&dc, title)
	body := draw.Crop(dc, 0, 0, 0, -header)
	pad := vg.Points(st.TickSize * 1.5)
	tiles := draw.Tiles{
		Rows: g.Rows, Cols: g.Cols,
		PadX: pad, PadY: pad,
		PadLeft: pad / 2, PadRight: pad / 2, PadBottom: pad / 2,
	}
	canvases := plot.Align(plots, tiles, body)
	for _, i := range g.Active() {
		r, c := g.Cell(i)
		plots[r][c].Draw(canvases[r][c])
	}
	return fig, nil
}

// renderSingle draws one plot over the whole figure.
func renderSingle(name, title string, panels []string, st Style, p *plot.Plot, w, h vg.Length) *Figure {
	fig := newFigure(name, title, panels, layout.Plan(1), w, h, st.DPI)
	p.Draw(draw.New(fig.canvas))
	return fig
}
