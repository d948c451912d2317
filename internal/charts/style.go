// Package charts renders the diagnostic figures of a dataset with gonum/plot.
// Every renderer owns its canvas; callers release it with Figure.Close.
package charts

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Style is the visual contract shared by all renderers.
type Style struct {
	WidthIn       float64 // figure width, inches
	PanelHeightIn float64 // height of one grid row, inches
	DPI           int
	TitleSize     float64 // points
	LabelSize     float64
	TickSize      float64
	// MaxCategories caps the bars drawn per categorical panel.
	MaxCategories int
	// HistBins fixes the histogram bin count; 0 selects Sturges' rule.
	HistBins int
}

// DefaultStyle mirrors the config defaults.
func DefaultStyle() Style {
	return Style{
		WidthIn:       15,
		PanelHeightIn: 5,
		DPI:           72,
		TitleSize:     18,
		LabelSize:     14,
		TickSize:      12,
		MaxCategories: 20,
	}
}

func (s Style) normalized() Style {
	d := DefaultStyle()
	if s.WidthIn <= 0 {
		s.WidthIn = d.WidthIn
	}
	if s.PanelHeightIn <= 0 {
		s.PanelHeightIn = d.PanelHeightIn
	}
	if s.DPI <= 0 {
		s.DPI = d.DPI
	}
	if s.TitleSize <= 0 {
		s.TitleSize = d.TitleSize
	}
	if s.LabelSize <= 0 {
		s.LabelSize = d.LabelSize
	}
	if s.TickSize <= 0 {
		s.TickSize = d.TickSize
	}
	if s.MaxCategories <= 0 {
		s.MaxCategories = d.MaxCategories
	}
	return s
}

// headerHeight is the strip reserved above a grid for the figure title.
func (s Style) headerHeight() vg.Length {
	return vg.Points(s.TitleSize+6) * 1.6
}

// newPanel returns a plot configured with the shared fonts and rotated x tick labels.
func (s Style) newPanel(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(s.TitleSize)
	p.Title.Padding = vg.Points(s.TitleSize / 2)
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.X.Label.TextStyle.Font.Size = vg.Points(s.LabelSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(s.LabelSize)
	p.X.Tick.Label.Font.Size = vg.Points(s.TickSize)
	p.Y.Tick.Label.Font.Size = vg.Points(s.TickSize)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.TextStyle.Font.Size = vg.Points(s.TickSize)
	return p
}

// drawHeading writes the figure title centred at the top of c.
func (s Style) drawHeading(c *draw.Canvas, title string) {
	if title == "" {
		return
	}
	sty := text.Style{
		Color:   textColor,
		Font:    font.From(plot.DefaultFont, vg.Points(s.TitleSize+4)),
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}
	c.FillText(sty, vg.Point{X: c.Center().X, Y: c.Max.Y - vg.Points(4)}, title)
}

// placeholder renders a titled panel without axes for subjects that cannot be plotted.
func (s Style) placeholder(title, note string) *plot.Plot {
	p := s.newPanel(title+" ("+note+")", "", "")
	p.HideAxes()
	return p
}

// finiteSpan reports whether hi-lo is a finite number. Axis tick search never
// terminates on an infinite range.
func finiteSpan(lo, hi float64) bool {
	d := hi - lo
	return !math.IsInf(d, 0) && !math.IsNaN(d)
}
