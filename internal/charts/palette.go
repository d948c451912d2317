package charts

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	textColor = color.Black
	// nanColor fills correlation cells that are undefined.
	nanColor = mustHex("#bdbdbd")

	// class colors for the first and second target class
	classColors = []colorful.Color{mustHex("#4169e1"), mustHex("#ffff00")}

	presentColor = mustHex("#a6cee3")
	missingColor = mustHex("#b15928")

	barColor = mustHex("#4c72b0")
	boxColor = mustHex("#dd8452")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// gradient is a fixed list of colors usable as a gonum palette.Palette.
type gradient []color.Color

func (g gradient) Colors() []color.Color { return g }

// coolwarm builds an n-step diverging blue/white/red palette interpolated in Lab space.
func coolwarm(n int) gradient {
	if n < 3 {
		n = 3
	}
	cool := colorful.Color{R: 0.230, G: 0.299, B: 0.754}
	mid := colorful.Color{R: 0.865, G: 0.865, B: 0.865}
	warm := colorful.Color{R: 0.706, G: 0.016, B: 0.150}
	out := make(gradient, n)
	half := float64(n-1) / 2
	for i := 0; i < n; i++ {
		t := float64(i)
		var c colorful.Color
		if t <= half {
			c = cool.BlendLab(mid, t/half)
		} else {
			c = mid.BlendLab(warm, (t-half)/half)
		}
		out[i] = c.Clamped()
	}
	return out
}

// translucent returns c with the given alpha, for overlapping histogram layers.
func translucent(c colorful.Color, alpha uint8) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}
