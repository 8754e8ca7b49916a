package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// svgCharWidth approximates the advance of one label rune relative to the
// font size; SVG viewers lay out the text themselves.
const svgCharWidth = 0.6

func renderSVG(w *countingWriter, s scene, opts Options) error {
	renderSVGTo(w, s, opts)
	return w.err
}

func renderSVGTo(w io.Writer, s scene, opts Options) {
	t := opts.Theme
	width, height := int(math.Ceil(s.Width)), int(math.Ceil(s.Height))

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title("mind-map")
	canvas.Rect(0, 0, width, height, "fill:"+css(t.Background))

	canvas.Gstyle(fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", css(t.Edge)))
	for _, c := range s.Connectors {
		canvas.Path(fmt.Sprintf("M %.1f %.1f C %.1f %.1f %.1f %.1f %.1f %.1f",
			c.X1, c.Y1, c.C1X, c.C1Y, c.C2X, c.C2Y, c.X2, c.Y2))
	}
	canvas.Gend()

	for _, c := range s.Connectors {
		canvas.Path(trianglePath(c.arrowHead()), "fill:"+css(t.Edge))
	}

	canvas.Gstyle(fmt.Sprintf("font-family:system-ui,sans-serif;font-size:%.0fpx", opts.FontSize))
	for _, b := range s.Boxes {
		fill, stroke, text := b.colors(t)
		canvas.Roundrect(round(b.X), round(b.Y), round(b.W), round(b.H), cornerRadius, cornerRadius,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f", css(fill), css(stroke), strokeWidth(b)))

		label := fitLabel(b.Label, b.labelWidth(), func(s string) float64 {
			return float64(len([]rune(s))) * opts.FontSize * svgCharWidth
		})
		canvas.Text(round(b.X+8), round(b.Y+b.H/2+opts.FontSize*0.35), label, "fill:"+css(text))

		if tri, ok := b.marker(); ok {
			canvas.Path(trianglePath(tri), "fill:"+css(stroke))
		}
	}
	canvas.Gend()

	canvas.End()
}

func trianglePath(tri [3][2]float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %.1f %.1f L %.1f %.1f L %.1f %.1f Z",
		tri[0][0], tri[0][1], tri[1][0], tri[1][1], tri[2][0], tri[2][1])
	return b.String()
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func round(f float64) int {
	return int(math.Round(f))
}
