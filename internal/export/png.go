package export

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce sync.Once
	goFont   *opentype.Font
	fontErr  error
)

// labelFace returns the Go Regular face at size pixels.
func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	return opentype.NewFace(goFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// rasterScale returns the pixel ratio, lowered if the image would exceed maxPixels.
func rasterScale(s scene, ratio float64) float64 {
	if px := s.Width * s.Height * ratio * ratio; px > maxPixels {
		ratio *= math.Sqrt(maxPixels / px)
	}
	return ratio
}

func renderPNG(w io.Writer, s scene, opts Options) error {
	r := rasterScale(s, opts.PixelRatio)
	dc := gg.NewContext(int(math.Ceil(s.Width*r)), int(math.Ceil(s.Height*r)))

	face, err := labelFace(opts.FontSize * r)
	if err != nil {
		return err
	}
	defer face.Close()
	dc.SetFontFace(face)

	t := opts.Theme
	dc.SetColor(t.Background)
	dc.Clear()

	for _, c := range s.Connectors {
		dc.SetColor(t.Edge)
		dc.SetLineWidth(1.5 * r)
		dc.MoveTo(c.X1*r, c.Y1*r)
		dc.CubicTo(c.C1X*r, c.C1Y*r, c.C2X*r, c.C2Y*r, c.X2*r, c.Y2*r)
		dc.Stroke()
		fillTriangle(dc, c.arrowHead(), r, t.Edge)
	}

	for _, b := range s.Boxes {
		fill, stroke, text := b.colors(t)
		x, y, bw, bh := b.X*r, b.Y*r, b.W*r, b.H*r

		dc.SetColor(fill)
		dc.DrawRoundedRectangle(x, y, bw, bh, cornerRadius*r)
		dc.Fill()

		dc.SetColor(stroke)
		dc.SetLineWidth(strokeWidth(b) * r)
		dc.DrawRoundedRectangle(x, y, bw, bh, cornerRadius*r)
		dc.Stroke()

		label := fitLabel(b.Label, b.labelWidth()*r, func(s string) float64 {
			lw, _ := dc.MeasureString(s)
			return lw
		})
		dc.SetColor(text)
		dc.DrawStringAnchored(label, x+8*r, y+bh/2, 0, 0.35)

		if tri, ok := b.marker(); ok {
			fillTriangle(dc, tri, r, stroke)
		}
	}

	return png.Encode(w, dc.Image())
}

func fillTriangle(dc *gg.Context, tri [3][2]float64, r float64, c color.RGBA) {
	dc.SetColor(c)
	dc.MoveTo(tri[0][0]*r, tri[0][1]*r)
	dc.LineTo(tri[1][0]*r, tri[1][1]*r)
	dc.LineTo(tri[2][0]*r, tri[2][1]*r)
	dc.ClosePath()
	dc.Fill()
}

func strokeWidth(b box) float64 {
	if b.Current {
		return 2.5
	}
	if b.OnPath {
		return 1.5
	}
	return 1
}
