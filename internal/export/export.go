// Package export renders the visible part of a mind-map to PNG or SVG.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/npratt/mindmap/internal/mindmap"
)

var (
	// ErrNothingToExport is returned when the view has no positioned node.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrUnknownFormat is returned for formats other than png and svg.
	ErrUnknownFormat = errors.New("unknown export format")
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat converts a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Default export settings.
const (
	DefaultPixelRatio = 3.0
	DefaultPadding    = 24.0
	DefaultFontSize   = 13.0

	// maxPixels caps the raster size; the pixel ratio is lowered to fit.
	maxPixels = 64 << 20
)

// Options controls rendering.
type Options struct {
	PixelRatio float64 // Raster scale factor, PNG only
	Padding    float64 // Margin around the bounding box, in layout units
	FontSize   float64 // Label size, in layout units
	Theme      Theme
}

// DefaultOptions returns the default export options.
func DefaultOptions() Options {
	return Options{
		PixelRatio: DefaultPixelRatio,
		Padding:    DefaultPadding,
		FontSize:   DefaultFontSize,
		Theme:      DefaultTheme(),
	}
}

// normalize fills zero values with defaults.
func (o Options) normalize() Options {
	if o.PixelRatio <= 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme()
	}
	return o
}

// Render writes the visible subgraph of sub, positioned by layout, to w in
// the requested format. It returns the number of bytes written.
func Render(w io.Writer, sub mindmap.Subgraph, layout *mindmap.Layout, format Format, opts Options) (int, error) {
	if layout.Empty() {
		return 0, ErrNothingToExport
	}
	opts = opts.normalize()
	scene := newScene(sub, layout, opts)

	cw := &countingWriter{w: w}
	var err error
	switch format {
	case FormatPNG:
		err = renderPNG(cw, scene, opts)
	case FormatSVG:
		err = renderSVG(cw, scene, opts)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return cw.n, fmt.Errorf("render %s: %w", format, err)
	}
	return cw.n, nil
}

// RenderView renders a session snapshot.
func RenderView(w io.Writer, v mindmap.View, format Format, opts Options) (int, error) {
	return Render(w, v.Subgraph, v.Layout, format, opts)
}

// DataURI renders the view as PNG and returns it as a data: URI.
func DataURI(sub mindmap.Subgraph, layout *mindmap.Layout, opts Options) (string, error) {
	return FormatDataURI(sub, layout, FormatPNG, opts)
}

// FormatDataURI renders the view in format and returns it as a base64
// data: URI with the format's MIME type.
func FormatDataURI(sub mindmap.Subgraph, layout *mindmap.Layout, format Format, opts Options) (string, error) {
	var buf bytes.Buffer
	if _, err := Render(&buf, sub, layout, format, opts); err != nil {
		return "", err
	}
	return "data:" + format.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FileName returns "<topic>.<format>" with characters unsafe in file names
// replaced. An empty topic yields "mindmap".
func FileName(topic string, format Format) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(topic) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), " .")
	if name == "" {
		name = "mindmap"
	}
	return name + "." + string(format)
}

// WriteFile renders into dir/FileName(topic, format). The file is only
// created once rendering succeeded.
func WriteFile(dir, topic string, sub mindmap.Subgraph, layout *mindmap.Layout, format Format, opts Options) (string, int, error) {
	var buf bytes.Buffer
	n, err := Render(&buf, sub, layout, format, opts)
	if err != nil {
		return "", 0, err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(topic, format))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", 0, fmt.Errorf("write export: %w", err)
	}
	return path, n, nil
}

// countingWriter counts bytes and keeps the first write error, since the
// SVG canvas does not report errors itself.
type countingWriter struct {
	w   io.Writer
	n   int
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += n
	c.err = err
	return n, err
}
