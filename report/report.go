// Package report defines the report model the exporter consumes, and a
// small in-memory implementation of it.
package report

import (
	"image/color"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/raster"
)

// Report is a prepared, paginated report.
type Report interface {
	Name() string
	Pages() []Page
}

// Page is one prepared report page. Sizes are in 96-dpi pixels.
type Page interface {
	Size() (width, height float64)
	Margins() Margins
	// Fill is the page background; nil means white.
	Fill() color.Color
	Border() *Border
	Watermark() *Watermark
	Components() []Component
}

// Component is a drawable object on a page. Bounds are relative to the
// page's content area (inside the margins).
type Component interface {
	Bounds() coords.Rect
	Draw(pc *raster.PaintContext) error
}

// Linker is implemented by components that carry a hyperlink. An empty
// target means no link.
type Linker interface {
	LinkTarget() string
}

type Margins struct {
	Left, Top, Right, Bottom float64
}

// Border frames the content area of a page.
type Border struct {
	Color color.Color
	Width float64
}

// Draw strokes the border inside r.
func (b *Border) Draw(pc *raster.PaintContext, r coords.Rect) error {
	if b == nil || b.Width <= 0 {
		return nil
	}
	col := b.Color
	if col == nil {
		col = color.Black
	}
	return pc.StrokeRect(r, b.Width, col)
}

// Watermark is page-wide text and/or an image drawn below or above the
// components.
type Watermark struct {
	Text     string
	FontSize float64
	Color    color.Color
	// Angle in degrees, counterclockwise.
	Angle float64
	Image ImageSource
	OnTop bool
}

// Draw paints the watermark centred on the page. pc must be a page-origin
// context.
func (w *Watermark) Draw(pc *raster.PaintContext) error {
	if w == nil {
		return nil
	}
	if w.Image != nil {
		img, err := w.Image.Image()
		if err != nil {
			return err
		}
		if err := pc.DrawCenteredImage(img); err != nil {
			return err
		}
	}
	if w.Text == "" {
		return nil
	}
	col := w.Color
	if col == nil {
		col = color.NRGBA{0x80, 0x80, 0x80, 0x60}
	}
	size := w.FontSize
	if size <= 0 {
		size = 60
	}
	return pc.DrawRotatedText(w.Text, w.Angle, raster.TextStyle{Size: size, Color: col})
}

// Memory is an in-memory Report.
type Memory struct {
	Title string
	Items []*MemoryPage
}

func (m *Memory) Name() string { return m.Title }

func (m *Memory) Pages() []Page {
	out := make([]Page, len(m.Items))
	for i, p := range m.Items {
		out[i] = p
	}
	return out
}

// MemoryPage is an in-memory Page.
type MemoryPage struct {
	Width, Height float64
	Margin        Margins
	Background    color.Color
	Frame         *Border
	Mark          *Watermark
	Objects       []Component
}

func (p *MemoryPage) Size() (float64, float64) { return p.Width, p.Height }
func (p *MemoryPage) Margins() Margins          { return p.Margin }
func (p *MemoryPage) Fill() color.Color         { return p.Background }
func (p *MemoryPage) Border() *Border           { return p.Frame }
func (p *MemoryPage) Watermark() *Watermark     { return p.Mark }
func (p *MemoryPage) Components() []Component   { return p.Objects }
