package builder

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/raster"
	"github.com/wudi/pdfexport/report"
)

// ReportBuilder provides a fluent API for report construction.
type ReportBuilder interface {
	SetName(name string) ReportBuilder
	NewPage(width, height float64) PageBuilder
	Build() (*report.Memory, error)
}

// PageBuilder provides a fluent API for page construction. Coordinates are
// 96-dpi pixels relative to the content area, y growing downwards.
type PageBuilder interface {
	SetMargins(left, top, right, bottom float64) PageBuilder
	SetBackground(c Color) PageBuilder
	SetBorder(c Color, width float64) PageBuilder
	SetWatermark(w WatermarkOptions) PageBuilder
	DrawText(text string, x, y, width, height float64, opts TextOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	DrawImage(src report.ImageSource, x, y, width, height float64, opts ImageOptions) PageBuilder
	DrawTable(table Table, opts TableOptions) PageBuilder
	Finish() ReportBuilder
}

// Color is an RGB colour with components in [0, 1]. A zero A means opaque.
type Color struct {
	R, G, B float64
	A       float64
}

func (c Color) rgba() color.NRGBA {
	a := c.A
	if a == 0 {
		a = 1
	}
	return color.NRGBA{R: unit(c.R), G: unit(c.G), B: unit(c.B), A: unit(a)}
}

func unit(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// TextOptions configures text drawing.
type TextOptions struct {
	FontSize   float64
	Color      Color
	Background *Color
	Align      raster.Align
	Hyperlink  string
}

// RectOptions configures rectangle drawing (defaults to stroke if neither
// fill nor stroke is set).
type RectOptions struct {
	FillColor   Color
	StrokeColor Color
	LineWidth   float64
	Fill        bool
	Stroke      bool
}

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
}

// ImageOptions configures image drawing.
type ImageOptions struct {
	Hyperlink string
}

// WatermarkOptions configures the page watermark.
type WatermarkOptions struct {
	Text     string
	FontSize float64
	Color    *Color
	Angle    float64
	Image    report.ImageSource
	OnTop    bool
}

var errInvalidPageSize = errors.New("page size must be positive")

type builderImpl struct {
	name  string
	pages []*report.MemoryPage
	err   error
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *report.MemoryPage
}

// NewBuilder constructs a ReportBuilder.
func NewBuilder() ReportBuilder { return &builderImpl{} }

func (b *builderImpl) SetName(name string) ReportBuilder {
	b.name = name
	return b
}

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	if (w <= 0 || h <= 0) && b.err == nil {
		b.err = fmt.Errorf("page %d: %w (%v x %v)", len(b.pages)+1, errInvalidPageSize, w, h)
	}
	p := &report.MemoryPage{Width: w, Height: h}
	b.pages = append(b.pages, p)
	return &pageBuilderImpl{parent: b, page: p}
}

func (b *builderImpl) Build() (*report.Memory, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &report.Memory{Title: b.name, Items: b.pages}, nil
}

func (p *pageBuilderImpl) SetMargins(left, top, right, bottom float64) PageBuilder {
	p.page.Margin = report.Margins{Left: left, Top: top, Right: right, Bottom: bottom}
	return p
}

func (p *pageBuilderImpl) SetBackground(c Color) PageBuilder {
	p.page.Background = c.rgba()
	return p
}

func (p *pageBuilderImpl) SetBorder(c Color, width float64) PageBuilder {
	p.page.Frame = &report.Border{Color: c.rgba(), Width: width}
	return p
}

func (p *pageBuilderImpl) SetWatermark(w WatermarkOptions) PageBuilder {
	wm := &report.Watermark{
		Text:     w.Text,
		FontSize: w.FontSize,
		Angle:    w.Angle,
		Image:    w.Image,
		OnTop:    w.OnTop,
	}
	if w.Color != nil {
		wm.Color = w.Color.rgba()
	}
	p.page.Mark = wm
	return p
}

func (p *pageBuilderImpl) DrawText(text string, x, y, width, height float64, opts TextOptions) PageBuilder {
	t := &report.TextObject{
		Rect:      coords.Rect{X: x, Y: y, W: width, H: height},
		Text:      text,
		FontSize:  opts.FontSize,
		Color:     opts.Color.rgba(),
		Align:     opts.Align,
		Hyperlink: opts.Hyperlink,
	}
	if opts.Background != nil {
		t.Fill = opts.Background.rgba()
	}
	p.page.Objects = append(p.page.Objects, t)
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	r := &report.RectObject{Rect: coords.Rect{X: x, Y: y, W: width, H: height}}
	if !opts.Fill && !opts.Stroke {
		opts.Stroke = true
	}
	if opts.Fill {
		r.Fill = opts.FillColor.rgba()
	}
	if opts.Stroke {
		r.Stroke = opts.StrokeColor.rgba()
		r.StrokeWidth = opts.LineWidth
		if r.StrokeWidth == 0 {
			r.StrokeWidth = 1
		}
	}
	p.page.Objects = append(p.page.Objects, r)
	return p
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	l := &report.LineObject{
		Rect:     coords.Rect{X: math.Min(x1, x2), Y: math.Min(y1, y2), W: math.Abs(x2 - x1), H: math.Abs(y2 - y1)},
		Color:    opts.StrokeColor.rgba(),
		Width:    opts.LineWidth,
		Diagonal: (x2-x1)*(y2-y1) < 0,
	}
	p.page.Objects = append(p.page.Objects, l)
	return p
}

func (p *pageBuilderImpl) DrawImage(src report.ImageSource, x, y, width, height float64, opts ImageOptions) PageBuilder {
	p.page.Objects = append(p.page.Objects, &report.PictureObject{
		Rect:      coords.Rect{X: x, Y: y, W: width, H: height},
		Source:    src,
		Hyperlink: opts.Hyperlink,
	})
	return p
}

func (p *pageBuilderImpl) Finish() ReportBuilder { return p.parent }

// continuation starts a page with the same size and decoration as p.
func (p *pageBuilderImpl) continuation() *pageBuilderImpl {
	src := p.page
	np := &report.MemoryPage{
		Width:      src.Width,
		Height:     src.Height,
		Margin:     src.Margin,
		Background: src.Background,
		Frame:      src.Frame,
		Mark:       src.Mark,
	}
	p.parent.pages = append(p.parent.pages, np)
	return &pageBuilderImpl{parent: p.parent, page: np}
}
