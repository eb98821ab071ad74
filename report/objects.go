package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	// Decoders for PictureObject sources.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/raster"
)

// TextObject draws a block of text. Page macros such as [Page#] are
// expanded at draw time.
type TextObject struct {
	Rect      coords.Rect
	Text      string
	FontSize  float64
	Color     color.Color
	Fill      color.Color
	Align     raster.Align
	Hyperlink string
}

func (t *TextObject) Bounds() coords.Rect { return t.Rect }

func (t *TextObject) Draw(pc *raster.PaintContext) error {
	if t.Fill != nil {
		if err := pc.FillRect(t.Rect, t.Fill); err != nil {
			return err
		}
	}
	return pc.DrawText(t.Rect, t.Text, raster.TextStyle{Size: t.FontSize, Color: t.Color, Align: t.Align})
}

// LinkTarget returns the hyperlink, making TextObject a Linker when set.
func (t *TextObject) LinkTarget() string { return t.Hyperlink }

// RectObject is a filled and/or stroked rectangle.
type RectObject struct {
	Rect        coords.Rect
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
}

func (r *RectObject) Bounds() coords.Rect { return r.Rect }

func (r *RectObject) Draw(pc *raster.PaintContext) error {
	if r.Fill != nil {
		if err := pc.FillRect(r.Rect, r.Fill); err != nil {
			return err
		}
	}
	if r.Stroke != nil {
		return pc.StrokeRect(r.Rect, r.StrokeWidth, r.Stroke)
	}
	return nil
}

// LineObject is a straight segment from the top-left to the bottom-right
// corner of Rect, or the reverse diagonal when Diagonal is set. Zero-height
// or zero-width rects give horizontal and vertical lines.
type LineObject struct {
	Rect     coords.Rect
	Color    color.Color
	Width    float64
	Diagonal bool
}

func (l *LineObject) Bounds() coords.Rect { return l.Rect }

func (l *LineObject) Draw(pc *raster.PaintContext) error {
	col := l.Color
	if col == nil {
		col = color.Black
	}
	w := l.Width
	if w <= 0 {
		w = 1
	}
	r := l.Rect
	if l.Diagonal {
		return pc.DrawLine(r.X, r.Y+r.H, r.X+r.W, r.Y, w, col)
	}
	return pc.DrawLine(r.X, r.Y, r.X+r.W, r.Y+r.H, w, col)
}

// ImageSource supplies a decoded image.
type ImageSource interface {
	Image() (image.Image, error)
}

// StaticImage is an already decoded image.
type StaticImage struct{ Img image.Image }

func (s StaticImage) Image() (image.Image, error) { return s.Img, nil }

// FileImage decodes a PNG, JPEG, BMP, TIFF or WebP file on first use.
type FileImage struct {
	Path string

	once sync.Once
	img  image.Image
	err  error
}

func (f *FileImage) Image() (image.Image, error) {
	f.once.Do(func() {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			f.err = err
			return
		}
		f.img, _, f.err = image.Decode(bytes.NewReader(data))
		if f.err != nil {
			f.err = fmt.Errorf("decode %s: %w", f.Path, f.err)
		}
	})
	return f.img, f.err
}

// PictureObject draws an image stretched over Rect.
type PictureObject struct {
	Rect      coords.Rect
	Source    ImageSource
	Hyperlink string
}

func (p *PictureObject) Bounds() coords.Rect { return p.Rect }

func (p *PictureObject) Draw(pc *raster.PaintContext) error {
	if p.Source == nil {
		return nil
	}
	img, err := p.Source.Image()
	if err != nil {
		return err
	}
	return pc.DrawImage(p.Rect, img)
}

func (p *PictureObject) LinkTarget() string { return p.Hyperlink }
