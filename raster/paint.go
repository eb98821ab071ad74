package raster

import (
	"image"
	"image/color"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/fonts"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// PaintContext is what report components draw through. Coordinates are
// report pixels relative to the context origin.
type PaintContext struct {
	canvas *Canvas
	ctm    coords.Matrix
	expand func(string) string
}

// Scale is the device pixels per report pixel.
func (pc *PaintContext) Scale() float64 { return pc.canvas.scale }

// Expand evaluates page macros in s.
func (pc *PaintContext) Expand(s string) string {
	if pc.expand == nil {
		return s
	}
	return pc.expand(s)
}

func (pc *PaintContext) device(r coords.Rect) image.Rectangle {
	p0 := pc.ctm.Transform(coords.Point{X: r.X, Y: r.Y})
	p1 := pc.ctm.Transform(coords.Point{X: r.X + r.W, Y: r.Y + r.H})
	return image.Rect(
		int(math.Round(p0.X)), int(math.Round(p0.Y)),
		int(math.Round(p1.X)), int(math.Round(p1.Y)),
	)
}

// FillRect paints r with col, blending over what is already there.
func (pc *PaintContext) FillRect(r coords.Rect, col color.Color) error {
	img := pc.canvas.img
	if img == nil {
		return ErrReleased
	}
	if r.Empty() {
		return nil
	}
	draw.Draw(img, pc.device(r).Intersect(img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
	return nil
}

// StrokeRect paints the outline of r, width report pixels wide, inside r.
func (pc *PaintContext) StrokeRect(r coords.Rect, width float64, col color.Color) error {
	if width <= 0 || r.Empty() {
		return nil
	}
	w := math.Min(width, math.Min(r.W, r.H)/2)
	for _, side := range []coords.Rect{
		{X: r.X, Y: r.Y, W: r.W, H: w},
		{X: r.X, Y: r.Y + r.H - w, W: r.W, H: w},
		{X: r.X, Y: r.Y + w, W: w, H: r.H - 2*w},
		{X: r.X + r.W - w, Y: r.Y + w, W: w, H: r.H - 2*w},
	} {
		if err := pc.FillRect(side, col); err != nil {
			return err
		}
	}
	return nil
}

// DrawLine strokes the segment (x0,y0)-(x1,y1) with butt caps.
func (pc *PaintContext) DrawLine(x0, y0, x1, y1, width float64, col color.Color) error {
	img := pc.canvas.img
	if img == nil {
		return ErrReleased
	}
	a := pc.ctm.Transform(coords.Point{X: x0, Y: y0})
	b := pc.ctm.Transform(coords.Point{X: x1, Y: y1})
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 || width <= 0 {
		return nil
	}
	hw := math.Max(width*pc.canvas.scale, 1) / 2
	nx, ny := -dy/l*hw, dx/l*hw

	bounds := img.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
	z.Draw(img, bounds, image.NewUniform(col), image.Point{})
	return nil
}

// DrawImage scales src to cover r.
func (pc *PaintContext) DrawImage(r coords.Rect, src image.Image) error {
	img := pc.canvas.img
	if img == nil {
		return ErrReleased
	}
	if r.Empty() || src == nil || src.Bounds().Empty() {
		return nil
	}
	draw.BiLinear.Scale(img, pc.device(r), src, src.Bounds(), draw.Over, nil)
	return nil
}

// TextStyle describes how DrawText renders a string.
type TextStyle struct {
	Size  float64 // report pixels
	Color color.Color
	Align Align
}

// DrawText draws s into r, one line per newline, clipped to r. Macros are
// expanded first.
func (pc *PaintContext) DrawText(r coords.Rect, s string, st TextStyle) error {
	img := pc.canvas.img
	if img == nil {
		return ErrReleased
	}
	s = pc.Expand(s)
	if s == "" || r.Empty() {
		return nil
	}
	face, err := pc.face(st.Size)
	if err != nil {
		return err
	}
	clip := pc.device(r).Intersect(img.Bounds())
	if clip.Empty() {
		return nil
	}
	dst := img.SubImage(clip).(*image.RGBA)

	col := st.Color
	if col == nil {
		col = color.Black
	}
	d := &xfont.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	ascent := fonts.Ascent(face)
	origin := pc.device(r).Min
	y := float64(origin.Y) + ascent
	for _, line := range strings.Split(s, "\n") {
		w, lh := fonts.Measure(face, line)
		x := float64(origin.X)
		switch st.Align {
		case AlignCenter:
			x += (float64(pc.device(r).Dx()) - w) / 2
		case AlignRight:
			x += float64(pc.device(r).Dx()) - w
		}
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
		d.DrawString(line)
		y += lh
	}
	return nil
}

func (pc *PaintContext) face(size float64) (xfont.Face, error) {
	if size <= 0 {
		size = 13
	}
	return pc.canvas.fonts.Face(size * pc.canvas.scale)
}
