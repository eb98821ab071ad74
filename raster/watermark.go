package raster

import (
	"image"
	"image/color"
	"math"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/fonts"
)

// DrawRotatedText draws s centred on the page, rotated by angle degrees
// counterclockwise.
func (pc *PaintContext) DrawRotatedText(s string, angle float64, st TextStyle) error {
	img := pc.canvas.img
	if img == nil {
		return ErrReleased
	}
	s = pc.Expand(s)
	if s == "" {
		return nil
	}
	face, err := pc.face(st.Size)
	if err != nil {
		return err
	}
	w, h := fonts.Measure(face, s)
	tw, th := int(math.Ceil(w)), int(math.Ceil(h))
	if tw <= 0 || th <= 0 {
		return nil
	}
	col := st.Color
	if col == nil {
		col = color.Black
	}
	label := image.NewRGBA(image.Rect(0, 0, tw, th))
	d := &xfont.Drawer{Dst: label, Src: image.NewUniform(col), Face: face}
	d.Dot = fixed.Point26_6{Y: fixed.Int26_6(math.Round(fonts.Ascent(face) * 64))}
	d.DrawString(s)

	b := img.Bounds()
	m := coords.Translate(-float64(tw)/2, -float64(th)/2).
		Multiply(coords.Rotate(-angle * math.Pi / 180)).
		Multiply(coords.Translate(float64(b.Dx())/2, float64(b.Dy())/2))
	draw.BiLinear.Transform(img, m.Aff3(), label, label.Bounds(), draw.Over, nil)
	return nil
}

// DrawCenteredImage draws src at its natural size scaled by the canvas
// resolution, centred on the page.
func (pc *PaintContext) DrawCenteredImage(src image.Image) error {
	if src == nil || src.Bounds().Empty() {
		return nil
	}
	pw, ph := pc.canvas.Size()
	sb := src.Bounds()
	w, h := float64(sb.Dx()), float64(sb.Dy())
	page := pc.canvas.Context(0, 0, nil)
	return page.DrawImage(coords.Rect{X: (pw - w) / 2, Y: (ph - h) / 2, W: w, H: h}, src)
}
