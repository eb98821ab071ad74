// Package raster draws report pages into RGBA bitmaps.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/filters"
	"github.com/wudi/pdfexport/fonts"
)

// BaseDPI is the resolution of report coordinates.
const BaseDPI = 96

var ErrReleased = errors.New("raster: canvas released")

// BitmapSize returns the device size of a page w x h report pixels
// rendered at dpi. Sides beyond MaxInt32 saturate.
func BitmapSize(w, h float64, dpi int) (int, int) {
	s := float64(dpi) / BaseDPI
	return devicePixels(w * s), devicePixels(h * s)
}

func devicePixels(v float64) int {
	v = math.Ceil(v - 1e-6)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}

// Canvas is the bitmap for one page.
type Canvas struct {
	img    *image.RGBA
	scale  float64
	width  float64
	height float64
	fonts  *fonts.Cache
}

// NewCanvas allocates a transparent bitmap for a page of w x h report
// pixels. It fails with filters.ErrBitmapTooLarge when the bitmap would
// exceed filters.MaxBitmapPixels.
func NewCanvas(w, h float64, dpi int, fc *fonts.Cache) (*Canvas, error) {
	s := float64(dpi) / BaseDPI
	if area := (w * s) * (h * s); area > float64(filters.MaxBitmapPixels) || math.IsInf(area, 0) {
		return nil, fmt.Errorf("%w: %g x %g at %d dpi", filters.ErrBitmapTooLarge, w, h, dpi)
	}
	pw, ph := BitmapSize(w, h, dpi)
	if err := filters.ValidateBitmapBounds(pw, ph); err != nil {
		return nil, err
	}
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, pw, ph)),
		scale:  float64(dpi) / BaseDPI,
		width:  w,
		height: h,
		fonts:  fc,
	}, nil
}

// Image returns the bitmap, or nil once released.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Scale is the device pixels per report pixel.
func (c *Canvas) Scale() float64 { return c.scale }

// Size returns the page size in report pixels.
func (c *Canvas) Size() (w, h float64) { return c.width, c.height }

// Release drops the bitmap. It may be called more than once.
func (c *Canvas) Release() {
	c.img = nil
}

func (c *Canvas) Released() bool { return c.img == nil }

// Clear fills the whole bitmap with col, replacing what was there.
func (c *Canvas) Clear(col color.Color) error {
	if c.img == nil {
		return ErrReleased
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	return nil
}

// Context returns a paint context whose origin is (originX, originY) in
// page report pixels.
func (c *Canvas) Context(originX, originY float64, expand func(string) string) *PaintContext {
	ctm := coords.Translate(originX, originY).Multiply(coords.Scale(c.scale, c.scale))
	return &PaintContext{canvas: c, ctm: ctm, expand: expand}
}
