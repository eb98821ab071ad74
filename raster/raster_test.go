package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/filters"
	"github.com/wudi/pdfexport/fonts"
)

func newCanvas(t *testing.T, w, h float64, dpi int) *Canvas {
	t.Helper()
	fc, err := fonts.NewCache(nil)
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	t.Cleanup(func() { fc.Close() })
	c, err := NewCanvas(w, h, dpi, fc)
	if err != nil {
		t.Fatalf("canvas: %v", err)
	}
	return c
}

func TestBitmapSize(t *testing.T) {
	tests := []struct {
		w, h   float64
		dpi    int
		pw, ph int
	}{
		{794, 1123, 96, 794, 1123},
		{794, 1123, 192, 1588, 2246},
		{100, 50, 144, 150, 75},
		{10.5, 10, 96, 11, 10},
		{4e9, 1, 96, math.MaxInt32, 1},
		{-5, 0, 96, 0, 0},
	}
	for _, tt := range tests {
		pw, ph := BitmapSize(tt.w, tt.h, tt.dpi)
		if pw != tt.pw || ph != tt.ph {
			t.Errorf("BitmapSize(%v, %v, %d) = %d x %d, want %d x %d", tt.w, tt.h, tt.dpi, pw, ph, tt.pw, tt.ph)
		}
	}
}

func TestNewCanvasRejectsOversizedBitmap(t *testing.T) {
	// 46341 x 46341 device pixels at 1200 dpi exceeds 2^29 pixels.
	_, err := NewCanvas(3708, 3708, 1200, nil)
	if !errors.Is(err, filters.ErrBitmapTooLarge) {
		t.Fatalf("expected ErrBitmapTooLarge, got %v", err)
	}
	for _, side := range []float64{4e9, 1e300, math.Inf(1)} {
		if _, err := NewCanvas(side, side, 96, nil); !errors.Is(err, filters.ErrBitmapTooLarge) {
			t.Fatalf("side %g: expected ErrBitmapTooLarge, got %v", side, err)
		}
	}
}

func TestFillRectScalesWithDPI(t *testing.T) {
	c := newCanvas(t, 20, 20, 192)
	if err := c.Clear(color.White); err != nil {
		t.Fatalf("clear: %v", err)
	}
	pc := c.Context(2, 3, nil)
	if err := pc.FillRect(coords.Rect{X: 1, Y: 1, W: 4, H: 2}, color.RGBA{0xFF, 0, 0, 0xFF}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	img := c.Image()
	// origin (2,3) + (1,1) at scale 2 -> device (6,8)-(14,12)
	if got := img.RGBAAt(6, 8); got != (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Fatalf("inside pixel %v", got)
	}
	if got := img.RGBAAt(13, 11); got != (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Fatalf("inside corner %v", got)
	}
	if got := img.RGBAAt(14, 11); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("outside pixel %v", got)
	}
}

func TestStrokeRectLeavesInteriorUntouched(t *testing.T) {
	c := newCanvas(t, 10, 10, 96)
	pc := c.Context(0, 0, nil)
	if err := pc.StrokeRect(coords.Rect{W: 10, H: 10}, 1, color.Black); err != nil {
		t.Fatalf("stroke: %v", err)
	}
	img := c.Image()
	if img.RGBAAt(0, 5).A != 0xFF || img.RGBAAt(9, 9).A != 0xFF {
		t.Fatalf("border not painted")
	}
	if img.RGBAAt(5, 5).A != 0 {
		t.Fatalf("interior painted")
	}
}

func TestDrawLine(t *testing.T) {
	c := newCanvas(t, 10, 10, 96)
	pc := c.Context(0, 0, nil)
	if err := pc.DrawLine(0, 5, 10, 5, 2, color.Black); err != nil {
		t.Fatalf("line: %v", err)
	}
	img := c.Image()
	if img.RGBAAt(5, 4).A < 0xF0 || img.RGBAAt(5, 5).A < 0xF0 {
		t.Fatalf("line not painted: %v %v", img.RGBAAt(5, 4), img.RGBAAt(5, 5))
	}
	if img.RGBAAt(5, 1).A != 0 {
		t.Fatalf("line too thick")
	}
}

func TestDrawTextExpandsMacros(t *testing.T) {
	c := newCanvas(t, 200, 40, 96)
	var seen string
	pc := c.Context(0, 0, func(s string) string {
		seen = s
		return "Page 1"
	})
	if err := pc.DrawText(coords.Rect{W: 200, H: 40}, "Page [Page#]", TextStyle{Size: 20}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if seen != "Page [Page#]" {
		t.Fatalf("expander saw %q", seen)
	}
	if !painted(c.Image()) {
		t.Fatalf("no glyph pixels drawn")
	}
}

func TestDrawTextClipsToRect(t *testing.T) {
	c := newCanvas(t, 100, 100, 96)
	pc := c.Context(0, 0, nil)
	if err := pc.DrawText(coords.Rect{X: 10, Y: 10, W: 20, H: 10}, "WWWWWWWWWW", TextStyle{Size: 30}); err != nil {
		t.Fatalf("text: %v", err)
	}
	img := c.Image()
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y).A != 0 && (x < 10 || x >= 30 || y < 10 || y >= 20) {
				t.Fatalf("pixel (%d,%d) painted outside clip", x, y)
			}
		}
	}
}

func TestDrawImageScales(t *testing.T) {
	c := newCanvas(t, 10, 10, 192)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	pc := c.Context(0, 0, nil)
	if err := pc.DrawImage(coords.Rect{X: 1, Y: 1, W: 4, H: 4}, src); err != nil {
		t.Fatalf("image: %v", err)
	}
	img := c.Image()
	if img.RGBAAt(2, 2).A < 0xF0 || img.RGBAAt(9, 9).A < 0xF0 {
		t.Fatalf("scaled image not covering target")
	}
	if img.RGBAAt(10, 10).A != 0 || img.RGBAAt(1, 1).A != 0 {
		t.Fatalf("scaled image overflows target")
	}
}

func TestDrawRotatedText(t *testing.T) {
	c := newCanvas(t, 200, 200, 96)
	pc := c.Context(0, 0, nil)
	if err := pc.DrawRotatedText("DRAFT", 45, TextStyle{Size: 40, Color: color.RGBA{0x80, 0, 0, 0x80}}); err != nil {
		t.Fatalf("watermark: %v", err)
	}
	if !painted(c.Image()) {
		t.Fatalf("watermark not drawn")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	c := newCanvas(t, 10, 10, 96)
	pc := c.Context(0, 0, nil)
	c.Release()
	c.Release()
	if !c.Released() || c.Image() != nil {
		t.Fatalf("canvas not released")
	}
	if err := pc.FillRect(coords.Rect{W: 1, H: 1}, color.Black); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	if err := c.Clear(color.White); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
}

func painted(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return true
		}
	}
	return false
}
