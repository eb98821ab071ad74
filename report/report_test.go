package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/fonts"
	"github.com/wudi/pdfexport/raster"
)

func canvas(t *testing.T, w, h float64) *raster.Canvas {
	t.Helper()
	fc, err := fonts.NewCache(nil)
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	t.Cleanup(func() { fc.Close() })
	c, err := raster.NewCanvas(w, h, 96, fc)
	if err != nil {
		t.Fatalf("canvas: %v", err)
	}
	return c
}

func TestComponentsAreLinkers(t *testing.T) {
	var comps []Component = []Component{
		&TextObject{Hyperlink: "https://example.com/a"},
		&PictureObject{Hyperlink: "https://example.com/b"},
		&RectObject{},
	}
	var links []string
	for _, c := range comps {
		if l, ok := c.(Linker); ok && l.LinkTarget() != "" {
			links = append(links, l.LinkTarget())
		}
	}
	if len(links) != 2 {
		t.Fatalf("links %v", links)
	}
}

func TestMemoryReport(t *testing.T) {
	m := &Memory{Title: "r", Items: []*MemoryPage{{Width: 10, Height: 20}, {Width: 30, Height: 40}}}
	pages := m.Pages()
	if len(pages) != 2 || m.Name() != "r" {
		t.Fatalf("pages %d name %q", len(pages), m.Name())
	}
	if w, h := pages[1].Size(); w != 30 || h != 40 {
		t.Fatalf("size %v x %v", w, h)
	}
	if pages[0].Fill() != nil || pages[0].Border() != nil || pages[0].Watermark() != nil {
		t.Fatalf("zero page should have no decoration")
	}
}

func TestRectObjectDraw(t *testing.T) {
	c := canvas(t, 20, 20)
	r := &RectObject{
		Rect:        coords.Rect{X: 2, Y: 2, W: 10, H: 10},
		Fill:        color.RGBA{0, 0, 0xFF, 0xFF},
		Stroke:      color.RGBA{0xFF, 0, 0, 0xFF},
		StrokeWidth: 1,
	}
	if err := r.Draw(c.Context(0, 0, nil)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	img := c.Image()
	if got := img.RGBAAt(2, 2); got.R != 0xFF {
		t.Fatalf("stroke pixel %v", got)
	}
	if got := img.RGBAAt(6, 6); got.B != 0xFF || got.R != 0 {
		t.Fatalf("fill pixel %v", got)
	}
}

func TestBorderAndWatermark(t *testing.T) {
	c := canvas(t, 100, 100)
	b := &Border{Width: 2}
	if err := b.Draw(c.Context(0, 0, nil), coords.Rect{W: 100, H: 100}); err != nil {
		t.Fatalf("border: %v", err)
	}
	if c.Image().RGBAAt(1, 50).A != 0xFF {
		t.Fatalf("border not drawn")
	}
	var nilBorder *Border
	if err := nilBorder.Draw(c.Context(0, 0, nil), coords.Rect{W: 1, H: 1}); err != nil {
		t.Fatalf("nil border: %v", err)
	}

	w := &Watermark{Text: "X", FontSize: 40, Color: color.RGBA{0, 0xFF, 0, 0xFF}}
	if err := w.Draw(c.Context(0, 0, nil)); err != nil {
		t.Fatalf("watermark: %v", err)
	}
	found := false
	img := c.Image()
	for y := 30; y < 70 && !found; y++ {
		for x := 30; x < 70; x++ {
			if img.RGBAAt(x, y).G > 0x80 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("watermark text not centred on the page")
	}
}

func TestFileImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := &FileImage{Path: path}
	img, err := f.Image()
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds %v", b)
	}

	missing := &FileImage{Path: filepath.Join(t.TempDir(), "nope.png")}
	if _, err := missing.Image(); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := (&PictureObject{Rect: coords.Rect{W: 1, H: 1}, Source: missing}).Draw(canvas(t, 5, 5).Context(0, 0, nil)); err == nil {
		t.Fatalf("picture with unreadable source should fail")
	}
}

func TestLineObjectDefaults(t *testing.T) {
	c := canvas(t, 20, 20)
	l := &LineObject{Rect: coords.Rect{X: 0, Y: 10, W: 20, H: 0}}
	if err := l.Draw(c.Context(0, 0, nil)); err != nil {
		t.Fatalf("line: %v", err)
	}
	img := c.Image()
	if img.RGBAAt(10, 9).A == 0 && img.RGBAAt(10, 10).A == 0 {
		t.Fatalf("horizontal line not drawn")
	}
}
