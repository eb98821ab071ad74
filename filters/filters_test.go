package filters

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestFlateRoundTrip(t *testing.T) {
	in := bytes.Repeat([]byte{0xFF, 0x80, 0x00}, 1000)
	enc, err := NewFlateEncoder(0).Encode(context.Background(), in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(enc) >= len(in) {
		t.Fatalf("expected compression, got %d bytes from %d", len(enc), len(in))
	}
	// zlib header, as FlateDecode requires
	if enc[0]&0x0F != 8 {
		t.Fatalf("missing zlib header: % X", enc[:2])
	}
	out, err := NewFlateDecoder().Decode(context.Background(), enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("round trip mismatch")
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(3, 3, color.RGBA{R: 200, A: 255})

	data, err := EncodeJPEG(img, 75)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Fatalf("missing SOI marker")
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Fatalf("dimensions %dx%d", cfg.Width, cfg.Height)
	}
}

func TestEncodeJPEGRejectsQuality(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for _, q := range []int{0, 9, 101} {
		if _, err := EncodeJPEG(img, q); err == nil {
			t.Fatalf("quality %d should be rejected", q)
		}
	}
}

func TestValidateBitmapBounds(t *testing.T) {
	if MaxBitmapPixels != 536870912 {
		t.Fatalf("pixel ceiling changed: %d", MaxBitmapPixels)
	}
	if err := ValidateBitmapBounds(1024, 512); err != nil {
		t.Fatalf("expected valid bounds, got %v", err)
	}
	if err := ValidateBitmapBounds(0, 10); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if err := ValidateBitmapBounds(32768, 16384); err != nil {
		t.Fatalf("exactly at the ceiling should pass: %v", err)
	}
	err := ValidateBitmapBounds(32768, 16385)
	if !errors.Is(err, ErrBitmapTooLarge) {
		t.Fatalf("expected ErrBitmapTooLarge, got %v", err)
	}
	// The product of these sides wraps int64.
	if err := ValidateBitmapBounds(4_000_000_000, 4_000_000_000); !errors.Is(err, ErrBitmapTooLarge) {
		t.Fatalf("huge sides: expected ErrBitmapTooLarge, got %v", err)
	}
}
