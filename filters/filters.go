// Package filters implements the stream encodings used by the exporter:
// DCTDecode (JPEG) for page images and FlateDecode for soft masks.
package filters

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

const (
	FilterDCT   = "DCTDecode"
	FilterFlate = "FlateDecode"
)

// Encoder turns raw stream data into the encoded form named by Name.
type Encoder interface {
	Name() string
	Encode(ctx context.Context, input []byte) ([]byte, error)
}

// Decoder reverses an Encoder.
type Decoder interface {
	Name() string
	Decode(ctx context.Context, input []byte) ([]byte, error)
}

type flateCodec struct{ level int }

// NewFlateEncoder returns a zlib encoder. level follows compress/flate;
// zero selects the default compression.
func NewFlateEncoder(level int) Encoder {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return flateCodec{level: level}
}

func NewFlateDecoder() Decoder { return flateCodec{} }

func (flateCodec) Name() string { return FilterFlate }

func (f flateCodec) Encode(ctx context.Context, in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (flateCodec) Decode(ctx context.Context, in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

const (
	MinJPEGQuality = 10
	MaxJPEGQuality = 100
)

// EncodeJPEG encodes the colour channels of img as a baseline JPEG. Alpha
// is ignored; callers emit it separately as a soft mask.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < MinJPEGQuality || quality > MaxJPEGQuality {
		return nil, fmt.Errorf("jpeg quality %d outside [%d, %d]", quality, MinJPEGQuality, MaxJPEGQuality)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
