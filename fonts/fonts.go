// Package fonts supplies rasterization faces for report text. Text is
// drawn into page bitmaps, so fonts are never embedded in the output.
package fonts

import (
	"fmt"
	"math"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Cache hands out faces of one font keyed by pixel size. It is not safe
// for concurrent use.
type Cache struct {
	font  *opentype.Font
	faces map[int64]xfont.Face
}

// NewCache parses an OpenType/TrueType font. Empty data selects Go Regular.
func NewCache(data []byte) (*Cache, error) {
	if len(data) == 0 {
		data = goregular.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Cache{font: f, faces: make(map[int64]xfont.Face)}, nil
}

// Face returns a face rendering glyphs px device pixels tall.
func (c *Cache) Face(px float64) (xfont.Face, error) {
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return nil, fmt.Errorf("invalid font size %v", px)
	}
	key := int64(math.Round(px * 64))
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(key) / 64,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	c.faces[key] = face
	return face, nil
}

// Close releases every face handed out so far.
func (c *Cache) Close() error {
	var first error
	for k, f := range c.faces {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.faces, k)
	}
	return first
}

// Measure returns the advance of s and the line height for face.
func Measure(face xfont.Face, s string) (width, lineHeight float64) {
	m := face.Metrics()
	return fixedToFloat(xfont.MeasureString(face, s)), fixedToFloat(m.Height)
}

// Ascent returns the distance from the top of a line to its baseline.
func Ascent(face xfont.Face) float64 {
	return fixedToFloat(face.Metrics().Ascent)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
