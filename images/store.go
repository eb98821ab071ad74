// Package images writes page bitmaps as image XObjects, deduplicating
// pixel-identical bitmaps within one export.
package images

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfexport/filters"
	"github.com/wudi/pdfexport/ir/raw"
	"github.com/wudi/pdfexport/ir/semantic"
	"github.com/wudi/pdfexport/observability"
	"github.com/wudi/pdfexport/writer"
)

// Handle identifies a written image XObject.
type Handle struct {
	Name   string
	Ref    raw.ObjectRef
	Mask   raw.ObjectRef
	Width  int
	Height int
	// Reused is set when the image came from the cache and nothing was
	// written.
	Reused bool
}

// Store is a content-addressed image cache bound to one writer. It is not
// safe for concurrent use.
type Store struct {
	w      *writer.Writer
	log    observability.Logger
	flate  filters.Encoder
	cache  map[digest]Handle
	hits   int
	misses int
}

func NewStore(w *writer.Writer, log observability.Logger) *Store {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Store{
		w:     w,
		log:   log,
		flate: filters.NewFlateEncoder(0),
		cache: make(map[digest]Handle),
	}
}

// AppendImage writes img unless a pixel-identical bitmap was appended
// before, in which case the earlier handle is returned.
func (s *Store) AppendImage(img *image.RGBA, quality int) (Handle, error) {
	b := img.Bounds()
	if b.Empty() {
		return Handle{}, fmt.Errorf("append image: empty bitmap %v", b)
	}
	key := hashPixels(img)
	if h, ok := s.cache[key]; ok {
		s.hits++
		s.log.Debug("image cache hit", observability.String("name", h.Name))
		h.Reused = true
		return h, nil
	}

	alpha, translucent := extractAlpha(img)
	h := Handle{Width: b.Dx(), Height: b.Dy()}
	colour := image.Image(img)
	if translucent {
		packed, err := s.flate.Encode(context.Background(), alpha)
		if err != nil {
			return Handle{}, fmt.Errorf("append image: mask: %w", err)
		}
		h.Mask, err = s.write(semantic.Mask{Width: h.Width, Height: h.Height, Alpha: packed})
		if err != nil {
			return Handle{}, err
		}
		colour = unpremultiply(img)
	}

	jpg, err := filters.EncodeJPEG(colour, quality)
	if err != nil {
		return Handle{}, fmt.Errorf("append image: %w", err)
	}
	h.Ref, err = s.write(semantic.Image{Width: h.Width, Height: h.Height, JPEG: jpg, SMask: h.Mask})
	if err != nil {
		return Handle{}, err
	}
	h.Name = fmt.Sprintf("Im%d", h.Ref.Num)

	s.cache[key] = h
	s.misses++
	s.log.Debug("image written",
		observability.String("name", h.Name),
		observability.Int("jpeg_bytes", len(jpg)),
		observability.Bool("mask", translucent))
	return h, nil
}

// AppendAny converts img to RGBA before appending it.
func (s *Store) AppendAny(img image.Image, quality int) (Handle, error) {
	if rgba, ok := img.(*image.RGBA); ok {
		return s.AppendImage(rgba, quality)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return s.AppendImage(rgba, quality)
}

// Hits and Misses count cache lookups since the store was created.
func (s *Store) Hits() int   { return s.hits }
func (s *Store) Misses() int { return s.misses }

// Len returns the number of distinct images written.
func (s *Store) Len() int { return len(s.cache) }

// Reset drops the cache. Handles returned earlier stay valid.
func (s *Store) Reset() {
	clear(s.cache)
}

func (s *Store) write(o semantic.Object) (raw.ObjectRef, error) {
	r, err := o.Raw()
	if err != nil {
		return raw.ObjectRef{}, err
	}
	return s.w.Write(r)
}

// extractAlpha returns one alpha byte per pixel and whether any of them is
// not fully opaque.
func extractAlpha(img *image.RGBA) ([]byte, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, w*h)
	translucent := false
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 3; x < len(row); x += 4 {
			a := row[x]
			if a != 0xFF {
				translucent = true
			}
			out = append(out, a)
		}
	}
	return out, translucent
}

// unpremultiply returns an opaque copy of img carrying the straight colour
// of each pixel, so the mask alone controls coverage.
func unpremultiply(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for i := 0; i < len(src); i += 4 {
			a := uint32(src[i+3])
			switch a {
			case 0xFF:
				copy(dst[i:i+3], src[i:i+3])
			case 0:
				dst[i], dst[i+1], dst[i+2] = 0xFF, 0xFF, 0xFF
			default:
				for c := 0; c < 3; c++ {
					v := (uint32(src[i+c])*0xFF + a/2) / a
					if v > 0xFF {
						v = 0xFF
					}
					dst[i+c] = byte(v)
				}
			}
			dst[i+3] = 0xFF
		}
	}
	return out
}
