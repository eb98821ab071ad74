package images

import (
	"encoding/binary"
	"image"

	"github.com/spaolacci/murmur3"
)

type digest struct {
	hi, lo uint64
}

// hashPixels hashes the visible pixel rows of img together with its size,
// so two bitmaps sharing a byte buffer but not a shape never collide.
func hashPixels(img *image.RGBA) digest {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	m := murmur3.New128()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(w))
	binary.BigEndian.PutUint32(dims[4:], uint32(h))
	m.Write(dims[:])

	if img.Stride == w*4 {
		m.Write(img.Pix[:w*h*4])
	} else {
		for y := 0; y < h; y++ {
			m.Write(img.Pix[y*img.Stride : y*img.Stride+w*4])
		}
	}
	hi, lo := m.Sum128()
	return digest{hi, lo}
}
