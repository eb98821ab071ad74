package filters

import (
	"errors"
	"fmt"
)

// MaxBitmapPixels caps a page bitmap at 2 GiB of 32-bit pixels.
const MaxBitmapPixels int64 = (2 << 30) / 4

var ErrBitmapTooLarge = errors.New("bitmap exceeds pixel limit")

// ValidateBitmapBounds reports whether a width x height 32-bit bitmap can be
// allocated.
func ValidateBitmapBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bitmap bounds invalid (%d x %d)", width, height)
	}
	if int64(width) > MaxBitmapPixels/int64(height) {
		return fmt.Errorf("%w: %d x %d exceeds %d pixels", ErrBitmapTooLarge, width, height, MaxBitmapPixels)
	}
	return nil
}
