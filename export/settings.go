package export

import (
	"time"

	"github.com/wudi/pdfexport/filters"
)

const (
	MinImageDPI = 96
	MaxImageDPI = 1200

	DefaultImageDPI    = 300
	DefaultJPEGQuality = 90
	DefaultProducer    = "pdfexport"
)

// Settings configures an export. ImageDPI and JPEGQuality are clamped to
// their ranges when set; a zero Settings uses the defaults.
type Settings struct {
	Title    string
	Subject  string
	Keywords string
	Author   string
	Creator  string
	// Producer defaults to DefaultProducer.
	Producer string
	// CreationDate is written only when non-zero.
	CreationDate time.Time

	imageDPI    int
	jpegQuality int
}

// SetImageDPI stores dpi clamped to [MinImageDPI, MaxImageDPI].
func (s *Settings) SetImageDPI(dpi int) {
	s.imageDPI = clamp(dpi, MinImageDPI, MaxImageDPI)
}

func (s Settings) ImageDPI() int {
	if s.imageDPI == 0 {
		return DefaultImageDPI
	}
	return s.imageDPI
}

// SetJPEGQuality stores q clamped to [filters.MinJPEGQuality,
// filters.MaxJPEGQuality].
func (s *Settings) SetJPEGQuality(q int) {
	s.jpegQuality = clamp(q, filters.MinJPEGQuality, filters.MaxJPEGQuality)
}

func (s Settings) JPEGQuality() int {
	if s.jpegQuality == 0 {
		return DefaultJPEGQuality
	}
	return s.jpegQuality
}

func (s Settings) producer() string {
	if s.Producer == "" {
		return DefaultProducer
	}
	return s.Producer
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
