package export

import (
	"time"

	"github.com/wudi/pdfexport/ir/raw"
	"github.com/wudi/pdfexport/observability"
)

// Stats summarises a finished export.
type Stats struct {
	Pages          int
	Objects        int
	Bytes          int64
	ImagesWritten  int
	ImageCacheHits int
	// SkippedPages counts pages whose bitmap exceeded the pixel limit and
	// were written without an image.
	SkippedPages int
	Duration     time.Duration
}

func (s Stats) fields() []observability.Field {
	return []observability.Field{
		observability.Int(observability.MetricPageCount, s.Pages),
		observability.Int(observability.MetricObjectCount, s.Objects),
		observability.Int64(observability.MetricWrittenBytes, s.Bytes),
		observability.Int(observability.MetricImageCacheMiss, s.ImagesWritten),
		observability.Int(observability.MetricImageCacheHit, s.ImageCacheHits),
		observability.Int(observability.MetricSkippedPages, s.SkippedPages),
		observability.Int64(observability.MetricExportTime, s.Duration.Milliseconds()),
	}
}

// statsInterceptor counts objects as the writer flushes them.
type statsInterceptor struct {
	objects int
	bytes   int64
}

func (s *statsInterceptor) BeforeWrite(raw.ObjectRef, raw.Object) error { return nil }

func (s *statsInterceptor) AfterWrite(_ raw.ObjectRef, _ raw.Object, n int64) error {
	s.objects++
	s.bytes += n
	return nil
}
