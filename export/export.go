// Package export renders a report into a PDF made of one full-page JPEG
// image per page. Pixel-identical pages share a single image object.
package export

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/filters"
	"github.com/wudi/pdfexport/fonts"
	"github.com/wudi/pdfexport/images"
	"github.com/wudi/pdfexport/ir/raw"
	"github.com/wudi/pdfexport/ir/semantic"
	"github.com/wudi/pdfexport/observability"
	"github.com/wudi/pdfexport/report"
	"github.com/wudi/pdfexport/scripting"
	"github.com/wudi/pdfexport/writer"
)

var (
	ErrNotStarted   = errors.New("export not started")
	ErrStarted      = errors.New("export already started")
	ErrPageOpen     = errors.New("page already open")
	ErrNoPage       = errors.New("no open page")
	ErrExportClosed = errors.New("export finished or closed")
)

type Option func(*Exporter)

func WithLogger(l observability.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// WithInterceptor installs a writer interceptor in addition to the one
// collecting Stats.
func WithInterceptor(i writer.Interceptor) Option {
	return func(e *Exporter) { e.interceptors = append(e.interceptors, i) }
}

// WithFont selects the TrueType/OpenType font used for report text.
func WithFont(data []byte) Option {
	return func(e *Exporter) { e.fontData = data }
}

// Exporter writes one report. It is not safe for concurrent use; separate
// Exporters are independent.
type Exporter struct {
	out          io.Writer
	settings     Settings
	log          observability.Logger
	interceptors []writer.Interceptor
	fontData     []byte

	w      *writer.Writer
	store  *images.Store
	fonts  *fonts.Cache
	engine *scripting.GojaEngine
	dom    *reportDOM
	counts *statsInterceptor

	pagesRef raw.ObjectRef
	kids     []raw.ObjectRef
	page     *pageState
	skipped  int
	began    time.Time

	started bool
	done    bool
}

// New returns an Exporter writing to out. Nothing is written before Start.
func New(out io.Writer, s Settings, opts ...Option) *Exporter {
	e := &Exporter{out: out, settings: s, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = observability.NopLogger{}
	}
	return e
}

// Start writes the file header and reserves the page tree root.
func (e *Exporter) Start(rep report.Report) error {
	if e.done {
		return ErrExportClosed
	}
	if e.started {
		return ErrStarted
	}
	e.began = time.Now()
	e.counts = &statsInterceptor{}
	b := (&writer.Builder{}).WithLogger(e.log).WithInterceptor(e.counts)
	for _, i := range e.interceptors {
		b.WithInterceptor(i)
	}
	w, err := b.Build(e.out)
	if err != nil {
		return err
	}
	fc, err := fonts.NewCache(e.fontData)
	if err != nil {
		return err
	}
	e.w = w
	e.fonts = fc
	e.store = images.NewStore(w, e.log)
	e.dom = &reportDOM{name: rep.Name(), total: len(rep.Pages())}
	e.pagesRef = w.Prepare()
	e.started = true
	e.log.Debug("export started",
		observability.String("report", rep.Name()),
		observability.Int("dpi", e.settings.ImageDPI()),
		observability.Int("quality", e.settings.JPEGQuality()))
	return nil
}

// ExportPage draws and writes one page: background, bottom watermark,
// border, components, top watermark.
func (e *Exporter) ExportPage(p report.Page) error {
	if err := e.BeginPage(p); err != nil {
		return err
	}
	for _, c := range p.Components() {
		if err := e.DrawComponent(c); err != nil {
			return err
		}
	}
	return e.EndPage()
}

// Finish writes the page tree, catalog and document information, then the
// cross-reference table and trailer. Page bitmaps are released whether or
// not it succeeds.
func (e *Exporter) Finish() (Stats, error) {
	defer e.Close()
	if !e.started {
		return Stats{}, ErrNotStarted
	}
	if e.done {
		return Stats{}, ErrExportClosed
	}
	if e.page != nil {
		if err := e.EndPage(); err != nil {
			return Stats{}, err
		}
	}
	if err := e.writeObject(e.pagesRef, semantic.Pages{Kids: e.kids}); err != nil {
		return Stats{}, err
	}
	catalog, err := e.write(semantic.Catalog{Pages: e.pagesRef})
	if err != nil {
		return Stats{}, err
	}
	var infoRef *raw.ObjectRef
	info := semantic.Info{
		Title:        e.settings.Title,
		Subject:      e.settings.Subject,
		Keywords:     e.settings.Keywords,
		Author:       e.settings.Author,
		Creator:      e.settings.Creator,
		Producer:     e.settings.producer(),
		CreationDate: e.settings.CreationDate,
	}
	if !info.Empty() {
		ref, err := e.write(info)
		if err != nil {
			return Stats{}, err
		}
		infoRef = &ref
	}
	if err := e.w.Finish(catalog, infoRef); err != nil {
		return Stats{}, err
	}

	st := Stats{
		Pages:          len(e.kids),
		Objects:        e.counts.objects,
		Bytes:          e.w.Offset(),
		ImagesWritten:  e.store.Misses(),
		ImageCacheHits: e.store.Hits(),
		SkippedPages:   e.skipped,
		Duration:       time.Since(e.began),
	}
	e.log.Info("export finished", st.fields()...)
	return st, nil
}

// Close releases the open page bitmap and font faces. It is safe to call
// more than once and after Finish.
func (e *Exporter) Close() error {
	if e.page != nil {
		e.page.release()
		e.page = nil
	}
	e.done = true
	if e.store != nil {
		e.store.Reset()
	}
	if e.fonts != nil {
		err := e.fonts.Close()
		e.fonts = nil
		return err
	}
	return nil
}

func (e *Exporter) write(o semantic.Object) (raw.ObjectRef, error) {
	r, err := o.Raw()
	if err != nil {
		return raw.ObjectRef{}, err
	}
	return e.w.Write(r)
}

func (e *Exporter) writeObject(ref raw.ObjectRef, o semantic.Object) error {
	r, err := o.Raw()
	if err != nil {
		return err
	}
	return e.w.WritePrepared(ref, r)
}

func (e *Exporter) expand(s string) string {
	if e.engine == nil {
		e.engine = scripting.NewEngine()
		if err := e.engine.RegisterDOM(e.dom); err != nil {
			e.log.Warn("macro engine unavailable", observability.Error("error", err))
			return s
		}
	}
	return scripting.Expand(context.Background(), e.engine, s)
}

// Export writes rep to out in one call.
func Export(out io.Writer, rep report.Report, s Settings, opts ...Option) (Stats, error) {
	e := New(out, s, opts...)
	defer e.Close()
	if err := e.Start(rep); err != nil {
		return Stats{}, err
	}
	for i, p := range rep.Pages() {
		if err := e.ExportPage(p); err != nil {
			return Stats{}, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return e.Finish()
}

type reportDOM struct {
	name  string
	page  int
	total int
}

func (d *reportDOM) ReportName() string { return d.name }
func (d *reportDOM) PageNumber() int    { return d.page }
func (d *reportDOM) TotalPages() int    { return d.total }

func pageFill(p report.Page) color.Color {
	if c := p.Fill(); c != nil {
		return c
	}
	return color.White
}

func isTooLarge(err error) bool { return errors.Is(err, filters.ErrBitmapTooLarge) }

func pdfRect(r coords.Rect, pageHeight float64) semantic.Rectangle {
	llx, lly, urx, ury := r.PDF(pageHeight)
	return semantic.Rectangle{LLX: llx, LLY: lly, URX: urx, URY: ury}
}
