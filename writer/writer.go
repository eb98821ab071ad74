// Package writer serializes PDF objects as numbered indirect objects into an
// append-only byte stream and finishes the file with a cross-reference
// table and trailer.
package writer

import (
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/wudi/pdfexport/ir/raw"
	"github.com/wudi/pdfexport/observability"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF15 PDFVersion = "1.5"
	PDF17 PDFVersion = "1.7"
)

var (
	ErrFinished          = errors.New("writer already finished")
	ErrAlreadyWritten    = errors.New("object already written")
	ErrUnknownObject     = errors.New("object number was never allocated")
	ErrUnwrittenObject   = errors.New("prepared object was never written")
	ErrDanglingReference = errors.New("reference to unregistered object")
	ErrMissingRoot       = errors.New("missing document catalog")
)

// Interceptor observes every indirect object as it is flushed.
type Interceptor interface {
	BeforeWrite(ref raw.ObjectRef, obj raw.Object) error
	AfterWrite(ref raw.ObjectRef, obj raw.Object, bytesWritten int64) error
}

type Builder struct {
	interceptors []Interceptor
	logger       observability.Logger
	version      PDFVersion
}

func (b *Builder) WithInterceptor(i Interceptor) *Builder {
	b.interceptors = append(b.interceptors, i)
	return b
}

func (b *Builder) WithLogger(l observability.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithVersion(v PDFVersion) *Builder {
	b.version = v
	return b
}

// Build writes the file header to out and returns a Writer positioned after it.
func (b *Builder) Build(out io.Writer) (*Writer, error) {
	digest, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		out:          &posWriter{w: out, digest: digest},
		digest:       digest,
		interceptors: b.interceptors,
		logger:       b.logger,
		version:      b.version,
		offsets:      []int64{-1}, // object 0 is the head of the free list
		referenced:   make(map[int]raw.ObjectRef),
	}
	if w.logger == nil {
		w.logger = observability.NopLogger{}
	}
	if w.version == "" {
		w.version = PDF15
	}
	if _, err := fmt.Fprintf(w.out, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", w.version); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// New is shorthand for (&Builder{}).Build(out).
func New(out io.Writer) (*Writer, error) { return (&Builder{}).Build(out) }

// Writer assigns object numbers, records byte offsets and emits the
// cross-reference table. It is not safe for concurrent use.
type Writer struct {
	out          *posWriter
	digest       hash.Hash
	interceptors []Interceptor
	logger       observability.Logger
	version      PDFVersion

	// offsets[n] is the byte offset of object n, or -1 while n is only prepared.
	offsets    []int64
	referenced map[int]raw.ObjectRef

	finished bool
	err      error
}

// Prepare reserves the next object number without writing anything. The
// object must be written with WritePrepared before Finish.
func (w *Writer) Prepare() raw.ObjectRef {
	w.offsets = append(w.offsets, -1)
	return raw.ObjectRef{Num: len(w.offsets) - 1}
}

// Write allocates a new object number and serializes obj at the current
// position. If obj reached the output before an error, its reference is
// returned along with the error.
func (w *Writer) Write(obj raw.Object) (raw.ObjectRef, error) {
	if err := w.check(); err != nil {
		return raw.ObjectRef{}, err
	}
	ref := w.Prepare()
	if err := w.WritePrepared(ref, obj); err != nil {
		if w.offsets[ref.Num] >= 0 {
			return ref, err
		}
		return raw.ObjectRef{}, err
	}
	return ref, nil
}

// WritePrepared serializes obj under a number obtained from Prepare.
func (w *Writer) WritePrepared(ref raw.ObjectRef, obj raw.Object) error {
	if err := w.check(); err != nil {
		return err
	}
	if ref.Num <= 0 || ref.Num >= len(w.offsets) || ref.Gen != 0 {
		return fmt.Errorf("%w: %s", ErrUnknownObject, ref)
	}
	if w.offsets[ref.Num] >= 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyWritten, ref)
	}
	for _, i := range w.interceptors {
		if err := i.BeforeWrite(ref, obj); err != nil {
			return err
		}
	}

	buf := serializeIndirect(ref, obj)
	pos := w.out.pos
	if _, err := w.out.Write(buf); err != nil {
		w.err = fmt.Errorf("write object %d: %w", ref.Num, err)
		return w.err
	}
	w.offsets[ref.Num] = pos
	for _, r := range raw.References(obj) {
		if _, seen := w.referenced[r.Num]; !seen {
			w.referenced[r.Num] = ref
		}
	}

	for _, i := range w.interceptors {
		if err := i.AfterWrite(ref, obj, int64(len(buf))); err != nil {
			w.err = fmt.Errorf("after write of object %d: %w", ref.Num, err)
			return w.err
		}
	}
	return nil
}

// Finish validates the object graph, then appends the cross-reference
// table, the trailer and the end-of-file marker. root is the document
// catalog; info may be nil.
func (w *Writer) Finish(root raw.ObjectRef, info *raw.ObjectRef) error {
	if err := w.check(); err != nil {
		return err
	}
	if root.IsZero() {
		return ErrMissingRoot
	}
	if err := w.validate(root, info); err != nil {
		return err
	}

	id := w.digest.Sum(nil)[:16]
	w.out.digest = nil

	xrefPos := w.out.pos
	if err := w.writeXRefTable(); err != nil {
		w.err = err
		return err
	}
	trailer := raw.Dict()
	trailer.Set(raw.NameLiteral("Size"), raw.NumberInt(int64(w.Size())))
	trailer.Set(raw.NameLiteral("Root"), raw.RefTo(root))
	if info != nil {
		trailer.Set(raw.NameLiteral("Info"), raw.RefTo(*info))
	}
	trailer.Set(raw.NameLiteral("ID"), raw.NewArray(raw.HexStr(id), raw.HexStr(id)))

	bw := &errWriter{w: w.out}
	bw.printf("trailer\n%s\nstartxref\n%d\n%%%%EOF\n", serializeDirect(trailer), xrefPos)
	if bw.err != nil {
		w.err = fmt.Errorf("write trailer: %w", bw.err)
		return w.err
	}
	if f, ok := w.out.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			w.err = fmt.Errorf("flush: %w", err)
			return w.err
		}
	}
	w.finished = true
	w.logger.Debug("xref written",
		observability.Int("size", w.Size()),
		observability.Int64("startxref", xrefPos),
		observability.Int64("bytes", w.out.pos))
	return nil
}

func (w *Writer) validate(root raw.ObjectRef, info *raw.ObjectRef) error {
	for num := 1; num < len(w.offsets); num++ {
		if w.offsets[num] < 0 {
			return fmt.Errorf("%w: %d 0 R", ErrUnwrittenObject, num)
		}
	}
	for num, from := range w.referenced {
		if num <= 0 || num >= len(w.offsets) {
			return fmt.Errorf("%w: %d 0 R referenced from %s", ErrDanglingReference, num, from)
		}
	}
	for _, r := range []*raw.ObjectRef{&root, info} {
		if r != nil && (r.Num <= 0 || r.Num >= len(w.offsets)) {
			return fmt.Errorf("%w: %s", ErrDanglingReference, *r)
		}
	}
	return nil
}

func (w *Writer) writeXRefTable() error {
	bw := &errWriter{w: w.out}
	bw.printf("xref\n0 %d\n", len(w.offsets))
	bw.printf("0000000000 65535 f \n")
	for num := 1; num < len(w.offsets); num++ {
		bw.printf("%010d 00000 n \n", w.offsets[num])
	}
	if bw.err != nil {
		return fmt.Errorf("write xref: %w", bw.err)
	}
	return nil
}

func (w *Writer) check() error {
	if w.err != nil {
		return w.err
	}
	if w.finished {
		return ErrFinished
	}
	return nil
}

// Size is the trailer /Size value: one more than the highest object number.
func (w *Writer) Size() int { return len(w.offsets) }

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 { return w.out.pos }

// Version returns the PDF version written in the header.
func (w *Writer) Version() PDFVersion { return w.version }

type posWriter struct {
	w      io.Writer
	digest hash.Hash
	pos    int64
}

func (p *posWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if p.digest != nil {
		p.digest.Write(b[:n])
	}
	p.pos += int64(n)
	return n, err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
