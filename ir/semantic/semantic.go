// Package semantic models the PDF object kinds the exporter emits. Each kind
// is a plain struct with explicit optional fields that lowers to a raw
// dictionary or stream.
package semantic

import (
	"fmt"
	"time"

	"github.com/wudi/pdfexport/filters"
	"github.com/wudi/pdfexport/ir/raw"
)

type Kind int

const (
	KindCatalog Kind = iota + 1
	KindPages
	KindPage
	KindContents
	KindImage
	KindMask
	KindInfo
	KindLink
)

var kindNames = map[Kind]string{
	KindCatalog:  "Catalog",
	KindPages:    "Pages",
	KindPage:     "Page",
	KindContents: "Contents",
	KindImage:    "Image",
	KindMask:     "Mask",
	KindInfo:     "Info",
	KindLink:     "Link",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Object is implemented by every exported PDF object kind. The set is
// closed: only this package defines implementations.
type Object interface {
	Kind() Kind
	Raw() (raw.Object, error)
	sealed()
}

// Rectangle in PDF user space, origin at the bottom-left corner.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

func (r Rectangle) Width() float64  { return r.URX - r.LLX }
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

func (r Rectangle) array() *raw.ArrayObj {
	return raw.NewArray(number(r.LLX), number(r.LLY), number(r.URX), number(r.URY))
}

func number(f float64) raw.NumberObj {
	if f == float64(int64(f)) {
		return raw.NumberInt(int64(f))
	}
	return raw.NumberFloat(f)
}

func name(s string) raw.NameObj { return raw.NameLiteral(s) }

// Catalog is the document root.
type Catalog struct {
	Pages raw.ObjectRef
}

func (Catalog) Kind() Kind { return KindCatalog }
func (Catalog) sealed()    {}

func (c Catalog) Raw() (raw.Object, error) {
	if c.Pages.IsZero() {
		return nil, fmt.Errorf("catalog: missing /Pages")
	}
	d := raw.Dict()
	d.Set(name("Type"), name("Catalog"))
	d.Set(name("Pages"), raw.RefTo(c.Pages))
	return d, nil
}

// Pages is a flat page tree node holding every page as a direct kid.
type Pages struct {
	Kids []raw.ObjectRef
}

func (Pages) Kind() Kind { return KindPages }
func (Pages) sealed()    {}

func (p Pages) Raw() (raw.Object, error) {
	kids := raw.NewArray()
	for _, k := range p.Kids {
		kids.Append(raw.RefTo(k))
	}
	d := raw.Dict()
	d.Set(name("Type"), name("Pages"))
	d.Set(name("Kids"), kids)
	d.Set(name("Count"), raw.NumberInt(int64(len(p.Kids))))
	return d, nil
}

// Page is a leaf of the page tree. Contents is optional: pages whose bitmap
// could not be rendered are written without one.
type Page struct {
	Parent   raw.ObjectRef
	MediaBox Rectangle
	Contents raw.ObjectRef
	XObjects map[string]raw.ObjectRef
	Annots   []raw.ObjectRef
}

func (Page) Kind() Kind { return KindPage }
func (Page) sealed()    {}

func (p Page) Raw() (raw.Object, error) {
	if p.Parent.IsZero() {
		return nil, fmt.Errorf("page: missing /Parent")
	}
	d := raw.Dict()
	d.Set(name("Type"), name("Page"))
	d.Set(name("Parent"), raw.RefTo(p.Parent))
	d.Set(name("MediaBox"), p.MediaBox.array())

	res := raw.Dict()
	procSet := raw.NewArray(name("PDF"))
	if len(p.XObjects) > 0 {
		xo := raw.Dict()
		for n, ref := range p.XObjects {
			xo.Set(name(n), raw.RefTo(ref))
		}
		res.Set(name("XObject"), xo)
		procSet.Append(name("ImageC"))
	}
	res.Set(name("ProcSet"), procSet)
	d.Set(name("Resources"), res)

	if !p.Contents.IsZero() {
		d.Set(name("Contents"), raw.RefTo(p.Contents))
	}
	if len(p.Annots) > 0 {
		annots := raw.NewArray()
		for _, a := range p.Annots {
			annots.Append(raw.RefTo(a))
		}
		d.Set(name("Annots"), annots)
	}
	return d, nil
}

// Image is a DCT-encoded RGB image XObject.
type Image struct {
	Width, Height int
	JPEG          []byte
	SMask         raw.ObjectRef
}

func (Image) Kind() Kind { return KindImage }
func (Image) sealed()    {}

func (im Image) Raw() (raw.Object, error) {
	if im.Width <= 0 || im.Height <= 0 {
		return nil, fmt.Errorf("image: invalid size %dx%d", im.Width, im.Height)
	}
	d := imageDict(im.Width, im.Height, "DeviceRGB", filters.FilterDCT)
	if !im.SMask.IsZero() {
		d.Set(name("SMask"), raw.RefTo(im.SMask))
	}
	return raw.NewStream(d, im.JPEG), nil
}

// Mask is an 8-bit DeviceGray soft mask, one byte of alpha per pixel,
// Flate-compressed.
type Mask struct {
	Width, Height int
	Alpha         []byte
}

func (Mask) Kind() Kind { return KindMask }
func (Mask) sealed()    {}

func (m Mask) Raw() (raw.Object, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("mask: invalid size %dx%d", m.Width, m.Height)
	}
	return raw.NewStream(imageDict(m.Width, m.Height, "DeviceGray", filters.FilterFlate), m.Alpha), nil
}

func imageDict(w, h int, colorSpace, filter string) *raw.DictObj {
	d := raw.Dict()
	d.Set(name("Type"), name("XObject"))
	d.Set(name("Subtype"), name("Image"))
	d.Set(name("Width"), raw.NumberInt(int64(w)))
	d.Set(name("Height"), raw.NumberInt(int64(h)))
	d.Set(name("ColorSpace"), name(colorSpace))
	d.Set(name("BitsPerComponent"), raw.NumberInt(8))
	d.Set(name("Filter"), name(filter))
	return d
}

// Info is the document information dictionary. Empty fields are omitted.
type Info struct {
	Title        string
	Subject      string
	Keywords     string
	Author       string
	Creator      string
	Producer     string
	CreationDate time.Time
}

func (Info) Kind() Kind { return KindInfo }
func (Info) sealed()    {}

func (in Info) Raw() (raw.Object, error) {
	d := raw.Dict()
	for _, f := range []struct{ key, val string }{
		{"Title", in.Title},
		{"Subject", in.Subject},
		{"Keywords", in.Keywords},
		{"Author", in.Author},
		{"Creator", in.Creator},
		{"Producer", in.Producer},
	} {
		if f.val == "" {
			continue
		}
		s, err := raw.TextString(f.val)
		if err != nil {
			return nil, fmt.Errorf("info /%s: %w", f.key, err)
		}
		d.Set(name(f.key), s)
	}
	if !in.CreationDate.IsZero() {
		d.Set(name("CreationDate"), raw.Str([]byte(DateString(in.CreationDate))))
	}
	return d, nil
}

// Empty reports whether no entry would be written.
func (in Info) Empty() bool {
	return in.Title == "" && in.Subject == "" && in.Keywords == "" && in.Author == "" &&
		in.Creator == "" && in.Producer == "" && in.CreationDate.IsZero()
}

// DateString formats t as a PDF date, D:YYYYMMDDHHmmSS+HH'mm'.
func DateString(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, offset%3600/60)
}

// Link is a URI link annotation.
type Link struct {
	Rect Rectangle
	URI  string
}

func (Link) Kind() Kind { return KindLink }
func (Link) sealed()    {}

func (l Link) Raw() (raw.Object, error) {
	if l.URI == "" {
		return nil, fmt.Errorf("link: empty URI")
	}
	action := raw.Dict()
	action.Set(name("Type"), name("Action"))
	action.Set(name("S"), name("URI"))
	action.Set(name("URI"), raw.Str([]byte(l.URI)))

	d := raw.Dict()
	d.Set(name("Type"), name("Annot"))
	d.Set(name("Subtype"), name("Link"))
	d.Set(name("Rect"), l.Rect.array())
	d.Set(name("Border"), raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberInt(0)))
	d.Set(name("A"), action)
	return d, nil
}
