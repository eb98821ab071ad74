package semantic

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdfexport/ir/raw"
)

func dictOf(t *testing.T, o Object) *raw.DictObj {
	t.Helper()
	r, err := o.Raw()
	if err != nil {
		t.Fatalf("%s: %v", o.Kind(), err)
	}
	switch v := r.(type) {
	case *raw.DictObj:
		return v
	case *raw.StreamObj:
		return v.Dict
	}
	t.Fatalf("%s: unexpected raw type %T", o.Kind(), r)
	return nil
}

func keys(d *raw.DictObj) []string { return d.SortedKeys() }

func TestImageSMaskIsOptional(t *testing.T) {
	opaque := dictOf(t, Image{Width: 2, Height: 3, JPEG: []byte{0xFF, 0xD8}})
	if _, ok := opaque.KV["SMask"]; ok {
		t.Fatalf("opaque image must not carry /SMask")
	}
	if f := opaque.KV["Filter"].(raw.NameObj).Value(); f != "DCTDecode" {
		t.Fatalf("filter %q", f)
	}

	masked := dictOf(t, Image{Width: 2, Height: 3, SMask: raw.ObjectRef{Num: 7}})
	ref, ok := masked.KV["SMask"].(raw.RefObj)
	if !ok || ref.Ref().Num != 7 {
		t.Fatalf("expected /SMask 7 0 R, got %v", masked.KV["SMask"])
	}
}

func TestMaskIsGray(t *testing.T) {
	d := dictOf(t, Mask{Width: 4, Height: 1, Alpha: []byte{1, 2, 3, 4}})
	want := []string{"Type", "Subtype", "BitsPerComponent", "ColorSpace", "Filter", "Height", "Width"}
	if diff := cmp.Diff(want, keys(d)); diff != "" {
		t.Fatalf("mask keys (-want +got):\n%s", diff)
	}
	if cs := d.KV["ColorSpace"].(raw.NameObj).Value(); cs != "DeviceGray" {
		t.Fatalf("color space %q", cs)
	}
}

func TestInfoOmitsEmptyFields(t *testing.T) {
	d := dictOf(t, Info{Title: "T", Author: "A"})
	if diff := cmp.Diff([]string{"Author", "Title"}, keys(d)); diff != "" {
		t.Fatalf("info keys (-want +got):\n%s", diff)
	}
	if !(Info{}).Empty() {
		t.Fatalf("zero Info should be empty")
	}
	if (Info{Keywords: "k"}).Empty() {
		t.Fatalf("Info with keywords is not empty")
	}
}

func TestInfoTitleIsUTF16(t *testing.T) {
	d := dictOf(t, Info{Title: "Отчёт"})
	s := d.KV["Title"].(raw.StringObj)
	got, err := raw.DecodeTextString(s.Value())
	if err != nil || got != "Отчёт" {
		t.Fatalf("decoded %q, %v", got, err)
	}
	if s.Value()[0] != 0xFE || s.Value()[1] != 0xFF {
		t.Fatalf("missing BOM")
	}
}

func TestDateString(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{2 * 3600, "D:20240305140709+02'00'"},
		{5*3600 + 30*60, "D:20240305140709+05'30'"},
		{-(3*3600 + 30*60), "D:20240305140709-03'30'"},
		{0, "D:20240305140709+00'00'"},
	}
	for _, tt := range tests {
		ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("", tt.offset))
		if got := DateString(ts); got != tt.want {
			t.Errorf("offset %d: got %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestPageResources(t *testing.T) {
	p := Page{
		Parent:   raw.ObjectRef{Num: 1},
		MediaBox: Rectangle{0, 0, 595.5, 842},
		Contents: raw.ObjectRef{Num: 4},
		XObjects: map[string]raw.ObjectRef{"Im3": {Num: 3}},
	}
	d := dictOf(t, p)
	if _, ok := d.KV["Annots"]; ok {
		t.Fatalf("no links, no /Annots")
	}
	res := d.KV["Resources"].(*raw.DictObj)
	xo := res.KV["XObject"].(*raw.DictObj)
	if ref := xo.KV["Im3"].(raw.RefObj).Ref(); ref.Num != 3 {
		t.Fatalf("xobject ref %v", ref)
	}
	mb := d.KV["MediaBox"].(*raw.ArrayObj)
	if mb.Items[2].(raw.NumberObj).Float() != 595.5 || !mb.Items[3].(raw.NumberObj).IsInteger() {
		t.Fatalf("media box %v", mb.Items)
	}

	p.Contents = raw.ObjectRef{}
	p.XObjects = nil
	p.Annots = []raw.ObjectRef{{Num: 9}}
	d = dictOf(t, p)
	if _, ok := d.KV["Contents"]; ok {
		t.Fatalf("page without image must not reference contents")
	}
	if d.KV["Annots"].(*raw.ArrayObj).Len() != 1 {
		t.Fatalf("expected one annotation")
	}
}

func TestRequiredReferences(t *testing.T) {
	if _, err := (Catalog{}).Raw(); err == nil {
		t.Fatalf("catalog without pages should fail")
	}
	if _, err := (Page{}).Raw(); err == nil {
		t.Fatalf("page without parent should fail")
	}
	if _, err := (Link{}).Raw(); err == nil {
		t.Fatalf("link without URI should fail")
	}
}

func TestPagesCount(t *testing.T) {
	d := dictOf(t, Pages{Kids: []raw.ObjectRef{{Num: 2}, {Num: 5}}})
	if d.KV["Count"].(raw.NumberObj).Int() != 2 || d.KV["Kids"].(*raw.ArrayObj).Len() != 2 {
		t.Fatalf("pages %v", d.KV)
	}
}

func TestContentsDrawImage(t *testing.T) {
	var c Contents
	c.DrawImage("Im5", Rectangle{0, 0, 446.25, 631.5})
	want := "q\n446.25 0 0 631.5 0 0 cm\n/Im5 Do\nQ\n"
	if got := string(c.Bytes()); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	s, _ := c.Raw()
	if string(s.(*raw.StreamObj).Data) != want {
		t.Fatalf("stream data mismatch")
	}
}

func TestLinkAnnotation(t *testing.T) {
	d := dictOf(t, Link{Rect: Rectangle{10, 20, 110, 40}, URI: "https://example.com"})
	a := d.KV["A"].(*raw.DictObj)
	if uri := string(a.KV["URI"].(raw.StringObj).Value()); uri != "https://example.com" {
		t.Fatalf("uri %q", uri)
	}
	if st := d.KV["Subtype"].(raw.NameObj).Value(); st != "Link" {
		t.Fatalf("subtype %q", st)
	}
}
