package xref

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// Verify resolves the xref table of the file in r and checks that every
// object number in [1, Size) has an in-use entry whose offset points at
// "<num> <gen> obj", and that every object found in the body is indexed.
func Verify(ctx context.Context, r io.ReaderAt) (Table, error) {
	tbl, err := NewResolver().Resolve(ctx, r)
	if err != nil {
		return nil, err
	}
	data := readAll(r)
	for num := 1; num < tbl.Size(); num++ {
		off, gen, ok := tbl.Lookup(num)
		if !ok {
			return tbl, fmt.Errorf("object %d: no in-use xref entry", num)
		}
		if off < 0 || off >= int64(len(data)) {
			return tbl, fmt.Errorf("object %d: offset %d outside file", num, off)
		}
		want := []byte(fmt.Sprintf("%d %d obj", num, gen))
		if !bytes.HasPrefix(data[off:], want) {
			return tbl, fmt.Errorf("object %d: offset %d does not start with %q", num, off, want)
		}
	}
	if objs := tbl.Objects(); len(objs) > 0 && objs[len(objs)-1] >= tbl.Size() {
		return tbl, fmt.Errorf("xref entry %d beyond /Size %d", objs[len(objs)-1], tbl.Size())
	}
	for num, off := range ScanObjects(data) {
		if got, _, ok := tbl.Lookup(num); !ok || got != off {
			return tbl, fmt.Errorf("object %d at offset %d missing from xref", num, off)
		}
	}
	return tbl, nil
}
