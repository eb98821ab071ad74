package xref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/wudi/pdfexport/ir/raw"
)

var (
	infoRefRE = regexp.MustCompile(`/Info\s+(\d+)\s+(\d+)\s+R`)
	infoKeyRE = regexp.MustCompile(`/([A-Za-z]+)\s*\(`)
)

// Info returns the literal-string entries of the document information
// dictionary, decoded from PDF text strings. A file without /Info yields
// an empty map.
func Info(ctx context.Context, r io.ReaderAt) (map[string]string, error) {
	tbl, err := NewResolver().Resolve(ctx, r)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	m := infoRefRE.FindSubmatch(tbl.Trailer())
	if m == nil {
		return out, nil
	}
	num, _ := strconv.Atoi(string(m[1]))
	off, _, ok := tbl.Lookup(num)
	if !ok {
		return nil, fmt.Errorf("info object %d not in xref", num)
	}
	data := readAll(r)
	if off < 0 || off >= int64(len(data)) {
		return nil, fmt.Errorf("info object %d: offset %d outside file", num, off)
	}
	body := data[off:]
	if end := bytes.Index(body, []byte("endobj")); end >= 0 {
		body = body[:end]
	}

	for pos := 0; pos < len(body); {
		loc := infoKeyRE.FindSubmatchIndex(body[pos:])
		if loc == nil {
			break
		}
		key := string(body[pos+loc[2] : pos+loc[3]])
		open := pos + loc[1] - 1
		lit, n, err := raw.UnescapeLiteral(body[open:])
		if err != nil {
			return nil, fmt.Errorf("info /%s: %w", key, err)
		}
		s, err := raw.DecodeTextString(lit)
		if err != nil {
			return nil, fmt.Errorf("info /%s: %w", key, err)
		}
		out[key] = s
		pos = open + n
	}
	return out, nil
}
