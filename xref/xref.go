// Package xref reads the classic cross-reference table of a PDF file and
// checks that it matches the objects actually present.
package xref

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Table holds object offsets for a classic xref table.
type Table interface {
	Lookup(objNum int) (offset int64, gen int, found bool)
	Objects() []int
	// Size is the /Size entry of the trailer.
	Size() int
	// StartXRef is the byte offset of the xref keyword.
	StartXRef() int64
	// Trailer returns the raw bytes of the trailer dictionary.
	Trailer() []byte
}

// Resolver locates and parses xref information in a PDF.
type Resolver interface {
	Resolve(ctx context.Context, r io.ReaderAt) (Table, error)
}

// NewResolver returns a classic-table resolver.
func NewResolver() Resolver {
	return &tableResolver{}
}

type tableResolver struct{}

var sizeRE = regexp.MustCompile(`/Size\s+(\d+)`)

func (t *tableResolver) Resolve(ctx context.Context, r io.ReaderAt) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := readAll(r)

	startxref := bytes.LastIndex(data, []byte("startxref"))
	if startxref < 0 {
		return nil, errors.New("startxref not found")
	}
	rest := data[startxref+len("startxref"):]
	lines := bufio.NewScanner(bytes.NewReader(rest))
	var offset int64
	for lines.Scan() {
		text := strings.TrimSpace(lines.Text())
		if text == "" {
			continue
		}
		val, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse startxref: %w", err)
		}
		offset = val
		break
	}

	if offset <= 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("xref offset out of range: %d", offset)
	}

	tableData := data[offset:]
	sc := bufio.NewScanner(bytes.NewReader(tableData))
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "xref" {
		return nil, errors.New("xref keyword not found at offset")
	}

	tbl := &table{entries: make(map[int]entry), startxref: offset}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "trailer") {
			break
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid xref subsection header: %q", line)
		}
		startObj, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("parse xref start: %w", err)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("parse xref count: %w", err)
		}

		for i := 0; i < count; i++ {
			if !sc.Scan() {
				return nil, errors.New("unexpected end of xref section")
			}
			entryLine := sc.Text()
			if len(strings.TrimRight(entryLine, " \r")) != entryWidth-2 {
				return nil, fmt.Errorf("xref entry %d is not %d bytes wide: %q", startObj+i, entryWidth, entryLine)
			}
			fields := strings.Fields(entryLine)
			if len(fields) < 3 {
				return nil, fmt.Errorf("invalid xref entry: %q", entryLine)
			}
			off, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse xref offset: %w", err)
			}
			gen, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("parse xref gen: %w", err)
			}
			if len(fields[2]) == 0 || fields[2][0] != 'n' {
				continue // free entry
			}
			tbl.entries[startObj+i] = entry{offset: off, gen: gen}
		}
	}

	trailerAt := bytes.Index(tableData, []byte("trailer"))
	if trailerAt < 0 {
		return nil, errors.New("trailer not found")
	}
	end := bytes.Index(tableData[trailerAt:], []byte("startxref"))
	if end < 0 {
		return nil, errors.New("trailer not terminated by startxref")
	}
	tbl.trailer = bytes.TrimSpace(tableData[trailerAt+len("trailer") : trailerAt+end])
	m := sizeRE.FindSubmatch(tbl.trailer)
	if m == nil {
		return nil, errors.New("trailer has no /Size")
	}
	tbl.size, _ = strconv.Atoi(string(m[1]))

	return tbl, nil
}

// entryWidth is the fixed length of one xref entry including its EOL.
const entryWidth = 20

type entry struct {
	offset int64
	gen    int
}

type table struct {
	entries   map[int]entry
	size      int
	startxref int64
	trailer   []byte
}

func (t *table) Lookup(objNum int) (int64, int, bool) {
	e, ok := t.entries[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

func (t *table) Objects() []int {
	out := make([]int, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func (t *table) Size() int        { return t.size }
func (t *table) StartXRef() int64 { return t.startxref }
func (t *table) Trailer() []byte  { return t.trailer }

func readAll(r io.ReaderAt) []byte {
	var buf bytes.Buffer
	const chunk = int64(32 * 1024)
	for off := int64(0); ; off += chunk {
		tmp := make([]byte, chunk)
		n, err := r.ReadAt(tmp, off)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil {
			break
		}
		if int64(n) < chunk {
			break
		}
	}
	return buf.Bytes()
}
