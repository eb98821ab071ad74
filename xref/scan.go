package xref

import (
	"bytes"
	"regexp"
	"strconv"
)

var objHeaderRE = regexp.MustCompile(`(?m)^(\d+) (\d+) obj\b`)

// ScanObjects finds object headers in the body of a file written top to
// bottom: a header counts only at the start of the body or right after an
// "endobj" line. The xref table itself is not consulted.
func ScanObjects(data []byte) map[int]int64 {
	end := bytes.LastIndex(data, []byte("\nxref\n"))
	if end < 0 {
		end = len(data)
	}
	body := data[:end]
	found := make(map[int]int64)
	for _, m := range objHeaderRE.FindAllSubmatchIndex(body, -1) {
		start := m[0]
		if !bytes.HasSuffix(body[:start], []byte("endobj\n")) && !isFirstObject(body, start) {
			continue
		}
		num, err := strconv.Atoi(string(body[m[2]:m[3]]))
		if err != nil {
			continue
		}
		found[num] = int64(start)
	}
	return found
}

// isFirstObject reports whether only header comment lines precede start.
func isFirstObject(body []byte, start int) bool {
	for _, line := range bytes.Split(body[:start], []byte("\n")) {
		if len(line) > 0 && line[0] != '%' {
			return false
		}
	}
	return true
}
