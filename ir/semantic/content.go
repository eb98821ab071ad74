package semantic

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/pdfexport/ir/raw"
)

// Contents is a page content stream built up operator by operator.
type Contents struct {
	buf bytes.Buffer
}

func (*Contents) Kind() Kind { return KindContents }
func (*Contents) sealed()    {}

// DrawImage paints the named image XObject so that it covers r.
func (c *Contents) DrawImage(xobject string, r Rectangle) {
	fmt.Fprintf(&c.buf, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
		formatNumber(r.Width()), formatNumber(r.Height()), formatNumber(r.LLX), formatNumber(r.LLY), xobject)
}

// Len returns the number of bytes accumulated so far.
func (c *Contents) Len() int { return c.buf.Len() }

// Bytes returns the operators accumulated so far.
func (c *Contents) Bytes() []byte { return c.buf.Bytes() }

func (c *Contents) Raw() (raw.Object, error) {
	data := make([]byte, c.buf.Len())
	copy(data, c.buf.Bytes())
	return raw.NewStream(raw.Dict(), data), nil
}

func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
