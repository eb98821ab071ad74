package writer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/pdfexport/ir/raw"
)

func serializeIndirect(ref raw.ObjectRef, obj raw.Object) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d %d obj\n", ref.Num, ref.Gen)
	if s, ok := obj.(*raw.StreamObj); ok {
		s.Dict.Set(raw.NameLiteral("Length"), raw.NumberInt(s.Length()))
	}
	appendObject(&b, obj)
	b.WriteString("\nendobj\n")
	return b.Bytes()
}

func serializeDirect(obj raw.Object) []byte {
	var b bytes.Buffer
	appendObject(&b, obj)
	return b.Bytes()
}

func appendObject(b *bytes.Buffer, o raw.Object) {
	switch v := o.(type) {
	case nil:
		b.WriteString("null")
	case raw.NameObj:
		b.WriteString("/" + pdfNameLiteral(v.Value()))
	case raw.NumberObj:
		if v.IsInteger() {
			b.WriteString(strconv.FormatInt(v.Int(), 10))
		} else {
			b.WriteString(formatReal(v.Float()))
		}
	case raw.BoolObj:
		if v.Value() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case raw.NullObj:
		b.WriteString("null")
	case raw.String:
		if v.IsHex() {
			b.WriteByte('<')
			b.WriteString(strings.ToUpper(hex.EncodeToString(v.Value())))
			b.WriteByte('>')
		} else {
			b.Write(escapeLiteralString(v.Value()))
		}
	case *raw.ArrayObj:
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			appendObject(b, it)
		}
		b.WriteByte(']')
	case *raw.DictObj:
		b.WriteString("<<")
		for _, k := range v.SortedKeys() {
			b.WriteString(" /" + pdfNameLiteral(k) + " ")
			appendObject(b, v.KV[k])
		}
		b.WriteString(" >>")
	case *raw.StreamObj:
		appendObject(b, v.Dict)
		b.WriteString("\nstream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
	case raw.Reference:
		fmt.Fprintf(b, "%d %d R", v.Ref().Num, v.Ref().Gen)
	default:
		b.WriteString("null")
	}
}

// formatReal writes a fixed-point number with at most four decimals, which
// is well below the resolution of a PDF user-space unit.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func escapeLiteralString(rawBytes []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, ch := range rawBytes {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '\b':
			b.WriteString("\\b")
		case '\f':
			b.WriteString("\\f")
		default:
			if ch < 0x20 || ch >= 0x80 {
				fmt.Fprintf(&b, "\\%03o", ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}

func pdfNameLiteral(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' || ch == '.' {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "#%02X", ch)
	}
	return b.String()
}
