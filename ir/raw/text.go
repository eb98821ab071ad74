package raw

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// TextString encodes s as a PDF text string: UTF-16BE preceded by the
// FE FF byte order mark.
func TextString(s string) (StringObj, error) {
	b, err := utf16BOM.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return StringObj{}, fmt.Errorf("encode text string: %w", err)
	}
	return Str(b), nil
}

// DecodeTextString is the inverse of TextString. Strings without a byte
// order mark are returned unchanged (PDFDocEncoding is treated as Latin-1
// compatible ASCII).
func DecodeTextString(b []byte) (string, error) {
	if !bytes.HasPrefix(b, []byte{0xFE, 0xFF}) {
		return string(b), nil
	}
	out, err := utf16BOM.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode text string: %w", err)
	}
	return string(out), nil
}

var errUnterminatedLiteral = errors.New("unterminated literal string")

// UnescapeLiteral decodes a PDF literal string. src must start with the
// opening parenthesis; the number of bytes consumed is returned along with
// the decoded value.
func UnescapeLiteral(src []byte) ([]byte, int, error) {
	if len(src) == 0 || src[0] != '(' {
		return nil, 0, errors.New("literal string must start with '('")
	}
	var out []byte
	depth := 1
	for i := 1; i < len(src); i++ {
		ch := src[i]
		switch ch {
		case '(':
			depth++
			out = append(out, ch)
		case ')':
			depth--
			if depth == 0 {
				return out, i + 1, nil
			}
			out = append(out, ch)
		case '\\':
			i++
			if i >= len(src) {
				return nil, 0, errUnterminatedLiteral
			}
			switch c := src[i]; c {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// line continuation
				if i+1 < len(src) && src[i+1] == '\n' {
					i++
				}
			case '\n':
			default:
				if c >= '0' && c <= '7' {
					v := int(c - '0')
					for k := 0; k < 2 && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '7'; k++ {
						i++
						v = v*8 + int(src[i]-'0')
					}
					out = append(out, byte(v))
				} else {
					out = append(out, c)
				}
			}
		default:
			out = append(out, ch)
		}
	}
	return nil, 0, errUnterminatedLiteral
}
