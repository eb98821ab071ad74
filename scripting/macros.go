package scripting

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// MacroTimeout bounds the evaluation of a single bracketed expression.
const MacroTimeout = time.Second

var macroNames = strings.NewReplacer(
	"TotalPages#", totalPagesVar,
	"Page#", pageVar,
)

// Expand replaces every [expression] in text with its value. Expressions
// that fail to evaluate, or evaluate to undefined, are left untouched.
func Expand(ctx context.Context, e Engine, text string) string {
	if e == nil || !strings.Contains(text, "[") {
		return text
	}
	var out strings.Builder
	for {
		open := strings.IndexByte(text, '[')
		if open < 0 {
			break
		}
		end := closingBracket(text, open)
		if end < 0 {
			break
		}
		out.WriteString(text[:open])
		out.WriteString(evalMacro(ctx, e, text[open:end+1]))
		text = text[end+1:]
	}
	out.WriteString(text)
	return out.String()
}

func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func evalMacro(ctx context.Context, e Engine, macro string) string {
	expr := strings.TrimSpace(macro[1 : len(macro)-1])
	if expr == "" {
		return macro
	}
	ctx, cancel := context.WithTimeout(ctx, MacroTimeout)
	defer cancel()
	v, err := e.Execute(ctx, macroNames.Replace(expr))
	if err != nil {
		return macro
	}
	s, ok := formatValue(v)
	if !ok {
		return macro
	}
	return s
}

func formatValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}
