package ir

import (
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface representing a parameter default.
// Only None, Str, Int, Float, Bool, List, Tuple and Expr implement it.
//
// Expr carries an unevaluated source fragment for defaults that are not
// simple literals (calls, attribute chains, arithmetic).
type Value interface {
	irValue() // Sealed - only these types implement it

	// Repr renders the value as Python source.
	Repr() string
}

// None is the literal None.
type None struct{}

func (None) irValue() {}

// Repr implements Value.
func (None) Repr() string { return "None" }

// Str is a string literal.
type Str string

func (Str) irValue() {}

// Repr implements Value.
func (s Str) Repr() string { return QuoteString(string(s)) }

// Int is an integer literal.
type Int int64

func (Int) irValue() {}

// Repr implements Value.
func (i Int) Repr() string { return strconv.FormatInt(int64(i), 10) }

// Float is a floating point literal.
type Float float64

func (Float) irValue() {}

// Repr implements Value. Integral floats keep a trailing ".0" so that the
// rendering parses back as a float.
func (f Float) Repr() string {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return "float('inf')"
	case math.IsInf(v, -1):
		return "float('-inf')"
	case math.IsNaN(v):
		return "float('nan')"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Bool is a boolean literal.
type Bool bool

func (Bool) irValue() {}

// Repr implements Value.
func (b Bool) Repr() string {
	if b {
		return "True"
	}
	return "False"
}

// List is a list literal.
type List []Value

func (List) irValue() {}

// Repr implements Value.
func (l List) Repr() string { return "[" + joinRepr(l) + "]" }

// Tuple is a tuple literal.
type Tuple []Value

func (Tuple) irValue() {}

// Repr implements Value.
func (t Tuple) Repr() string {
	if len(t) == 1 {
		return "(" + t[0].Repr() + ",)"
	}
	return "(" + joinRepr(t) + ")"
}

// Expr is an unevaluated source fragment.
type Expr string

func (Expr) irValue() {}

// Repr implements Value.
func (e Expr) Repr() string { return string(e) }

func joinRepr(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.Repr()
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether v has zero length: an empty string or an empty
// sequence. Other values are never empty.
func IsEmpty(v Value) bool {
	switch val := v.(type) {
	case Str:
		return len(val) == 0
	case List:
		return len(val) == 0
	case Tuple:
		return len(val) == 0
	case Expr:
		return len(strings.TrimSpace(string(val))) == 0
	default:
		return false
	}
}

// IsNone reports whether v is nil or the literal None.
func IsNone(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(None)
	return ok
}

// TypeName returns the elementary type name of a scalar literal
// ("int", "float", "str", "bool"), or "" when the value has none.
func TypeName(v Value) string {
	switch v.(type) {
	case Str:
		return "str"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	default:
		return ""
	}
}

// ZeroValue returns the canonical zero value for an elementary type name.
// ok is false for any other type.
func ZeroValue(typ string) (v Value, ok bool) {
	switch typ {
	case "int":
		return Int(0), true
	case "float":
		return Float(0), true
	case "str":
		return Str(""), true
	case "bool":
		return Bool(false), true
	default:
		return nil, false
	}
}

// QuoteString renders s as a single-quoted Python string literal.
// Double quotes are used when s contains a single quote and no double quote.
func QuoteString(s string) string {
	quote := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = '"'
	}

	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatInt(int64(r)|0x100, 16)[1:])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// jsonValue converts v to a plain Go value for JSON output.
// Expr fragments are wrapped so they cannot be mistaken for strings.
func jsonValue(v Value) any {
	switch val := v.(type) {
	case nil, None:
		return nil
	case Str:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonValue(e)
		}
		return out
	case Tuple:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonValue(e)
		}
		return out
	case Expr:
		return map[string]any{"expr": string(val)}
	default:
		return nil
	}
}
