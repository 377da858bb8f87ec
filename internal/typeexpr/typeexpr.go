// Package typeexpr parses and prints the textual type expressions carried in
// Param.Type: dotted names, subscripted generics and literal arguments.
//
//	int
//	Optional[str]
//	Literal['np', 'tf']
//	Union[1, 2]
//	Tuple[ArgumentParser, Tuple[np.ndarray, np.ndarray]]
//
// String prints the canonical spelling: single-quoted strings and ", "
// between arguments. Two spellings of the same type normalize identically.
package typeexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

// Expr is one type expression.
type Expr struct {
	Name     []string   `(   @Ident ( "." @Ident )*`
	Args     *Subscript `    @@?`
	Str      *string    `  | @String`
	Number   *string    `  | @Number`
	Ellipsis bool       `  | @Ellipsis`
	List     *List      `  | @@ )`
}

// Subscript is the bracketed argument list of a generic.
type Subscript struct {
	Items []*Expr `"[" ( @@ ( "," @@ )* ","? )? "]"`
}

// List is a bracketed list used as an argument, as in Callable[[int], str].
type List struct {
	Items []*Expr `"[" ( @@ ( "," @@ )* ","? )? "]"`
}

var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[\[\].,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var typeParser = participle.MustBuild[Expr](
	participle.Lexer(typeLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a type expression.
func Parse(s string) (*Expr, error) {
	e, err := typeParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to parse type %q: %w", s, err)
	}
	e.walk(func(x *Expr) {
		if x.Str != nil {
			unq := unquote(*x.Str)
			x.Str = &unq
		}
	})
	return e, nil
}

// walk visits e and every nested expression.
func (e *Expr) walk(fn func(*Expr)) {
	fn(e)
	var items []*Expr
	if e.Args != nil {
		items = e.Args.Items
	}
	if e.List != nil {
		items = e.List.Items
	}
	for _, item := range items {
		item.walk(fn)
	}
}

// Head returns the dotted name of e ("" for literals).
func (e *Expr) Head() string {
	return strings.Join(e.Name, ".")
}

// Items returns the subscript arguments of e.
func (e *Expr) Items() []*Expr {
	if e.Args == nil {
		return nil
	}
	return e.Args.Items
}

// String prints e in canonical form.
func (e *Expr) String() string {
	var b strings.Builder
	e.print(&b)
	return b.String()
}

func (e *Expr) print(b *strings.Builder) {
	switch {
	case e.Str != nil:
		b.WriteString(ir.QuoteString(*e.Str))
	case e.Number != nil:
		b.WriteString(*e.Number)
	case e.Ellipsis:
		b.WriteString("...")
	case e.List != nil:
		printItems(b, e.List.Items)
	default:
		b.WriteString(e.Head())
		if e.Args != nil {
			printItems(b, e.Args.Items)
		}
	}
}

func printItems(b *strings.Builder, items []*Expr) {
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		item.print(b)
	}
	b.WriteByte(']')
}

// Value returns the literal value of e when it is one: a string, a number,
// or one of True, False, None.
func (e *Expr) Value() (ir.Value, bool) {
	switch {
	case e.Str != nil:
		return ir.Str(*e.Str), true
	case e.Number != nil:
		if i, err := strconv.ParseInt(*e.Number, 10, 64); err == nil {
			return ir.Int(i), true
		}
		if f, err := strconv.ParseFloat(*e.Number, 64); err == nil {
			return ir.Float(f), true
		}
	case e.Args == nil && len(e.Name) == 1:
		switch e.Name[0] {
		case "True":
			return ir.Bool(true), true
		case "False":
			return ir.Bool(false), true
		case "None":
			return ir.None{}, true
		}
	}
	return nil, false
}

// Normalize returns the canonical spelling of s, or s trimmed when it does
// not parse.
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	e, err := Parse(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return e.String()
}

// Optional wraps typ as Optional[typ]. Already optional types are returned
// unchanged.
func Optional(typ string) string {
	if _, ok := UnwrapOptional(typ); ok {
		return Normalize(typ)
	}
	return "Optional[" + Normalize(typ) + "]"
}

// UnwrapOptional returns T for Optional[T].
func UnwrapOptional(typ string) (string, bool) {
	return unwrap(typ, "Optional")
}

// Literal renders a literal-value-set type from rendered elements.
func Literal(elems []string) string {
	return "Literal[" + strings.Join(elems, ", ") + "]"
}

// Union renders a union type from rendered elements.
func Union(elems []string) string {
	return "Union[" + strings.Join(elems, ", ") + "]"
}

// Choices returns the literal values of a Literal[...] or Union[...] whose
// arguments are all literals, as produced by Literal and Union.
func Choices(typ string) (values []ir.Value, ok bool) {
	e, err := Parse(typ)
	if err != nil || (e.Head() != "Literal" && e.Head() != "Union") || e.Args == nil {
		return nil, false
	}
	for _, item := range e.Items() {
		v, isLit := item.Value()
		if !isLit {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

// ParserHandle is the type name of the argument-parser handle.
const ParserHandle = "ArgumentParser"

// ParserPair renders Tuple[ArgumentParser, typ].
func ParserPair(typ string) string {
	return "Tuple[" + ParserHandle + ", " + Normalize(typ) + "]"
}

// SecondOf returns the second argument of a two-element generic such as
// Tuple[ArgumentParser, T].
func SecondOf(typ string) (string, bool) {
	e, err := Parse(typ)
	if err != nil || len(e.Items()) != 2 {
		return "", false
	}
	return e.Items()[1].String(), true
}

// IsParserPair reports whether typ is Tuple[ArgumentParser, T].
func IsParserPair(typ string) bool {
	e, err := Parse(typ)
	if err != nil || e.Head() != "Tuple" || len(e.Items()) != 2 {
		return false
	}
	return e.Items()[0].Head() == ParserHandle
}

// unwrap returns the single argument of head[T].
func unwrap(typ, head string) (string, bool) {
	e, err := Parse(typ)
	if err != nil || e.Head() != head || len(e.Items()) != 1 {
		return "", false
	}
	return e.Items()[0].String(), true
}

// unquote decodes a quoted String token.
func unquote(tok string) string {
	if len(tok) < 2 {
		return tok
	}
	body := tok[1 : len(tok)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
