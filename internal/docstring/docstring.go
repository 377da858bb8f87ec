// Package docstring reads and writes the field-list docstring grammar:
//
//	Short description.
//
//	Long description.
//
//	:param name: doc
//	:type name: ```T```
//	:return: doc
//	:rtype: ```T```
//
// :cvar is accepted as an alias of :param. Tag order is free; the first tag
// naming a parameter fixes its position.
package docstring

import (
	"strings"

	"github.com/SamuelMarks/docstring2class/internal/defaults"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/typeexpr"
)

// Style selects the tag vocabulary Emit writes.
type Style int

const (
	// StyleParam writes :param and :type pairs, plus :return and :rtype.
	StyleParam Style = iota

	// StyleCvar writes only :cvar lines. Types live in field annotations.
	StyleCvar
)

// Parse reads doc into an IR. Required flags are left undetermined.
// With emitDefault set, a trailing "Defaults to X." sentence in a param doc
// becomes that param's default.
func Parse(doc string, emitDefault bool) *ir.IR {
	r := ir.New("")
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	first := len(lines)
	for i, l := range lines {
		if _, ok := splitTag(l); ok {
			first = i
			break
		}
	}
	r.ShortDoc, r.LongDoc = splitProse(lines[:first])

	var extra []string
	var cur *tagLine
	flush := func() {
		if cur == nil {
			return
		}
		if !apply(r, cur) {
			extra = append(extra, cur.raw)
		}
		cur = nil
	}
	for _, l := range lines[first:] {
		if t, ok := splitTag(l); ok {
			flush()
			cur = &t
			continue
		}
		text := strings.TrimSpace(l)
		if cur == nil || text == "" {
			continue
		}
		cur.body = joinText(cur.body, text)
		cur.raw += "\n" + text
	}
	flush()

	if len(extra) > 0 {
		r.LongDoc = joinParagraphs(r.LongDoc, strings.Join(extra, "\n"))
	}

	if emitDefault {
		for _, p := range r.Params {
			p.Doc, p.Default = defaults.Extract(p.Doc, true)
		}
	}
	return r
}

// tagLine is one field-list entry, continuation lines included.
type tagLine struct {
	tag  string // param, cvar, type, return, returns, rtype, or another field
	arg  string // the name after the tag, possibly "type name"
	body string
	raw  string
}

// splitTag recognizes ":tag arg: body".
func splitTag(line string) (tagLine, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, ":") {
		return tagLine{}, false
	}
	end := strings.Index(s[1:], ":")
	if end < 0 {
		return tagLine{}, false
	}
	field := strings.Fields(s[1 : end+1])
	if len(field) == 0 {
		return tagLine{}, false
	}
	return tagLine{
		tag:  field[0],
		arg:  strings.Join(field[1:], " "),
		body: strings.TrimSpace(s[end+2:]),
		raw:  s,
	}, true
}

// apply folds t into r, reporting false for tags outside the grammar.
func apply(r *ir.IR, t *tagLine) bool {
	switch t.tag {
	case "param", "cvar", "arg", "argument":
		name, typ := t.arg, ""
		if i := strings.LastIndex(name, " "); i >= 0 {
			typ, name = name[:i], name[i+1:]
		}
		if name == "" {
			return false
		}
		p := param(r, name)
		p.Doc = t.body
		if typ != "" && p.Type == "" {
			p.Type = typeexpr.Normalize(typ)
		}
	case "type":
		if t.arg == "" {
			return false
		}
		param(r, t.arg).Type = typeexpr.Normalize(stripTicks(t.body))
	case "return", "returns":
		returns(r).Doc = t.body
	case "rtype":
		returns(r).Type = typeexpr.Normalize(stripTicks(t.body))
	default:
		return false
	}
	return true
}

func param(r *ir.IR, name string) *ir.Param {
	if p := r.Params.Get(name); p != nil {
		return p
	}
	p := &ir.Param{Name: name}
	r.Params.Set(p)
	return p
}

func returns(r *ir.IR) *ir.Param {
	if r.Returns == nil {
		r.Returns = &ir.Param{Name: ir.ReturnKey}
	}
	return r.Returns
}

// splitProse separates the first paragraph from the rest.
func splitProse(lines []string) (short, long string) {
	var paras []string
	var cur []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if len(cur) > 0 {
				paras = append(paras, strings.Join(cur, "\n"))
				cur = nil
			}
			continue
		}
		cur = append(cur, strings.TrimRight(l, " \t"))
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, "\n"))
	}
	if len(paras) == 0 {
		return "", ""
	}
	return paras[0], strings.Join(paras[1:], "\n\n")
}

func joinText(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

func joinParagraphs(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n\n" + b
}

// stripTicks removes the backtick quoting around a type.
func stripTicks(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "`"))
}

// ticks quotes a type the way Emit writes it.
func ticks(typ string) string {
	return "```" + typ + "```"
}

// Emit renders r as docstring text. With emitDefault set, param defaults are
// announced in their docs; the returns entry never is. Tags with nothing to
// say are left out.
func Emit(r *ir.IR, style Style, emitDefault bool) string {
	var blocks []string
	if r.ShortDoc != "" {
		blocks = append(blocks, r.ShortDoc)
	}
	if r.LongDoc != "" {
		blocks = append(blocks, r.LongDoc)
	}

	switch style {
	case StyleCvar:
		var lines []string
		for _, p := range r.Params {
			p = defaults.SetDefaultDoc(p, emitDefault)
			if p.Doc != "" {
				lines = append(lines, field("cvar", p.Name, p.Doc))
			}
		}
		if r.Returns != nil && r.Returns.Doc != "" {
			lines = append(lines, field("cvar", ir.ReturnKey, r.Returns.Doc))
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	default:
		for _, p := range r.Params {
			p = defaults.SetDefaultDoc(p, emitDefault)
			var lines []string
			if p.Doc != "" {
				lines = append(lines, field("param", p.Name, p.Doc))
			}
			if p.Type != "" {
				lines = append(lines, field("type", p.Name, ticks(p.Type)))
			}
			if len(lines) > 0 {
				blocks = append(blocks, strings.Join(lines, "\n"))
			}
		}
		if ret := r.Returns; ret != nil && (ret.Doc != "" || ret.Type != "") {
			var lines []string
			if ret.Doc != "" {
				lines = append(lines, field("return", "", ret.Doc))
			}
			if ret.Type != "" {
				lines = append(lines, field("rtype", "", ticks(ret.Type)))
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func field(tag, name, body string) string {
	head := ":" + tag
	if name != "" {
		head += " " + name
	}
	head += ":"
	if body == "" {
		return head
	}
	return head + " " + body
}
