// Package defaults moves a parameter default between prose and structure.
//
// The canonical announcement is a trailing sentence of the form
//
//	Defaults to <value>.
//
// Extract recognizes it case-insensitively (backticks around the value are
// tolerated); SetDefaultDoc always writes the canonical phrasing. Only the
// canonical phrasing round-trips byte-for-byte.
package defaults

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

// Phrase is the announcement prefix written by SetDefaultDoc.
const Phrase = "Defaults to"

var announcement = regexp.MustCompile(`(?i)defaults to`)

// Extract removes a trailing default announcement from doc.
// It returns the doc without the sentence and the parsed value, or doc
// unchanged and nil when there is no announcement. With emit false the
// extraction is skipped and the default is always nil.
func Extract(doc string, emit bool) (string, ir.Value) {
	if !emit {
		return doc, nil
	}

	trimmed := strings.TrimRightFunc(doc, unicode.IsSpace)
	locs := announcement.FindAllStringIndex(trimmed, -1)
	if len(locs) == 0 {
		return doc, nil
	}
	start, end := locs[len(locs)-1][0], locs[len(locs)-1][1]

	before := strings.TrimRightFunc(trimmed[:start], unicode.IsSpace)
	if before != "" && !strings.ContainsRune(".!?", rune(before[len(before)-1])) {
		// Mentioned mid-sentence: not an announcement.
		return doc, nil
	}

	raw := strings.TrimSpace(trimmed[end:])
	raw = strings.TrimSuffix(raw, ".")
	if strings.Contains(raw, ". ") || strings.Contains(raw, "\n") {
		// More prose follows, so this is not the trailing sentence.
		return doc, nil
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))
	if raw == "" {
		return doc, nil
	}

	return before, ParseValue(raw)
}

// SetDefaultDoc appends the canonical announcement for p.Default to p.Doc.
// It is a no-op (returning p itself) when emit is false, when there is no
// default, when the default has zero length, or when the doc already
// mentions "defaults to". Otherwise a modified copy is returned.
func SetDefaultDoc(p *ir.Param, emit bool) *ir.Param {
	if p == nil || !emit || !p.HasDefault() || ir.IsEmpty(p.Default) {
		return p
	}
	if strings.Contains(strings.ToLower(p.Doc), "defaults to") {
		return p
	}

	doc := strings.TrimRightFunc(p.Doc, unicode.IsSpace)
	if doc != "" && !strings.HasSuffix(doc, ".") {
		doc += "."
	}
	sentence := Phrase + " " + Render(p.Default) + "."

	out := p.Clone()
	if doc == "" {
		out.Doc = sentence
	} else {
		out.Doc = doc + " " + sentence
	}
	return out
}

// Render formats v the way it appears in an announcement: strings bare,
// everything else as Python source.
func Render(v ir.Value) string {
	if s, ok := v.(ir.Str); ok {
		return string(s)
	}
	return v.Repr()
}

// ParseValue interprets announcement text. Integers, floats and the booleans
// True/False become typed literals; anything else is kept verbatim as a
// string.
func ParseValue(s string) ir.Value {
	switch s {
	case "True":
		return ir.Bool(true)
	case "False":
		return ir.Bool(false)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ir.Int(i)
	}
	if looksNumeric(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ir.Float(f)
		}
	}
	return ir.Str(s)
}

// looksNumeric rejects the words ParseFloat accepts ("inf", "NaN") and
// Go-only forms like hex floats and underscores.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return false
		}
	}
	return strings.ContainsAny(s, "0123456789")
}
