package syntax

import (
	"strings"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

// Lookup resolves a dotted path of function and class names, such as
// "C.method_name", against mod. When several definitions share a name the
// last one wins, as it would at import time.
func Lookup(mod *Module, path string) (Stmt, error) {
	if mod == nil {
		return nil, ir.NewNameNotFound(path, "")
	}
	body := mod.Body
	within := "module"
	var found Stmt
	for _, part := range strings.Split(path, ".") {
		i := lastDef(body, part)
		if i < 0 {
			return nil, ir.NewNameNotFound(path, within)
		}
		found = body[i]
		body = defBody(found)
		within = part
	}
	return found, nil
}

// Replace returns a copy of mod with the definition at path swapped for
// stmt. Definitions on the path are copied; everything else is shared.
func Replace(mod *Module, path string, stmt Stmt) (*Module, error) {
	body, err := replaceIn(mod.Body, strings.Split(path, "."), path, "module", stmt)
	if err != nil {
		return nil, err
	}
	return &Module{Body: body}, nil
}

func replaceIn(body []Stmt, parts []string, path, within string, stmt Stmt) ([]Stmt, error) {
	i := lastDef(body, parts[0])
	if i < 0 {
		return nil, ir.NewNameNotFound(path, within)
	}
	out := append([]Stmt(nil), body...)
	if len(parts) == 1 {
		out[i] = stmt
		return out, nil
	}

	inner, err := replaceIn(defBody(body[i]), parts[1:], path, parts[0], stmt)
	if err != nil {
		return nil, err
	}
	switch def := body[i].(type) {
	case *FunctionDef:
		c := *def
		c.Body = inner
		out[i] = &c
	case *ClassDef:
		c := *def
		c.Body = inner
		out[i] = &c
	}
	return out, nil
}

// Append returns a copy of mod with stmt added at the end.
func Append(mod *Module, stmt Stmt) *Module {
	body := make([]Stmt, 0, len(mod.Body)+1)
	body = append(body, mod.Body...)
	return &Module{Body: append(body, stmt)}
}

func lastDef(body []Stmt, name string) int {
	for i := len(body) - 1; i >= 0; i-- {
		switch def := body[i].(type) {
		case *FunctionDef:
			if def.Name == name {
				return i
			}
		case *ClassDef:
			if def.Name == name {
				return i
			}
		}
	}
	return -1
}

func defBody(s Stmt) []Stmt {
	switch def := s.(type) {
	case *FunctionDef:
		return def.Body
	case *ClassDef:
		return def.Body
	}
	return nil
}

// Docstring returns the cleaned docstring leading body.
func Docstring(body []Stmt) (string, bool) {
	if len(body) == 0 || !isDocstring(body[0]) {
		return "", false
	}
	return Cleandoc(body[0].(*ExprStmt).Value.(*Constant).Value.(string)), true
}

// SetDocstring returns body with its docstring replaced by doc. An empty doc
// removes the docstring.
func SetDocstring(body []Stmt, doc string) []Stmt {
	rest := body
	if len(body) > 0 && isDocstring(body[0]) {
		rest = body[1:]
	}
	if doc == "" {
		return append([]Stmt(nil), rest...)
	}
	out := make([]Stmt, 0, len(rest)+1)
	out = append(out, &ExprStmt{Value: Str(doc)})
	return append(out, rest...)
}

// WithoutDocstring returns body minus a leading docstring.
func WithoutDocstring(body []Stmt) []Stmt {
	if len(body) > 0 && isDocstring(body[0]) {
		return body[1:]
	}
	return body
}

// Cleandoc removes the indentation common to every line after the first,
// strips leading and trailing blank lines, and trims trailing whitespace.
func Cleandoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")

	margin := -1
	for _, l := range lines[1:] {
		content := strings.TrimLeft(l, " ")
		if content == "" {
			continue
		}
		if indent := len(l) - len(content); margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
