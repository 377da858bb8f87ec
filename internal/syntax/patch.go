package syntax

import (
	"bytes"
	"fmt"
	"strings"
)

// Patch returns the source of mod with the definition at path replaced by
// stmt. Only the definition's own lines change: comments, blank lines and
// code around it are kept byte for byte. A module without Source is
// printed whole.
func Patch(mod *Module, path string, stmt Stmt) ([]byte, error) {
	existing, err := Lookup(mod, path)
	if err != nil {
		return nil, err
	}
	if mod.Source == nil {
		out, err := Replace(mod, path, stmt)
		if err != nil {
			return nil, err
		}
		return []byte(Unparse(out)), nil
	}

	sp := spanOf(existing)
	src := mod.Source
	if sp.IsZero() || sp.Start > sp.End || sp.End > len(src) {
		return nil, fmt.Errorf("patch %s: definition has no source range", path)
	}

	lineStart := bytes.LastIndexByte(src[:sp.Start], '\n') + 1
	indent := string(src[lineStart:sp.Start])
	if strings.TrimLeft(indent, " \t") != "" {
		return nil, fmt.Errorf("patch %s: definition does not start its line", path)
	}

	text := indentLines(strings.TrimSuffix(Unparse(stmt), "\n"), indent)
	if src[sp.End-1] == '\n' {
		text += "\n"
	}

	out := make([]byte, 0, len(src)-(sp.End-sp.Start)+len(text))
	out = append(out, src[:sp.Start]...)
	out = append(out, text...)
	return append(out, src[sp.End:]...), nil
}

// Extend returns the source of mod with stmt appended at module level.
func Extend(mod *Module, stmt Stmt) []byte {
	if mod.Source == nil {
		return []byte(Unparse(Append(mod, stmt)))
	}
	head := bytes.TrimRight(mod.Source, " \t\r\n")
	if len(head) == 0 {
		return []byte(Unparse(stmt))
	}
	out := make([]byte, 0, len(head)+3)
	out = append(out, head...)
	out = append(out, "\n\n\n"...)
	return append(out, Unparse(stmt)...)
}

func spanOf(s Stmt) Span {
	switch def := s.(type) {
	case *FunctionDef:
		return def.Span
	case *ClassDef:
		return def.Span
	}
	return Span{}
}

// indentLines prefixes every non-empty line after the first with indent.
// The first line continues the indentation already in the source.
func indentLines(text, indent string) string {
	if indent == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
