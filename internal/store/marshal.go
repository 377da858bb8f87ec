package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

// timeLayout is the created_at column format.
const timeLayout = time.RFC3339Nano

// MarshalIR converts an IR to the JSON text stored in runs.canonical.
// Uses json.Encoder with HTML escaping disabled so docs keep < > & verbatim.
func MarshalIR(r *ir.IR) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("marshal canonical IR: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}
