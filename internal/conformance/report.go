package conformance

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteReport writes one "<status>\t<location>" line per representation in
// report order.
func (r *Result) WriteReport(w io.Writer) error {
	for _, o := range r.Outcomes {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", o.Status, o.Location); err != nil {
			return err
		}
	}
	return nil
}

// WriteModified persists every modified source to its location and returns
// the locations written. Unchanged representations are never rewritten.
func WriteModified(r *Result) ([]string, error) {
	var written []string
	for _, o := range r.Modified() {
		if err := WriteSource(o.Location, o.Source); err != nil {
			return written, err
		}
		written = append(written, o.Location)
	}
	return written, nil
}

// WriteSource atomically replaces the file at path with src.
func WriteSource(path string, src []byte) error {
	if err := writeAtomic(path, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeAtomic replaces path through a temporary file in the same directory,
// keeping the original permissions.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
