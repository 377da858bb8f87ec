package conformance

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

//go:embed manifest.cue
var manifestSchema string

// Manifest declares the three targets of a reconciliation run and its truth:
//
//	truth: cli
//	cli:      {path: argparse.py, name: set_cli_args}
//	class:    {path: classes.py, name: ConfigClass}
//	function: {path: methods.py, name: C.method_name}
type Manifest struct {
	Truth          string         `yaml:"truth"`
	EmitDefaultDoc *bool          `yaml:"emit_default_doc,omitempty"`
	InferType      bool           `yaml:"infer_type,omitempty"`
	MergeInner     string         `yaml:"merge_inner,omitempty"`
	CLI            ManifestTarget `yaml:"cli"`
	Class          ManifestTarget `yaml:"class"`
	Function       ManifestTarget `yaml:"function"`
}

// ManifestTarget locates one representation.
type ManifestTarget struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

// LoadManifest reads a YAML manifest, validates it against the manifest
// schema and resolves relative paths against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, t := range []*ManifestTarget{&m.CLI, &m.Class, &m.Function} {
		if !filepath.IsAbs(t.Path) {
			t.Path = filepath.Join(base, t.Path)
		}
	}
	return m, nil
}

// ParseManifest decodes and validates manifest YAML. Paths are returned
// as written.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateManifest(raw); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := map[string]string{}
	for i, t := range []ManifestTarget{m.CLI, m.Class, m.Function} {
		clean := filepath.Clean(t.Path)
		if prev, ok := seen[clean]; ok {
			return nil, fmt.Errorf("invalid manifest: %s and %s share path %s", prev, Order[i], t.Path)
		}
		seen[clean] = Order[i]
	}
	return &m, nil
}

// validateManifest unifies the decoded document with #Manifest.
func validateManifest(raw map[string]any) error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(manifestSchema, cue.Filename("manifest.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}

	doc := cctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return err
	}
	unified := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	return nil
}

// Options returns the view options the manifest selects, starting from
// defaults.
func (m *Manifest) Options(defaults views.Options) views.Options {
	opts := defaults
	if m.EmitDefaultDoc != nil {
		opts.EmitDefaultDoc = *m.EmitDefaultDoc
	}
	if m.InferType {
		opts.InferType = true
	}
	return opts
}

// Request reads and parses the three targets.
func (m *Manifest) Request(ctx context.Context, defaults views.Options) (Request, error) {
	req := Request{
		Truth:      m.Truth,
		Options:    m.Options(defaults),
		MergeInner: m.MergeInner,
	}
	for _, pair := range []struct {
		dst *Target
		src ManifestTarget
	}{
		{&req.CLI, m.CLI},
		{&req.Class, m.Class},
		{&req.Function, m.Function},
	} {
		t, err := LoadTarget(ctx, pair.src.Path, pair.src.Name)
		if err != nil {
			return Request{}, err
		}
		*pair.dst = t
	}
	return req, nil
}

// LoadTarget reads and parses one Python source file.
func LoadTarget(ctx context.Context, path, name string) (Target, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Target{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mod, err := syntax.Parse(ctx, src)
	if err != nil {
		return Target{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return Target{Location: path, Name: name, Module: mod}, nil
}
