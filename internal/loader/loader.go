// Package loader reads declarative scenario files.
//
// A scenario file describes one declaration whose steps reference shared
// steps registered in Go:
//
//	title: Checkout
//	metadata: {area: shop}
//	options:
//	  - key: payment
//	    variants:
//	      - {label: by card, value: card}
//	      - {label: by invoice, value: invoice}
//	as: [user]
//	steps:
//	  - setup: open shop, fill cart
//	  - action: pay
//	    metadata: {amount: 10}
//	  - verify: order placed
//	    unless: {payment: invoice}
//	  - context: receipt
//	    if: {payment: card}
//	    steps:
//	      - verify: receipt sent
//	  - teardown: empty cart
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scenaria/pkg/condition"
	"github.com/roach88/scenaria/pkg/metadata"
)

// File is a parsed scenario file.
type File struct {
	// Title names the declaration.
	Title string `yaml:"title"`

	// Metadata is declaration-level metadata.
	Metadata metadata.Metadata `yaml:"metadata,omitempty"`

	// Options are crossed with each other.
	Options []Axis `yaml:"options,omitempty"`

	// Diagonals are covered at least once each.
	Diagonals []Axis `yaml:"diagonals,omitempty"`

	// As lists the roles to run under. Ignored when no role plugin is
	// installed.
	As []string `yaml:"as,omitempty"`

	// WithoutUser runs the declaration without a role.
	WithoutUser bool `yaml:"without_user,omitempty"`

	// Skip excludes the file from the suite while keeping it valid.
	Skip bool `yaml:"skip,omitempty"`

	// Steps is the step tree.
	Steps []Step `yaml:"steps"`

	// Path is the file the declaration was read from.
	Path string `yaml:"-"`
}

// Axis is an option or diagonal.
type Axis struct {
	Key      string    `yaml:"key"`
	Variants []Variant `yaml:"variants"`
}

// Variant is one labelled value of an axis.
type Variant struct {
	Label string `yaml:"label"`
	Value any    `yaml:"value"`
}

// Step declares one step. Exactly one of the verb fields or Context is
// set.
type Step struct {
	Setup    Names `yaml:"setup,omitempty"`
	Action   Names `yaml:"action,omitempty"`
	Verify   Names `yaml:"verify,omitempty"`
	Teardown Names `yaml:"teardown,omitempty"`
	Cleanup  Names `yaml:"cleanup,omitempty"`

	// Context declares a group titled with its value.
	Context string `yaml:"context,omitempty"`
	Steps   []Step `yaml:"steps,omitempty"`

	// If and Unless take static condition specs: a key, a list of keys
	// or a map of expected values.
	If     any `yaml:"if,omitempty"`
	Unless any `yaml:"unless,omitempty"`

	// Title overrides the generated step title.
	Title string `yaml:"title,omitempty"`

	Metadata metadata.Metadata `yaml:"metadata,omitempty"`
}

// Names is a list of shared step names, written either as a sequence or
// as one comma separated string.
type Names []string

func (n *Names) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*n = nil
		for _, part := range strings.Split(value.Value, ",") {
			if s := strings.TrimSpace(part); s != "" {
				*n = append(*n, s)
			}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*n = list
		return nil
	}
	return fmt.Errorf("line %d: expected shared step names", value.Line)
}

// ValidationError names the offending field of a scenario file.
type ValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Message)
}

// LoadFile reads and validates a scenario file. Unknown fields are
// rejected.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates scenario YAML. Path is used in errors.
func Parse(path string, data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	f.Path = path
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadDir reads every *.yaml and *.yml file below dir in lexical order.
// A missing directory holds no scenarios. All files are read; the
// returned error joins every failure.
func LoadDir(dir string) ([]*File, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ext := filepath.Ext(path); !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(paths)

	var files []*File
	var errs []error
	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}
	return files, errors.Join(errs...)
}

// Validate checks required fields and condition specs.
func (f *File) Validate() error {
	if f.Title == "" {
		return f.invalid("title", "title is required")
	}
	if len(f.Steps) == 0 {
		return f.invalid("steps", "steps list is required and must be non-empty")
	}
	if err := f.validateAxes("options", f.Options); err != nil {
		return err
	}
	if err := f.validateAxes("diagonals", f.Diagonals); err != nil {
		return err
	}
	if f.WithoutUser && len(f.As) > 0 {
		return f.invalid("as", "cannot be combined with without_user")
	}
	return f.validateSteps("steps", f.Steps)
}

func (f *File) invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Path: f.Path, Field: field, Message: fmt.Sprintf(format, args...)}
}

func (f *File) validateAxes(field string, axes []Axis) error {
	seen := map[string]bool{}
	for i, a := range axes {
		at := fmt.Sprintf("%s[%d]", field, i)
		if a.Key == "" {
			return f.invalid(at+".key", "key is required")
		}
		if seen[a.Key] {
			return f.invalid(at+".key", "duplicate key %q", a.Key)
		}
		seen[a.Key] = true
		if len(a.Variants) == 0 {
			return f.invalid(at+".variants", "variants list is required and must be non-empty")
		}
	}
	return nil
}

func (f *File) validateSteps(field string, steps []Step) error {
	for i, s := range steps {
		at := fmt.Sprintf("%s[%d]", field, i)
		if err := f.validateStep(at, &s); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) validateStep(at string, s *Step) error {
	verbs := s.verbs()
	switch {
	case s.Context != "" && len(verbs) > 0:
		return f.invalid(at, "context cannot be combined with %s", verbs[0])
	case s.Context == "" && len(verbs) == 0:
		return f.invalid(at, "one of setup, action, verify, teardown, cleanup or context is required")
	case len(verbs) > 1:
		return f.invalid(at, "only one verb per step, got %s", strings.Join(verbs, " and "))
	}
	if s.Context == "" && len(s.Steps) > 0 {
		return f.invalid(at+".steps", "nested steps require context")
	}
	if s.If != nil && s.Unless != nil {
		return f.invalid(at, "if and unless cannot be combined")
	}
	if s.If != nil {
		if _, err := condition.Parse(s.If); err != nil {
			return f.invalid(at+".if", "%v", err)
		}
	}
	if s.Unless != nil {
		if _, err := condition.Parse(s.Unless); err != nil {
			return f.invalid(at+".unless", "%v", err)
		}
	}
	if s.Context != "" {
		if len(s.Steps) == 0 {
			return f.invalid(at+".steps", "context %q has no steps", s.Context)
		}
		return f.validateSteps(at+".steps", s.Steps)
	}
	return nil
}

// verbs lists the verb fields that are set.
func (s *Step) verbs() []string {
	var out []string
	for _, v := range []struct {
		name  string
		names Names
	}{
		{"setup", s.Setup},
		{"action", s.Action},
		{"verify", s.Verify},
		{"teardown", s.Teardown},
		{"cleanup", s.Cleanup},
	} {
		if len(v.names) > 0 {
			out = append(out, v.name)
		}
	}
	return out
}

// SharedNames returns every shared step the file references, sorted and
// without duplicates.
func (f *File) SharedNames() []string {
	seen := map[string]bool{}
	var walk func([]Step)
	walk = func(steps []Step) {
		for _, s := range steps {
			for _, n := range s.names() {
				seen[n] = true
			}
			walk(s.Steps)
		}
	}
	walk(f.Steps)

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *Step) names() Names {
	for _, n := range []Names{s.Setup, s.Action, s.Verify, s.Teardown, s.Cleanup} {
		if len(n) > 0 {
			return n
		}
	}
	return nil
}
