package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment is the set of values describing a target environment:
// URLs, credentials, feature switches. Steps read it through the scope.
type Environment struct {
	Name   string
	Source string
	values map[string]any
}

// NewEnvironment wraps already decoded values.
func NewEnvironment(name string, values map[string]any) *Environment {
	if values == nil {
		values = map[string]any{}
	}
	return &Environment{Name: name, values: values}
}

// LoadEnvironment reads <dir>/<name>.yml, .yaml or .cue, in that order.
// A missing definition yields an empty environment.
func LoadEnvironment(dir, name string) (*Environment, error) {
	if name == "" {
		return nil, ErrEmptyEnv
	}
	for _, ext := range []string{".yml", ".yaml", ".cue"} {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}

		var values map[string]any
		if ext == ".cue" {
			values, err = decodeCUE(path, data)
		} else {
			values, err = decodeYAML(data)
		}
		if err != nil {
			return nil, fmt.Errorf("environment %s: %w", path, err)
		}
		env := NewEnvironment(name, values)
		env.Source = path
		return env, nil
	}
	return NewEnvironment(name, nil), nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func decodeCUE(path string, data []byte) (map[string]any, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	var values map[string]any
	if err := v.Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}

// Get returns the value at a dot separated path, or nil.
func (e *Environment) Get(path string) any {
	if path == "" {
		return e.values
	}
	var cur any = e.values
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = m[part]; !ok {
			return nil
		}
	}
	return cur
}

// String returns the value at path formatted as a string, or "".
func (e *Environment) String(path string) string {
	switch v := e.Get(path).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Decode copies the value at path into target, matching fields by their
// mapstructure tags. An empty path decodes the whole environment.
func (e *Environment) Decode(path string, target any) error {
	v := e.Get(path)
	if v == nil {
		return fmt.Errorf("environment %s: no value at %q", e.Name, path)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("environment %s: decoding %q: %w", e.Name, path, err)
	}
	return nil
}

// Keys returns the top-level keys in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
