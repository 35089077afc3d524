package scenario

import (
	"fmt"
	"strings"

	"github.com/roach88/scenaria/pkg/metadata"
)

// Func is a step body. It runs with the live scope of its execution.
type Func func(s *Scope) error

type argKind int

const (
	argShared argKind = iota
	argMeta
	argFunc
)

// Arg is a step argument: shared step names, a metadata key whose value
// supplies steps, or an inline body. Args are resolved once per
// combination into a flat list of shared names and bodies.
type Arg struct {
	kind argKind
	text string
	fn   Func
}

// Shared references one or more shared steps. Names are comma separated.
func Shared(names string) Arg {
	return Arg{kind: argShared, text: names}
}

// Meta reads steps from the combination metadata under key. The value may
// be a string of shared names, a Func, an Arg, or a list of those.
func Meta(key string) Arg {
	return Arg{kind: argMeta, text: key}
}

// Do wraps an inline body.
func Do(fn Func) Arg {
	return Arg{kind: argFunc, fn: fn}
}

func (a Arg) String() string {
	switch a.kind {
	case argShared:
		return fmt.Sprintf("shared(%s)", a.text)
	case argMeta:
		return fmt.Sprintf("meta(%s)", a.text)
	}
	return "func"
}

// token is one resolved argument: either a shared step name or a body.
type token struct {
	name string
	fn   Func
}

func splitNames(s string) []token {
	var out []token
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, token{name: name})
		}
	}
	return out
}

// resolveArgs flattens args against combination metadata.
func resolveArgs(args []Arg, md metadata.Metadata) ([]token, error) {
	var out []token
	for _, a := range args {
		switch a.kind {
		case argShared:
			out = append(out, splitNames(a.text)...)
		case argFunc:
			if a.fn != nil {
				out = append(out, token{fn: a.fn})
			}
		case argMeta:
			toks, err := valueTokens(md.Get(a.text), a.text)
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		}
	}
	return out, nil
}

func valueTokens(v any, key string) ([]token, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return splitNames(t), nil
	case Func:
		return []token{{fn: t}}, nil
	case func(*Scope) error:
		return []token{{fn: t}}, nil
	case Arg:
		if t.kind == argMeta {
			return nil, newBuildError("metadata %q refers to another metadata key %q", key, t.text)
		}
		return resolveArgs([]Arg{t}, nil)
	case []string:
		var out []token
		for _, s := range t {
			out = append(out, splitNames(s)...)
		}
		return out, nil
	case []Arg:
		var out []token
		for _, a := range t {
			toks, err := valueTokens(a, key)
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		}
		return out, nil
	case []any:
		var out []token
		for _, e := range t {
			toks, err := valueTokens(e, key)
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		}
		return out, nil
	}
	return nil, newBuildError("metadata %q: cannot use %T as a step", key, v)
}
