// Package condition decides whether a step belongs to a scenario.
//
// A Condition is either static or dynamic. Static conditions are checked
// once while a scenario is built, against the merged metadata of one option
// combination; steps that do not match are never built. Dynamic conditions
// are checked while the scenario runs, against the live execution context;
// nodes that do not match stay in the tree with status ignored.
//
// A nil *Condition always matches.
package condition

import (
	"fmt"
	"strings"

	"github.com/roach88/scenaria/pkg/metadata"
)

// Context is the live execution state a dynamic condition is evaluated
// against.
type Context interface {
	Metadata() metadata.Metadata
	Get(name string, args ...any) (any, error)
}

// Predicate is a dynamic condition body.
type Predicate func(Context) bool

type kind int

const (
	kindKey kind = iota
	kindAllKeys
	kindFields
	kindBool
	kindFunc
)

// Condition is an immutable inclusion rule.
type Condition struct {
	kind     kind
	key      string
	keys     []string
	fields   metadata.Metadata
	value    bool
	fn       Predicate
	positive bool
}

// Key matches when the metadata value under key is truthy.
func Key(key string) *Condition {
	return &Condition{kind: kindKey, key: key, positive: true}
}

// AllKeys matches when every listed key is truthy.
func AllKeys(keys ...string) *Condition {
	return &Condition{kind: kindAllKeys, keys: append([]string(nil), keys...), positive: true}
}

// Fields matches when every key equals its expected value. An expected
// value that is a list matches by membership.
func Fields(md metadata.Metadata) *Condition {
	return &Condition{kind: kindFields, fields: md.Clone(), positive: true}
}

// Bool is a constant condition.
func Bool(v bool) *Condition {
	return &Condition{kind: kindBool, value: v, positive: true}
}

// Func is a dynamic condition evaluated at run time.
func Func(fn Predicate) *Condition {
	return &Condition{kind: kindFunc, fn: fn, positive: true}
}

// Parse converts a loosely typed specification into a Condition:
//
//	string                    -> Key
//	[]string or []any         -> AllKeys
//	map with string keys      -> Fields
//	bool                      -> Bool
//	Predicate, func(Context) bool -> Func
//	*Condition                -> itself
func Parse(spec any) (*Condition, error) {
	switch s := spec.(type) {
	case nil:
		return nil, fmt.Errorf("condition: empty specification")
	case *Condition:
		return s, nil
	case string:
		if s == "" {
			return nil, fmt.Errorf("condition: empty key")
		}
		return Key(s), nil
	case bool:
		return Bool(s), nil
	case Predicate:
		return Func(s), nil
	case func(Context) bool:
		return Func(s), nil
	case []string:
		return AllKeys(s...), nil
	case []any:
		keys := make([]string, 0, len(s))
		for i, k := range s {
			str, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("condition: key %d is %T, want string", i, k)
			}
			keys = append(keys, str)
		}
		return AllKeys(keys...), nil
	}
	if md, ok := metadata.ToMetadata(spec); ok {
		return Fields(md), nil
	}
	return nil, fmt.Errorf("condition: unsupported specification %T", spec)
}

// Not returns a copy with the result inverted.
func (c *Condition) Not() *Condition {
	if c == nil {
		return Bool(false)
	}
	out := *c
	out.positive = !c.positive
	return &out
}

// Positive reports whether the condition is used as-is (true) or inverted.
func (c *Condition) Positive() bool {
	return c == nil || c.positive
}

// IsDynamic reports whether the condition is deferred to run time.
func (c *Condition) IsDynamic() bool {
	return c != nil && c.kind == kindFunc
}

// MatchStatic evaluates a static condition against combination metadata.
// Dynamic conditions are not decided at build time and always match here.
func (c *Condition) MatchStatic(md metadata.Metadata) bool {
	if c == nil || c.kind == kindFunc {
		return true
	}
	return c.apply(c.matchMetadata(md))
}

// MatchDynamic evaluates a dynamic condition against the live context.
// Static conditions were settled at build time and always match here.
func (c *Condition) MatchDynamic(ctx Context) bool {
	if c == nil || c.kind != kindFunc {
		return true
	}
	return c.apply(c.fn(ctx))
}

func (c *Condition) apply(matched bool) bool {
	if c.positive {
		return matched
	}
	return !matched
}

func (c *Condition) matchMetadata(md metadata.Metadata) bool {
	switch c.kind {
	case kindKey:
		return md.Truthy(c.key)
	case kindAllKeys:
		for _, k := range c.keys {
			if !md.Truthy(k) {
				return false
			}
		}
		return true
	case kindFields:
		for k, expected := range c.fields {
			actual := md.Get(k)
			if found, isList := metadata.Contains(expected, actual); isList {
				if !found {
					return false
				}
				continue
			}
			if !metadata.Equal(actual, expected) {
				return false
			}
		}
		return true
	case kindBool:
		return c.value
	}
	return false
}

// String renders the condition for diagnostics.
func (c *Condition) String() string {
	if c == nil {
		return "always"
	}
	var body string
	switch c.kind {
	case kindKey:
		body = c.key
	case kindAllKeys:
		body = "[" + strings.Join(c.keys, ", ") + "]"
	case kindFields:
		parts := make([]string, 0, len(c.fields))
		for _, k := range c.fields.Keys() {
			parts = append(parts, fmt.Sprintf("%s=%v", k, c.fields[k]))
		}
		body = "{" + strings.Join(parts, ", ") + "}"
	case kindBool:
		body = fmt.Sprintf("%t", c.value)
	case kindFunc:
		body = "dynamic"
	}
	if !c.positive {
		return "not " + body
	}
	return body
}
