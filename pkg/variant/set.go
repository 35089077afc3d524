package variant

import (
	"strings"

	"github.com/roach88/scenaria/pkg/metadata"
)

// Set is one combination: at most one variant per axis key, in the order
// the keys were first added.
type Set struct {
	variants []Variant
}

// NewSet builds a set from variants. A later variant replaces an earlier
// one with the same key in place.
func NewSet(variants ...Variant) *Set {
	s := &Set{}
	for _, v := range variants {
		s.put(v)
	}
	return s
}

func (s *Set) put(v Variant) {
	for i, existing := range s.variants {
		if existing.key == v.key {
			s.variants[i] = v
			return
		}
	}
	s.variants = append(s.variants, v)
}

// With returns a new set holding the receiver's variants plus v.
func (s *Set) With(v Variant) *Set {
	out := &Set{variants: append([]Variant(nil), s.variants...)}
	out.put(v)
	return out
}

// Variants returns the chosen variants in order.
func (s *Set) Variants() []Variant {
	return append([]Variant(nil), s.variants...)
}

// Variant returns the variant chosen for key.
func (s *Set) Variant(key string) (Variant, bool) {
	for _, v := range s.variants {
		if v.key == key {
			return v, true
		}
	}
	return Variant{}, false
}

// Value returns the value chosen for key. Calculated values are resolved;
// two calculated values that read each other recurse without bound.
func (s *Set) Value(key string) any {
	v, ok := s.Variant(key)
	if !ok {
		return nil
	}
	if calc, ok := calculated(v.Value); ok {
		return calc(s)
	}
	return v.Value
}

// Title joins the non-empty variant labels with spaces.
func (s *Set) Title() string {
	parts := make([]string, 0, len(s.variants))
	for _, v := range s.variants {
		if v.Label != "" {
			parts = append(parts, v.Label)
		}
	}
	return strings.Join(parts, " ")
}

// Metadata merges every variant's contribution in order, then resolves
// calculated values against the finished set.
func (s *Set) Metadata() metadata.Metadata {
	out := metadata.Metadata{}
	for _, v := range s.variants {
		for k, val := range v.metadata() {
			out[k] = val
		}
	}
	for k, val := range out {
		if calc, ok := calculated(val); ok {
			out[k] = calc(s)
		}
	}
	return out
}

// Combinations expands options and diagonals into option sets.
//
// Options are crossed first, then diagonals, each diagonal contributing its
// next variant per source combination. While any diagonal is incomplete an
// extra combination is appended from the next variant of every axis.
// Finally sets matching skip are dropped. Axis cursors are reset first, so
// repeated calls return the same result.
func Combinations(options, diagonals []*Axis, skip func(*Set) bool) []*Set {
	axes := make([]*Axis, 0, len(options)+len(diagonals))
	axes = append(axes, options...)
	axes = append(axes, diagonals...)
	for _, a := range axes {
		a.Reset()
	}

	combinations := []*Set{NewSet()}
	for _, a := range axes {
		next := make([]*Set, 0, len(combinations)*max(1, a.Len()))
		for _, source := range combinations {
			level := a.LevelVariants()
			if len(level) == 0 {
				next = append(next, source)
				continue
			}
			for _, v := range level {
				next = append(next, source.With(v))
			}
		}
		combinations = next
	}

	for !allComplete(diagonals) {
		extra := NewSet()
		for _, a := range axes {
			if v, ok := a.NextVariant(); ok {
				extra.put(v)
			}
		}
		combinations = append(combinations, extra)
	}

	if skip == nil {
		return combinations
	}
	kept := combinations[:0]
	for _, c := range combinations {
		if !skip(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

func allComplete(axes []*Axis) bool {
	for _, a := range axes {
		if !a.Complete() {
			return false
		}
	}
	return true
}
