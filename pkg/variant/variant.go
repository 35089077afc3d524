// Package variant implements variation axes and the combination algorithm
// that expands them into option sets.
//
// An Option axis multiplies: every combination is crossed with each of its
// variants. A Diagonal axis only needs coverage: each combination takes the
// axis's next variant round-robin, and extra combinations are generated
// until every diagonal has handed out all of its variants at least once.
package variant

import (
	"fmt"

	"github.com/roach88/scenaria/pkg/metadata"
)

// Calculated is a value derived from the finished combination. It is
// resolved after every axis has chosen its variant, so it may read other
// axes through the Set.
type Calculated func(*Set) any

// calculated recognises a Calculated value, declared either with the
// named type or as a plain func(*Set) any literal.
func calculated(v any) (Calculated, bool) {
	switch fn := v.(type) {
	case Calculated:
		return fn, fn != nil
	case func(*Set) any:
		return fn, fn != nil
	}
	return nil, false
}

// Variant is one labelled value of an axis.
type Variant struct {
	Label string
	Value any

	key  string
	axis *Axis
}

// V builds a variant for use with NewOption and NewDiagonal. A value of
// type Calculated or func(*Set) any is resolved against the finished
// combination.
func V(label string, value any) Variant {
	return Variant{Label: label, Value: value}
}

// Key returns the metadata key of the axis the variant belongs to.
func (v Variant) Key() string { return v.key }

// metadata returns the variant's contribution: the value under the axis
// key, map values expanded into key_subkey entries, and nil for subkeys
// other variants of the axis define but this one does not.
func (v Variant) metadata() metadata.Metadata {
	data := metadata.Metadata{v.key: v.Value}
	if _, calc := calculated(v.Value); !calc {
		if sub, ok := metadata.ToMetadata(v.Value); ok {
			for k, val := range sub {
				data[v.key+"_"+k] = val
			}
		}
	}
	if v.axis != nil {
		for _, k := range v.axis.AvailableKeys() {
			if _, ok := data[k]; !ok {
				data[k] = nil
			}
		}
	}
	return data
}

// Kind distinguishes Option axes from Diagonal axes.
type Kind int

const (
	KindOption Kind = iota
	KindDiagonal
)

func (k Kind) String() string {
	if k == KindDiagonal {
		return "diagonal"
	}
	return "option"
}

// Axis is a metadata key with an ordered list of variants and a
// round-robin cursor.
type Axis struct {
	Key  string
	Kind Kind

	variants []Variant
	current  int
	complete bool
	keys     []string
}

// NewOption builds a cross-product axis.
func NewOption(key string, variants ...Variant) *Axis {
	return newAxis(key, KindOption, variants)
}

// NewDiagonal builds a coverage axis.
func NewDiagonal(key string, variants ...Variant) *Axis {
	return newAxis(key, KindDiagonal, variants)
}

func newAxis(key string, kind Kind, variants []Variant) *Axis {
	a := &Axis{Key: key, Kind: kind}
	a.variants = make([]Variant, len(variants))
	for i, v := range variants {
		v.key = key
		v.axis = a
		a.variants[i] = v
	}
	return a
}

// Variants returns the axis variants in declared order.
func (a *Axis) Variants() []Variant {
	return append([]Variant(nil), a.variants...)
}

// Len returns the number of variants.
func (a *Axis) Len() int { return len(a.variants) }

// Validate reports axes that cannot produce combinations.
func (a *Axis) Validate() error {
	if a.Key == "" {
		return fmt.Errorf("%s axis: empty key", a.Kind)
	}
	if len(a.variants) == 0 {
		return fmt.Errorf("%s axis %q: no variants", a.Kind, a.Key)
	}
	return nil
}

// LevelVariants returns the variants one combination level is crossed
// with: all of them for an Option, the next one for a Diagonal.
func (a *Axis) LevelVariants() []Variant {
	if a.Kind == KindDiagonal {
		if v, ok := a.NextVariant(); ok {
			return []Variant{v}
		}
		return nil
	}
	return a.Variants()
}

// NextVariant returns the variant under the cursor and advances it,
// wrapping around. The axis becomes complete when the cursor wraps.
func (a *Axis) NextVariant() (Variant, bool) {
	if len(a.variants) == 0 {
		a.complete = true
		return Variant{}, false
	}
	v := a.variants[a.current]
	a.current++
	if a.current >= len(a.variants) {
		a.current = 0
		a.complete = true
	}
	return v, true
}

// Complete reports whether every variant has been handed out by
// NextVariant at least once.
func (a *Axis) Complete() bool { return a.complete }

// Reset rewinds the cursor.
func (a *Axis) Reset() {
	a.current = 0
	a.complete = false
}

// AvailableKeys lists the key_subkey entries any variant of the axis
// contributes.
func (a *Axis) AvailableKeys() []string {
	if a.keys != nil {
		return a.keys
	}
	seen := map[string]bool{}
	keys := []string{}
	for _, v := range a.variants {
		if _, calc := v.Value.(Calculated); calc {
			continue
		}
		sub, ok := metadata.ToMetadata(v.Value)
		if !ok {
			continue
		}
		for _, k := range sub.Keys() {
			full := a.Key + "_" + k
			if !seen[full] {
				seen[full] = true
				keys = append(keys, full)
			}
		}
	}
	a.keys = keys
	return keys
}
