// Package filter provides the built-in execution filters.
package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/scenario"
)

// FocusKey is the metadata key Focus looks for.
const FocusKey = "focus"

// Text keeps executions whose title contains substr, ignoring case.
// Both sides are NFC normalized first, so composed and decomposed
// accents compare equal.
func Text(substr string) scenario.Filter {
	needle := fold(substr)
	return func(e *scenario.Execution) bool {
		return strings.Contains(fold(e.Title()), needle)
	}
}

func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Focus keeps executions with truthy "focus" metadata.
func Focus() scenario.Filter {
	return func(e *scenario.Execution) bool {
		return e.Metadata().Truthy(FocusKey)
	}
}

// Metadata keeps executions whose metadata under key equals value, or is
// a member of value when value is a list.
func Metadata(key string, value any) scenario.Filter {
	return func(e *scenario.Execution) bool {
		actual := e.Metadata().Get(key)
		if found, isList := metadata.Contains(value, actual); isList {
			return found
		}
		return metadata.Equal(actual, value)
	}
}

// Titles keeps executions whose full title is listed, e.g. the failed
// scenarios of a previous run.
func Titles(titles []string) scenario.Filter {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	return func(e *scenario.Execution) bool {
		_, ok := set[e.Title()]
		return ok
	}
}
