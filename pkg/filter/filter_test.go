package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/internal/ids"
	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/scenario"
	"github.com/roach88/scenaria/pkg/variant"
)

func ok(*scenario.Scope) error { return nil }

// built returns the titles that survive f across a fixed set of
// declarations.
func built(t *testing.T, f scenario.Filter) []string {
	t.Helper()
	s := scenario.NewSuite(
		scenario.WithIDGenerator(ids.NewSequenceGenerator("exec")),
		scenario.WithFilter(f),
	)
	require.NoError(t, s.Define("Créer un compte", func(b *scenario.Builder) {
		b.Option("user", variant.V("admin", "admin"), variant.V("guest", "guest"))
		b.It("x", ok)
	}))
	require.NoError(t, s.Define("Checkout", func(b *scenario.Builder) {
		b.Metadata(metadata.Metadata{"focus": true, "user": "guest"})
		b.It("x", ok)
	}))

	var titles []string
	for _, e := range s.World().Executions() {
		titles = append(titles, e.Title())
	}
	return titles
}

func TestText(t *testing.T) {
	assert.Equal(t, []string{"Checkout"}, built(t, Text("CHECK")))
	assert.Equal(t, []string{"Créer un compte admin"}, built(t, Text("compte ADMIN")))
	// Decomposed "e" + combining acute matches the composed title.
	assert.Len(t, built(t, Text("CRE\u0301ER")), 2)
	assert.Empty(t, built(t, Text("missing")))
}

func TestFocus(t *testing.T) {
	assert.Equal(t, []string{"Checkout"}, built(t, Focus()))
}

func TestMetadata(t *testing.T) {
	assert.Equal(t, []string{"Créer un compte guest", "Checkout"}, built(t, Metadata("user", "guest")))
	assert.Len(t, built(t, Metadata("user", []string{"admin", "guest"})), 3)
	assert.Empty(t, built(t, Metadata("user", "root")))
}

func TestTitles(t *testing.T) {
	assert.Equal(t, []string{"Créer un compte admin", "Checkout"},
		built(t, Titles([]string{"Checkout", "Créer un compte admin", "Gone"})))
	assert.Empty(t, built(t, Titles(nil)))
}
