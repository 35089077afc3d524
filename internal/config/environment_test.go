package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/internal/config"
	"github.com/roach88/scenaria/pkg/scenario"
)

var _ scenario.Environment = (*config.Environment)(nil)

type site struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"`
}

func TestLoadEnvironment_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "qa.yml", "site:\n  url: https://qa.example.com\n  timeout: 5\nadmin: root\n")

	env, err := config.LoadEnvironment(dir, "qa")
	require.NoError(t, err)

	assert.Equal(t, "qa", env.Name)
	assert.Equal(t, "https://qa.example.com", env.Get("site.url"))
	assert.Equal(t, "root", env.String("admin"))
	assert.Equal(t, "5", env.String("site.timeout"))
	assert.Nil(t, env.Get("site.missing"))
	assert.Nil(t, env.Get("admin.name"))
	assert.Equal(t, []string{"admin", "site"}, env.Keys())

	var s site
	require.NoError(t, env.Decode("site", &s))
	assert.Equal(t, site{URL: "https://qa.example.com", Timeout: 5}, s)
}

func TestLoadEnvironment_CUE(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stage.cue", `
host: "stage.example.com"
site: {
	url:     "https://\(host)"
	timeout: 10
}
`)

	env, err := config.LoadEnvironment(dir, "stage")
	require.NoError(t, err)

	var s site
	require.NoError(t, env.Decode("site", &s))
	assert.Equal(t, site{URL: "https://stage.example.com", Timeout: 10}, s)
}

func TestLoadEnvironment_CUENotConcrete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stage.cue", "site: url: string\n")

	_, err := config.LoadEnvironment(dir, "stage")
	assert.Error(t, err)
}

func TestLoadEnvironment_PrefersYML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "qa.yml", "from: yml\n")
	writeFile(t, dir, "qa.yaml", "from: yaml\n")

	env, err := config.LoadEnvironment(dir, "qa")
	require.NoError(t, err)
	assert.Equal(t, "yml", env.String("from"))
}

func TestLoadEnvironment_Missing(t *testing.T) {
	env, err := config.LoadEnvironment(t.TempDir(), "nowhere")
	require.NoError(t, err)

	assert.Empty(t, env.Keys())
	assert.Nil(t, env.Get("anything"))
	assert.Error(t, env.Decode("site", &site{}))
}

func TestLoadEnvironment_BadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "qa.yml", "site: [unclosed\n")

	_, err := config.LoadEnvironment(dir, "qa")
	assert.Error(t, err)
}

func TestLoadEnvironment_EmptyName(t *testing.T) {
	_, err := config.LoadEnvironment(t.TempDir(), "")
	assert.ErrorIs(t, err, config.ErrEmptyEnv)
}
