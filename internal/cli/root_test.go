package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/pkg/scenario"
)

const checkoutFile = `
title: Checkout
options:
  - key: payment
    variants:
      - {label: by card, value: card}
      - {label: by invoice, value: invoice}
steps:
  - setup: open shop
  - action: pay
`

// defineShop registers the shared steps used by checkoutFile and one Go
// declared scenario. Paying by card fails.
func defineShop(s *scenario.Suite) error {
	if err := s.SharedStep("open shop", func(b *scenario.Builder) {
		b.Action().Do(func(*scenario.Scope) error { return nil })
	}); err != nil {
		return err
	}
	if err := s.SharedStep("pay", func(b *scenario.Builder) {
		b.Action().Do(func(sc *scenario.Scope) error {
			if sc.Metadata()["payment"] == "card" {
				return errors.New("card declined")
			}
			return nil
		})
	}); err != nil {
		return err
	}
	return s.Define("Browse home", func(b *scenario.Builder) {
		b.It("home loads", func(*scenario.Scope) error { return nil })
	})
}

// scenarioDir writes files (name -> content) into a fresh directory.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, define DefineFunc, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, &stdout, &stderr, define)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(defineShop)
	require.NotNil(t, cmd)
	assert.Equal(t, "scenaria", cmd.Use)
	assert.Contains(t, cmd.Long, "Exit codes")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(defineShop)
	for _, cmdName := range []string{"run", "list", "validate"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestPersistentFlags(t *testing.T) {
	cmd := NewRootCommand(defineShop)
	flags := map[string]string{
		"env": "e", "config": "c", "text": "t", "focus": "f", "rerun": "r",
		"keep": "k", "verbose": "v", "scenarios": "", "journal": "",
		"metrics": "", "format": "", "no-color": "", "as": "",
	}
	for name, short := range flags {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, "flag --%s", name)
		assert.Equal(t, short, f.Shorthand, "flag --%s", name)
	}
}

func TestExecute_InvalidFormat(t *testing.T) {
	res := execute(t, defineShop, "list", "--format", "yaml")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `invalid format "yaml"`)
}

func TestExecute_UnknownFlagIsUsageError(t *testing.T) {
	res := execute(t, defineShop, "run", "--bogus")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "unknown flag")
}

func TestExecute_MissingConfigFile(t *testing.T) {
	res := execute(t, defineShop, "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "invalid configuration")
}

func TestExecute_ConfigFileIsRead(t *testing.T) {
	scenarios := scenarioDir(t, map[string]string{"checkout.yaml": checkoutFile})
	cfgPath := filepath.Join(t.TempDir(), "scenaria.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scenarios: "+scenarios+"\n"), 0o644))

	res := execute(t, defineShop, "list", "--config", cfgPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Checkout by invoice")
}

func TestExecute_DefineErrorIsCommandError(t *testing.T) {
	define := func(*scenario.Suite) error { return errors.New("registry broken") }
	res := execute(t, define, "list", "--format", "json", "--scenarios", t.TempDir())
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "registry broken")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeBuild, resp.Error.Code)
}

func TestExecute_RerunNeedsJournal(t *testing.T) {
	res := execute(t, defineShop, "list", "--rerun", "--format", "json", "--scenarios", t.TempDir())
	assert.Equal(t, ExitCommandError, res.code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}
