package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/internal/log"
)

type statusStub string

func TestAttrs(t *testing.T) {
	assertAttrEqual(t, log.Scenario("Login admin"), "scenario", "Login admin")
	assertAttrEqual(t, log.Step("Setup login"), "step", "Setup login")
	assertAttrEqual(t, log.Status(statusStub("passed")), "status", "passed")
	assertAttrEqual(t, log.RunID("run-1"), "run_id", "run-1")
	assertAttrEqual(t, log.ExecutionID("exec-1"), "execution_id", "exec-1")
	assertAttrEqual(t, log.Error(nil), "error", "")
	assertAttrEqual(t, log.Error(errors.New("boom")), "error", "boom")
}

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, slog.LevelInfo, "json")

	logger.Info("step failed", log.Error(errors.New("boom")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "boom", record["err"])
	assert.NotContains(t, record, "error")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, slog.LevelWarn, "text")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := log.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := log.ParseLevel("loud")
	assert.Error(t, err)
}

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
