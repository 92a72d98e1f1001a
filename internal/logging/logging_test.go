package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input  string
		expect slog.Level
	}{
		{input: "debug", expect: slog.LevelDebug},
		{input: "INFO", expect: slog.LevelInfo},
		{input: "warning", expect: slog.LevelWarn},
		{input: " error ", expect: slog.LevelError},
		{input: "verbose", expect: slog.LevelInfo},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, ParseLevel(testCase.input), testCase.input)
	}
}

func TestNewLoggerWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "json", &buf)
	logger.Debug("hidden")
	logger.Info("task killed", "task_id", "3:1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "task killed", record["msg"])
	assert.Equal(t, "3:1", record["task_id"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
