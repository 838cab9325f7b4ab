package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error": LogLevelError,
		"WARN":  LogLevelWarn,
		"":      LogLevelInfo,
		"debug": LogLevelDebug,
		"TRACE": LogLevelTrace,
	}
	for in, want := range cases {
		got, ok := ParseLogLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseLogLevel("chatty")
	assert.False(t, ok)
}

func TestLoggerRespectsLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewLoggerWithZap(LogLevelWarn, zap.New(core))

	l.Info("loaded %d rows", 3)
	l.Warn("dropped %d duplicates", 1)
	l.Error("join failed")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "dropped 1 duplicates", entries[0].Message)
	assert.Equal(t, "join failed", entries[1].Message)
}

func TestLoggerWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewLoggerWithZap(LogLevelDebug, zap.New(core)).With("run_id", "abc")

	l.Debug("hello")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["run_id"])
}

func TestLoggerTraceOnlyAtTraceLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	NewLoggerWithZap(LogLevelDebug, zap.New(core)).Trace("pairs %d", 1)
	assert.Empty(t, logs.All())

	NewLoggerWithZap(LogLevelTrace, zap.New(core)).Trace("pairs %d", 2)
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "[trace] pairs 2", entries[0].Message)
}
