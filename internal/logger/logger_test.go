package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	prev := log
	t.Cleanup(func() { log = prev })

	core, logs := observer.New(level)
	Use(zap.New(core))
	return logs
}

func TestInitWithEnv_Levels(t *testing.T) {
	prev := log
	t.Cleanup(func() { log = prev })

	InitWithEnv("production")
	assert.Equal(t, zapcore.InfoLevel, log.Level())

	InitWithEnv("staging")
	assert.Equal(t, zapcore.DebugLevel, log.Level())

	Init()
	assert.Equal(t, zapcore.DebugLevel, log.Level())
}

func TestInfo_KeyValues(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Info("booking confirmed", "booking", "abcd1234", "nights", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "booking confirmed", entries[0].Message)
	assert.Equal(t, "abcd1234", entries[0].ContextMap()["booking"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["nights"])
}

func TestWarnAndError_Levels(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Warn("backend slow", "endpoint", "/room-types")
	Error("send failed", "error", errors.New("smtp down"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/room-types", entries[0].ContextMap()["endpoint"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "smtp down", entries[1].ContextMap()["error"])
}

func TestFormatted(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Infof("Server starting on port %s", "8080")
	Errorf("Server error: %v", errors.New("bind"))
	Debugf("%d rooms cached", 4)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Server starting on port 8080", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "Server error: bind", entries[1].Message)
	assert.Equal(t, "4 rooms cached", entries[2].Message)
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Debug("hidden", "visitor", "v1")
	Debugf("hidden %d", 2)

	assert.Zero(t, logs.Len())
}
