package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"taskType": "compute-score"})

	log.Info("score computed", map[string]interface{}{"sessionId": "s-1"})
	log.WithError(errors.New("boom")).Error("job failed", nil)
	log.Warn("cache miss", map[string]interface{}{"error": errors.New("refused")})

	entries := logs.All()
	assert.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "compute-score", first["taskType"])
	assert.Equal(t, "s-1", first["sessionId"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "refused", entries[2].ContextMap()["error"])
}

func TestNew_FallsBackOnBadOutput(t *testing.T) {
	l := New("info", "json", "/nonexistent-dir/for/sure/log.txt")
	assert.NotNil(t, l)
	NewNoOpLogger().Debug("discarded", nil)
}
