package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConsoleAndJSON(t *testing.T) {
	console, err := New(false, "debug")
	require.NoError(t, err)
	assert.True(t, console.Desugar().Core().Enabled(zapcore.DebugLevel))

	jsonLog, err := New(true, "warn")
	require.NoError(t, err)
	assert.False(t, jsonLog.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, jsonLog.Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(false, "chatty")
	assert.Error(t, err)
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	lvl, err := parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
