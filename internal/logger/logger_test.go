package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	l, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_UnknownLevelIsInfo(t *testing.T) {
	l, err := New("development", "loud")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestInstall_ReplacesGlobals(t *testing.T) {
	before := zap.L()
	l, restore, err := Install("development", "debug")
	require.NoError(t, err)
	assert.Same(t, l, zap.L())
	assert.Same(t, l, OrGlobal(nil))
	restore()
	assert.Same(t, before, zap.L())
}
