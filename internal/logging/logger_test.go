package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("debug", FormatJSON)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New("warn", FormatConsole)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := New("loud", FormatJSON)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestAlertFields(t *testing.T) {
	fields := AlertFields("HighCPUUsage", "abc123")
	require.Len(t, fields, 2)
	assert.Equal(t, "alert_name", fields[0].Key)
	assert.Equal(t, "abc123", fields[1].String)
}
