package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_ProductionIsInfo(t *testing.T) {
	logger := NewLogger("production")
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger_DevelopmentIsDebug(t *testing.T) {
	logger := NewLogger("development")
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
