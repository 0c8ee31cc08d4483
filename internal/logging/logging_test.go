package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("quiet", func(t *testing.T) {
		logger, err := New(false)
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer func() { _ = logger.Sync() }()

		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("verbose", func(t *testing.T) {
		logger, err := New(true)
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer func() { _ = logger.Sync() }()

		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})
}
