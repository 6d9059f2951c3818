package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MasterOfBinary/seqbatch/logging"
)

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logging.NewFromZap(zap.New(core)).With("run", "abc")

	l.Debug("hidden %d", 1)
	l.Info("read %d items", 3)
	l.Warn("slow batch")
	l.Error("failed: %v", "boom")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "read 3 items", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "failed: boom", entries[2].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["run"])
}

func TestNew(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seqbatch.log")
		l, err := logging.New(logging.Config{Level: "DEBUG", File: path, JSON: true})
		require.NoError(t, err)

		l.Debug("hello %s", "file")
		_ = l.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello file"`)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := logging.New(logging.Config{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("default", func(t *testing.T) {
		l, err := logging.New(logging.Config{})
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		logging.Nop().Error("nothing %d", 1)
	})
}
