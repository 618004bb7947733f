package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.WithField("model", "gemini-2.5-pro").Info("analysis fetched")

	assert.Contains(t, buf.String(), `msg="analysis fetched"`)
	assert.Contains(t, buf.String(), "model=gemini-2.5-pro")
}

func TestInitLevelAndFile(t *testing.T) {
	t.Cleanup(func() {
		Log.SetOutput(os.Stderr)
		Log.SetLevel(logrus.InfoLevel)
	})
	path := filepath.Join(t.TempDir(), "nifty-ai.log")

	require.NoError(t, Init("debug", path))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	Log.Debug("written to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	require.NoError(t, Init("not-a-level", ""))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
