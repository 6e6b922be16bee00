package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLoggerTagsChannelAndSession(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToConsole: true,
		Output:          &buf,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelInfo,
	})
	require.NoError(t, err)

	logger.WithSession(ChannelRecords, "01HSESSION", "participant42").Info("Trace appended", "index", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "records", entry["channel"])
	assert.Equal(t, "01HSESSION", entry["sessionId"])
	assert.Equal(t, "pa****42", entry["userId"])
	assert.Equal(t, float64(3), entry["index"])
}

func TestSetChannelLevelOnlyAffectsThatChannel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToConsole: true,
		Output:          &buf,
		DefaultLevel:    slog.LevelInfo,
	})
	require.NoError(t, err)

	logger.Pitch().Debug("hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, logger.SetChannelLevel(ChannelPitch, slog.LevelDebug))
	buf.Reset()
	logger.Pitch().Debug("visible")
	logger.Media().Debug("still hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "still hidden")

	assert.Equal(t, "DEBUG", logger.GetChannelLevels()["pitch"])
	assert.Error(t, logger.SetChannelLevel(Channel("nope"), slog.LevelDebug))
}

func TestFileOutputWritesPerChannelFiles(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToFile: true,
		LogDirectory: dir,
		DefaultLevel: slog.LevelInfo,
	})
	require.NoError(t, err)

	logger.Uploads().Info("stored")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "uploads.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "stored"))
}

func TestMaskUserID(t *testing.T) {
	assert.Equal(t, "****", MaskUserID("abc"))
	assert.Equal(t, "ab****ef", MaskUserID("abcdef"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}
