package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonecanvas/tonecanvas-go/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tonecanvas.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("BASE_DIR", base)

	cfg, resolved, exists, err := config.Load(filepath.Join(base, "absent.toml"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(base, "absent.toml"), resolved)

	assert.Equal(t, "AA", cfg.Corpus.Prefix)
	assert.Equal(t, 2, cfg.Corpus.FixedHead)
	assert.Equal(t, filepath.Join(base, "corpus"), cfg.Paths.CorpusDir)
	assert.Equal(t, filepath.Join(base, "data_base"), cfg.Paths.DataDir)
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://tone-canvasv2.vercel.app")
	assert.False(t, cfg.TranscriptionEnabled())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[server]
port = "9090"

[paths]
base_dir = "`+filepath.ToSlash(base)+`"
corpus_dir = "stimuli"

[corpus]
prefix = "TRAIN"
seed = 42

[session]
ttl_minutes = 30
`)
	t.Setenv("CORPUS_FIXED_HEAD", "3")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, filepath.Join(base, "stimuli"), cfg.Paths.CorpusDir)
	assert.Equal(t, "TRAIN", cfg.Corpus.Prefix)
	assert.Equal(t, int64(42), cfg.Corpus.Seed)
	assert.Equal(t, 3, cfg.Corpus.FixedHead)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative fixed head":        "[corpus]\nfixed_head = -1\n",
		"inverted pitch range":       "[pitch]\nmin_frequency = 500.0\nmax_frequency = 100.0\n",
		"short secret":               "[session]\nsecret = \"tiny\"\n",
		"bad log level":              "[logging]\nlevel = \"loud\"\n",
		"zero monitor interval":      "[monitor]\nenabled = true\ninterval_seconds = 0\n",
		"zero transcription timeout": "[transcription]\nassemblyai_key = \"key\"\ntimeout_seconds = 0\n",
		"negative shutdown timeout":  "[server]\nshutdown_timeout_seconds = -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("BASE_DIR", t.TempDir())
			_, _, _, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	_, _, _, err := config.Load(writeConfig(t, "[server\nport = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidateIntervalsAndTimeouts(t *testing.T) {
	cfg := config.Default()
	cfg.Monitor.IntervalSeconds = 0
	assert.ErrorContains(t, cfg.Validate(), "monitor.interval_seconds")

	cfg.Monitor.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg = config.Default()
	cfg.Transcription.TimeoutSeconds = 0
	assert.NoError(t, cfg.Validate())
	cfg.Transcription.AssemblyAIKey = "key"
	assert.ErrorContains(t, cfg.Validate(), "transcription.timeout_seconds")

	cfg = config.Default()
	cfg.Server.ShutdownTimeoutSeconds = -5
	assert.ErrorContains(t, cfg.Validate(), "shutdown_timeout_seconds")
}

func TestLoadRejectsZeroMonitorIntervalFromEnv(t *testing.T) {
	t.Setenv("BASE_DIR", t.TempDir())
	t.Setenv("MONITOR_INTERVAL_SECONDS", "0")
	_, _, _, err := config.Load(writeConfig(t, ""))
	assert.ErrorContains(t, err, "monitor.interval_seconds")
}
