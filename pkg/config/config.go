// Package config provides centralized configuration for the ToneCanvas server.
//
// Values are resolved in order: built-in defaults, an optional TOML file,
// a .env file, then process environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "tonecanvas.toml"

// Server contains HTTP listener configuration.
type Server struct {
	Port                   string   `toml:"port"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `toml:"write_timeout_seconds"`
	IdleTimeoutSeconds     int      `toml:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
	MaxUploadMB            int      `toml:"max_upload_mb"`
	ReleaseMode            bool     `toml:"release_mode"`
	AllowedOrigins         []string `toml:"allowed_origins"`
	TrustedProxies         []string `toml:"trusted_proxies"`
}

// Paths contains the on-disk layout of the experiment.
type Paths struct {
	BaseDir    string `toml:"base_dir"`
	CorpusDir  string `toml:"corpus_dir"`
	IconsDir   string `toml:"icons_dir"`
	TempDir    string `toml:"temp_dir"`
	DataDir    string `toml:"data_dir"`
	UploadsDir string `toml:"uploads_dir"`
}

// Corpus controls playlist ordering.
type Corpus struct {
	// Prefix marks stimuli that are always played first, in sorted order.
	Prefix string `toml:"prefix"`
	// FixedHead is the number of non-prefixed stimuli kept in listing order.
	FixedHead int `toml:"fixed_head"`
	// Seed drives the shuffle. Zero means seed from the clock.
	Seed int64 `toml:"seed"`
}

// Session controls participant session lifetime and token signing.
type Session struct {
	Secret                 string `toml:"secret"`
	TTLMinutes             int    `toml:"ttl_minutes"`
	CleanupIntervalMinutes int    `toml:"cleanup_interval_minutes"`
}

// Pitch configures contour extraction and resynthesis.
type Pitch struct {
	MinFrequency      float64 `toml:"min_frequency"`
	MaxFrequency      float64 `toml:"max_frequency"`
	TimeStep          float64 `toml:"time_step"`
	InterpolationStep float64 `toml:"interpolation_step"`
	VoicingThreshold  float64 `toml:"voicing_threshold"`
	SilenceThreshold  float64 `toml:"silence_threshold"`
	SynthSampleRate   int     `toml:"synth_sample_rate"`
	SynthAmplitude    float64 `toml:"synth_amplitude"`
}

// Monitor configures the experimenter progress monitor.
type Monitor struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
}

// Transcription configures optional AssemblyAI transcription of uploads.
type Transcription struct {
	AssemblyAIKey  string `toml:"assemblyai_key"`
	LanguageCode   string `toml:"language_code"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	Dir       string `toml:"dir"`
	ToFile    bool   `toml:"to_file"`
	ToConsole bool   `toml:"to_console"`
}

// Config encapsulates all configuration values for the server.
type Config struct {
	Server        Server        `toml:"server"`
	Paths         Paths         `toml:"paths"`
	Corpus        Corpus        `toml:"corpus"`
	Session       Session       `toml:"session"`
	Pitch         Pitch         `toml:"pitch"`
	Monitor       Monitor       `toml:"monitor"`
	Transcription Transcription `toml:"transcription"`
	Logging       Logging       `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:                   "8080",
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    60,
			IdleTimeoutSeconds:     60,
			ShutdownTimeoutSeconds: 30,
			MaxUploadMB:            64,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"https://740d-88-173-177-226.ngrok-free.app",
				"https://f650-2a01-e0e-1002-7bbe-e97-f8eb-b354-d8c6.ngrok-free.app",
				"https://tone-canvasv2.vercel.app",
			},
			TrustedProxies: []string{"127.0.0.1", "::1"},
		},
		Paths: Paths{
			BaseDir:    ".",
			CorpusDir:  "corpus",
			IconsDir:   "icons",
			TempDir:    "temp",
			DataDir:    "data_base",
			UploadsDir: "uploads",
		},
		Corpus: Corpus{
			Prefix:    "AA",
			FixedHead: 2,
		},
		Session: Session{
			TTLMinutes:             12 * 60,
			CleanupIntervalMinutes: 10,
		},
		Pitch: Pitch{
			MinFrequency:      75,
			MaxFrequency:      600,
			TimeStep:          0.01,
			InterpolationStep: 0.01,
			VoicingThreshold:  0.45,
			SilenceThreshold:  0.03,
			SynthSampleRate:   44100,
			SynthAmplitude:    0.3,
		},
		Monitor: Monitor{
			Enabled:         true,
			IntervalSeconds: 5,
		},
		Transcription: Transcription{
			TimeoutSeconds: 300,
		},
		Logging: Logging{
			Level:     "info",
			Format:    "json",
			Dir:       "logs",
			ToFile:    false,
			ToConsole: true,
		},
	}
}

// Load reads the optional TOML file at path (or the default location), applies
// .env and environment overrides, then normalizes and validates the result.
// It returns the resolved config path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TONECANVAS_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
	}

	exists := true
	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Ignoring unreadable .env file: %v", err)
	}
	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, path, exists, nil
}

// ReadTimeout returns the server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the server idle timeout.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// SessionTTL returns the inactivity timeout for named sessions.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// SessionCleanupInterval returns how often expired sessions are purged.
func (c *Config) SessionCleanupInterval() time.Duration {
	return time.Duration(c.Session.CleanupIntervalMinutes) * time.Minute
}

// MonitorInterval returns the progress broadcast period.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// TranscriptionTimeout bounds a single transcription request.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the multipart memory limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// TranscriptionEnabled reports whether uploads should be transcribed.
func (c *Config) TranscriptionEnabled() bool {
	return c.Transcription.AssemblyAIKey != ""
}

func (c *Config) normalize() error {
	base, err := filepath.Abs(c.Paths.BaseDir)
	if err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	c.Paths.BaseDir = base

	for name, p := range map[string]*string{
		"paths.corpus_dir":  &c.Paths.CorpusDir,
		"paths.icons_dir":   &c.Paths.IconsDir,
		"paths.temp_dir":    &c.Paths.TempDir,
		"paths.data_dir":    &c.Paths.DataDir,
		"paths.uploads_dir": &c.Paths.UploadsDir,
		"logging.dir":       &c.Logging.Dir,
	} {
		if *p == "" {
			return fmt.Errorf("%s must be set", name)
		}
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
		*p = filepath.Clean(*p)
	}
	return nil
}
