package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCorpus(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validatePitch(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port must be set")
	}
	if c.Server.ReadTimeoutSeconds <= 0 || c.Server.WriteTimeoutSeconds <= 0 || c.Server.IdleTimeoutSeconds <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be positive (got %d)", c.Server.ShutdownTimeoutSeconds)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("server.allowed_origins must list at least one origin")
	}
	return nil
}

func (c *Config) validateCorpus() error {
	if c.Corpus.FixedHead < 0 {
		return fmt.Errorf("corpus.fixed_head must not be negative (got %d)", c.Corpus.FixedHead)
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.TTLMinutes <= 0 {
		return errors.New("session.ttl_minutes must be positive")
	}
	if c.Session.CleanupIntervalMinutes <= 0 {
		return errors.New("session.cleanup_interval_minutes must be positive")
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 16 {
		return errors.New("session.secret must be at least 16 characters")
	}
	return nil
}

func (c *Config) validatePitch() error {
	p := c.Pitch
	if p.MinFrequency <= 0 || p.MaxFrequency <= p.MinFrequency {
		return fmt.Errorf("pitch frequency range invalid: %.1f-%.1f Hz", p.MinFrequency, p.MaxFrequency)
	}
	if p.TimeStep <= 0 || p.InterpolationStep <= 0 {
		return errors.New("pitch.time_step and pitch.interpolation_step must be positive")
	}
	if p.VoicingThreshold < 0 || p.VoicingThreshold > 1 {
		return errors.New("pitch.voicing_threshold must be between 0 and 1")
	}
	if p.SilenceThreshold < 0 || p.SilenceThreshold > 1 {
		return errors.New("pitch.silence_threshold must be between 0 and 1")
	}
	if p.SynthSampleRate < 8000 {
		return errors.New("pitch.synth_sample_rate must be at least 8000")
	}
	if p.SynthAmplitude <= 0 || p.SynthAmplitude > 1 {
		return errors.New("pitch.synth_amplitude must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.Enabled && c.Monitor.IntervalSeconds <= 0 {
		return fmt.Errorf("monitor.interval_seconds must be positive when the monitor is enabled (got %d)", c.Monitor.IntervalSeconds)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.TranscriptionEnabled() && c.Transcription.TimeoutSeconds <= 0 {
		return fmt.Errorf("transcription.timeout_seconds must be positive when a key is set (got %d)", c.Transcription.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text (got %q)", c.Logging.Format)
	}
	return nil
}
