package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// applyEnv overrides file and default values with process environment.
func (c *Config) applyEnv() {
	// Server
	c.Server.Port = getEnvString("PORT", c.Server.Port)
	c.Server.ReadTimeoutSeconds = getEnvInt("SERVER_READ_TIMEOUT_SECONDS", c.Server.ReadTimeoutSeconds)
	c.Server.WriteTimeoutSeconds = getEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", c.Server.WriteTimeoutSeconds)
	c.Server.IdleTimeoutSeconds = getEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", c.Server.IdleTimeoutSeconds)
	c.Server.ShutdownTimeoutSeconds = getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", c.Server.ShutdownTimeoutSeconds)
	c.Server.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.ReleaseMode = getEnvBool("RELEASE_MODE", c.Server.ReleaseMode || os.Getenv("GIN_MODE") == "release")
	c.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.TrustedProxies = getEnvList("TRUSTED_PROXIES", c.Server.TrustedProxies)

	// Paths
	c.Paths.BaseDir = getEnvString("BASE_DIR", c.Paths.BaseDir)
	c.Paths.CorpusDir = getEnvString("CORPUS_DIR", c.Paths.CorpusDir)
	c.Paths.IconsDir = getEnvString("ICONS_DIR", c.Paths.IconsDir)
	c.Paths.TempDir = getEnvString("TEMP_DIR", c.Paths.TempDir)
	c.Paths.DataDir = getEnvString("DATA_DIR", c.Paths.DataDir)
	c.Paths.UploadsDir = getEnvString("UPLOADS_DIR", c.Paths.UploadsDir)

	// Corpus
	c.Corpus.Prefix = getEnvString("CORPUS_PREFIX", c.Corpus.Prefix)
	c.Corpus.FixedHead = getEnvInt("CORPUS_FIXED_HEAD", c.Corpus.FixedHead)
	c.Corpus.Seed = int64(getEnvInt("PLAYLIST_SEED", int(c.Corpus.Seed)))

	// Session
	c.Session.Secret = getEnvSecret("SESSION_SECRET", c.Session.Secret)
	c.Session.TTLMinutes = getEnvInt("SESSION_TTL_MINUTES", c.Session.TTLMinutes)
	c.Session.CleanupIntervalMinutes = getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", c.Session.CleanupIntervalMinutes)

	// Monitor
	c.Monitor.Enabled = getEnvBool("MONITOR_ENABLED", c.Monitor.Enabled)
	c.Monitor.IntervalSeconds = getEnvInt("MONITOR_INTERVAL_SECONDS", c.Monitor.IntervalSeconds)

	// Transcription
	c.Transcription.AssemblyAIKey = getEnvSecret("AAI_API_KEY", c.Transcription.AssemblyAIKey)
	c.Transcription.LanguageCode = getEnvString("TRANSCRIPTION_LANGUAGE", c.Transcription.LanguageCode)
	c.Transcription.TimeoutSeconds = getEnvInt("TRANSCRIPTION_TIMEOUT_SECONDS", c.Transcription.TimeoutSeconds)

	// Logging
	c.Logging.Level = getEnvString("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvString("LOG_FORMAT", c.Logging.Format)
	c.Logging.Dir = getEnvString("LOG_DIR", c.Logging.Dir)
	c.Logging.ToFile = getEnvBool("LOG_TO_FILE", c.Logging.ToFile)
	c.Logging.ToConsole = getEnvBool("LOG_TO_CONSOLE", c.Logging.ToConsole)
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
		log.Printf("Config override ignored: %s=%q is not an integer", key, valStr)
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

// getEnvSecret behaves like getEnvString but never logs the value.
func getEnvSecret(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		log.Printf("Config override: %s=****", key)
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	log.Printf("Config override: %s=%s", key, strings.Join(out, ","))
	return out
}
