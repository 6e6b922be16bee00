package cleanup

import (
	"time"

	"github.com/tonecanvas/tonecanvas-go/pkg/config"
)

// Config holds cleanup worker configuration, sourced from the central config package.
type Config struct {
	CleanupInterval  time.Duration
	VerboseReporting bool
}

// NewConfig creates a cleanup configuration from the loaded application config.
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		CleanupInterval:  cfg.SessionCleanupInterval(),
		VerboseReporting: cfg.Logging.Level == "debug",
	}
}
