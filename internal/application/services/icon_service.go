package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/media"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// ErrInvalidIconRequest wraps malformed width or format parameters.
var ErrInvalidIconRequest = errors.New("invalid icon request")

// IconService serves icons and their resized or WebP derivatives.
type IconService struct {
	processor   *media.IconProcessor
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewIconService creates a new icon service
func NewIconService(processor *media.IconProcessor, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IconService {
	return &IconService{processor: processor, logger: logger, perfTracker: perfTracker}
}

// ParseVariant validates the width and format query values.
func ParseVariant(width, format string) (media.Variant, error) {
	var v media.Variant
	if width != "" {
		w, err := strconv.Atoi(width)
		if err != nil || w < 1 || w > media.MaxIconWidth {
			return v, fmt.Errorf("%w: %w", ErrInvalidIconRequest, media.ErrInvalidWidth)
		}
		v.Width = w
	}
	switch strings.ToLower(format) {
	case "":
	case "webp":
		v.WebP = true
	default:
		return v, fmt.Errorf("%w: format %q", ErrInvalidIconRequest, format)
	}
	return v, nil
}

// Icon returns the file to serve for filename with the requested variant.
func (s *IconService) Icon(filename string, v media.Variant) (string, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("get_icon", "")
	defer marker.Complete()

	path, err := s.processor.Path(filename, v)
	if err != nil {
		marker.SetError(err)
		switch {
		case errors.Is(err, media.ErrIconNotFound):
		case errors.Is(err, media.ErrInvalidFormat):
			s.logger.Media().Warn("Icon is not a decodable image", "filename", filename, "error", err)
		default:
			s.logger.Media().Error("Icon processing failed", "filename", filename, "width", v.Width, "webp", v.WebP, "error", err)
		}
		return "", err
	}
	s.logger.Media().Debug("Successfully resolved icon", "filename", filename, "width", v.Width, "webp", v.WebP, "duration", time.Since(start))
	return path, nil
}
