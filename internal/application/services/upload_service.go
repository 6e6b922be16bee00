package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/records"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/uploads"
)

// UploadResult is returned to the client after a recording is stored.
type UploadResult struct {
	File     string `json:"file"`
	Path     string `json:"path"`
	Sequence int    `json:"sequence"`
	Size     int64  `json:"size"`
}

// UploadService stores participant recordings.
type UploadService struct {
	uploads       *uploads.Repository
	records       *records.Repository
	transcription *TranscriptionService
	now           func() time.Time
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewUploadService creates a new upload service
func NewUploadService(uploadRepo *uploads.Repository, recordRepo *records.Repository, transcription *TranscriptionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UploadService {
	return &UploadService{
		uploads:       uploadRepo,
		records:       recordRepo,
		transcription: transcription,
		now:           time.Now,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// Save stores src as the next recording of the session's active user.
func (s *UploadService) Save(sess *session.Session, filename string, size int64, src io.Reader) (*UploadResult, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("save_upload", sess.ID)
	defer marker.Complete()

	userID, dataFile, err := sess.RequireUser()
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	if filename == "" || size == 0 {
		marker.SetError(record.ErrEmptyUpload)
		return nil, record.ErrEmptyUpload
	}

	base := userID
	if dataFile != "" {
		base = strings.TrimSuffix(filepath.Base(dataFile), filepath.Ext(dataFile))
	}

	saved, err := s.uploads.Save(userID, base, filename, src)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	log := s.logger.WithSession(logging.ChannelUploads, sess.ID, userID)
	if dataFile != "" {
		event := record.UploadEvent{
			Timestamp: s.now().UTC(),
			File:      saved.File,
			Path:      saved.Path,
			Sequence:  saved.Sequence,
			Size:      saved.Size,
		}
		if err := s.records.Append(dataFile, userID, event); err != nil {
			log.Error("Failed to record upload event", "file", saved.File, "error", err)
		}
	}
	s.transcription.Submit(userID, dataFile, saved.Path)

	log.Info("Successfully saved upload", "file", saved.File, "sequence", saved.Sequence, "size", saved.Size, "duration", time.Since(start))
	return &UploadResult{File: saved.File, Path: saved.Path, Sequence: saved.Sequence, Size: saved.Size}, nil
}
