package services

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/records"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/transcription"
)

const (
	TranscriptStatusCompleted = "completed"
	TranscriptStatusFailed    = "error"
)

// TranscriptionService transcribes uploads in the background and appends the
// outcome to the participant's record.
type TranscriptionService struct {
	client  transcription.Transcriber
	records *records.Repository
	timeout time.Duration
	logger  *logging.ChanneledLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTranscriptionService creates a service. A nil client disables it.
func NewTranscriptionService(client transcription.Transcriber, repo *records.Repository, timeout time.Duration, logger *logging.ChanneledLogger) *TranscriptionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &TranscriptionService{
		client:  client,
		records: repo,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enabled reports whether uploads will be transcribed.
func (s *TranscriptionService) Enabled() bool {
	return s != nil && s.client != nil
}

// Submit starts transcribing audioPath. When recordPath is set the result is
// appended to that record.
func (s *TranscriptionService) Submit(userID, recordPath, audioPath string) {
	if !s.Enabled() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.transcribe(userID, recordPath, audioPath)
	}()
}

func (s *TranscriptionService) transcribe(userID, recordPath, audioPath string) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	log := s.logger.WithSession(logging.ChannelUploads, "", userID)
	event := record.TranscriptEvent{File: filepath.Base(audioPath)}

	res, err := s.client.TranscribeFile(ctx, audioPath)
	if res != nil {
		event.TranscriptID = res.TranscriptID
		event.Text = res.Text
		event.Status = res.Status
	}
	if err != nil {
		event.Status = TranscriptStatusFailed
		event.Error = err.Error()
		log.Error("Transcription failed", "file", event.File, "error", err, "duration", time.Since(start))
	} else {
		if event.Status == "" {
			event.Status = TranscriptStatusCompleted
		}
		log.Info("Successfully transcribed upload", "file", event.File, "transcriptId", event.TranscriptID, "duration", time.Since(start))
	}

	if recordPath == "" {
		return
	}
	event.Timestamp = time.Now().UTC()
	if err := s.records.Append(recordPath, userID, event); err != nil {
		log.Error("Failed to record transcript", "file", event.File, "error", err)
	}
}

// Shutdown cancels in-flight transcriptions and waits for them or ctx.
func (s *TranscriptionService) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.Wait(ctx)
}

// Wait blocks until all submitted transcriptions have finished or ctx ends.
func (s *TranscriptionService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
