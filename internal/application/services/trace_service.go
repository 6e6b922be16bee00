package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/corpus"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/records"
)

// TraceService appends interaction events to the active participant's record.
type TraceService struct {
	playlist    *corpus.Playlist
	records     *records.Repository
	now         func() time.Time
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTraceService creates a new trace service
func NewTraceService(playlist *corpus.Playlist, repo *records.Repository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TraceService {
	return &TraceService{
		playlist:    playlist,
		records:     repo,
		now:         time.Now,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LogTrace records an opaque trace payload against the current stimulus.
func (s *TraceService) LogTrace(sess *session.Session, trace any) record.LogResult {
	marker := s.perfTracker.StartOperation("log_trace", sess.ID)
	defer marker.Complete()

	if trace == nil {
		marker.SetSuccess(false)
		return record.NotLogged("no trace data provided", record.ErrMissingTrace)
	}
	result := s.append(sess, "trace", func(index int, fileName string) record.Event {
		return record.TraceEvent{
			Timestamp: s.now().UTC(),
			SessionID: sess.ID,
			Index:     index,
			FileName:  fileName,
			Trace:     trace,
		}
	})
	if !result.Logged {
		marker.SetError(result.Err)
	}
	return result
}

// LogButton records a named button press against the current stimulus.
func (s *TraceService) LogButton(sess *session.Session, buttonName string) record.LogResult {
	marker := s.perfTracker.StartOperation("log_button", sess.ID)
	defer marker.Complete()

	buttonName = strings.TrimSpace(buttonName)
	if buttonName == "" {
		marker.SetSuccess(false)
		return record.NotLogged("no button name provided", record.ErrMissingButton)
	}
	result := s.append(sess, "button", func(index int, fileName string) record.Event {
		return record.ButtonEvent{
			Timestamp:  s.now().UTC(),
			SessionID:  sess.ID,
			Index:      index,
			FileName:   fileName,
			ButtonName: buttonName,
		}
	})
	if !result.Logged {
		marker.SetError(result.Err)
	}
	return result
}

func (s *TraceService) append(sess *session.Session, kind string, build func(index int, fileName string) record.Event) record.LogResult {
	start := time.Now()
	userID, dataFile, err := sess.RequireUser()
	if err != nil {
		s.logger.Records().Warn("Event dropped without active user", "kind", kind, "sessionId", sess.ID)
		return record.NotLogged("no active user", err)
	}
	if dataFile == "" {
		return record.NotLogged("no active record", fmt.Errorf("%w: no record file", session.ErrNoActiveUser))
	}

	index, fileName := sess.Position(s.playlist)
	if err := s.records.Append(dataFile, userID, build(index, fileName)); err != nil {
		s.logger.WithSession(logging.ChannelRecords, sess.ID, userID).Error("Failed to append event",
			"kind", kind, "error", err)
		return record.NotLogged("write failed", err)
	}

	s.logger.WithSession(logging.ChannelRecords, sess.ID, userID).Debug("Successfully appended event",
		"kind", kind, "index", index, "fileName", fileName, "duration", time.Since(start))
	return record.Logged(index)
}
