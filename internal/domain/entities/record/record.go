// Package record defines the per-participant YAML record and the events
// appended to it during an experiment.
package record

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// TimestampLayout is used for created_at and record filename suffixes.
const TimestampLayout = "20060102_1504"

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrMissingTrace  = errors.New("no trace data provided")
	ErrMissingButton = errors.New("no button name provided")
	ErrEmptyUpload   = errors.New("no audio payload provided")
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateUserID rejects identifiers that are empty, too long, contain path
// separators or other unsafe characters, or do not start with a letter or
// digit.
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidUserID)
	}
	if !userIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}
	return nil
}

// Record is the on-disk document for one participant.
type Record struct {
	UserID      string            `yaml:"user_id"`
	CreatedAt   string            `yaml:"created_at"`
	Traces      []TraceEvent      `yaml:"traces,omitempty"`
	ButtonLogs  []ButtonEvent     `yaml:"button_logs,omitempty"`
	Uploads     []UploadEvent     `yaml:"uploads,omitempty"`
	Transcripts []TranscriptEvent `yaml:"transcripts,omitempty"`
}

// New seeds a record for userID created at now.
func New(userID string, now time.Time) *Record {
	return &Record{UserID: userID, CreatedAt: now.Format(TimestampLayout)}
}

// TraceEvent is one opaque client trace tagged with the stimulus it was
// recorded against.
type TraceEvent struct {
	Timestamp time.Time `yaml:"timestamp"`
	SessionID string    `yaml:"session_id"`
	Index     int       `yaml:"index"`
	FileName  string    `yaml:"file_name"`
	Trace     any       `yaml:"trace"`
}

type ButtonEvent struct {
	Timestamp  time.Time `yaml:"timestamp"`
	SessionID  string    `yaml:"session_id"`
	Index      int       `yaml:"index"`
	FileName   string    `yaml:"file_name"`
	ButtonName string    `yaml:"button_name"`
}

type UploadEvent struct {
	Timestamp time.Time `yaml:"timestamp"`
	File      string    `yaml:"file"`
	Path      string    `yaml:"path"`
	Sequence  int       `yaml:"sequence"`
	Size      int64     `yaml:"size"`
}

type TranscriptEvent struct {
	Timestamp    time.Time `yaml:"timestamp"`
	File         string    `yaml:"file"`
	TranscriptID string    `yaml:"transcript_id,omitempty"`
	Text         string    `yaml:"text,omitempty"`
	Status       string    `yaml:"status"`
	Error        string    `yaml:"error,omitempty"`
}

// Event is anything that can be appended to a Record.
type Event interface {
	applyTo(r *Record)
}

func (e TraceEvent) applyTo(r *Record)      { r.Traces = append(r.Traces, e) }
func (e ButtonEvent) applyTo(r *Record)     { r.ButtonLogs = append(r.ButtonLogs, e) }
func (e UploadEvent) applyTo(r *Record)     { r.Uploads = append(r.Uploads, e) }
func (e TranscriptEvent) applyTo(r *Record) { r.Transcripts = append(r.Transcripts, e) }

// Append adds e to the record.
func (r *Record) Append(e Event) {
	e.applyTo(r)
}

// LogResult tells the caller whether an event reached the record.
type LogResult struct {
	Logged bool
	Index  int
	Reason string
	Err    error
}

// Logged builds a successful result for the event at index.
func Logged(index int) LogResult {
	return LogResult{Logged: true, Index: index}
}

// NotLogged builds a failed result.
func NotLogged(reason string, err error) LogResult {
	return LogResult{Reason: reason, Err: err}
}
