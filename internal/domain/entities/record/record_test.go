package record

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateUserID(t *testing.T) {
	valid := []string{"p01", "subject.A", "x_y-z", strings.Repeat("a", 128)}
	for _, id := range valid {
		assert.NoError(t, ValidateUserID(id), id)
	}

	invalid := []string{"", ".", "..", "../etc", "a/b", `a\b`, "with space", strings.Repeat("a", 129),
		".locks", ".hidden", "-flag", "_tmp"}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateUserID(id), ErrInvalidUserID, id)
	}
}

func TestAppendRoutesEvents(t *testing.T) {
	r := New("p01", time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))
	assert.Equal(t, "20260102_0304", r.CreatedAt)

	r.Append(TraceEvent{Index: 1, Trace: []any{1, 2}})
	r.Append(ButtonEvent{ButtonName: "next"})
	r.Append(UploadEvent{File: "p01_recording_1.wav"})
	r.Append(TranscriptEvent{Status: "completed"})

	assert.Len(t, r.Traces, 1)
	assert.Len(t, r.ButtonLogs, 1)
	assert.Len(t, r.Uploads, 1)
	assert.Len(t, r.Transcripts, 1)
}
