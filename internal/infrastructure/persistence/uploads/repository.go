// Package uploads stores participant audio recordings under per-user
// directories, numbering them from a persisted per-user counter.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/fsstore"
)

const (
	metaFileName = ".upload-meta.yaml"
	defaultExt   = ".wav"
)

// RecognizedExtensions are the audio types counted when seeding the counter.
var RecognizedExtensions = []string{".wav", ".mp3", ".webm", ".ogg", ".m4a"}

// Meta is the persisted counter for one user directory.
type Meta struct {
	UserID       string    `yaml:"user_id"`
	NextSequence int       `yaml:"next_sequence"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// Saved describes a stored recording.
type Saved struct {
	File     string
	Path     string
	Sequence int
	Size     int64
}

// Repository writes uploads below one root directory.
type Repository struct {
	dir    string
	locks  *fsstore.Locker
	now    func() time.Time
	logger *logging.ChanneledLogger
}

// NewRepository creates a repository rooted at dir.
func NewRepository(dir string, logger *logging.ChanneledLogger) *Repository {
	return &Repository{
		dir:    dir,
		locks:  fsstore.NewLocker(filepath.Join(dir, ".locks")),
		now:    time.Now,
		logger: logger,
	}
}

// Dir returns the uploads root.
func (r *Repository) Dir() string {
	return r.dir
}

// UserDir returns the directory holding userID's recordings.
func (r *Repository) UserDir(userID string) string {
	return filepath.Join(r.dir, userID)
}

// Extension returns the stored extension for an uploaded filename.
func Extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if isRecognized(ext) {
		return ext
	}
	return defaultExt
}

func isRecognized(ext string) bool {
	for _, known := range RecognizedExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Save stores src as the next recording for userID. base prefixes the
// generated filename; it defaults to the user id.
func (r *Repository) Save(userID, base, originalName string, src io.Reader) (*Saved, error) {
	if err := record.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if base == "" {
		base = userID
	}
	userDir := r.UserDir(userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	lockName := userID + ".lock"
	release, err := r.locks.Lock(lockName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			r.logger.Uploads().Warn("Failed to release lock", "lock", lockName, "error", err)
		}
	}()

	meta, err := r.loadMeta(userID)
	if err != nil {
		return nil, err
	}

	ext := Extension(originalName)
	seq := meta.NextSequence
	var (
		name string
		dst  *os.File
	)
	for {
		name = fmt.Sprintf("%s_recording_%d%s", base, seq, ext)
		dst, err = os.OpenFile(filepath.Join(userDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		seq++
	}

	path := dst.Name()
	size, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr == nil && closeErr == nil && size == 0 {
		copyErr = record.ErrEmptyUpload
	}
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("failed to store upload: %w", copyErr)
	}

	meta.NextSequence = seq + 1
	meta.UpdatedAt = r.now().UTC()
	if err := fsstore.WriteYAML(filepath.Join(userDir, metaFileName), meta); err != nil {
		os.Remove(path)
		return nil, err
	}

	r.logger.Uploads().Info("Stored upload",
		"userId", logging.MaskUserID(userID), "file", name, "sequence", seq, "size", size)
	return &Saved{File: name, Path: path, Sequence: seq, Size: size}, nil
}

func (r *Repository) loadMeta(userID string) (*Meta, error) {
	meta := &Meta{}
	err := fsstore.ReadYAML(filepath.Join(r.UserDir(userID), metaFileName), meta)
	switch {
	case err == nil && meta.NextSequence > 0:
		meta.UserID = userID
		return meta, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		r.logger.Uploads().Warn("Rebuilding unreadable upload counter", "userId", logging.MaskUserID(userID), "error", err)
	}

	count, err := r.countRecordings(userID)
	if err != nil {
		return nil, err
	}
	return &Meta{UserID: userID, NextSequence: count + 1}, nil
}

func (r *Repository) countRecordings(userID string) (int, error) {
	entries, err := os.ReadDir(r.UserDir(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to list upload directory: %w", err)
	}
	var count int
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if isRecognized(strings.ToLower(filepath.Ext(entry.Name()))) {
			count++
		}
	}
	return count, nil
}
