// Package records persists per-participant YAML records on the local
// filesystem. Writes are serialised with file locks and land atomically
// through a temp file rename.
package records

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/fsstore"
)

const (
	lockDirName   = ".locks"
	dirLockName   = "records.lock"
	recordFileExt = ".yaml"
)

// Resolution describes which record file a user id maps to.
type Resolution struct {
	UserID  string
	Path    string
	Created bool
}

// Repository reads and writes record files under one data directory.
type Repository struct {
	dir    string
	now    func() time.Time
	locks  *fsstore.Locker
	logger *logging.ChanneledLogger
}

// NewRepository creates a repository rooted at dir.
func NewRepository(dir string, logger *logging.ChanneledLogger) *Repository {
	return &Repository{
		dir:    dir,
		now:    time.Now,
		locks:  fsstore.NewLocker(filepath.Join(dir, lockDirName)),
		logger: logger,
	}
}

// SetClock replaces the time source used for created_at and filenames.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// Dir returns the data directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Resolve finds the record for userID or creates one. An exact
// <user_id>.yaml wins; otherwise the most recent <user_id>_<YYYYMMDD>_<HHMM>.yaml
// whose user_id field matches is reused. Only files whose user_id field
// equals userID are considered.
func (r *Repository) Resolve(userID string) (*Resolution, error) {
	if err := record.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	release, err := r.locks.Lock(dirLockName)
	if err != nil {
		return nil, err
	}
	defer r.release(release, dirLockName)

	if path, ok := r.lookup(userID); ok {
		r.logger.Records().Debug("Resolved existing record", "userId", logging.MaskUserID(userID), "file", filepath.Base(path))
		return &Resolution{UserID: userID, Path: path}, nil
	}

	now := r.now()
	path := filepath.Join(r.dir, fmt.Sprintf("%s_%s%s", userID, now.Format(record.TimestampLayout), recordFileExt))
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("record file %s exists for a different user", filepath.Base(path))
	}
	if err := fsstore.WriteYAML(path, record.New(userID, now)); err != nil {
		return nil, err
	}

	r.logger.Records().Info("Created record", "userId", logging.MaskUserID(userID), "file", filepath.Base(path))
	return &Resolution{UserID: userID, Path: path, Created: true}, nil
}

func (r *Repository) lookup(userID string) (string, bool) {
	exact := filepath.Join(r.dir, userID+recordFileExt)
	if r.ownedBy(exact, userID) {
		return exact, true
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", false
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(userID) + `_\d{8}_\d{4}` + regexp.QuoteMeta(recordFileExt) + `$`)
	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() && pattern.MatchString(entry.Name()) {
			candidates = append(candidates, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(candidates)))
	for _, name := range candidates {
		path := filepath.Join(r.dir, name)
		if r.ownedBy(path, userID) {
			return path, true
		}
	}
	return "", false
}

func (r *Repository) ownedBy(path, userID string) bool {
	var head struct {
		UserID string `yaml:"user_id"`
	}
	if err := fsstore.ReadYAML(path, &head); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false
		}
		r.logger.Records().Warn("Skipping unreadable record", "file", filepath.Base(path), "error", err)
		return false
	}
	return head.UserID == userID
}

// Load reads the record at path.
func (r *Repository) Load(path string) (*record.Record, error) {
	rec := &record.Record{}
	if err := fsstore.ReadYAML(path, rec); err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return rec, nil
}

// Append adds events to userID's record at path under its file lock.
func (r *Repository) Append(path, userID string, events ...record.Event) error {
	name := filepath.Base(path) + ".lock"
	release, err := r.locks.Lock(name)
	if err != nil {
		return err
	}
	defer r.release(release, name)

	rec, err := r.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		// The file was removed underneath us; start it again.
		rec = record.New(userID, r.now())
	}
	for _, e := range events {
		rec.Append(e)
	}
	return fsstore.WriteYAML(path, rec)
}

func (r *Repository) release(release func() error, name string) {
	if err := release(); err != nil {
		r.logger.Records().Warn("Failed to release lock", "lock", name, "error", err)
	}
}
