// Package fsstore holds the file locking and atomic write helpers shared by
// the filesystem repositories.
package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Locker hands out named locks that hold across goroutines and processes.
// Lock files live in dir.
type Locker struct {
	dir string

	mu    sync.Mutex
	names map[string]*sync.Mutex
}

// NewLocker creates a locker keeping its lock files in dir.
func NewLocker(dir string) *Locker {
	return &Locker{dir: dir, names: make(map[string]*sync.Mutex)}
}

// Lock blocks until name is held and returns the release func.
func (l *Locker) Lock(name string) (func() error, error) {
	l.mu.Lock()
	m, ok := l.names[name]
	if !ok {
		m = &sync.Mutex{}
		l.names[name] = m
	}
	l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	m.Lock()
	fl := flock.New(filepath.Join(l.dir, name))
	if err := fl.Lock(); err != nil {
		m.Unlock()
		return nil, fmt.Errorf("failed to lock %s: %w", name, err)
	}
	return func() error {
		defer m.Unlock()
		return fl.Unlock()
	}, nil
}

// WriteYAML encodes v and replaces path with it via a temp file rename.
func WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, data)
}

// WriteFile replaces path with data via a temp file in the same directory.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadYAML decodes path into v.
func ReadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
