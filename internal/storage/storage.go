// Package storage persists serialized calendar feeds idempotently.
//
// A feed file is rewritten only when the content fingerprint of the new bytes
// differs from what is already on disk, so downstream consumers (calendar
// subscribers, version control) see no churn when nothing materially changed.
// Writes go through a temp file and rename; a partially written feed is never
// observable. Single writer per location is assumed.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists calendar feeds under a single output directory.
type Writer struct {
	dir string
}

// New creates a Writer rooted at dir, creating the directory if needed.
func New(dir string) (*Writer, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{dir: dir}, nil
}

// Path returns the full path a feed with the given name is stored at.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Fingerprint returns the hex content fingerprint of data.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteIfChanged writes data to the named feed file unless identical content
// is already stored there. It reports whether a physical write happened.
func (w *Writer) WriteIfChanged(name string, data []byte) (bool, error) {
	path := w.Path(name)

	existing, err := os.ReadFile(path)
	if err == nil {
		if Fingerprint(existing) == Fingerprint(data) {
			return false, nil
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("reading existing feed: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("writing feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("closing feed: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("setting feed permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("replacing feed: %w", err)
	}

	return true, nil
}
