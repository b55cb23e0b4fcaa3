package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DiskStore persists artifacts as files under a root directory, one
// subdirectory per user. Each audio file carries a JSON metadata sidecar
// used for expiry sweeps.
type DiskStore struct {
	root string
}

// NewDiskStore creates a store rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, &PersistenceError{Op: "init", Err: fmt.Errorf("empty output directory")}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "init", Err: err}
	}
	return &DiskStore{root: dir}, nil
}

// Root returns the store's root directory.
func (s *DiskStore) Root() string { return s.root }

// Path returns where an artifact for the given user would live.
func (s *DiskStore) Path(userID string, artifact Artifact) string {
	return filepath.Join(s.root, SanitizeFilename(userID), artifact.Filename)
}

func (s *DiskStore) SaveAudioFile(ctx context.Context, userID string, artifact Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if artifact.Filename == "" {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("empty filename")}
	}

	path := s.Path(userID, artifact)
	if err := writeFileAtomic(path, artifact.Data); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	meta, err := json.Marshal(artifact)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := writeFileAtomic(path+".json", meta); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	log.Debug("Saved audio artifact", "path", path, "size", artifact.Size)
	return nil
}

// Sweep removes artifacts whose metadata marks them expired as of now.
// It returns the number of artifacts removed.
func (s *DiskStore) Sweep(now time.Time) (int, error) {
	removed := 0
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var artifact Artifact
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil
		}
		if artifact.ExpiresAt.IsZero() || artifact.ExpiresAt.After(now) {
			return nil
		}

		audioPath := strings.TrimSuffix(path, ".json")
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove expired artifact", "path", audioPath, "error", err)
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.Warn("Failed to remove artifact metadata", "path", path, "error", err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, &PersistenceError{Op: "sweep", Err: err}
	}
	return removed, nil
}

// writeFileAtomic writes data through a temp file in the target
// directory and renames it into place, so the target is never observed
// partially written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".narrator-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
