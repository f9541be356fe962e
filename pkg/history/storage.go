package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage persists whole histories by user.
type Storage interface {
	Load(user string) (*History, error)
	Save(h *History) error
}

// FileStorage keeps one JSON file per user under Dir.
type FileStorage struct {
	Dir string
}

// NewFileStorage returns a storage rooted at dir, creating it if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	return &FileStorage{Dir: dir}, nil
}

func (s *FileStorage) path(user string) string {
	return filepath.Join(s.Dir, user+".json")
}

// Load reads the user's history. A user without a file has an empty history.
func (s *FileStorage) Load(user string) (*History, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(user))
	if errors.Is(err, fs.ErrNotExist) {
		return &History{User: user}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history of %s: %w", user, err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decoding history of %s: %w", user, err)
	}
	h.User = user
	return &h, nil
}

// Save replaces the user's file atomically.
func (s *FileStorage) Save(h *History) error {
	if err := ValidateUser(h.User); err != nil {
		return err
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history of %s: %w", h.User, err)
	}
	return atomicWrite(s.path(h.User), data)
}

func atomicWrite(filename string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".history-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmp = nil
	return nil
}
