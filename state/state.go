package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linka-aq/linka-proxy/utils/logger"
)

// Store persists the incremental cursor between runs. The on-disk format
// is the decimal cursor value and nothing else.
type Store struct {
	path    string
	current int64
	loaded  bool
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the cursor file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the cursor from disk. A missing or empty file means no rows
// were ever delivered and the cursor starts at zero.
func (s *Store) Load() (int64, error) {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.current = 0
		s.loaded = true
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cursor file[%s]: %s", s.path, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		s.current = 0
		s.loaded = true
		return 0, nil
	}

	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cursor file[%s]: %s", s.path, err)
	}

	s.current = value
	s.loaded = true
	return value, nil
}

// Commit durably records value as the new cursor position. The write lands
// through a temp file and rename in the same directory; the cursor never
// moves backward.
func (s *Store) Commit(value int64) error {
	if !s.loaded {
		if _, err := s.Load(); err != nil {
			return err
		}
	}

	if value < s.current {
		return fmt.Errorf("cursor regression: %d is behind current position %d", value, s.current)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cursor directory[%s]: %s", dir, err)
	}

	temp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cursor file: %s", err)
	}
	tempPath := temp.Name()

	if _, err := temp.WriteString(strconv.FormatInt(value, 10)); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write cursor: %s", err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync cursor: %s", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp cursor file: %s", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace cursor file: %s", err)
	}

	s.current = value
	logger.Debugf("cursor advanced to %d", value)
	return nil
}
