package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileSource reads a flat JSON object of account → secret pairs
// (the users.json table). The file is parsed on Reload and served
// from memory afterwards.
type FileSource struct {
	Path string

	mu    sync.RWMutex
	table map[string]string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Reload() error {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, s.Path, err)
	}

	table := map[string]string{}
	if err := json.Unmarshal(raw, &table); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, s.Path, err)
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return nil
}

func (s *FileSource) Secret(account string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return "", false, ErrUnavailable
	}
	secret, ok := s.table[account]
	return secret, ok, nil
}
