package resultcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// FileStore keeps one JSON file per destination ID under a cache
// directory. Destination IDs are sanitized into safe file names.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, destinationID string, maxAge time.Duration) (*domain.StrategyResult, bool) {
	data, err := os.ReadFile(s.path(destinationID))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry: a miss, not an error.
		return nil, false
	}
	if time.Since(entry.Timestamp) > maxAge {
		return nil, false
	}
	return &entry.Result, true
}

func (s *FileStore) Set(_ context.Context, destinationID string, result domain.StrategyResult) error {
	entry := Entry{Timestamp: time.Now().UTC(), Result: result}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(destinationID), data, 0o644)
}

func (s *FileStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

var fileNameSanitizer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")

func (s *FileStore) path(destinationID string) string {
	return filepath.Join(s.dir, fileNameSanitizer.Replace(destinationID)+".json")
}
