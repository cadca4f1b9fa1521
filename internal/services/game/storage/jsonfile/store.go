// Package jsonfile stores the saved match in a single JSON file.
//
// The file holds one object, {"data": <snapshot>}, indented with four spaces.
// A missing or empty file, or an empty data object, means there is no saved
// match.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/storage"
)

// DefaultPath is where the save file lives unless configured otherwise.
const DefaultPath = "./data/data.json"

const indent = "    "

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Store reads and writes one save file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a store for path. An empty path uses DefaultPath.
func New(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	return &Store{path: filepath.Clean(path)}
}

// Path returns the save file location.
func (s *Store) Path() string {
	return s.path
}

// LoadSnapshot reads the save file.
func (s *Store) LoadSnapshot(ctx context.Context) (match.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return match.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return match.Snapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("read save file: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return match.Snapshot{}, storage.ErrNotFound
	}

	var wrapped envelope
	if err := json.Unmarshal(content, &wrapped); err != nil {
		return match.Snapshot{}, fmt.Errorf("%s: %w", s.path, errors.Join(match.ErrInvalidSnapshot, err))
	}
	if len(wrapped.Data) == 0 {
		return match.Snapshot{}, fmt.Errorf("%s: %w: data is missing", s.path, match.ErrInvalidSnapshot)
	}
	if isEmptyObject(wrapped.Data) {
		return match.Snapshot{}, storage.ErrNotFound
	}
	snap, err := match.DecodeSnapshot(wrapped.Data)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return snap, nil
}

// SaveSnapshot replaces the save file, creating its directory when needed.
// The new content is written to a sibling temp file and renamed into place.
func (s *Store) SaveSnapshot(ctx context.Context, snap match.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.MarshalIndent(map[string]match.Snapshot{"data": snap}, "", indent)
	if err != nil {
		return fmt.Errorf("encode save file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close save file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}

// isEmptyObject reports whether raw is a JSON object with no keys.
func isEmptyObject(raw json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return false
	}
	return len(fields) == 0
}

var _ storage.SnapshotStore = (*Store)(nil)
