package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Index is the refresh cache: the last committed Record per session
// ID. It is read whole at the start of a refresh pass and written
// whole at the end.
type Index map[string]Record

// LoadIndex reads the index file. A missing or corrupt index resets to
// empty rather than failing the refresh; unreadable files are real
// errors.
func LoadIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Index{}, nil
	case err != nil:
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return Index{}, nil
	}
	if idx == nil {
		idx = Index{}
	}
	return idx, nil
}

// Write replaces the index file wholesale, creating parent directories
// as needed.
func (idx Index) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	data := bytes.TrimRight(buf.Bytes(), "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}
