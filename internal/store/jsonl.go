package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// maxLineSize bounds a single record line. Board records are a few hundred
// bytes; anything larger is treated as corrupt and skipped.
const maxLineSize = 1 << 20

// Collection is an ordered list of records of type T persisted as one JSON
// object per line. Every mutation is a full load, modify and save; the last
// save wins.
type Collection[T any] struct {
	path string
}

// NewCollection returns a collection backed by the file at path.
func NewCollection[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// EnsureInitialized creates the parent directory and an empty file if they
// do not exist. Calling it again is a no-op.
func (c *Collection[T]) EnsureInitialized() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", c.path, err)
	}
	f, err := os.OpenFile(c.path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", c.path, err)
	}
	return f.Close()
}

// Load returns every decodable record in file order. Blank lines and lines
// that fail to decode are skipped.
func (c *Collection[T]) Load() ([]T, error) {
	if err := c.EnsureInitialized(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.path, err)
	}
	defer f.Close()

	var records []T
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if rec, ok := decodeLine[T](line); ok {
				records = append(records, rec)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", c.path, err)
		}
	}

	return records, nil
}

func decodeLine[T any](line []byte) (T, bool) {
	var rec T
	line = bytes.TrimSpace(line)
	if len(line) == 0 || len(line) > maxLineSize || line[0] != '{' {
		return rec, false
	}
	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, false
	}
	return rec, true
}

// Save replaces the file with records, one per line. The new contents are
// written to a temporary file and renamed into place.
func (c *Collection[T]) Save(records []T) error {
	if err := c.EnsureInitialized(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encoding record %d for %s: %w", i, c.path, err)
		}
	}

	if err := renameio.WriteFile(c.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("replacing %s: %w", c.path, err)
	}
	return nil
}
