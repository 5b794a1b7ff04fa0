package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vigil/demo-requests/internal/demo"
)

// FileStore keeps the whole collection as an indented JSON array in one file.
// Every call re-reads the file. Writes replace it atomically through a temp
// file and rename, under an in-process mutex and an advisory lock on
// "<path>.lock" so concurrent writers do not lose updates.
type FileStore struct {
	path string
	mu   sync.Mutex
	options
}

// NewFileStore returns a FileStore backed by path. The parent directory must exist.
func NewFileStore(path string, opts ...Option) *FileStore {
	return &FileStore{path: path, options: newOptions(opts)}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) List(_ context.Context) []demo.Request {
	return s.load()
}

func (s *FileStore) Append(_ context.Context, fields demo.Fields) (*demo.Request, error) {
	var created demo.Request
	err := s.withLock(func() error {
		reqs := s.load()
		created = demo.New(s.uniqueID(reqs), fields, s.now())
		reqs = append([]demo.Request{created}, reqs...)
		return s.persist(reqs)
	})
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to save demo request")
		return nil, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return &created, nil
}

func (s *FileStore) UpdateStatus(_ context.Context, id, status string) (bool, error) {
	found := false
	err := s.withLock(func() error {
		reqs := s.load()
		i := indexOf(reqs, id)
		if i < 0 {
			return nil
		}
		found = true
		reqs[i].SetStatus(status, s.now())
		return s.persist(reqs)
	})
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Str("id", id).Msg("failed to update demo request")
		return false, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return found, nil
}

func (s *FileStore) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer unlock()

	return fn()
}

// load reads the collection. A missing file is an empty collection; any other
// failure is logged and also yields an empty collection.
func (s *FileStore) load() []demo.Request {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []demo.Request{}
	}
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("failed to read demo requests")
		return []demo.Request{}
	}

	var reqs []demo.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("failed to parse demo requests")
		return []demo.Request{}
	}
	if reqs == nil {
		reqs = []demo.Request{}
	}
	return reqs
}

func (s *FileStore) persist(reqs []demo.Request) error {
	data, err := encodeRequests(reqs)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// encodeRequests renders the collection with two-space indentation and
// without escaping non-ASCII or HTML characters.
func encodeRequests(reqs []demo.Request) ([]byte, error) {
	if reqs == nil {
		reqs = []demo.Request{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reqs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
