package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"

	ioutils "github.com/Ayushsahu75/mental-healthcare-hub/internal/io"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// FileStore keeps every mix in one JSON document:
//
//	{
//	  "savedMix": {"ocean": 0.4, "rain": 0.6},
//	  "evening": {"fire": 1}
//	}
//
// The file is re-read on every call, so changes made by another process
// are picked up, and rewritten atomically on every change.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the JSON file at path. The file
// is created on the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, Backend.Wrap(err, "read %s", s.path)
	}

	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Corrupt.Wrap(err, "decode %s", s.path)
	}
	return doc, nil
}

func (s *FileStore) write(ctx context.Context, doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Backend.Wrap(err, "encode mixes")
	}
	if err := ioutils.WriteFileAtomic(ctx, s.path, data); err != nil {
		return Backend.Wrap(err, "write %s", s.path)
	}
	return nil
}

func (s *FileStore) LoadMix(ctx context.Context, name string) (model.Mix, bool, error) {
	if err := checkName(name); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, false, err
	}
	raw, ok := doc[name]
	if !ok {
		return nil, false, nil
	}
	mix, err := decodeMix(name, raw)
	if err != nil {
		return nil, false, err
	}
	return mix, true, nil
}

// SaveMix stores mix under name. A corrupt file is replaced rather than
// blocking saves forever.
func (s *FileStore) SaveMix(ctx context.Context, name string, mix model.Mix) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := encodeMix(mix)
	if err != nil {
		return Backend.Wrap(err, "encode mix %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if IsCorrupt(err) {
		doc, err = map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return err
	}
	doc[name] = data
	return s.write(ctx, doc)
}

func (s *FileStore) ListMixes(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) DeleteMix(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[name]; !ok {
		return nil
	}
	delete(doc, name)
	return s.write(ctx, doc)
}

func (s *FileStore) Close() error {
	return nil
}
