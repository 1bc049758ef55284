package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON document per namespace under Dir. Writes go to a
// temp file renamed over the old one.
type FileStore struct {
	Dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(ns string) string {
	return filepath.Join(f.Dir, ns+".json")
}

func (f *FileStore) read(ns string) (map[string]string, error) {
	b, err := os.ReadFile(f.path(ns))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := map[string]string{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("storage %s: %w", ns, err)
	}
	return doc, nil
}

func (f *FileStore) write(ns string, doc map[string]string) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, ns+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(ns))
}

func (f *FileStore) Load(_ context.Context, ns, key string) ([]byte, error) {
	if err := checkNamespace(ns); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read(ns)
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *FileStore) Save(_ context.Context, ns, key string, value []byte) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read(ns)
	if err != nil {
		// documento corrupto: se reemplaza
		doc = map[string]string{}
	}
	doc[key] = string(value)
	return f.write(ns, doc)
}

func (f *FileStore) Remove(_ context.Context, ns, key string) error {
	if err := checkNamespace(ns); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read(ns)
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.write(ns, doc)
}
