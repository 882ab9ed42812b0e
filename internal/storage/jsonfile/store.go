// Package jsonfile stores every key in a single JSON document on disk.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileVersion = 1

type document struct {
	Version int               `json:"version"`
	Items   map[string]string `json:"items"`
}

type Store struct {
	mu   sync.Mutex
	path string
	doc  *document
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Load reads the document from disk. A missing file is an empty store.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.doc = &document{Version: fileVersion, Items: make(map[string]string)}
			return nil
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > fileVersion {
		return fmt.Errorf("storage file version %d is newer than supported version %d", doc.Version, fileVersion)
	}
	if doc.Items == nil {
		doc.Items = make(map[string]string)
	}
	s.doc = doc
	return nil
}

// save writes the document to a temp file and renames it into place.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) ensureLoaded() error {
	if s.doc != nil {
		return nil
	}
	return s.load()
}

func (s *Store) GetItem(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return "", false, err
	}
	v, ok := s.doc.Items[key]
	return v, ok, nil
}

func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	prev, had := s.doc.Items[key]
	s.doc.Items[key] = value
	if err := s.save(); err != nil {
		if had {
			s.doc.Items[key] = prev
		} else {
			delete(s.doc.Items, key)
		}
		return err
	}
	return nil
}

func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	prev, had := s.doc.Items[key]
	if !had {
		return nil
	}
	delete(s.doc.Items, key)
	if err := s.save(); err != nil {
		s.doc.Items[key] = prev
		return err
	}
	return nil
}
