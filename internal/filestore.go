package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileStore keeps each entry in its own file with a YAML index, used
// for chat intents that must survive a full login redirect. Entry files
// are named by key hash so arbitrary keys stay filesystem-safe.
type FileStore struct {
	dir string
}

// StoreIndexEntry represents one entry in the store index
type StoreIndexEntry struct {
	Key       string    `yaml:"key"`
	File      string    `yaml:"file"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// StoreIndex is the YAML index of all entries
type StoreIndex struct {
	Entries []StoreIndexEntry `yaml:"entries"`
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store's root directory
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) indexPath() string {
	return filepath.Join(f.dir, "entries.yaml")
}

func (f *FileStore) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, fmt.Sprintf("entry_%s.json", hex.EncodeToString(sum[:8])))
}

func (f *FileStore) loadIndex() (*StoreIndex, error) {
	data, err := os.ReadFile(f.indexPath())
	if os.IsNotExist(err) {
		return &StoreIndex{}, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Key: f.indexPath(), Err: err}
	}

	var index StoreIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		// A corrupt index loses convenience entries, nothing more
		LogWarn("Rebuilding corrupt intent index: %v", err)
		return &StoreIndex{}, nil
	}
	return &index, nil
}

func (f *FileStore) saveIndex(index *StoreIndex) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return &StoreError{Op: "set", Key: f.dir, Err: err}
	}
	data, err := yaml.Marshal(index)
	if err != nil {
		return &StoreError{Op: "set", Key: f.indexPath(), Err: err}
	}
	if err := os.WriteFile(f.indexPath(), data, 0644); err != nil {
		return &StoreError{Op: "set", Key: f.indexPath(), Err: err}
	}
	return nil
}

func (f *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(f.entryPath(key))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", &StoreError{Op: "get", Key: key, Err: err}
	}
	return string(data), nil
}

func (f *FileStore) Set(key, value string) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	if err := os.WriteFile(f.entryPath(key), []byte(value), 0644); err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}

	index, err := f.loadIndex()
	if err != nil {
		return err
	}

	entry := StoreIndexEntry{
		Key:       key,
		File:      filepath.Base(f.entryPath(key)),
		UpdatedAt: time.Now(),
	}

	found := false
	for i := range index.Entries {
		if index.Entries[i].Key == key {
			index.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, entry)
	}

	return f.saveIndex(index)
}

func (f *FileStore) Remove(key string) error {
	if err := os.Remove(f.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return &StoreError{Op: "remove", Key: key, Err: err}
	}

	index, err := f.loadIndex()
	if err != nil {
		return err
	}

	kept := index.Entries[:0]
	for _, entry := range index.Entries {
		if entry.Key != key {
			kept = append(kept, entry)
		}
	}
	index.Entries = kept

	return f.saveIndex(index)
}

func (f *FileStore) List(prefix string) ([]KeyValuePair, error) {
	index, err := f.loadIndex()
	if err != nil {
		return nil, err
	}

	var pairs []KeyValuePair
	for _, entry := range index.Entries {
		if len(entry.Key) < len(prefix) || entry.Key[:len(prefix)] != prefix {
			continue
		}
		value, err := f.Get(entry.Key)
		if err != nil || value == "" {
			// Index may point at an entry deleted out of band
			continue
		}
		pairs = append(pairs, KeyValuePair{Key: entry.Key, Value: value})
	}
	return pairs, nil
}
