package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
)

// backend is the key-value store under a Store. update applies set and del
// as one change.
type backend interface {
	get(key string) (string, bool)
	update(set map[string]string, del []string) error
	entries() map[string]string
}

// ----------------------------------------------------------------------------
// File backend
// ----------------------------------------------------------------------------

type fileBackend struct {
	path string
	data map[string]string
}

// openFile loads path, creating its directory. A missing file is an empty
// session; an unreadable or corrupt one is reported so the caller can decide.
func openFile(dir string) (*fileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	b := &fileBackend{path: filepath.Join(dir, fileName), data: map[string]string{}}

	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var fs fileState
	if err := json.Unmarshal(raw, &fs); err != nil {
		return b, fmt.Errorf("unmarshal session file: %w", err)
	}
	if fs.SchemaVersion > schemaVersion {
		return b, fmt.Errorf("session file schema %d is newer than supported %d", fs.SchemaVersion, schemaVersion)
	}
	for k, v := range fs.Entries {
		b.data[k] = v
	}
	return b, nil
}

func (b *fileBackend) get(key string) (string, bool) {
	v, ok := b.data[key]
	return v, ok
}

func (b *fileBackend) entries() map[string]string {
	out := make(map[string]string, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

// update writes the new contents to disk before touching memory, so a failed
// write leaves the backend unchanged.
func (b *fileBackend) update(set map[string]string, del []string) error {
	next := b.entries()
	for k, v := range set {
		next[k] = v
	}
	for _, k := range del {
		delete(next, k)
	}
	if err := b.save(next); err != nil {
		return err
	}
	b.data = next
	return nil
}

func (b *fileBackend) save(entries map[string]string) error {
	data, err := json.MarshalIndent(fileState{
		SchemaVersion: schemaVersion,
		LastUpdated:   time.Now().UTC().Format(time.RFC3339),
		Entries:       entries,
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Memory backend
// ----------------------------------------------------------------------------

type memoryBackend struct {
	c *cache.Cache
}

func newMemoryBackend(seed map[string]string) *memoryBackend {
	m := &memoryBackend{c: cache.New(cache.NoExpiration, 0)}
	for k, v := range seed {
		m.c.Set(k, v, cache.NoExpiration)
	}
	return m
}

func (m *memoryBackend) get(key string) (string, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *memoryBackend) entries() map[string]string {
	items := m.c.Items()
	out := make(map[string]string, len(items))
	for k, it := range items {
		if s, ok := it.Object.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (m *memoryBackend) update(set map[string]string, del []string) error {
	for k, v := range set {
		m.c.Set(k, v, cache.NoExpiration)
	}
	for _, k := range del {
		m.c.Delete(k)
	}
	return nil
}
