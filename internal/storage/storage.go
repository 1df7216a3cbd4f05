// Package storage persists ticket photos and returns the reference that is
// stored on the ticket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore accepts an uploaded binary and returns an opaque reference.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// ObjectName builds the date-partitioned key for an upload.
func ObjectName(prefix, fileName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/%s%s", strings.Trim(prefix, "/"), now.Format("2006/01/02"), uuid.NewString(), ext)
}

// MemoryStore keeps uploads in process. Used when no bucket is configured.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), now: time.Now}
}

// Save implements FileStore.
func (m *MemoryStore) Save(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	key := ObjectName("photos", name, m.now())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return "memory://" + key, nil
}

// Object returns a stored upload by reference.
func (m *MemoryStore) Object(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[strings.TrimPrefix(ref, "memory://")]
	return body, ok
}
