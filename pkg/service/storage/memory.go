package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
)

const memoryScheme = "memory://"

type memoryObject struct {
	data []byte
	meta interfaces.BlobMetadata
}

// Memory keeps blobs in process memory for tests and local runs
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

var _ interfaces.BlobStorage = &Memory{}

// NewMemory creates an empty in-memory blob store
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// Put stores the content and returns a memory:// locator
func (m *Memory) Put(ctx context.Context, p string, r io.Reader, meta interfaces.BlobMetadata) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", goerr.Wrap(err, "failed to read blob content", goerr.V("path", p))
	}

	locator := memoryScheme + strings.TrimLeft(p, "/")
	meta.Size = int64(buf.Len())

	m.mu.Lock()
	m.objects[locator] = memoryObject{data: buf.Bytes(), meta: meta}
	m.mu.Unlock()

	return locator, nil
}

// Exists reports whether the locator is stored
func (m *Memory) Exists(ctx context.Context, locator string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[locator]
	return ok, nil
}

// Delete removes the blob if present
func (m *Memory) Delete(ctx context.Context, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, locator)
	return nil
}

// SignedURL returns a pseudo URL carrying the expiry time
func (m *Memory) SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[locator]
	m.mu.RUnlock()
	if !ok {
		return "", goerr.Wrap(interfaces.ErrNotFound, "blob not found", goerr.V("locator", locator))
	}
	return fmt.Sprintf("%s?expires=%d", locator, m.now().Add(ttl).Unix()), nil
}

// Read returns the stored content and metadata
func (m *Memory) Read(locator string) ([]byte, interfaces.BlobMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[locator]
	if !ok {
		return nil, interfaces.BlobMetadata{}, false
	}
	return bytes.Clone(obj.data), obj.meta, true
}

// Len returns the number of stored blobs
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
