package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data    []byte
	modTime time.Time
}

// Memory keeps objects in process memory. Used by tests and throwaway instances.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[k]
	return ok, nil
}

func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[k]
	if !ok {
		return nil, ErrNotExist
	}
	return bytes.Clone(obj.data), nil
}

func (m *Memory) Write(_ context.Context, key string, data []byte) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[k] = memObject{data: bytes.Clone(data), modTime: time.Now().UTC()}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[k]; !ok {
		return ErrNotExist
	}
	delete(m.objects, k)
	return nil
}

func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return nil, Info{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[k]
	if !ok {
		return nil, Info{}, ErrNotExist
	}
	info := Info{Key: k, Size: int64(len(obj.data)), ModTime: obj.modTime}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), info, nil
}

// Keys lists the stored keys that start with prefix.
func (m *Memory) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
