package storage

import (
	"bytes"
	"context"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// Memory is an in-process Storage. Objects are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// PutObject stores a copy of r under bucket/key.
func (m *Memory) PutObject(_ context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		Metadata:    maps.Clone(opts.Metadata),
		UpdatedAt:   m.now(),
	}

	m.mu.Lock()
	m.objects[bucket+"/"+key] = memoryObject{data: data, info: info}
	m.mu.Unlock()

	return info, nil
}

// GetObject returns the stored object or ErrObjectNotFound.
func (m *Memory) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[bucket+"/"+key]
	m.mu.RUnlock()

	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

// ListObjects returns objects under prefix sorted by key.
func (m *Memory) ListObjects(_ context.Context, bucket, prefix string, opts ListOptions) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make([]ObjectInfo, 0)
	for _, name := range slices.Sorted(maps.Keys(m.objects)) {
		obj := m.objects[name]
		if obj.info.Bucket != bucket || !strings.HasPrefix(obj.info.Key, prefix) {
			continue
		}

		objects = append(objects, obj.info)
		if opts.Limit > 0 && int32(len(objects)) >= opts.Limit {
			break
		}
	}

	return objects, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Noop rejects every call with ErrDisabled.
type Noop struct{}

// NewNoop returns the storage used when snapshots are not configured.
func NewNoop() *Noop {
	return &Noop{}
}

// PutObject returns ErrDisabled.
func (*Noop) PutObject(context.Context, string, string, io.Reader, PutOptions) (ObjectInfo, error) {
	return ObjectInfo{}, ErrDisabled
}

// GetObject returns ErrDisabled.
func (*Noop) GetObject(context.Context, string, string) (io.ReadCloser, ObjectInfo, error) {
	return nil, ObjectInfo{}, ErrDisabled
}

// ListObjects returns ErrDisabled.
func (*Noop) ListObjects(context.Context, string, string, ListOptions) ([]ObjectInfo, error) {
	return nil, ErrDisabled
}

// Close is a no-op.
func (*Noop) Close() error {
	return nil
}
