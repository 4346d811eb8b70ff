package voicelib

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Index stores voice metadata.
type Index interface {
	// Get returns the voice with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Voice, error)

	// Put stores v, replacing any voice with the same id.
	Put(ctx context.Context, v *Voice) error

	// Delete removes a voice. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every voice ordered by id.
	List(ctx context.Context) ([]*Voice, error)

	// Close releases any resources held by the index.
	Close() error
}

func encodeVoice(v *Voice) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("voicelib: encode %s: %w", v.ID, err)
	}
	return data, nil
}

func decodeVoice(data []byte) (*Voice, error) {
	var v Voice
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("voicelib: decode voice: %w", err)
	}
	return &v, nil
}

// MemoryIndex is an in-memory Index. Values are stored encoded so callers
// never share a *Voice with the index.
type MemoryIndex struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{data: make(map[string][]byte)}
}

func (m *MemoryIndex) Get(_ context.Context, id string) (*Voice, error) {
	m.mu.RLock()
	data, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeVoice(data)
}

func (m *MemoryIndex) Put(_ context.Context, v *Voice) error {
	data, err := encodeVoice(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[v.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) List(_ context.Context) ([]*Voice, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Voice, 0, len(ids))
	for _, id := range ids {
		v, err := decodeVoice(m.data[id])
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		out = append(out, v)
	}
	m.mu.RUnlock()
	return out, nil
}

func (m *MemoryIndex) Close() error {
	return nil
}

var _ Index = (*MemoryIndex)(nil)
