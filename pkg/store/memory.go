package store

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/media"
)

type entry struct {
	asset media.Asset
	data  []byte
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() AssetStore {
	return &memoryStore{entries: make(map[string]entry)}
}

func (s *memoryStore) Put(ctx context.Context, name string, r io.Reader) (media.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return media.Asset{}, err
	}
	a := newRecord(name, int64(len(data)))

	s.mu.Lock()
	s.entries[a.ID] = entry{asset: a, data: data}
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"asset_id":    a.ID,
		"data_length": len(data),
	}).Info("Asset stored successfully")
	return a, nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (media.Asset, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return media.Asset{}, notFound(id)
	}
	return e.asset, nil
}

func (s *memoryStore) List(ctx context.Context) ([]media.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]media.Asset, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.asset)
	}
	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		logrus.WithField("asset_id", id).Warn("Asset with specified ID not found")
		return nil, notFound(id)
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return notFound(id)
	}
	delete(s.entries, id)
	return nil
}
