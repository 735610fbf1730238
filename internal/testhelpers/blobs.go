package testhelpers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/storage"
)

// MemoryBlobStore keeps uploads in memory and records every delete call
type MemoryBlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
	// FailUploads makes every upload return an error
	FailUploads bool
}

var _ storage.BlobStore = (*MemoryBlobStore)(nil)

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{Objects: map[string][]byte{}}
}

func (m *MemoryBlobStore) Upload(_ context.Context, file storage.Upload, opts storage.UploadOptions) (storage.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploads {
		return storage.Asset{}, fmt.Errorf("upload rejected")
	}
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return storage.Asset{}, err
	}
	id := opts.ProposedID
	if id == "" {
		id = uuid.NewString()
	}
	key := storage.AssetKey(opts.Folder, id)
	m.Objects[key] = data
	return storage.Asset{URL: "https://blobs.test/" + key, AssetID: key}, nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, assetID)
	if _, ok := m.Objects[assetID]; !ok {
		return storage.ErrAssetNotFound
	}
	delete(m.Objects, assetID)
	return nil
}

// DeleteCount returns how many times assetID was deleted
func (m *MemoryBlobStore) DeleteCount(assetID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range m.Deleted {
		if id == assetID {
			n++
		}
	}
	return n
}
