// Package storage is the blob store boundary for images. The core never
// looks inside the bytes; it only keeps the returned URL and asset id.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrAssetNotFound is returned by Delete implementations that can tell an
// asset is already gone. Callers treat it as success.
var ErrAssetNotFound = errors.New("asset not found")

// Asset identifies an uploaded blob
type Asset struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
}

// Upload is one file handed to the blob store
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadOptions controls where an upload lands. ProposedID becomes the asset
// id (prefixed by Folder) when set.
type UploadOptions struct {
	Folder     string
	ProposedID string
}

// BlobStore uploads and deletes opaque blobs
type BlobStore interface {
	Upload(ctx context.Context, file Upload, opts UploadOptions) (Asset, error)
	Delete(ctx context.Context, assetID string) error
}

// AssetKey joins folder and id the way every store names objects
func AssetKey(folder, id string) string {
	if folder == "" {
		return id
	}
	return folder + "/" + id
}
