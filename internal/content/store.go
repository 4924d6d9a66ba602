package content

import (
	"context"
	"io"
)

// Store is the handle to the remote document store. It is always injected
// (form controllers, reconcilers and services take it as a constructor
// argument) so tests can substitute a memory-backed double.
//
// Fetches always return the full result set for a kind — there is no
// pagination contract; list views replace their state wholesale.
type Store interface {
	// Create persists a new document and returns the id the store assigned.
	Create(ctx context.Context, doc Document) (string, error)
	// Patch partially updates an existing document: only the fields present
	// on doc (after omitempty marshalling) are overwritten.
	Patch(ctx context.Context, id string, doc Document) error
	// Delete removes a document. Terminal and irreversible.
	Delete(ctx context.Context, id string) error
	// FetchNews returns all news ordered by publishedAt descending.
	FetchNews(ctx context.Context) ([]*News, error)
	// FetchPromotions returns all promotions ordered by validUntil descending.
	FetchPromotions(ctx context.Context) ([]*Promotion, error)
}

// AssetUploader stores a binary asset and returns the opaque reference id that
// documents embed. Size/MIME limits are enforced by the store, not here.
type AssetUploader interface {
	UploadAsset(ctx context.Context, r io.Reader, filename string, size int64, contentType string) (string, error)
}
