package publish

import (
	"context"
	"time"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
)

// IndexRepository is the storage contract for publish operations.
type IndexRepository interface {
	Upsert(ctx context.Context, obj *object.Object, vector []float32) (string, error)
	Delete(ctx context.Context, kind object.Kind, objectID string) (bool, error)
	Fetch(ctx context.Context, kind object.Kind, objectID string) (object.Object, error)
	Exists(ctx context.Context, kind object.Kind, objectID string) (bool, error)
}

// SchemaEnsurer guarantees the index schema exists before the first write.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// Embedder vectorizes text into embeddings. May be absent (nil) in
// keyword-only deployments.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RemoteIssue is the live state of a mirrored issue or pull request fetched
// from the external tracker.
type RemoteIssue struct {
	Title     string
	Body      string
	State     string
	Labels    []string
	Comments  []string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Refetcher fetches the authoritative state of a mirrored issue at index
// time. externalKey is "owner/repo#number".
type Refetcher interface {
	FetchIssue(ctx context.Context, externalKey string) (RemoteIssue, error)
}
