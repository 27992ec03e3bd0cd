package search

import (
	"context"

	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/result"
)

// Repository is the storage contract for query execution.
type Repository interface {
	SearchHybrid(ctx context.Context, projectID, query string, vector []float32, alpha float64, limit int, f filter.Filters) ([]result.Result, error)
	SearchVector(ctx context.Context, projectID string, vector []float32, limit int, f filter.Filters) ([]result.Result, error)
}

// SchemaEnsurer guarantees the index schema exists before the first query.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// Embedder vectorizes the query text. May be absent (nil) in keyword-only
// deployments.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
