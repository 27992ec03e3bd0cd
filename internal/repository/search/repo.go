package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kontur-labs/ticketsearch/internal/db"
	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo executes keyword, vector, and fused hybrid searches over the object
// index.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a search repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// SearchKeyword runs a BM25 search. Scores are the store's native relevance
// values.
func (r *Repo) SearchKeyword(
	ctx context.Context, projectID, query string, limit int, f filter.Filters,
) ([]result.Result, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: r.indexName(),
		ProjectID: projectID,
		Query:     query,
		Filters:   f,
		TopK:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search text: %w: %w", domain.ErrStoreOperation, err)
	}
	return parseEntries(sr, false), nil
}

// SearchVector runs a KNN search. Result scores carry the raw distance; the
// query engine owns conversion onto the similarity scale.
func (r *Repo) SearchVector(
	ctx context.Context, projectID string, vector []float32, limit int, f filter.Filters,
) ([]result.Result, error) {
	if len(vector) == 0 {
		return nil, domain.ErrVectorSearchNotSupported
	}
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName(),
		ProjectID: projectID,
		Filters:   f,
		Vector:    vector,
		K:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w: %w", domain.ErrStoreOperation, err)
	}
	return parseEntries(sr, true), nil
}

// SearchHybrid blends the keyword and vector rankings with relative-score
// fusion. Alpha 0 runs only the keyword leg, alpha 1 only the vector leg; a
// missing query vector degrades to the keyword leg regardless of alpha.
func (r *Repo) SearchHybrid(
	ctx context.Context, projectID, query string, vector []float32,
	alpha float64, limit int, f filter.Filters,
) ([]result.Result, error) {
	if alpha <= 0 || len(vector) == 0 {
		return r.SearchKeyword(ctx, projectID, query, limit, f)
	}
	if alpha >= 1 {
		knn, err := r.SearchVector(ctx, projectID, vector, limit, f)
		if err != nil {
			return nil, err
		}
		return similaritiesOf(knn), nil
	}

	knn, err := r.SearchVector(ctx, projectID, vector, limit, f)
	if err != nil {
		return nil, err
	}
	kw, err := r.SearchKeyword(ctx, projectID, query, limit, f)
	if err != nil {
		return nil, err
	}

	return fuseRelative(knn, kw, alpha, limit), nil
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%sobjects:idx", r.keyPrefix)
}

// parseEntries converts a db.SearchResult into domain results, extracting
// the hit-relevant fields from each stored JSON document.
func parseEntries(sr *db.SearchResult, distance bool) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		fields := parseDocFields(entry.Doc)
		if distance {
			out = append(out, result.NewDistance(entry.Key, entry.Score, fields))
		} else {
			out = append(out, result.New(entry.Key, entry.Score, fields))
		}
	}
	return out
}

// hitFields are the stored document fields a query response exposes.
var hitFields = []string{
	"kind", "object_id", "project_id", "title", "url",
	"status", "external_key", "updated_at",
}

func parseDocFields(doc []byte) map[string]string {
	if len(doc) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil
	}

	fields := make(map[string]string, len(hitFields))
	for _, k := range hitFields {
		if v, ok := m[k].(string); ok {
			fields[k] = v
		}
	}
	return fields
}
