package db

import "github.com/kontur-labs/ticketsearch/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search. Entry scores in the
// result are raw distances in the index's distance metric.
type KNNQuery struct {
	IndexName string
	ProjectID string // mandatory scope, ANDed with Filters
	Filters   filter.Filters
	Vector    []float32
	K         int
}

// TextQuery is the input for BM25 full-text search.
type TextQuery struct {
	IndexName string
	ProjectID string
	Query     string
	Filters   filter.Filters
	TopK      int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Doc holds the stored JSON document;
// Score is a BM25 relevance score for text queries and a raw distance for
// KNN queries.
type SearchEntry struct {
	Key   string
	Score float64
	Doc   []byte
}
