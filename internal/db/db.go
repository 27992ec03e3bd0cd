package db

import (
	"context"
	"time"
)

// Store is the main store facade combining all sub-interfaces. Consumers
// depend on the narrow sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	DocStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocStore provides JSON document operations keyed by store identifier.
// Replace and Insert are conditional writes: the store reports the condition
// outcome through typed sentinel errors, so callers never have to classify
// failures by message inspection.
type DocStore interface {
	// JSONReplace overwrites an existing document (JSON.SET ... XX).
	// Returns ErrKeyNotFound when no document exists at the key.
	JSONReplace(ctx context.Context, key string, data []byte) error
	// JSONInsert creates a new document (JSON.SET ... NX).
	// Returns ErrKeyExists when the key is already taken.
	JSONInsert(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	// Del removes a document, reporting whether anything was deleted.
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
