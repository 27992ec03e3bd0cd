// Package schema ensures the object index exists in the store before first
// use.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kontur-labs/ticketsearch/internal/db"
)

// IndexManager is the consumer interface for FT index lifecycle.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSW holds vector index build parameters.
type HNSW struct {
	M           int
	EFConstruct int
}

// Service creates the object index schema on first use and memoizes the
// outcome per instance. The latch is not shared across instances, so tests
// and multiple engines do not interfere.
type Service struct {
	store     IndexManager
	keyPrefix string
	vectorDim int
	hnsw      HNSW

	mu      sync.Mutex
	ensured bool
}

// New creates a schema service. vectorDim 0 omits the vector field (keyword
// deployments with no embedding model).
func New(store IndexManager, keyPrefix string, vectorDim int, hnsw HNSW) *Service {
	return &Service{store: store, keyPrefix: keyPrefix, vectorDim: vectorDim, hnsw: hnsw}
}

// Ensure makes sure the index exists. The first successful call flips the
// per-instance latch; later calls return immediately without store I/O. A
// failed attempt leaves the latch open so the next call retries, since the
// store may simply not be ready yet and index state does not survive a store
// restart with persistence off.
func (s *Service) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensured {
		return nil
	}

	name := s.indexName()
	exists, err := s.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		s.ensured = true
		return nil
	}

	def := s.buildDefinition()
	if err := s.store.CreateIndex(ctx, def); err != nil {
		// A concurrent engine instance may have won the creation race.
		if errors.Is(err, db.ErrIndexExists) {
			s.ensured = true
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}

	s.ensured = true
	return nil
}

func (s *Service) indexName() string {
	return fmt.Sprintf("%sobjects:idx", s.keyPrefix)
}

// buildDefinition lays out the full canonical object property set: exact
// match tags, full-text search text, numeric recency and size, and the
// optional embedding vector.
func (s *Service) buildDefinition() *db.IndexDefinition {
	def := &db.IndexDefinition{
		Name:     s.indexName(),
		Prefixes: []string{fmt.Sprintf("%sobjects:", s.keyPrefix)},
		Fields: []db.IndexField{
			{Name: "$.kind", Alias: "kind", Type: db.IndexFieldTag},
			{Name: "$.object_id", Alias: "object_id", Type: db.IndexFieldTag},
			{Name: "$.project_id", Alias: "project_id", Type: db.IndexFieldTag},
			{Name: "$.org_id", Alias: "org_id", Type: db.IndexFieldTag},
			{Name: "$.status", Alias: "status", Type: db.IndexFieldTag},
			{Name: "$.source_system", Alias: "source_system", Type: db.IndexFieldTag},
			{Name: "$.external_key", Alias: "external_key", Type: db.IndexFieldTag},
			{Name: "$.parent_id", Alias: "parent_id", Type: db.IndexFieldTag},
			{Name: "$.mime_type", Alias: "mime_type", Type: db.IndexFieldTag},
			{Name: "$.tags[*]", Alias: "tags", Type: db.IndexFieldTag},
			{Name: "$.title", Alias: "title", Type: db.IndexFieldText},
			{Name: "$.search", Alias: "search", Type: db.IndexFieldText},
			{Name: "$.updated_at_unix", Alias: "updated_at_unix", Type: db.IndexFieldNumeric},
			{Name: "$.size_bytes", Alias: "size_bytes", Type: db.IndexFieldNumeric},
		},
	}

	if s.vectorDim > 0 {
		def.Fields = append(def.Fields, db.IndexField{
			Name:              "$.vector",
			Alias:             "vector",
			Type:              db.IndexFieldVector,
			VectorAlgo:        db.VectorHNSW,
			VectorDim:         s.vectorDim,
			VectorDistance:    db.DistanceCosine,
			VectorM:           s.hnsw.M,
			VectorEFConstruct: s.hnsw.EFConstruct,
		})
	}

	return def
}
