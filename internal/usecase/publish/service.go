package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/logger"
	"github.com/kontur-labs/ticketsearch/internal/metrics"
)

// Publish outcomes.
const (
	OutcomeIndexed     = "indexed"
	OutcomeSkipped     = "skipped"
	OutcomeUnsupported = "unsupported"
)

// Result describes what happened to one published record.
type Result struct {
	Outcome string
	Reason  string
	StoreID string
}

// Options tune a single publish call.
type Options struct {
	// Refetch asks the serializer to pull the live state of mirrored
	// issues from the external tracker instead of the local mirror.
	Refetch bool
}

// Service indexes domain records into the search store. Every entry point
// runs the same pipeline: availability gate, exclusion policy, canonical
// serialization, schema check, then the replace-or-insert write.
type Service struct {
	gate       domain.Gate
	repo       IndexRepository
	schema     SchemaEnsurer
	serializer *Serializer
	policy     ExclusionPolicy
	embedder   Embedder
}

// NewService creates a publish service. embedder may be nil; objects are
// then indexed without vectors and served by keyword search only.
func NewService(gate domain.Gate, repo IndexRepository, schema SchemaEnsurer, serializer *Serializer, embedder Embedder) *Service {
	return &Service{
		gate:       gate,
		repo:       repo,
		schema:     schema,
		serializer: serializer,
		embedder:   embedder,
	}
}

// Publish indexes one record. Excluded and unsupported records return a
// non-indexed Result with a nil error: they are normal outcomes, not
// failures.
func (s *Service) Publish(ctx context.Context, rec record.Record, opts Options) (Result, error) {
	if err := s.gate.Check(); err != nil {
		return Result{}, err
	}

	if rec == nil {
		return Result{Outcome: OutcomeUnsupported, Reason: "unsupported record type"}, nil
	}

	log := logger.FromContext(ctx)

	if excluded, reason := s.policy.Check(rec); excluded {
		metrics.PublishTotal.WithLabelValues(string(rec.Kind()), OutcomeSkipped).Inc()
		log.Info("record excluded from indexing",
			zap.String("kind", string(rec.Kind())),
			zap.String("record_id", rec.ID()),
			zap.String("reason", reason),
		)
		return Result{Outcome: OutcomeSkipped, Reason: reason}, nil
	}

	obj, ok := s.serializer.Serialize(ctx, rec, opts.Refetch)
	if !ok {
		metrics.PublishTotal.WithLabelValues(string(rec.Kind()), OutcomeUnsupported).Inc()
		return Result{Outcome: OutcomeUnsupported, Reason: "unsupported record type"}, nil
	}
	obj.Normalize(time.Now())
	if err := obj.Validate(); err != nil {
		metrics.PublishTotal.WithLabelValues(string(obj.Kind), "error").Inc()
		return Result{}, fmt.Errorf("serialized object invalid: %w", err)
	}

	if err := s.schema.Ensure(ctx); err != nil {
		metrics.PublishTotal.WithLabelValues(string(obj.Kind), "error").Inc()
		return Result{}, fmt.Errorf("ensure schema: %w", err)
	}

	vector, err := s.embed(ctx, obj)
	if err != nil {
		metrics.PublishTotal.WithLabelValues(string(obj.Kind), "error").Inc()
		return Result{}, err
	}

	storeID, err := s.repo.Upsert(ctx, &obj, vector)
	if err != nil {
		metrics.PublishTotal.WithLabelValues(string(obj.Kind), "error").Inc()
		return Result{}, err
	}

	metrics.PublishTotal.WithLabelValues(string(obj.Kind), OutcomeIndexed).Inc()
	log.Debug("record indexed",
		zap.String("kind", string(obj.Kind)),
		zap.String("object_id", obj.ObjectID),
		zap.String("store_id", storeID),
	)
	return Result{Outcome: OutcomeIndexed, StoreID: storeID}, nil
}

// embed vectorizes the searchable text. A missing embedder is fine, an
// embedder failure is not: a half-indexed object with stale vectors would
// silently rank wrong, so the whole publish fails instead.
func (s *Service) embed(ctx context.Context, obj object.Object) ([]float32, error) {
	if s.embedder == nil {
		return nil, nil
	}
	text := obj.Title
	if obj.Text != "" {
		text = obj.Title + "\n" + obj.Text
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return vector, nil
}

// Remove deletes one object from the index. Removing an absent object is
// not an error.
func (s *Service) Remove(ctx context.Context, kind object.Kind, objectID string) (bool, error) {
	if err := s.gate.Check(); err != nil {
		return false, err
	}
	if !kind.IsValid() {
		return false, fmt.Errorf("invalid object kind %q", kind)
	}
	return s.repo.Delete(ctx, kind, objectID)
}

// Exists reports whether the object is currently indexed.
func (s *Service) Exists(ctx context.Context, kind object.Kind, objectID string) (bool, error) {
	if err := s.gate.Check(); err != nil {
		return false, err
	}
	if !kind.IsValid() {
		return false, fmt.Errorf("invalid object kind %q", kind)
	}
	return s.repo.Exists(ctx, kind, objectID)
}

// Fetch returns the indexed form of one object, mainly for diagnostics.
func (s *Service) Fetch(ctx context.Context, kind object.Kind, objectID string) (object.Object, error) {
	if err := s.gate.Check(); err != nil {
		return object.Object{}, err
	}
	if !kind.IsValid() {
		return object.Object{}, fmt.Errorf("invalid object kind %q", kind)
	}
	obj, err := s.repo.Fetch(ctx, kind, objectID)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return object.Object{}, err
		}
		return object.Object{}, fmt.Errorf("fetch object: %w", err)
	}
	return obj, nil
}
