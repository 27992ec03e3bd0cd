package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/hit"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/mode"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/request"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/result"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/score"
	"github.com/kontur-labs/ticketsearch/internal/logger"
	"github.com/kontur-labs/ticketsearch/internal/metrics"
)

// Service executes validated search requests. Keyword mode is the hybrid
// path with alpha pinned to zero, so both modes share one ranking pipeline.
// Similar mode runs pure vector search and degrades to hybrid when vectors
// are unavailable.
type Service struct {
	gate     domain.Gate
	repo     Repository
	schema   SchemaEnsurer
	embedder Embedder
}

// NewService creates a query service. embedder may be nil; hybrid then
// serves keyword results and similar mode always degrades.
func NewService(gate domain.Gate, repo Repository, schema SchemaEnsurer, embedder Embedder) *Service {
	return &Service{gate: gate, repo: repo, schema: schema, embedder: embedder}
}

// Search runs one query and returns hits ordered by descending score.
func (s *Service) Search(ctx context.Context, req request.Request) ([]hit.Hit, error) {
	if err := s.gate.Check(); err != nil {
		return nil, err
	}
	if err := s.schema.Ensure(ctx); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), "error").Inc()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	start := time.Now()
	results, status, err := s.dispatch(ctx, req)
	metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), "error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), status).Inc()

	return toHits(results), nil
}

// dispatch picks the execution path for the request mode and reports the
// request status (success or degraded).
func (s *Service) dispatch(ctx context.Context, req request.Request) ([]result.Result, string, error) {
	switch req.Mode() {
	case mode.Keyword:
		res, err := s.repo.SearchHybrid(
			ctx, req.ProjectID(), req.Query(), nil, 0.0, req.Limit(), req.Filters(),
		)
		return res, "success", err

	case mode.Similar:
		return s.searchSimilar(ctx, req)

	default:
		res, status, err := s.searchHybrid(ctx, req)
		return res, status, err
	}
}

func (s *Service) searchHybrid(ctx context.Context, req request.Request) ([]result.Result, string, error) {
	vector, status := s.embedQuery(ctx, req)
	res, err := s.repo.SearchHybrid(
		ctx, req.ProjectID(), req.Query(), vector, req.Alpha(), req.Limit(), req.Filters(),
	)
	return res, status, err
}

// searchSimilar runs pure vector search and converts distances onto the
// similarity scale. Any failure of the vector path falls back to hybrid so
// the caller still gets an answer, reported as degraded.
func (s *Service) searchSimilar(ctx context.Context, req request.Request) ([]result.Result, string, error) {
	log := logger.FromContext(ctx)

	vector, err := s.embed(ctx, req.Query())
	if err == nil {
		var res []result.Result
		res, err = s.repo.SearchVector(ctx, req.ProjectID(), vector, req.Limit(), req.Filters())
		if err == nil {
			return similarities(res), "success", nil
		}
	}

	log.Warn("similar search degraded to hybrid",
		zap.String("project_id", req.ProjectID()),
		zap.Error(err),
	)
	res, resErr := s.repo.SearchHybrid(
		ctx, req.ProjectID(), req.Query(), nil, 0.0, req.Limit(), req.Filters(),
	)
	if resErr != nil {
		return nil, "", resErr
	}
	return res, "degraded", nil
}

// embedQuery vectorizes the query for hybrid mode. Embedding failures do
// not fail the request; the hybrid path degrades to its keyword leg.
func (s *Service) embedQuery(ctx context.Context, req request.Request) ([]float32, string) {
	if req.Alpha() <= 0 {
		return nil, "success"
	}
	vector, err := s.embed(ctx, req.Query())
	if err != nil {
		logger.FromContext(ctx).Warn("query embedding failed, using keyword leg only",
			zap.String("project_id", req.ProjectID()),
			zap.Error(err),
		)
		return nil, "degraded"
	}
	return vector, "success"
}

func (s *Service) embed(ctx context.Context, query string) ([]float32, error) {
	if s.embedder == nil {
		return nil, domain.ErrVectorSearchNotSupported
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return vector, nil
}

// similarities maps raw distances onto the similarity scale. Results that
// already carry scores pass through unchanged.
func similarities(results []result.Result) []result.Result {
	out := make([]result.Result, 0, len(results))
	for _, r := range results {
		if r.IsDistance() {
			out = append(out, result.New(r.ID(), score.FromDistance(r.Score()), r.Fields()))
			continue
		}
		out = append(out, r)
	}
	return out
}

// toHits converts ranked results into response hits and re-sorts by
// descending score. The store already orders each leg, but fused and
// converted rankings are re-sorted here so ordering never depends on which
// path produced them.
func toHits(results []result.Result) []hit.Hit {
	hits := make([]hit.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, toHit(r))
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits
}

func toHit(r result.Result) hit.Hit {
	fields := r.Fields()
	h := hit.Hit{
		Kind:        fields["kind"],
		ObjectID:    fields["object_id"],
		ProjectID:   fields["project_id"],
		Title:       fields["title"],
		URL:         fields["url"],
		Status:      fields["status"],
		ExternalKey: fields["external_key"],
		Score:       r.Score(),
	}
	if ts, err := time.Parse(time.RFC3339, fields["updated_at"]); err == nil {
		h.UpdatedAt = ts
	}
	return h
}
