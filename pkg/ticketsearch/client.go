package ticketsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kontur-labs/ticketsearch/internal/db/redis"
	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/mode"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/request"
	indexrepo "github.com/kontur-labs/ticketsearch/internal/repository/index"
	searchrepo "github.com/kontur-labs/ticketsearch/internal/repository/search"
	publishuc "github.com/kontur-labs/ticketsearch/internal/usecase/publish"
	schemauc "github.com/kontur-labs/ticketsearch/internal/usecase/schema"
	searchuc "github.com/kontur-labs/ticketsearch/internal/usecase/search"
	syncuc "github.com/kontur-labs/ticketsearch/internal/usecase/sync"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "ticketsearch:"
)

// ErrObjectNotFound is returned by Fetch for objects absent from the index.
var ErrObjectNotFound = domain.ErrObjectNotFound

// Client is the embedded engine entry point.
type Client struct {
	store      *dbRedis.Store
	publishSvc *publishuc.Service
	searchSvc  *searchuc.Service
	syncSvc    *syncuc.Service
}

// New creates a Client and connects to the store. The provided context
// bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("ticketsearch: store address required (use WithRedis)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("ticketsearch: create store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("ticketsearch: store not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) *Client {
	gate := domain.NewGate(true, true)

	vectorDim := 0
	var embedder publishuc.Embedder
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
		vectorDim = cfg.vectorDimensions
	}

	schemaSvc := schemauc.New(store, cfg.keyPrefix, vectorDim, schemauc.HNSW{
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})

	var refetcher publishuc.Refetcher
	if cfg.refetcher != nil {
		refetcher = &refetcherAdapter{inner: cfg.refetcher}
	}
	serializer := publishuc.NewSerializer(refetcher, cfg.logger)

	publishSvc := publishuc.NewService(
		gate, indexrepo.New(store, cfg.keyPrefix), schemaSvc, serializer, embedder,
	)

	var searchEmb searchuc.Embedder
	if embedder != nil {
		searchEmb = embedder
	}
	searchSvc := searchuc.NewService(gate, searchrepo.New(store, cfg.keyPrefix), schemaSvc, searchEmb)

	var syncSvc *syncuc.Service
	if cfg.source != nil {
		syncSvc = syncuc.NewService(gate, &sourceAdapter{inner: cfg.source}, publishSvc)
	}

	return &Client{
		store:      store,
		publishSvc: publishSvc,
		searchSvc:  searchSvc,
		syncSvc:    syncSvc,
	}
}

// Close releases the store connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Publish indexes one record. refetch pulls the live state of mirrored
// issues from the external tracker when a refetcher is configured.
func (c *Client) Publish(ctx context.Context, rec Record, refetch bool) (PublishResult, error) {
	if rec == nil {
		return PublishResult{}, errors.New("ticketsearch: record is required")
	}
	res, err := c.publishSvc.Publish(ctx, rec.toRecord(), publishuc.Options{Refetch: refetch})
	if err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Outcome: res.Outcome, Reason: res.Reason, StoreID: res.StoreID}, nil
}

// Remove deletes one object from the index. Returns false when the object
// was not indexed.
func (c *Client) Remove(ctx context.Context, kind, objectID string) (bool, error) {
	return c.publishSvc.Remove(ctx, object.Kind(kind), objectID)
}

// Exists reports whether the object is currently indexed.
func (c *Client) Exists(ctx context.Context, kind, objectID string) (bool, error) {
	return c.publishSvc.Exists(ctx, object.Kind(kind), objectID)
}

// Fetch returns the indexed form of one object. Returns ErrObjectNotFound
// for objects absent from the index.
func (c *Client) Fetch(ctx context.Context, kind, objectID string) (IndexedObject, error) {
	obj, err := c.publishSvc.Fetch(ctx, object.Kind(kind), objectID)
	if err != nil {
		return IndexedObject{}, err
	}
	return IndexedObject{
		Kind:        string(obj.Kind),
		ObjectID:    obj.ObjectID,
		ProjectID:   obj.ProjectID,
		Title:       obj.Title,
		Text:        obj.Text,
		Status:      obj.Status,
		URL:         obj.URL,
		ExternalKey: obj.ExternalKey,
		Tags:        obj.Tags,
		CreatedAt:   obj.CreatedAt,
		UpdatedAt:   obj.UpdatedAt,
	}, nil
}

// Search runs one query and returns hits ordered by descending score.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	filters, err := filter.New(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("ticketsearch: %w", err)
	}

	alpha := request.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	domReq, err := request.New(req.ProjectID, req.Query, mode.Mode(req.Mode), filters, req.Limit, alpha)
	if err != nil {
		return nil, fmt.Errorf("ticketsearch: %w", err)
	}

	hits, err := c.searchSvc.Search(ctx, domReq)
	if err != nil {
		return nil, err
	}

	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{
			Kind:        h.Kind,
			ObjectID:    h.ObjectID,
			ProjectID:   h.ProjectID,
			Title:       h.Title,
			URL:         h.URL,
			Status:      h.Status,
			ExternalKey: h.ExternalKey,
			Score:       h.Score,
			UpdatedAt:   h.UpdatedAt,
		}
	}
	return out, nil
}

// SyncProject republishes every record of the project from the configured
// source.
func (c *Client) SyncProject(ctx context.Context, projectID string, refetch bool) (SyncReport, error) {
	if c.syncSvc == nil {
		return SyncReport{}, errors.New("ticketsearch: no record source configured (use WithSource)")
	}

	report, err := c.syncSvc.SyncProject(ctx, projectID, publishuc.Options{Refetch: refetch})
	if err != nil {
		return SyncReport{}, err
	}

	out := SyncReport{
		ProjectID: report.ProjectID,
		Indexed:   make(map[string]int, len(report.Indexed)),
		Skipped:   make(map[string]int, len(report.Skipped)),
	}
	for k, n := range report.Indexed {
		out.Indexed[string(k)] = n
	}
	for k, n := range report.Skipped {
		out.Skipped[string(k)] = n
	}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, SyncFailure{
			Kind:     string(f.Kind),
			RecordID: f.RecordID,
			Err:      f.Err,
		})
	}
	return out, nil
}

// embedderAdapter bridges the public Embedder to the internal contracts.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// refetcherAdapter bridges the public Refetcher to the internal contract.
type refetcherAdapter struct {
	inner Refetcher
}

func (a *refetcherAdapter) FetchIssue(ctx context.Context, externalKey string) (publishuc.RemoteIssue, error) {
	r, err := a.inner.FetchIssue(ctx, externalKey)
	if err != nil {
		return publishuc.RemoteIssue{}, err
	}
	return publishuc.RemoteIssue{
		Title:     r.Title,
		Body:      r.Body,
		State:     r.State,
		Labels:    r.Labels,
		Comments:  r.Comments,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// sourceAdapter bridges the public Source to the internal contract.
type sourceAdapter struct {
	inner Source
}

func (a *sourceAdapter) ListRecords(ctx context.Context, projectID string, kind object.Kind) ([]record.Record, error) {
	items, err := a.inner.ListRecords(ctx, projectID, string(kind))
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.toRecord())
	}
	return out, nil
}
