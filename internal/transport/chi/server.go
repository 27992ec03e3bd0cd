// Package chi is the HTTP transport for the indexing and search API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/hit"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/mode"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/request"
	healthuc "github.com/kontur-labs/ticketsearch/internal/usecase/health"
	publishuc "github.com/kontur-labs/ticketsearch/internal/usecase/publish"
	syncuc "github.com/kontur-labs/ticketsearch/internal/usecase/sync"
)

// publisher is the consumer interface over the publish service.
type publisher interface {
	Publish(ctx context.Context, rec record.Record, opts publishuc.Options) (publishuc.Result, error)
	Remove(ctx context.Context, kind object.Kind, objectID string) (bool, error)
	Fetch(ctx context.Context, kind object.Kind, objectID string) (object.Object, error)
}

// searcher is the consumer interface over the query service.
type searcher interface {
	Search(ctx context.Context, req request.Request) ([]hit.Hit, error)
}

// syncer is the consumer interface over the sync service. Optional; the
// sync route is mounted only when a record source is configured.
type syncer interface {
	SyncProject(ctx context.Context, projectID string, opts publishuc.Options) (syncuc.Report, error)
}

// healthChecker is the consumer interface over the health service.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	publish publisher
	search  searcher
	sync    syncer
	health  healthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server. sync may be nil.
func NewServer(publish publisher, search searcher, sync syncer, health healthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{publish: publish, search: search, sync: sync, health: health, logger: logger}
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r gochi.Router) {
	r.Post("/v1/objects", s.handlePublish)
	r.Delete("/v1/objects/{kind}/{id}", s.handleRemove)
	r.Get("/v1/objects/{kind}/{id}", s.handleFetch)
	r.Post("/v1/search", s.handleSearch)
	if s.sync != nil {
		r.Post("/v1/projects/{projectID}/sync", s.handleSync)
	}
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := recordFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if rec.ID() == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "record id is required")
		return
	}
	if rec.Project() == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "project id is required")
		return
	}

	res, err := s.publish.Publish(r.Context(), rec, publishuc.Options{Refetch: req.Refetch})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if res.Outcome == publishuc.OutcomeIndexed {
		status = http.StatusCreated
	}
	writeJSON(w, status, publishResponse{
		Outcome: res.Outcome,
		Reason:  res.Reason,
		StoreID: res.StoreID,
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := objectParams(w, r)
	if !ok {
		return
	}

	removed, err := s.publish.Remove(r.Context(), kind, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, codeNotFound, "object not found in index")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := objectParams(w, r)
	if !ok {
		return
	}

	obj, err := s.publish.Fetch(r.Context(), kind, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, objectResponseFrom(obj))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	filters, err := filter.New(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	alpha := request.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	domReq, err := request.New(req.ProjectID, req.Query, mode.Mode(req.Mode), filters, req.Limit, alpha)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	hits, err := s.search.Search(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseFrom(hits))
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	projectID := gochi.URLParam(r, "projectID")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "project id is required")
		return
	}

	var req syncRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	report, err := s.sync.SyncProject(r.Context(), projectID, publishuc.Options{Refetch: req.Refetch})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResponseFrom(report))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponseFrom(report))
}

func objectParams(w http.ResponseWriter, r *http.Request) (object.Kind, string, bool) {
	kind := object.Kind(gochi.URLParam(r, "kind"))
	if !kind.IsValid() {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "unknown object kind")
		return "", "", false
	}
	id := gochi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "object id is required")
		return "", "", false
	}
	return kind, id, true
}

// statusMapping maps domain sentinels to HTTP responses.
var statusMapping = []struct {
	sentinel error
	status   int
	code     string
}{
	{domain.ErrServiceDisabled, http.StatusServiceUnavailable, codeServiceDisabled},
	{domain.ErrServiceNotConfigured, http.StatusServiceUnavailable, codeNotConfigured},
	{domain.ErrObjectNotFound, http.StatusNotFound, codeNotFound},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider},
	{domain.ErrVectorSearchNotSupported, http.StatusNotImplemented, codeVectorsUnsupported},
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range statusMapping {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
