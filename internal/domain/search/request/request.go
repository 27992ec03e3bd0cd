package request

import (
	"fmt"

	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 2048
	DefaultLimit   = 10
	MaxLimit       = 100
	DefaultAlpha   = 0.5
)

// Request is a validated search query. The project scope is mandatory and
// enforced on every mode.
type Request struct {
	projectID  string
	query      string
	searchMode mode.Mode
	filters    filter.Filters
	limit      int
	alpha      float64
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, limit=10. Alpha must be in [0,1]; zero is a valid
// keyword-only blend, so callers that want the default apply DefaultAlpha
// before construction.
func New(
	projectID, query string,
	m mode.Mode,
	filters filter.Filters,
	limit int,
	alpha float64,
) (Request, error) {
	if projectID == "" {
		return Request{}, fmt.Errorf("project ID is required")
	}
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if alpha < 0 || alpha > 1 {
		return Request{}, fmt.Errorf("alpha must be between 0 and 1")
	}

	return Request{
		projectID:  projectID,
		query:      query,
		searchMode: m,
		filters:    filters,
		limit:      limit,
		alpha:      alpha,
	}, nil
}

// ProjectID returns the mandatory project scope.
func (r *Request) ProjectID() string { return r.projectID }

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the AND-combined exact-match filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Alpha returns the hybrid blend factor (0 = keyword only, 1 = vector only).
func (r *Request) Alpha() float64 { return r.alpha }
