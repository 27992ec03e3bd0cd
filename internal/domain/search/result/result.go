package result

// Result is a single raw hit from the store, before score normalization.
// For keyword and hybrid searches Score is a relevance score; for vector
// searches it is the raw distance (IsDistance reports which).
type Result struct {
	id       string
	score    float64
	distance bool
	fields   map[string]string
}

// New creates a relevance-scored search result.
func New(id string, score float64, fields map[string]string) Result {
	return Result{id: id, score: score, fields: fields}
}

// NewDistance creates a vector search result carrying a raw distance.
func NewDistance(id string, distance float64, fields map[string]string) Result {
	return Result{id: id, score: distance, distance: true, fields: fields}
}

// ID returns the store identifier of the hit.
func (r *Result) ID() string { return r.id }

// Score returns the relevance score, or the raw distance for vector hits.
func (r *Result) Score() float64 { return r.score }

// IsDistance reports whether Score carries a distance instead of a score.
func (r *Result) IsDistance() bool { return r.distance }

// Fields returns the stored document fields of the hit.
func (r *Result) Fields() map[string]string { return r.fields }
