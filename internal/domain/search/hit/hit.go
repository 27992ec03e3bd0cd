package hit

import "time"

// Hit is one ranked entry of a query response. Score is always on the
// normalized [0,1]-comparable scale regardless of the search mode that
// produced it.
type Hit struct {
	Kind        string
	ObjectID    string
	ProjectID   string
	Title       string
	URL         string
	Status      string
	ExternalKey string
	Score       float64
	UpdatedAt   time.Time
}
