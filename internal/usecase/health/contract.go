package health

import "context"

// StorePinger checks search store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// TrackerChecker checks external tracker reachability.
type TrackerChecker interface {
	HealthCheck(ctx context.Context) error
}
