package health

import "context"

// Status is the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing; indexing and
	// keyword search still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the search store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is one component's health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates component health checks.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. The store is mandatory; the embedding
// provider and the external tracker are optional and only degrade status.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	tracker   TrackerChecker
}

// New creates a Service. embedding and tracker can be nil.
func New(store StorePinger, embedding EmbeddingChecker, tracker TrackerChecker) *Service {
	return &Service{store: store, embedding: embedding, tracker: tracker}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		status = Unhealthy
	} else {
		checks["store"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.tracker != nil {
		if err := s.tracker.HealthCheck(ctx); err != nil {
			checks["tracker"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["tracker"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
