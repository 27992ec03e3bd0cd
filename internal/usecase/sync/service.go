// Package sync walks a project's records through the publish pipeline,
// kind by kind. A resync repairs drift between the tracker and the index
// after outages or store resets, so it must survive individual bad records
// and report what it did.
package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/logger"
	"github.com/kontur-labs/ticketsearch/internal/metrics"
	"github.com/kontur-labs/ticketsearch/internal/usecase/publish"
)

// Source lists the tracker's records for one project.
type Source interface {
	ListRecords(ctx context.Context, projectID string, kind object.Kind) ([]record.Record, error)
}

// Publisher indexes one record.
type Publisher interface {
	Publish(ctx context.Context, rec record.Record, opts publish.Options) (publish.Result, error)
}

// Failure identifies one record that could not be indexed.
type Failure struct {
	Kind     object.Kind
	RecordID string
	Err      string
}

// Report summarizes a project resync.
type Report struct {
	ProjectID string
	Indexed   map[object.Kind]int
	Skipped   map[object.Kind]int
	Failures  []Failure
}

// Service orchestrates whole-project resyncs.
type Service struct {
	gate      domain.Gate
	source    Source
	publisher Publisher
}

// NewService creates a sync service.
func NewService(gate domain.Gate, source Source, publisher Publisher) *Service {
	return &Service{gate: gate, source: source, publisher: publisher}
}

// SyncProject republishes every record of the project, walking all object
// kinds. One bad record never aborts the walk: its failure is recorded in
// the report and the resync moves on. A listing failure for a kind aborts
// the whole sync, since skipping an entire kind would leave the index
// quietly incomplete.
func (s *Service) SyncProject(ctx context.Context, projectID string, opts publish.Options) (Report, error) {
	if err := s.gate.Check(); err != nil {
		return Report{}, err
	}
	if projectID == "" {
		return Report{}, fmt.Errorf("project ID is required")
	}

	log := logger.FromContext(ctx)
	report := Report{
		ProjectID: projectID,
		Indexed:   make(map[object.Kind]int),
		Skipped:   make(map[object.Kind]int),
	}

	for _, kind := range object.Kinds() {
		records, err := s.source.ListRecords(ctx, projectID, kind)
		if err != nil {
			return Report{}, fmt.Errorf("list %s records: %w", kind, err)
		}

		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return Report{}, err
			}

			res, err := s.publisher.Publish(ctx, rec, opts)
			if err != nil {
				metrics.SyncRecordsTotal.WithLabelValues(string(kind), "error").Inc()
				report.Failures = append(report.Failures, Failure{
					Kind:     kind,
					RecordID: rec.ID(),
					Err:      err.Error(),
				})
				log.Warn("record failed during resync",
					zap.String("project_id", projectID),
					zap.String("kind", string(kind)),
					zap.String("record_id", rec.ID()),
					zap.Error(err),
				)
				continue
			}

			switch res.Outcome {
			case publish.OutcomeIndexed:
				metrics.SyncRecordsTotal.WithLabelValues(string(kind), "indexed").Inc()
				report.Indexed[kind]++
			default:
				metrics.SyncRecordsTotal.WithLabelValues(string(kind), "skipped").Inc()
				report.Skipped[kind]++
			}
		}
	}

	log.Info("project resync finished",
		zap.String("project_id", projectID),
		zap.Int("indexed", total(report.Indexed)),
		zap.Int("skipped", total(report.Skipped)),
		zap.Int("failed", len(report.Failures)),
	)
	return report, nil
}

func total(counts map[object.Kind]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
