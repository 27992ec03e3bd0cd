package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/usecase/publish"
)

type mockSource struct {
	records map[object.Kind][]record.Record
	listFn  func(ctx context.Context, projectID string, kind object.Kind) ([]record.Record, error)
}

func (m *mockSource) ListRecords(ctx context.Context, projectID string, kind object.Kind) ([]record.Record, error) {
	if m.listFn != nil {
		return m.listFn(ctx, projectID, kind)
	}
	return m.records[kind], nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, rec record.Record, opts publish.Options) (publish.Result, error)
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, rec record.Record, opts publish.Options) (publish.Result, error) {
	m.published = append(m.published, rec.ID())
	if m.publishFn != nil {
		return m.publishFn(ctx, rec, opts)
	}
	return publish.Result{Outcome: publish.OutcomeIndexed}, nil
}

func projectFixture() map[object.Kind][]record.Record {
	return map[object.Kind][]record.Record{
		object.KindTicket: {
			record.Ticket{TicketID: "T-1", ProjectID: "ops", Title: "a"},
			record.Ticket{TicketID: "T-2", ProjectID: "ops", Title: "b"},
		},
		object.KindComment: {
			record.Comment{CommentID: "C-1", TicketID: "T-1", ProjectID: "ops"},
		},
		object.KindAttachment: {
			record.Attachment{AttachmentID: "A-1", TicketID: "T-1", ProjectID: "ops", Role: "transcript", TicketKind: "meeting"},
		},
	}
}

func TestSyncProject_WalksAllKindsAndCounts(t *testing.T) {
	pub := &mockPublisher{
		publishFn: func(_ context.Context, rec record.Record, _ publish.Options) (publish.Result, error) {
			if att, ok := rec.(record.Attachment); ok && att.Role == "transcript" {
				return publish.Result{Outcome: publish.OutcomeSkipped, Reason: "excluded"}, nil
			}
			return publish.Result{Outcome: publish.OutcomeIndexed}, nil
		},
	}
	svc := NewService(domain.NewGate(true, true), &mockSource{records: projectFixture()}, pub)

	report, err := svc.SyncProject(context.Background(), "ops", publish.Options{})
	if err != nil {
		t.Fatalf("SyncProject: %v", err)
	}
	if report.Indexed[object.KindTicket] != 2 {
		t.Fatalf("tickets indexed = %d, want 2", report.Indexed[object.KindTicket])
	}
	if report.Indexed[object.KindComment] != 1 {
		t.Fatalf("comments indexed = %d, want 1", report.Indexed[object.KindComment])
	}
	if report.Skipped[object.KindAttachment] != 1 {
		t.Fatalf("attachments skipped = %d, want 1", report.Skipped[object.KindAttachment])
	}
	if len(report.Failures) != 0 {
		t.Fatalf("failures = %v, want none", report.Failures)
	}
	if len(pub.published) != 4 {
		t.Fatalf("published %d records, want 4", len(pub.published))
	}
}

func TestSyncProject_BadRecordDoesNotAbortWalk(t *testing.T) {
	pub := &mockPublisher{
		publishFn: func(_ context.Context, rec record.Record, _ publish.Options) (publish.Result, error) {
			if rec.ID() == "T-1" {
				return publish.Result{}, errors.New("store rejected document")
			}
			return publish.Result{Outcome: publish.OutcomeIndexed}, nil
		},
	}
	svc := NewService(domain.NewGate(true, true), &mockSource{records: projectFixture()}, pub)

	report, err := svc.SyncProject(context.Background(), "ops", publish.Options{})
	if err != nil {
		t.Fatalf("SyncProject must tolerate record failures: %v", err)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", report.Failures)
	}
	f := report.Failures[0]
	if f.RecordID != "T-1" || f.Kind != object.KindTicket || f.Err == "" {
		t.Fatalf("failure entry = %+v", f)
	}
	// The rest of the project still gets published.
	if report.Indexed[object.KindTicket] != 1 || report.Indexed[object.KindComment] != 1 {
		t.Fatalf("surviving records not indexed: %+v", report.Indexed)
	}
}

func TestSyncProject_ListFailureAborts(t *testing.T) {
	src := &mockSource{
		listFn: func(_ context.Context, _ string, kind object.Kind) ([]record.Record, error) {
			if kind == object.KindComment {
				return nil, errors.New("tracker API 502")
			}
			return nil, nil
		},
	}
	svc := NewService(domain.NewGate(true, true), src, &mockPublisher{})

	if _, err := svc.SyncProject(context.Background(), "ops", publish.Options{}); err == nil {
		t.Fatal("expected error when a kind cannot be listed")
	}
}

func TestSyncProject_GateChecked(t *testing.T) {
	svc := NewService(domain.NewGate(false, true), &mockSource{}, &mockPublisher{})
	_, err := svc.SyncProject(context.Background(), "ops", publish.Options{})
	if !errors.Is(err, domain.ErrServiceDisabled) {
		t.Fatalf("err = %v, want ErrServiceDisabled", err)
	}
}

func TestSyncProject_EmptyProjectIDRejected(t *testing.T) {
	svc := NewService(domain.NewGate(true, true), &mockSource{}, &mockPublisher{})
	if _, err := svc.SyncProject(context.Background(), "", publish.Options{}); err == nil {
		t.Fatal("expected error for empty project ID")
	}
}

func TestSyncProject_CanceledContextStopsWalk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(domain.NewGate(true, true), &mockSource{records: projectFixture()}, &mockPublisher{})
	if _, err := svc.SyncProject(ctx, "ops", publish.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
