package publish

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
)

func TestSerialize_Ticket(t *testing.T) {
	s := NewSerializer(nil, zap.NewNop())

	obj, ok := s.Serialize(context.Background(), record.Ticket{
		TicketID:    "T-1",
		ProjectID:   "ops",
		Title:       "Login broken",
		Description: "500 on POST /login",
		Status:      "open",
		Labels:      []string{"auth", "prod"},
	}, false)
	if !ok {
		t.Fatal("ticket must be supported")
	}
	if obj.Kind != object.KindTicket || obj.ObjectID != "T-1" {
		t.Fatalf("unexpected identity fields: %+v", obj)
	}
	if obj.Title != "Login broken" || obj.Text != "500 on POST /login" {
		t.Fatalf("unexpected content fields: %+v", obj)
	}
	if len(obj.Tags) != 2 {
		t.Fatalf("tags = %v, want labels carried over", obj.Tags)
	}
}

func TestSerialize_TextAttachmentUsesContent(t *testing.T) {
	s := NewSerializer(nil, zap.NewNop())

	body := "# Runbook\n\nRestart the ingest worker."
	obj, ok := s.Serialize(context.Background(), record.Attachment{
		AttachmentID: "A-1",
		TicketID:     "T-1",
		ProjectID:    "ops",
		Name:         "runbook.md",
		MimeType:     "text/markdown",
		SizeBytes:    int64(len(body)),
		Content:      []byte(body),
	}, false)
	if !ok {
		t.Fatal("attachment must be supported")
	}
	if obj.Text != body {
		t.Fatalf("text = %q, want decoded content", obj.Text)
	}
	if obj.ParentObjectID != "T-1" {
		t.Fatalf("parent = %q, want owning ticket", obj.ParentObjectID)
	}
}

func TestSerialize_BinaryAttachmentSynthesizesText(t *testing.T) {
	s := NewSerializer(nil, zap.NewNop())

	obj, _ := s.Serialize(context.Background(), record.Attachment{
		AttachmentID: "A-2",
		TicketID:     "T-1",
		ProjectID:    "ops",
		Name:         "dump.bin",
		MimeType:     "application/octet-stream",
		SizeBytes:    4096,
		Content:      []byte{0x7f, 0x45, 0x4c, 0x46},
	}, false)
	if !strings.Contains(obj.Text, "dump.bin") || !strings.Contains(obj.Text, "4096") {
		t.Fatalf("synthesized text missing metadata: %q", obj.Text)
	}
	if strings.Contains(obj.Text, "\x7fELF") {
		t.Fatal("binary content must not leak into the index")
	}
}

func TestIsTextLike(t *testing.T) {
	tests := []struct {
		mime, name string
		want       bool
	}{
		{"text/plain", "notes.txt", true},
		{"text/markdown; charset=utf-8", "readme.md", true},
		{"application/json", "config.json", true},
		{"", "trace.log", true},
		{"", "photo.png", false},
		{"image/png", "diagram.png", false},
		{"application/pdf", "spec.pdf", false},
	}
	for _, tt := range tests {
		if got := isTextLike(tt.mime, tt.name); got != tt.want {
			t.Errorf("isTextLike(%q, %q) = %v, want %v", tt.mime, tt.name, got, tt.want)
		}
	}
}

func TestSerialize_ExternalIssueRefetchSuccess(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, key string) (RemoteIssue, error) {
			if key != "acme/api#42" {
				t.Errorf("external key = %q", key)
			}
			return RemoteIssue{
				Title:    "Fresh title",
				Body:     "Fresh body",
				State:    "closed",
				Labels:   []string{"bug"},
				Comments: []string{"fixed in v2.1"},
				URL:      "https://github.com/acme/api/issues/42",
			}, nil
		},
	}
	s := NewSerializer(fetcher, zap.NewNop())

	obj, ok := s.Serialize(context.Background(), record.ExternalIssue{
		IssueID:      "E-42",
		ProjectID:    "ops",
		SourceSystem: "github",
		ExternalKey:  "acme/api#42",
		Title:        "Stale title",
		Body:         "Stale body",
		State:        "open",
	}, true)
	if !ok {
		t.Fatal("external issue must be supported")
	}
	if obj.Title != "Fresh title" || obj.Status != "closed" {
		t.Fatalf("refetched fields not applied: %+v", obj)
	}
	if !strings.Contains(obj.Text, "Fresh body") || !strings.Contains(obj.Text, "fixed in v2.1") {
		t.Fatalf("text must combine body and comments: %q", obj.Text)
	}
	if fetcher.fetchCalls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetcher.fetchCalls)
	}
}

func TestSerialize_ExternalIssueRefetchFallsBackToMirror(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFn: func(context.Context, string) (RemoteIssue, error) {
			return RemoteIssue{}, errors.New("rate limited")
		},
	}
	s := NewSerializer(fetcher, zap.NewNop())

	obj, ok := s.Serialize(context.Background(), record.ExternalIssue{
		IssueID:      "E-43",
		ProjectID:    "ops",
		SourceSystem: "github",
		ExternalKey:  "acme/api#43",
		Title:        "Mirror title",
		Body:         "Mirror body",
		State:        "open",
		UpdatedAt:    time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}, true)
	if !ok {
		t.Fatal("fallback must still produce an object")
	}
	if obj.Title != "Mirror title" || obj.Status != "open" {
		t.Fatalf("mirror fields not preserved: %+v", obj)
	}
}

func TestSerialize_ExternalPRWithoutRefetch(t *testing.T) {
	fetcher := &mockFetcher{}
	s := NewSerializer(fetcher, zap.NewNop())

	obj, _ := s.Serialize(context.Background(), record.ExternalPR{
		PRID:         "P-7",
		ProjectID:    "ops",
		SourceSystem: "github",
		ExternalKey:  "acme/api#7",
		Title:        "Add retries",
		Body:         "Wraps the client with backoff",
		State:        "merged",
	}, false)
	if obj.Kind != object.KindExternalPR {
		t.Fatalf("kind = %q", obj.Kind)
	}
	if fetcher.fetchCalls != 0 {
		t.Fatal("refetch must be opt-in")
	}
}

func TestSerialize_ChangeSynthesizesText(t *testing.T) {
	s := NewSerializer(nil, zap.NewNop())

	obj, _ := s.Serialize(context.Background(), record.Change{
		ChangeID:  "C-1",
		TicketID:  "T-1",
		ProjectID: "ops",
		Field:     "status",
		OldValue:  "open",
		NewValue:  "resolved",
		Author:    "dana",
	}, false)
	for _, want := range []string{"status", "open", "resolved", "dana"} {
		if !strings.Contains(obj.Text, want) {
			t.Errorf("change text %q missing %q", obj.Text, want)
		}
	}
}

func TestExclusionPolicy(t *testing.T) {
	var p ExclusionPolicy

	excluded, reason := p.Check(record.Attachment{Role: "transcript", TicketKind: "meeting"})
	if !excluded || reason == "" {
		t.Fatal("meeting transcript must be excluded with a reason")
	}
	if excluded, _ := p.Check(record.Attachment{Role: "transcript", TicketKind: "bug"}); excluded {
		t.Fatal("transcripts on non-meeting tickets are indexable")
	}
	if excluded, _ := p.Check(record.Attachment{Role: "screenshot", TicketKind: "meeting"}); excluded {
		t.Fatal("non-transcript attachments on meetings are indexable")
	}
	if excluded, _ := p.Check(record.Ticket{TicketID: "T-1", TicketKind: "meeting"}); excluded {
		t.Fatal("the meeting ticket itself is indexable")
	}
}
