package request

import (
	"strings"
	"testing"

	"github.com/kontur-labs/ticketsearch/internal/domain/search/filter"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/mode"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		query     string
		mode      mode.Mode
		limit     int
		alpha     float64
		wantErr   bool
	}{
		{"valid hybrid", "proj-1", "disk full", mode.Hybrid, 10, 0.5, false},
		{"empty mode defaults", "proj-1", "disk full", "", 10, 0.5, false},
		{"missing project", "", "disk full", mode.Hybrid, 10, 0.5, true},
		{"missing query", "proj-1", "", mode.Hybrid, 10, 0.5, true},
		{"bad mode", "proj-1", "disk full", "fuzzy", 10, 0.5, true},
		{"alpha too high", "proj-1", "disk full", mode.Hybrid, 10, 1.1, true},
		{"alpha negative", "proj-1", "disk full", mode.Hybrid, 10, -0.1, true},
		{"zero alpha is valid", "proj-1", "disk full", mode.Hybrid, 10, 0.0, false},
		{"query too long", "proj-1", strings.Repeat("x", MaxQueryLength+1), mode.Hybrid, 10, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.projectID, tt.query, tt.mode, filter.Filters{}, tt.limit, tt.alpha)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	r, err := New("proj-1", "disk full", "", filter.Filters{}, 0, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Mode() != mode.Hybrid {
		t.Errorf("expected default mode hybrid, got %q", r.Mode())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, r.Limit())
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New("proj-1", "disk full", mode.Keyword, filter.Filters{}, 500, 0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Limit() != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, r.Limit())
	}
}

func TestMode_IsValid(t *testing.T) {
	for _, m := range []mode.Mode{mode.Hybrid, mode.Keyword, mode.Similar} {
		if !m.IsValid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if mode.Mode("fuzzy").IsValid() {
		t.Error("expected 'fuzzy' to be invalid")
	}
}
