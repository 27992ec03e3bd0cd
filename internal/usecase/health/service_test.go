package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{}, &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %q, want %q", r.Status, Healthy)
	}
	for _, name := range []string{"store", "embedding", "tracker"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("%s = %q, want %q", name, r.Checks[name], CheckOK)
		}
	}
}

func TestCheck_StoreDownIsUnhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockChecker{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("status = %q, want %q", r.Status, Unhealthy)
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("store = %q, want %q", r.Checks["store"], CheckError)
	}
}

func TestCheck_EmbeddingDownOnlyDegrades(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("timeout")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("status = %q, want %q", r.Status, Degraded)
	}
	if r.Checks["store"] != CheckOK || r.Checks["embedding"] != CheckError {
		t.Errorf("checks = %v", r.Checks)
	}
}

func TestCheck_TrackerDownOnlyDegrades(t *testing.T) {
	svc := New(&mockPinger{}, nil, &mockChecker{err: errors.New("rate limited")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("status = %q, want %q", r.Status, Degraded)
	}
}

func TestCheck_OptionalComponentsAbsent(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %q, want %q", r.Status, Healthy)
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check must be absent when not configured")
	}
	if _, ok := r.Checks["tracker"]; ok {
		t.Error("tracker check must be absent when not configured")
	}
}

func TestCheck_StoreDownWinsOverDegraded(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("down")},
		&mockChecker{err: errors.New("down")},
		nil,
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("status = %q, want %q", r.Status, Unhealthy)
	}
}
