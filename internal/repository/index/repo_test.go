package index

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kontur-labs/ticketsearch/internal/db"
	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	replaceFn func(ctx context.Context, key string, data []byte) error
	insertFn  func(ctx context.Context, key string, data []byte) error
	getFn     func(ctx context.Context, key string) ([]byte, error)
	delFn     func(ctx context.Context, key string) (bool, error)
	existsFn  func(ctx context.Context, key string) (bool, error)

	replaceCalls int
	insertCalls  int
}

func (m *mockStore) JSONReplace(ctx context.Context, key string, data []byte) error {
	m.replaceCalls++
	if m.replaceFn != nil {
		return m.replaceFn(ctx, key, data)
	}
	return nil
}

func (m *mockStore) JSONInsert(ctx context.Context, key string, data []byte) error {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, key, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func testObject() *object.Object {
	o := &object.Object{
		Kind:      object.KindTicket,
		ObjectID:  "42",
		ProjectID: "p1",
		Title:     "Login broken",
		Text:      "Cannot sign in since the last deploy",
	}
	o.Normalize(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	return o
}

func TestUpsert_ReplaceSucceeds(t *testing.T) {
	st := &mockStore{}
	repo := New(st, "ticketsearch:")

	storeID, err := repo.Upsert(context.Background(), testObject(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storeID != object.Identity(object.KindTicket, "42") {
		t.Errorf("storeID = %q, want derived identity", storeID)
	}
	if st.replaceCalls != 1 {
		t.Errorf("replace calls = %d, want 1", st.replaceCalls)
	}
	if st.insertCalls != 0 {
		t.Errorf("insert called on successful replace")
	}
}

func TestUpsert_NotFoundFallsBackToInsert(t *testing.T) {
	st := &mockStore{
		replaceFn: func(context.Context, string, []byte) error { return db.ErrKeyNotFound },
	}
	repo := New(st, "ticketsearch:")

	if _, err := repo.Upsert(context.Background(), testObject(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.insertCalls != 1 {
		t.Errorf("insert calls = %d, want exactly 1", st.insertCalls)
	}
}

func TestUpsert_OtherReplaceErrorDoesNotInsert(t *testing.T) {
	storeErr := errors.New("connection reset")
	st := &mockStore{
		replaceFn: func(context.Context, string, []byte) error { return storeErr },
	}
	repo := New(st, "ticketsearch:")

	_, err := repo.Upsert(context.Background(), testObject(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("error does not wrap the store failure: %v", err)
	}
	if !errors.Is(err, domain.ErrStoreOperation) {
		t.Errorf("error not classified as store operation failure: %v", err)
	}
	if st.insertCalls != 0 {
		t.Error("insert must not be attempted after a non-not-found replace error")
	}
}

func TestUpsert_InsertErrorSurfaces(t *testing.T) {
	insertErr := errors.New("oom")
	st := &mockStore{
		replaceFn: func(context.Context, string, []byte) error { return db.ErrKeyNotFound },
		insertFn:  func(context.Context, string, []byte) error { return insertErr },
	}
	repo := New(st, "ticketsearch:")

	_, err := repo.Upsert(context.Background(), testObject(), nil)
	if !errors.Is(err, insertErr) {
		t.Fatalf("insert error not surfaced: %v", err)
	}
}

func TestUpsert_SameIdentityAddressesSameKey(t *testing.T) {
	var keys []string
	st := &mockStore{
		replaceFn: func(_ context.Context, key string, _ []byte) error {
			keys = append(keys, key)
			return nil
		},
	}
	repo := New(st, "ticketsearch:")

	obj := testObject()
	if _, err := repo.Upsert(context.Background(), obj, nil); err != nil {
		t.Fatal(err)
	}
	obj.Title = "Login broken on Safari"
	if _, err := repo.Upsert(context.Background(), obj, nil); err != nil {
		t.Fatal(err)
	}

	if len(keys) != 2 || keys[0] != keys[1] {
		t.Fatalf("same (kind,id) resolved to different keys: %v", keys)
	}
}

func TestFetch_RoundTrip(t *testing.T) {
	var stored []byte
	st := &mockStore{
		replaceFn: func(_ context.Context, _ string, data []byte) error {
			stored = data
			return nil
		},
		getFn: func(context.Context, string) ([]byte, error) {
			// JSON.GET on the root path returns an array-wrapped doc.
			return append(append([]byte("["), stored...), ']'), nil
		},
	}
	repo := New(st, "ticketsearch:")

	want := testObject()
	want.Tags = []string{"auth", "regression"}
	want.Status = "open"
	if _, err := repo.Upsert(context.Background(), want, nil); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Fetch(context.Background(), object.KindTicket, "42")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Title != want.Title || got.Status != "open" || len(got.Tags) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, want.UpdatedAt)
	}
}

func TestFetch_NotFound(t *testing.T) {
	repo := New(&mockStore{}, "ticketsearch:")

	_, err := repo.Fetch(context.Background(), object.KindTicket, "999")
	if !errors.Is(err, domain.ErrObjectNotFound) {
		t.Fatalf("error = %v, want ErrObjectNotFound", err)
	}
}

func TestBuildDoc_OmitsEmptyOptionalFields(t *testing.T) {
	obj := testObject()
	data, err := json.Marshal(buildDoc(obj, nil))
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"org_id", "status", "url", "mime_type", "sha256", "tags", "vector"} {
		if _, present := m[field]; present {
			t.Errorf("empty optional field %q was serialized", field)
		}
	}
	if m["search"] != obj.Title+"\n"+obj.Text {
		t.Errorf("search field = %q", m["search"])
	}
}
