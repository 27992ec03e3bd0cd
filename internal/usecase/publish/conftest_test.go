package publish

import (
	"context"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
)

type mockRepo struct {
	upsertFn func(ctx context.Context, obj *object.Object, vector []float32) (string, error)
	deleteFn func(ctx context.Context, kind object.Kind, objectID string) (bool, error)
	fetchFn  func(ctx context.Context, kind object.Kind, objectID string) (object.Object, error)
	existsFn func(ctx context.Context, kind object.Kind, objectID string) (bool, error)

	upsertCalls int
}

func (m *mockRepo) Upsert(ctx context.Context, obj *object.Object, vector []float32) (string, error) {
	m.upsertCalls++
	if m.upsertFn != nil {
		return m.upsertFn(ctx, obj, vector)
	}
	return object.Identity(obj.Kind, obj.ObjectID), nil
}

func (m *mockRepo) Delete(ctx context.Context, kind object.Kind, objectID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, kind, objectID)
	}
	return true, nil
}

func (m *mockRepo) Fetch(ctx context.Context, kind object.Kind, objectID string) (object.Object, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, kind, objectID)
	}
	return object.Object{}, nil
}

func (m *mockRepo) Exists(ctx context.Context, kind object.Kind, objectID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, kind, objectID)
	}
	return false, nil
}

type mockSchema struct {
	ensureFn    func(ctx context.Context) error
	ensureCalls int
}

func (m *mockSchema) Ensure(ctx context.Context) error {
	m.ensureCalls++
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

type mockEmbedder struct {
	embedFn    func(ctx context.Context, text string) ([]float32, error)
	embedCalls int
	lastText   string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls++
	m.lastText = text
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type mockFetcher struct {
	fetchFn    func(ctx context.Context, externalKey string) (RemoteIssue, error)
	fetchCalls int
}

func (m *mockFetcher) FetchIssue(ctx context.Context, externalKey string) (RemoteIssue, error) {
	m.fetchCalls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, externalKey)
	}
	return RemoteIssue{}, nil
}
