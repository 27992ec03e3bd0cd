package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kontur-labs/ticketsearch/internal/db"
	"github.com/kontur-labs/ticketsearch/internal/domain"
	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/metrics"
)

// store is the consumer interface for document writes (ISP).
type store interface {
	JSONReplace(ctx context.Context, key string, data []byte) error
	JSONInsert(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo commits canonical objects to the store under their derived identity.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an index repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Upsert commits a canonical object using the replace-or-insert protocol.
// Replace-by-id is the default path; insert-by-id is only the repair path
// for the first write of an identity. No prior existence check: that would
// cost a round trip and open a read-then-write race.
func (r *Repo) Upsert(ctx context.Context, obj *object.Object, vector []float32) (string, error) {
	storeID := object.Identity(obj.Kind, obj.ObjectID)
	key := r.docKey(storeID)

	data, err := json.Marshal(buildDoc(obj, vector))
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	err = r.store.JSONReplace(ctx, key, data)
	if err == nil {
		return storeID, nil
	}

	if !errors.Is(err, db.ErrKeyNotFound) {
		// The record may genuinely exist; masking a real error as
		// "not found" and inserting over it would corrupt data.
		return "", fmt.Errorf("replace %s: %w: %w", key, domain.ErrStoreOperation, err)
	}

	metrics.UpsertFallbackTotal.Inc()

	if err := r.store.JSONInsert(ctx, key, data); err != nil {
		return "", fmt.Errorf("insert %s: %w: %w", key, domain.ErrStoreOperation, err)
	}
	return storeID, nil
}

// Delete removes an object by (kind, objectID), reporting whether a stored
// record was actually removed.
func (r *Repo) Delete(ctx context.Context, kind object.Kind, objectID string) (bool, error) {
	key := r.docKey(object.Identity(kind, objectID))
	deleted, err := r.store.Del(ctx, key)
	if err != nil {
		return false, fmt.Errorf("del %s: %w: %w", key, domain.ErrStoreOperation, err)
	}
	return deleted, nil
}

// Fetch reads an object back from the index by (kind, objectID).
func (r *Repo) Fetch(ctx context.Context, kind object.Kind, objectID string) (object.Object, error) {
	key := r.docKey(object.Identity(kind, objectID))
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return object.Object{}, domain.ErrObjectNotFound
		}
		return object.Object{}, fmt.Errorf("json.get %s: %w: %w", key, domain.ErrStoreOperation, err)
	}

	dto, err := parseDoc(raw)
	if err != nil {
		return object.Object{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return dto.toObject(), nil
}

// Exists reports whether (kind, objectID) has a record in the index.
func (r *Repo) Exists(ctx context.Context, kind object.Kind, objectID string) (bool, error) {
	key := r.docKey(object.Identity(kind, objectID))
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w: %w", key, domain.ErrStoreOperation, err)
	}
	return ok, nil
}

func (r *Repo) docKey(storeID string) string {
	return fmt.Sprintf("%sobjects:%s", r.keyPrefix, storeID)
}
