package domain

import "errors"

var (
	// ErrServiceDisabled signals that the search index integration is turned off.
	ErrServiceDisabled = errors.New("search index integration is disabled")
	// ErrServiceNotConfigured signals missing store connection parameters.
	ErrServiceNotConfigured = errors.New("search index integration is not configured")
	// ErrStoreOperation signals a generic failure from the underlying store.
	ErrStoreOperation = errors.New("store operation failed")
	// ErrObjectNotFound signals a missing object in the index.
	ErrObjectNotFound = errors.New("object not found in index")
	// ErrVectorSearchNotSupported signals that no embedding model is configured.
	ErrVectorSearchNotSupported = errors.New("vector search not supported: no embedding model configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRefetchFailed signals a failed live fetch from the external tracker.
	ErrRefetchFailed = errors.New("external refetch failed")
)
