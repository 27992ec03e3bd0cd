package ticketsearch

import "go.uber.org/zap"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	keyPrefix string

	embedder         Embedder
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	refetcher Refetcher
	source    Source

	logger *zap.Logger
}

// WithRedis configures the store connection. Required.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the store ACL username.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithKeyPrefix namespaces all index keys. Default "ticketsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider. Without one the engine
// runs keyword-only: similar mode degrades and hybrid serves its keyword
// leg.
func WithEmbedder(e Embedder, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.vectorDimensions = dimensions
	})
}

// WithHNSW configures vector index build parameters.
// Defaults: M=32, EFConstruct=400.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithRefetcher sets the external tracker used to pull the live state of
// mirrored issues when a publish requests it.
func WithRefetcher(r Refetcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.refetcher = r
	})
}

// WithSource sets the record source for project resyncs. Without one
// SyncProject is unavailable.
func WithSource(s Source) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = s
	})
}

// WithLogger enables structured logging for client operations.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
