package oram

// config.go defines a package-private config struct, a functional-options
// type, and an apply step that fills in defaults before validating.
//
// © 2025 sqrtoram authors. MIT License.

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/sqrtoram/internal/store"
)

type engineConfig struct {
	n         int
	blockSize int
	backend   store.Backend
	logger    *zap.Logger
	registry  *prometheus.Registry
	rand      io.Reader
}

// Option configures an Oram instance. Options are applied in the order
// given to New or Open.
type Option func(*engineConfig)

// WithLogger sets the structured logger used for lifecycle and maintenance
// events. Defaults to zap.NewNop() when unset, so callers who don't want a
// logger are never forced to take one.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) { c.logger = logger }
}

// WithMetrics registers the engine's counters and histograms against reg.
// When unset, the engine records into a no-op sink and Describe/Collect are
// never called.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *engineConfig) { c.registry = reg }
}

// WithBackend selects the storage backend the engine persists physical
// slots to. When unset, New defaults to an ephemeral memstore and Open
// defaults to a diskstore rooted at the name it was given.
func WithBackend(backend store.Backend) Option {
	return func(c *engineConfig) { c.backend = backend }
}

// WithRandSource overrides the randomness source used for dummy-block
// padding and tag salts. Defaults to crypto/rand.Reader. Tests that need
// deterministic traces can supply a seeded reader here.
func WithRandSource(r io.Reader) Option {
	return func(c *engineConfig) { c.rand = r }
}

// newConfig applies opts over the defaults and, if no WithBackend option
// supplied a backend, calls fallbackBackend to construct one. fallbackBackend
// runs after opts are applied, so it sees the caller's final logger choice —
// New's fallback opens an ephemeral memstore; Open's opens a diskstore at the
// name it was given.
func newConfig(n, blockSize int, opts []Option, fallbackBackend func(*engineConfig) (store.Backend, error)) (engineConfig, error) {
	if n <= 0 || blockSize <= 0 {
		return engineConfig{}, fmt.Errorf("oram: %w", ErrInvalidConfig)
	}
	c := engineConfig{
		n:         n,
		blockSize: blockSize,
		logger:    zap.NewNop(),
		rand:      rand.Reader,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.backend == nil {
		backend, err := fallbackBackend(&c)
		if err != nil {
			return engineConfig{}, err
		}
		c.backend = backend
	}
	return c, nil
}
