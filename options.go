package vaultkeep

import (
	"time"

	"go.uber.org/zap"

	"github.com/vaultkeep/client-go/internal/crypto"
	"github.com/vaultkeep/client-go/internal/paramstore"
)

// Default retry backoff configuration for failed sync pushes.
const (
	DefaultRetryInitialInterval   = 2 * time.Second
	DefaultRetryMaxBackoff        = 30 * time.Second
	DefaultRetryBackoffMultiplier = 1.5
	DefaultRetryJitterFactor      = 0.3
)

// config holds configuration shared by the client, key manager and
// offline coordinator.
type config struct {
	logger         *zap.Logger
	iterations     uint32
	paramStore     paramstore.Store
	keyringService string

	retryInitialInterval   time.Duration
	retryMaxBackoff        time.Duration
	retryBackoffMultiplier float64
	retryJitterFactor      float64
}

func defaultConfig() *config {
	return &config{
		logger:                 zap.NewNop(),
		iterations:             crypto.DefaultIterations,
		keyringService:         paramstore.DefaultKeyringService,
		retryInitialInterval:   DefaultRetryInitialInterval,
		retryMaxBackoff:        DefaultRetryMaxBackoff,
		retryBackoffMultiplier: DefaultRetryBackoffMultiplier,
		retryJitterFactor:      DefaultRetryJitterFactor,
	}
}

// Option configures the client.
type Option func(*config)

// WithLogger sets the logger used for sync and connectivity events.
// Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIterations overrides the PBKDF2 iteration count used when creating a
// vault or changing its password. Existing vaults keep the count recorded
// in their stored parameters.
func WithIterations(iterations uint32) Option {
	return func(c *config) {
		if iterations > 0 {
			c.iterations = iterations
		}
	}
}

// WithParamStore overrides where vault key parameters are persisted.
// Defaults to the OS keyring.
func WithParamStore(store paramstore.Store) Option {
	return func(c *config) {
		if store != nil {
			c.paramStore = store
		}
	}
}

// WithKeyringService sets the OS keyring service name. Ignored when a
// custom parameter store is supplied.
func WithKeyringService(service string) Option {
	return func(c *config) {
		if service != "" {
			c.keyringService = service
		}
	}
}

// WithRetryBackoff tunes the backoff applied between failed push attempts.
func WithRetryBackoff(initial, max time.Duration) Option {
	return func(c *config) {
		if initial > 0 {
			c.retryInitialInterval = initial
		}
		if max > 0 {
			c.retryMaxBackoff = max
		}
	}
}
