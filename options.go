package pqencrypt

import (
	"log/slog"

	"github.com/cryptguard/pqencrypt/internal/crypto"
	"github.com/cryptguard/pqencrypt/internal/logging"
)

// config holds configuration shared by the keychain and the engines.
type config struct {
	logger logging.Logger
	kdf    crypto.KDFParams
}

// Option configures a Keychain, Envelope or Signer.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		logger: logging.Discard(),
		kdf:    crypto.DefaultKDFParams(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the structured logger. Secret material is never logged.
// Default: records are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logging.New(logger)
	}
}

// WithKDFParams sets the Argon2id cost applied to passphrases. Memory is in
// KiB. Both sides of an envelope must use the same parameters.
// Default: time 3, memory 64 MiB, 4 threads.
func WithKDFParams(time, memoryKiB uint32, threads uint8) Option {
	return func(c *config) {
		c.kdf = crypto.KDFParams{Time: time, Memory: memoryKiB, Threads: threads}
	}
}
