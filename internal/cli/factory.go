package cli

import (
	"log/slog"

	"github.com/nvalim/lattice/internal/config"
	"github.com/nvalim/lattice/pkg/adapters/file"
	"github.com/nvalim/lattice/pkg/adapters/memory"
	"github.com/nvalim/lattice/pkg/adapters/redis"
	"github.com/nvalim/lattice/pkg/persistence/middleware"
	"github.com/nvalim/lattice/pkg/ports"
)

// buildTemplateStore returns the filesystem template store from config.
func buildTemplateStore(cfg *config.Config) *file.Store {
	return file.New(cfg.TemplatesDir)
}

// buildStorage returns the draft storage backend: Redis when configured, an
// in-process map otherwise, wrapped with the at-rest middleware the config
// asks for.
func buildStorage(cfg *config.Config, logger *slog.Logger) (ports.Storage, func()) {
	var store ports.Storage
	closer := func() {}
	if cfg.RedisAddr == "" {
		store = memory.NewStorage()
	} else {
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithTTL(cfg.DraftTTL),
			redis.WithPrefix("lattice:storage:"),
		)
		logger.Info("using redis draft storage", "addr", cfg.RedisAddr)
		store, closer = rs, func() { _ = rs.Close() }
	}

	// Masking runs before encryption, so patterns see plaintext JSON.
	var mws []middleware.Middleware
	if len(cfg.DraftMask) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.DraftMask))
		logger.Info("draft PII masking enabled", "patterns", len(cfg.DraftMask))
	}
	if len(cfg.DraftKey) > 0 {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: cfg.DraftKey,
		}))
		logger.Info("draft encryption at rest enabled")
	}
	if len(mws) > 0 {
		store = middleware.Chain(store, mws...)
	}
	return store, closer
}
