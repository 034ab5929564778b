package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/cache"
	"github.com/goliatone/go-game-config/configuration"
	"github.com/goliatone/go-game-config/handlers"
	"github.com/goliatone/go-game-config/internal/config"
	"github.com/goliatone/go-game-config/internal/httpapi"
	"github.com/goliatone/go-game-config/internal/store"
	"github.com/goliatone/go-game-config/repositorycache"
	"github.com/goliatone/go-game-config/service"
)

// Option customises a Container before its components are built.
type Option func(*Container)

// WithDB injects an already opened database. The container does not close it.
func WithDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithCacheService replaces the cache backend selected by the configuration.
func WithCacheService(cs cache.CacheService) Option {
	return func(c *Container) {
		c.cacheService = cs
	}
}

// Container wires the application graph: database, cache backend, cached
// repository, service and handlers. Every component is a singleton owned
// by the container.
type Container struct {
	config        config.Config
	logger        *zap.Logger
	db            *bun.DB
	ownsDB        bool
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	repository    *repositorycache.CachedRepository
	service       *service.ConfigurationService
	handlers      *handlers.Set
}

// NewContainer builds every component described by cfg. Opened resources
// are released if a later step fails.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{
		config:        cfg,
		logger:        logger,
		keySerializer: cache.NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.init(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) init(ctx context.Context) error {
	if c.db == nil {
		db, err := store.Open(ctx, store.Options{
			Driver:          c.config.DB.Driver,
			DSN:             c.config.DB.DSN,
			MaxOpenConns:    c.config.DB.MaxOpenConns,
			MaxIdleConns:    c.config.DB.MaxIdleConns,
			ConnMaxLifetime: c.config.DB.ConnMaxLifetime,
			Debug:           c.config.DB.Debug,
		})
		if err != nil {
			return err
		}
		c.db = db
		c.ownsDB = true
	}

	if c.config.DB.AutoMigrate {
		if err := store.Migrate(ctx, c.db); err != nil {
			return err
		}
	}

	if c.cacheService == nil {
		cs, err := newCacheService(ctx, c.config)
		if err != nil {
			return err
		}
		c.cacheService = cs
	}

	base := store.NewConfigurationRepository(c.db)
	c.repository = NewCachedRepository(c, base)
	c.service = service.New(c.repository, service.WithLogger(c.logger))
	c.handlers = handlers.NewSet(c.service, c.logger)

	c.logger.Info("container ready",
		zap.String("db_driver", c.config.DB.Driver),
		zap.String("cache_backend", c.config.Cache.Backend),
	)
	return nil
}

func newCacheService(ctx context.Context, cfg config.Config) (cache.CacheService, error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewCacheService(cache.Config{
			Capacity:           cfg.Cache.Capacity,
			NumShards:          cfg.Cache.NumShards,
			TTL:                cfg.Cache.TTL,
			EvictionPercentage: cfg.Cache.EvictionPercentage,
		})
	case config.CacheRedis:
		return cache.NewRedisService(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Cache.TTL,
		})
	case config.CacheNone:
		return cache.NewNoopService(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// NewCachedRepository wraps base with the container's cache under the
// configured key namespace. Invalidation failures are logged.
func NewCachedRepository(c *Container, base configuration.Repository) *repositorycache.CachedRepository {
	return repositorycache.New(base, c.cacheService, c.keySerializer,
		repositorycache.WithNamespace(c.config.Cache.Namespace),
		repositorycache.WithInvalidationErrorHandler(func(key string, err error) {
			c.logger.Error("cache invalidation failed", zap.String("key", key), zap.Error(err))
		}),
	)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

// Logger returns the shared logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// DB returns the database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Repository returns the cached configuration repository.
func (c *Container) Repository() *repositorycache.CachedRepository {
	return c.repository
}

// Service returns the configuration service.
func (c *Container) Service() *service.ConfigurationService {
	return c.service
}

// Handlers returns the handler set used by the HTTP layer.
func (c *Container) Handlers() *handlers.Set {
	return c.handlers
}

// Router builds the HTTP engine over the container's handlers.
func (c *Container) Router() *gin.Engine {
	return httpapi.NewRouter(c.handlers, c.logger, httpapi.Options{
		Env:            c.config.App.Env,
		RequestTimeout: c.config.Server.RequestTimeout,
		StaticDir:      c.config.Server.StaticDir,
	})
}

// Close releases the cache backend and, when the container opened it, the
// database.
func (c *Container) Close() error {
	var errs []error
	if closer, ok := c.cacheService.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c.ownsDB && c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
