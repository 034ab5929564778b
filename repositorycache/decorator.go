package repositorycache

import (
	"context"
	"errors"

	"github.com/goliatone/go-game-config/cache"
	"github.com/goliatone/go-game-config/configuration"
)

// DefaultNamespace prefixes every key written by CachedRepository.
const DefaultNamespace = "configuration"

// Interface assertion to ensure CachedRepository implements the repository contract
var (
	_ configuration.Repository = (*CachedRepository)(nil)
	_ configuration.Pinger     = (*CachedRepository)(nil)
)

// errAbsent keeps a missing record out of the cache: backends never store a
// value whose fetch failed.
var errAbsent = errors.New("repositorycache: record absent")

// Option configures a CachedRepository.
type Option func(*CachedRepository)

// WithNamespace overrides the key namespace. The name is normalised to
// snake_case so it is safe for every backend.
func WithNamespace(name string) Option {
	return func(c *CachedRepository) {
		if ns := toSnake(name); ns != "" {
			c.namespace = ns
		}
	}
}

// WithInvalidationErrorHandler registers a callback for failed invalidations.
// The write that triggered the invalidation has already been committed, so
// the error is reported here instead of being returned to the caller.
func WithInvalidationErrorHandler(fn func(key string, err error)) Option {
	return func(c *CachedRepository) {
		if fn != nil {
			c.onInvalidateErr = fn
		}
	}
}

// CachedRepository decorates a configuration repository with a read-through
// cache on GetByID. Every other read goes straight to the base repository;
// writes delegate and then invalidate the affected id.
type CachedRepository struct {
	base            configuration.Repository
	cache           cache.CacheService
	keySerializer   cache.KeySerializer
	namespace       string
	onInvalidateErr func(key string, err error)
}

// New creates a new CachedRepository that wraps the base repository with caching
func New(base configuration.Repository, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedRepository {
	c := &CachedRepository{
		base:            base,
		cache:           cacheService,
		keySerializer:   keySerializer,
		namespace:       DefaultNamespace,
		onInvalidateErr: func(string, error) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the cache key used for id.
func (c *CachedRepository) Key(id string) string {
	return c.keySerializer.SerializeKey(c.namespace, id)
}

// GetByID returns the cached record for id or loads it from the base
// repository. The result is a copy that callers may modify freely.
func (c *CachedRepository) GetByID(ctx context.Context, id string) (*configuration.Record, error) {
	rec, err := cache.GetOrFetch(ctx, c.cache, c.Key(id), func(ctx context.Context) (*configuration.Record, error) {
		found, err := c.base.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, errAbsent
		}
		return found, nil
	})
	if errors.Is(err, errAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// GetByName is not cached.
func (c *CachedRepository) GetByName(ctx context.Context, name string) (*configuration.Record, error) {
	return c.base.GetByName(ctx, name)
}

// GetAll is not cached.
func (c *CachedRepository) GetAll(ctx context.Context, opts configuration.ListOptions) ([]configuration.Record, error) {
	return c.base.GetAll(ctx, opts)
}

// Exists is not cached.
func (c *CachedRepository) Exists(ctx context.Context, name string) (bool, error) {
	return c.base.Exists(ctx, name)
}

// Create delegates to the base repository and clears the new id's entry.
func (c *CachedRepository) Create(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	created, err := c.base.Create(ctx, candidate)
	if err == nil && created != nil {
		c.invalidate(ctx, created.ID)
	}
	return created, err
}

// Update delegates to the base repository and clears the id's entry.
func (c *CachedRepository) Update(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	updated, err := c.base.Update(ctx, candidate)
	if err == nil {
		c.invalidate(ctx, candidate.ID)
	}
	return updated, err
}

// Delete delegates to the base repository and clears the id's entry
// whatever the outcome.
func (c *CachedRepository) Delete(ctx context.Context, id string) error {
	err := c.base.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

// Ping forwards to the base repository when it supports it.
func (c *CachedRepository) Ping(ctx context.Context) error {
	if p, ok := c.base.(configuration.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *CachedRepository) invalidate(ctx context.Context, id string) {
	key := c.Key(id)
	// the write is done; a cancelled request must not leave a stale entry
	if err := c.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		c.onInvalidateErr(key, err)
	}
}
