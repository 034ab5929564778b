package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"
)

// sturdycService wraps a sturdyc client providing in-process caching.
type sturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService creates a new sturdyc cache service adapter.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New;
// the remaining options are applied via ToSturdycOptions. Concurrent misses
// for the same key are collapsed into a single fetch by sturdyc.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycService{client: client}, nil
}

// GetOrFetch returns the cached value for key, or runs fetchFn and caches
// its result. A fetch error is returned as is and nothing is stored.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	// validate here so a bad signature is reported instead of a sturdyc type error
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFunctionWithReflection(ctx, fetchFn)
	})
}

// Delete removes a single entry so the next GetOrFetch goes to the source.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Len returns the number of cached entries.
func (s *sturdycService) Len() int {
	return s.client.Size()
}
