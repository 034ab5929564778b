// Package cache provides the read-through cache used in front of the
// configuration repository.
//
// # Overview
//
// The package exports two interfaces and their default implementations:
//
//   - CacheService: GetOrFetch and Delete over string keys
//   - KeySerializer: builds stable keys such as "configuration::<id>"
//
// Three backends are available:
//
//	memory, _ := cache.NewCacheService(cache.DefaultConfig())       // sturdyc, per process
//	shared, _ := cache.NewRedisService(ctx, cache.DefaultRedisConfig()) // redis + msgpack
//	none := cache.NewNoopService()                                   // always fetches
//
// # Usage
//
//	key := cache.NewDefaultKeySerializer().SerializeKey("configuration", id)
//	rec, err := cache.GetOrFetch(ctx, service, key, func(ctx context.Context) (*Record, error) {
//		return repo.GetByID(ctx, id)
//	})
//
// A fetch function that returns an error stores nothing, so callers that want
// absence to stay uncached return a sentinel error instead of a nil value.
//
// # Keys
//
// Keys are shared through redis, so the default serializer never includes
// pointer addresses. Strings and fmt.Stringer values are used verbatim;
// composite values are encoded as JSON with sorted map keys.
package cache
