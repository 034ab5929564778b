// Package repositorycache decorates a configuration.Repository with a
// read-through cache.
//
// # Overview
//
// Only GetByID goes through the cache. GetByName, GetAll and Exists always
// reach the base repository. Writes delegate first and then drop the
// affected key:
//
//   - Create and Update invalidate the record's key when they succeed
//   - Delete invalidates the key whatever the outcome
//
// A lookup that finds nothing is never cached, so a record created after a
// miss is visible on the next read. Returned records are copies; callers may
// modify them without touching cached state.
//
// # Usage
//
//	base := store.NewConfigurationRepository(db)
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	repo := repositorycache.New(base, svc, cache.NewDefaultKeySerializer())
//
//	rec, err := repo.GetByID(ctx, id) // first call loads, later calls hit the cache
//
// Concurrent reads and writes on the same id may briefly observe the value
// that was current before the write. Within a single caller a read that
// follows a completed write always sees the new state.
package repositorycache
