package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// redisCommander is the subset of redis.UniversalClient the adapter uses.
type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisConfig configures the shared redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key so several deployments can share a db.
	Prefix string
	TTL    time.Duration
}

// DefaultRedisConfig returns a local redis setup with the same TTL as the
// in-process cache.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "gameconfig:",
		TTL:    DefaultConfig().TTL,
	}
}

// Validate checks if the configuration values are valid.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "cannot be empty"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.DB < 0 {
		return &ConfigError{Field: "DB", Message: "must be non-negative"}
	}
	return nil
}

// redisService stores msgpack encoded values in redis.
//
// Redis is treated as an optimisation only: a failed GET, a value that
// cannot be decoded or a failed SET falls back to the fetch function and
// never surfaces to the caller. Only DEL errors are returned, since a stale
// entry would outlive a write.
type redisService struct {
	client redisCommander
	prefix string
	ttl    time.Duration
}

// NewRedisService connects to redis and verifies the connection.
func NewRedisService(ctx context.Context, cfg RedisConfig) (*redisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return newRedisService(client, cfg.Prefix, cfg.TTL), nil
}

func newRedisService(client redisCommander, prefix string, ttl time.Duration) *redisService {
	return &redisService{client: client, prefix: prefix, ttl: ttl}
}

// GetOrFetch returns the decoded value stored under key or runs fetchFn and
// stores its result.
func (s *redisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	fullKey := s.prefix + key

	if raw, err := s.client.Get(ctx, fullKey).Bytes(); err == nil {
		if value, decErr := decodeValue(raw, resultType(fetchFn)); decErr == nil {
			return value, nil
		}
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	value, err := callFetchFunctionWithReflection(ctx, fetchFn)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	if raw, encErr := msgpack.Marshal(value); encErr == nil {
		_ = s.client.Set(ctx, fullKey, raw, s.ttl).Err()
	}

	return value, nil
}

// Delete removes the entry for key. A missing key is not an error.
func (s *redisService) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client connections.
func (s *redisService) Close() error {
	if c, ok := s.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// decodeValue unmarshals raw into a fresh value of type t. msgpack restores
// timestamps in the local zone, so they are moved back to UTC to match what
// the store returns on a miss.
func decodeValue(raw []byte, t reflect.Type) (any, error) {
	ptr := reflect.New(t)
	if err := msgpack.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, err
	}
	value := ptr.Elem()
	if value.Kind() == reflect.Pointer && value.IsNil() {
		return nil, errors.New("decoded nil value")
	}
	utcTimes(ptr)
	return value.Interface(), nil
}

var timeType = reflect.TypeOf(time.Time{})

// utcTimes rewrites v, or the exported time.Time fields of the struct v
// points to, in UTC.
func utcTimes(v reflect.Value) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		if v.CanSet() {
			v.Set(reflect.ValueOf(v.Interface().(time.Time).UTC()))
		}
		return
	}
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.CanSet() && f.Type() == timeType {
			f.Set(reflect.ValueOf(f.Interface().(time.Time).UTC()))
		}
	}
}
