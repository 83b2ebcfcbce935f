package revenue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/dashboard_backend/dashboard"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "RevenueSummary:"

// CacheStore is the subset of redis the cache needs.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Locker serialises cache fills for one key. A nil release means no lock is held.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// CachedFetcher serves summaries from redis and fills misses from next.
// Cache and lock failures degrade to calling next; only next's errors reach the caller.
type CachedFetcher struct {
	next   dashboard.RevenueFetcher
	store  CacheStore
	locker Locker
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedFetcher(next dashboard.RevenueFetcher, store CacheStore, locker Locker, ttl time.Duration, logger *logrus.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, store: store, locker: locker, ttl: ttl, logger: logger}
}

// cacheKey length-prefixes the tenant so ("a:b","c") and ("a","b:c") never share a key.
func cacheKey(tenantId, propertyId string) string {
	return fmt.Sprintf("%s%d:%s:%s", cacheKeyPrefix, len(tenantId), tenantId, propertyId)
}

func (f *CachedFetcher) FetchRevenueSummary(ctx context.Context, propertyId, tenantId string) (*dashboard.RawRevenueSummary, error) {
	key := cacheKey(tenantId, propertyId)
	if raw, ok := f.lookup(ctx, key); ok {
		return raw, nil
	}

	if f.locker != nil {
		release, err := f.locker.Obtain(ctx, "lock:"+key, 10*time.Second)
		if err != nil {
			f.warn(key, "could not obtain cache lock; fetching without it", err)
		}
		if release != nil {
			defer release()
			// another holder may have filled the key while we waited
			if raw, ok := f.lookup(ctx, key); ok {
				return raw, nil
			}
		}
	}

	raw, err := f.next.FetchRevenueSummary(ctx, propertyId, tenantId)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	if b, err := json.Marshal(raw); err != nil {
		f.warn(key, "could not encode summary for cache", err)
	} else if err := f.store.Set(ctx, key, string(b), f.ttl); err != nil {
		f.warn(key, "could not store summary in cache", err)
	}
	return raw, nil
}

func (f *CachedFetcher) lookup(ctx context.Context, key string) (*dashboard.RawRevenueSummary, bool) {
	val, ok, err := f.store.Get(ctx, key)
	if err != nil {
		f.warn(key, "cache read failed", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var raw dashboard.RawRevenueSummary
	if err := json.Unmarshal([]byte(val), &raw); err != nil {
		f.warn(key, "discarding undecodable cache entry", err)
		return nil, false
	}
	return &raw, true
}

func (f *CachedFetcher) warn(key, msg string, err error) {
	if f.logger == nil {
		return
	}
	f.logger.WithFields(logrus.Fields{
		"field":     "revenueCache",
		"cache_key": key,
	}).Warn(msg + ": " + err.Error())
}

type redisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) CacheStore {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

type redisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redislock.Client) Locker {
	return &redisLocker{client: client}
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	})
	if err != nil {
		return nil, err
	}
	return func() {
		// release on a fresh context; the request may already be cancelled
		_ = lock.Release(context.Background())
	}, nil
}
