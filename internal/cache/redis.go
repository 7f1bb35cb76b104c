package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "catalog"

var errStale = errors.New("cache generation changed")

// RedisStore is a Store backed by Redis. Entries live under
// "<prefix>:entry:<key>" with a native TTL; each tag is a set of entry keys
// under "<prefix>:tag:<tag>". Invalidation generations are counters under
// "<prefix>:gen:<tag>" and "<prefix>:epoch" and are never deleted.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed store. An empty prefix selects
// "catalog".
func NewRedisStore(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) entryKey(key string) string { return s.prefix + ":entry:" + key }
func (s *RedisStore) tagKey(tag string) string   { return s.prefix + ":tag:" + tag }
func (s *RedisStore) genKey(tag string) string   { return s.prefix + ":gen:" + tag }
func (s *RedisStore) epochKey() string           { return s.prefix + ":epoch" }

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return data, true
}

// Set implements Store. Each tag set's TTL is refreshed to that of the newest
// entry it references.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueSet(ctx, pipe, key, value, ttl, tags)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *RedisStore) queueSet(ctx context.Context, pipe redis.Pipeliner, key string, value []byte, ttl time.Duration, tags []string) {
	entryKey := s.entryKey(key)
	pipe.Set(ctx, entryKey, value, ttl)
	for _, tag := range tags {
		tagKey := s.tagKey(tag)
		pipe.SAdd(ctx, tagKey, entryKey)
		pipe.Expire(ctx, tagKey, ttl)
	}
}

// SetIfCurrent implements Store. The generation counters are watched so an
// invalidation racing the write aborts it.
func (s *RedisStore) SetIfCurrent(ctx context.Context, key string, value []byte, ttl time.Duration, tag string, gen uint64) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := s.generation(ctx, tx, tag)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueSet(ctx, pipe, key, value, ttl, []string{tag})
			return nil
		})
		return err
	}, s.genKey(tag), s.epochKey())

	switch {
	case err == nil:
		return true
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return false
	default:
		s.logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
}

// Generation implements Store. A read failure yields 0, which at worst
// makes a following SetIfCurrent skip the write.
func (s *RedisStore) Generation(ctx context.Context, tag string) uint64 {
	gen, err := s.generation(ctx, s.client, tag)
	if err != nil {
		s.logger.WarnContext(ctx, "cache generation lookup failed",
			slog.String("tag", tag),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return gen
}

type multiGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func (s *RedisStore) generation(ctx context.Context, c multiGetter, tag string) (uint64, error) {
	vals, err := c.MGet(ctx, s.genKey(tag), s.epochKey()).Result()
	if err != nil {
		return 0, err
	}
	var gen uint64
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return 0, err
		}
		gen += n
	}
	return gen, nil
}

// InvalidateAll implements Store by advancing the epoch and deleting every
// entry and tag set under the prefix.
func (s *RedisStore) InvalidateAll(ctx context.Context) {
	s.bump(ctx, s.epochKey())
	for _, pattern := range []string{s.entryKey("*"), s.tagKey("*")} {
		s.deleteMatching(ctx, pattern)
	}
}

func (s *RedisStore) deleteMatching(ctx context.Context, pattern string) {
	iter := s.client.Scan(ctx, 0, pattern, 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			s.del(ctx, batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.WarnContext(ctx, "cache scan failed", slog.String("error", err.Error()))
	}
	s.del(ctx, batch)
}

// InvalidateByTag implements Store.
func (s *RedisStore) InvalidateByTag(ctx context.Context, tag string) {
	s.bump(ctx, s.genKey(tag))

	tagKey := s.tagKey(tag)
	keys, err := s.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "cache tag lookup failed",
			slog.String("tag", tag),
			slog.String("error", err.Error()),
		)
		return
	}
	s.del(ctx, append(keys, tagKey))
}

func (s *RedisStore) bump(ctx context.Context, counterKey string) {
	if err := s.client.Incr(ctx, counterKey).Err(); err != nil {
		s.logger.WarnContext(ctx, "cache generation bump failed",
			slog.String("key", counterKey),
			slog.String("error", err.Error()),
		)
	}
}

func (s *RedisStore) del(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.WarnContext(ctx, "cache delete failed",
			slog.Int("keys", len(keys)),
			slog.String("error", err.Error()),
		)
	}
}
