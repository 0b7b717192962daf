package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces every entry so bulk operations never touch
	// unrelated data in the same redis database.
	keyPrefix = "strarun:cache:"

	DefaultTTL = time.Hour

	scanBatch = 100
)

// entry wraps a cached payload with its write time and TTL. Expiry is
// checked against the entry's own TTL, not a global constant, so values
// written with a custom TTL honor it on the read path too.
type entry struct {
	Payload   json.RawMessage `json:"payload"`
	WrittenAt int64           `json:"written_at"`
	TTLMillis int64           `json:"ttl_ms"`
}

func (e entry) expired(now time.Time) bool {
	return now.UnixMilli()-e.WrittenAt > e.TTLMillis
}

// Store is a time-boxed key/value store on redis. It knows nothing about
// sessions or the network; callers decide keys and TTLs. Every failure on
// the read path degrades to a miss and every failure on the write path is
// swallowed, so the store can never fail a surrounding operation.
type Store struct {
	redis *redis.Client
}

var nowFn = time.Now

var setValueFn = func(ctx context.Context, rdb *redis.Client, key string, value []byte) error {
	return rdb.Set(ctx, key, value, 0).Err()
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Get decodes the entry under key into out and reports whether a valid
// entry was found. Corrupt or expired entries are deleted on the way out
// and reported as absent.
func (s *Store) Get(ctx context.Context, key string, out any) bool {
	if s.redis == nil {
		return false
	}

	raw, err := s.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.Remove(ctx, key)
		return false
	}
	if e.expired(nowFn()) {
		s.Remove(ctx, key)
		return false
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		s.Remove(ctx, key)
		return false
	}
	return true
}

// Set stores value under key. A failed write triggers one expired-entry
// sweep and one retry; if that also fails the write is dropped, never
// surfaced, since the caller already holds the fresh value.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %q: %v", key, err)
		return
	}
	raw, err := json.Marshal(entry{
		Payload:   payload,
		WrittenAt: nowFn().UnixMilli(),
		TTLMillis: ttl.Milliseconds(),
	})
	if err != nil {
		log.Printf("cache: marshal entry %q: %v", key, err)
		return
	}

	if err := setValueFn(ctx, s.redis, keyPrefix+key, raw); err != nil {
		s.SweepExpired(ctx)
		if err := setValueFn(ctx, s.redis, keyPrefix+key, raw); err != nil {
			log.Printf("cache: write dropped for %q: %v", key, err)
		}
	}
}

func (s *Store) Remove(ctx context.Context, key string) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, keyPrefix+key).Err()
}

// ClearAll removes every entry in the store's namespace and nothing else.
func (s *Store) ClearAll(ctx context.Context) {
	s.removeWhere(ctx, func(string) bool { return true })
}

// InvalidateMatching removes entries whose key contains substr.
func (s *Store) InvalidateMatching(ctx context.Context, substr string) {
	s.removeWhere(ctx, func(key string) bool {
		return strings.Contains(key, substr)
	})
}

// SweepExpired scans the namespace and removes entries past their TTL.
// Undecodable entries are removed too. O(n) in stored entries; meant to
// run opportunistically, not on a timer.
func (s *Store) SweepExpired(ctx context.Context) {
	if s.redis == nil {
		return
	}
	now := nowFn()
	for _, full := range s.namespaceKeys(ctx) {
		raw, err := s.redis.Get(ctx, full).Bytes()
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil || e.expired(now) {
			_ = s.redis.Del(ctx, full).Err()
		}
	}
}

func (s *Store) removeWhere(ctx context.Context, match func(key string) bool) {
	if s.redis == nil {
		return
	}
	for _, full := range s.namespaceKeys(ctx) {
		if match(strings.TrimPrefix(full, keyPrefix)) {
			_ = s.redis.Del(ctx, full).Err()
		}
	}
}

func (s *Store) namespaceKeys(ctx context.Context) []string {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.redis.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			log.Printf("cache: scan: %v", err)
			return keys
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys
		}
		cursor = next
	}
}
