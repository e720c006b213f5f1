// internal/cache/cache.go
package cache

import (
	"bytes"
	"compress/flate"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/stackvity/ocr-server/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// Cache is the content-addressed result cache described in spec.md §4.2:
// LRU ordering with capacity MaxSize, TTL expiry on access, a probabilistic
// sweep that clears expired entries, and at-most-one-compute coalescing per
// key via singleflight.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, CacheEntry]
	ttl      time.Duration
	group    singleflight.Group
	logger   *zap.Logger
	sweepPct int // sweep runs on roughly 1 in sweepPct requests
}

// CacheEntry mirrors domain.CacheEntry but keeps InsertedAt as a monotonic
// clock reading so TTL comparisons are immune to wall-clock adjustment.
type CacheEntry struct {
	Payload    []byte
	InsertedAt time.Time
}

// New constructs a Cache bounded to maxSize entries with the given TTL.
func New(maxSize int, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	l, err := lru.New[string, CacheEntry](maxSize)
	if err != nil {
		return nil, fmt.Errorf("constructing LRU cache: %w", err)
	}
	return &Cache{
		lru:      l,
		ttl:      ttl,
		logger:   logger.Named("Cache"),
		sweepPct: 100, // ~1%
	}, nil
}

// Key derives the content-addressed cache key from file bytes and a
// canonicalized (key-sorted) JSON encoding of the options struct, hashed
// with BLAKE2b — spec.md §4.2's reference choice. The key never contains a
// file path.
func Key(fileBytes []byte, opts interface{}) (string, error) {
	canonical, err := canonicalJSON(opts)
	if err != nil {
		return "", fmt.Errorf("canonicalizing options: %w", err)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("constructing blake2b hasher: %w", err)
	}
	fh, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("constructing blake2b hasher: %w", err)
	}
	fh.Write(fileBytes)

	h.Write(fh.Sum(nil))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalJSON marshals v with object keys sorted, so semantically
// identical options always hash to the same bytes regardless of struct
// field order.
func canonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return marshalSorted(generic)
}

func marshalSorted(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case []interface{}:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			ib, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			buf.Write(ib)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(val)
	}
}

// Get returns the decompressed payload for key, honouring TTL. A cache hit
// is bit-identical to what was inserted, modulo compression round-trip.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeSweepLocked()

	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.expired(entry) {
		c.lru.Remove(key)
		return nil, false
	}

	payload, err := decompress(entry.Payload)
	if err != nil {
		c.logger.Warn("cache payload decompression failed, evicting", zap.String("key", key), zap.Error(err))
		c.lru.Remove(key)
		return nil, false
	}
	return payload, true
}

// Set inserts payload under key, compressing it and triggering LRU
// eviction of the least-recently-used entry if the cache is at capacity.
func (c *Cache) Set(key string, payload []byte) error {
	compressed, err := compress(payload)
	if err != nil {
		return fmt.Errorf("compressing cache payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, CacheEntry{Payload: compressed, InsertedAt: time.Now()})
	return nil
}

// GetOrCompute coalesces concurrent misses for the same key into a single
// compute call — the "at-most-one-compute" policy spec.md §4.2 requires.
// Losing callers block on the winner's result and never invoke fn.
func (c *Cache) GetOrCompute(key string, fn func() ([]byte, error)) ([]byte, error, bool) {
	if payload, ok := c.Get(key); ok {
		return payload, nil, true
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		if payload, ok := c.Get(key); ok {
			return payload, nil
		}
		payload, err := fn()
		if err != nil {
			return nil, err
		}
		if setErr := c.Set(key, payload); setErr != nil {
			c.logger.Warn("failed to store computed result in cache", zap.String("key", key), zap.Error(setErr))
		}
		return payload, nil
	})
	if err != nil {
		return nil, err, shared
	}
	return v.([]byte), nil, shared
}

func (c *Cache) expired(entry CacheEntry) bool {
	return c.ttl > 0 && time.Since(entry.InsertedAt) > c.ttl
}

// maybeSweepLocked removes all currently-expired entries on roughly 1% of
// calls. Must be called with c.mu held.
func (c *Cache) maybeSweepLocked() {
	if !shouldSweep(c.sweepPct) {
		return
	}
	for _, key := range c.lru.Keys() {
		entry, ok := c.lru.Peek(key)
		if ok && c.expired(entry) {
			c.lru.Remove(key)
		}
	}
}

func shouldSweep(pct int) bool {
	if pct <= 0 {
		return false
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return false
	}
	n := binary.BigEndian.Uint64(buf[:])
	return n%uint64(pct) == 0
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ToDomainEntry exposes a cache entry in the domain.CacheEntry shape.
func (e CacheEntry) ToDomainEntry(key string) domain.CacheEntry {
	return domain.CacheEntry{Key: key, CompressedPayload: e.Payload, InsertedAt: e.InsertedAt}
}
