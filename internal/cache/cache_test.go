// internal/cache/cache_test.go
package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKeyIsDeterministicAndOptionOrderIndependent(t *testing.T) {
	fileBytes := []byte("some image bytes")
	opts1 := map[string]interface{}{"a": 1, "b": 2}
	opts2 := map[string]interface{}{"b": 2, "a": 1}

	k1, err := Key(fileBytes, opts1)
	require.NoError(t, err)
	k2, err := Key(fileBytes, opts2)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestKeyDiffersOnFileBytesOrOptions(t *testing.T) {
	opts := map[string]interface{}{"a": 1}
	k1, err := Key([]byte("one"), opts)
	require.NoError(t, err)
	k2, err := Key([]byte("two"), opts)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	k3, err := Key([]byte("one"), map[string]interface{}{"a": 2})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestKeyNeverContainsRawFileBytes(t *testing.T) {
	k, err := Key([]byte("super secret file path leak check"), nil)
	require.NoError(t, err)
	assert.NotContains(t, k, "secret")
}

func TestSetThenGetRoundTrips(t *testing.T) {
	c, err := New(10, time.Hour, zap.NewNop())
	require.NoError(t, err)

	payload := []byte("recognized text payload")
	require.NoError(t, c.Set("key1", payload))

	got, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestGetMissOnUnknownKey(t *testing.T) {
	c, err := New(10, time.Hour, zap.NewNop())
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestGetExpiresPastTTL(t *testing.T) {
	c, err := New(10, time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", []byte("payload")))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLenReflectsLRUEviction(t *testing.T) {
	c, err := New(2, time.Hour, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Set("b", []byte("2")))
	require.NoError(t, c.Set("c", []byte("3")))

	assert.Equal(t, 2, c.Len())
}

func TestGetOrComputeCallsFnOnMiss(t *testing.T) {
	c, err := New(10, time.Hour, zap.NewNop())
	require.NoError(t, err)

	var calls int32
	payload, err, shared := c.GetOrCompute("key1", func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("computed"), nil
	})
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, []byte("computed"), payload)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	payload2, err, _ := c.GetOrCompute("key1", func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("should not run"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("computed"), payload2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetOrComputeCoalescesConcurrentMisses(t *testing.T) {
	c, err := New(10, time.Hour, zap.NewNop())
	require.NoError(t, err)

	var calls int32
	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err, _ := c.GetOrCompute("shared-key", func() ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return []byte("one-compute"), nil
			})
			require.NoError(t, err)
			results[i] = payload
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []byte("one-compute"), r)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestGetOrComputePropagatesError(t *testing.T) {
	c, err := New(10, time.Hour, zap.NewNop())
	require.NoError(t, err)

	wantErr := errors.New("compute failed")
	_, err, _ = c.GetOrCompute("key1", func() ([]byte, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	_, ok := c.Get("key1")
	assert.False(t, ok)
}
