package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ConcurrentMissesShareOneLoad(t *testing.T) {
	store := NewStore[int](time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const readers = 8
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([]int, readers)
	)
	started.Add(readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			v, err := store.GetOrLoad(context.Background(), "matches", loader)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	store := NewStore[string](2 * time.Second)
	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	var calls int
	loader := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}

	for i := 0; i < 2; i++ {
		_, err := store.GetOrLoad(context.Background(), "k", loader)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Second)
	_, err := store.GetOrLoad(context.Background(), "k", loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestStore_ForgetAndErrorsAreNotCached(t *testing.T) {
	store := NewStore[[]byte](time.Minute)
	boom := errors.New("upstream down")

	_, err := store.GetOrLoad(context.Background(), "k", func(context.Context) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	raw, err := store.GetOrLoad(context.Background(), "k", func(context.Context) ([]byte, error) { return []byte("a"), nil })
	require.NoError(t, err)
	assert.Equal(t, "a", string(raw))

	store.Forget("k")
	raw, err = store.GetOrLoad(context.Background(), "k", func(context.Context) ([]byte, error) { return []byte("b"), nil })
	require.NoError(t, err)
	assert.Equal(t, "b", string(raw))
}

func TestStore_EmptyKeyBypassesCache(t *testing.T) {
	store := NewStore[int](time.Minute)

	var calls int
	for i := 0; i < 3; i++ {
		_, err := store.GetOrLoad(context.Background(), "", func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)

	var _ BytesStore = NewStore[[]byte](time.Minute)
	var _ BytesStore = (*RedisStore)(nil)
}
