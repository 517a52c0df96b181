package tilecache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoader_CachesAcrossCalls(t *testing.T) {
	var loads int32
	l, err := NewLoader(4, func(ctx context.Context, key string) (int, error) {
		atomic.AddInt32(&loads, 1)
		return len(key), nil
	})
	require.NoError(t, err)

	v, err := l.Get(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, 5, v)

	v, err = l.Get(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, 5, v)
	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}

func TestLoader_CoalescesConcurrentMisses(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	l, err := NewLoader(4, func(ctx context.Context, key string) (int, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return 42, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := l.Get(context.Background(), "same-key")
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	for _, v := range results {
		require.Equal(t, 42, v)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}

func TestLoader_PropagatesLoadError(t *testing.T) {
	l, err := NewLoader(4, func(ctx context.Context, key string) (int, error) {
		return 0, assertErr
	})
	require.NoError(t, err)
	_, err = l.Get(context.Background(), "x")
	require.ErrorIs(t, err, assertErr)
}

func TestLoader_InvalidateAndPurge(t *testing.T) {
	var loads int32
	l, err := NewLoader(4, func(ctx context.Context, key string) (int, error) {
		atomic.AddInt32(&loads, 1)
		return int(atomic.LoadInt32(&loads)), nil
	})
	require.NoError(t, err)

	v1, _ := l.Get(context.Background(), "k")
	l.Invalidate("k")
	v2, _ := l.Get(context.Background(), "k")
	require.NotEqual(t, v1, v2)

	require.Equal(t, 1, l.Len())
	l.Purge()
	require.Equal(t, 0, l.Len())
}

var assertErr = errSentinel("boom")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
