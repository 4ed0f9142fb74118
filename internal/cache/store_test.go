package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDel(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "k", "v", 0))
	val, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	n, err := kv.Del(ctx, "k", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryTTLExpiry(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", 10*time.Millisecond))
	_, err := kv.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRefreshCommitsAndNotifies(t *testing.T) {
	store := NewStore(NewMemory())
	ctx := context.Background()

	store.Register("list", 0, func(context.Context) (string, error) {
		return "value-1", nil
	})

	var mu sync.Mutex
	var notified []string
	store.Subscribe("test", func(key string) {
		mu.Lock()
		notified = append(notified, key)
		mu.Unlock()
	})

	require.NoError(t, store.Refresh(ctx, "list"))

	val, err := store.Get(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, "value-1", val)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"list"}, notified)
}

func TestGetMissTriggersBackgroundRefetch(t *testing.T) {
	store := NewStore(NewMemory())
	ctx := context.Background()

	fetched := make(chan struct{})
	store.Register("list", 0, func(context.Context) (string, error) {
		close(fetched)
		return "fresh", nil
	})

	_, err := store.Get(ctx, "list")
	assert.ErrorIs(t, err, ErrMiss)

	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("miss did not trigger a refetch")
	}

	assert.Eventually(t, func() bool {
		val, err := store.Get(ctx, "list")
		return err == nil && val == "fresh"
	}, time.Second, 5*time.Millisecond)
}

// A fetch that was in flight when the key was invalidated must be discarded
// and retried, so a slow poll can never overwrite a fresher value.
func TestRefreshDiscardsStaleInFlightFetch(t *testing.T) {
	store := NewStore(NewMemory())
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	var mu sync.Mutex

	store.Register("list", 0, func(context.Context) (string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release // hold the first fetch while the invalidation lands
			return "stale", nil
		}
		return "fresh", nil
	})

	done := make(chan error, 1)
	go func() { done <- store.Refresh(ctx, "list") }()

	<-started
	store.Invalidate(ctx, "list")
	close(release)

	require.NoError(t, <-done)

	val, err := store.Get(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, "fresh", val, "stale fetch result must not be committed")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestInvalidateDropsValueAndNotifies(t *testing.T) {
	store := NewStore(NewMemory())
	ctx := context.Background()

	store.Register("list", 0, func(context.Context) (string, error) {
		return "v", nil
	})
	require.NoError(t, store.Refresh(ctx, "list"))

	notified := make(chan string, 4)
	store.Subscribe("test", func(key string) { notified <- key })

	store.Invalidate(ctx, "list")

	select {
	case key := <-notified:
		assert.Equal(t, "list", key)
	case <-time.After(time.Second):
		t.Fatal("no notification after invalidate")
	}

	_, err := store.Get(ctx, "list")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInvalidateUnregisteredKeyIsNoop(t *testing.T) {
	store := NewStore(NewMemory())
	store.Invalidate(context.Background(), "nothing")
}

func TestPatchRewritesWithoutRevisionBump(t *testing.T) {
	store := NewStore(NewMemory())
	ctx := context.Background()

	store.Register("messages", 0, func(context.Context) (string, error) {
		return "original", nil
	})
	require.NoError(t, store.Refresh(ctx, "messages"))

	before := store.Stats()["messages"].Revision
	err := store.Patch(ctx, "messages", func(cur string) (string, error) {
		assert.Equal(t, "original", cur)
		return "patched", nil
	})
	require.NoError(t, err)

	val, err := store.Get(ctx, "messages")
	require.NoError(t, err)
	assert.Equal(t, "patched", val)
	assert.Equal(t, before, store.Stats()["messages"].Revision)
}

func TestPatchOnColdCacheIsNoop(t *testing.T) {
	store := NewStore(NewMemory())
	store.Register("messages", 0, func(context.Context) (string, error) {
		return "v", nil
	})

	called := false
	err := store.Patch(context.Background(), "messages", func(string) (string, error) {
		called = true
		return "", nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestPollRefetchesUntilCancelled(t *testing.T) {
	store := NewStore(NewMemory())

	var mu sync.Mutex
	calls := 0
	store.Register("list", 0, func(context.Context) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "v", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go store.Poll(ctx, "list", 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
}

func TestStatsReportsLastError(t *testing.T) {
	store := NewStore(NewMemory())
	ctx := context.Background()

	store.Register("bad", 0, func(context.Context) (string, error) {
		return "", assert.AnError
	})
	require.Error(t, store.Refresh(ctx, "bad"))

	stats := store.Stats()["bad"]
	assert.False(t, stats.HasValue)
	assert.Contains(t, stats.LastError, assert.AnError.Error())
}
