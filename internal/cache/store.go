package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Fetcher produces the serialized value for a cache key from the platform.
type Fetcher func(ctx context.Context) (string, error)

// KeyStats is a per-key snapshot for the dev-tools endpoint.
type KeyStats struct {
	Revision    int64     `json:"revision"`
	HasValue    bool      `json:"hasValue"`
	LastFetchAt time.Time `json:"lastFetchAt"`
	LastError   string    `json:"lastError,omitempty"`
}

type entry struct {
	fetch       Fetcher
	ttl         time.Duration
	rev         int64
	fetching    bool
	hasValue    bool
	lastFetchAt time.Time
	lastErr     error
}

// Store is the subscription-driven read cache keyed by resource identity.
// Reads serve whatever the backend holds; Invalidate marks a key stale,
// deletes the cached value, and notifies subscribers so the next read
// refetches. Writes follow last-write-wins, with one exception: a fetch that
// started before the key's latest invalidation is discarded on completion and
// retried, so a slow poll can never bury a just-completed send.
type Store struct {
	kv KV

	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]func(key string)
}

// NewStore wraps a KV backend.
func NewStore(kv KV) *Store {
	return &Store{
		kv:      kv,
		entries: make(map[string]*entry),
		subs:    make(map[string]func(string)),
	}
}

// Register declares a key with its fetcher. TTL bounds how long a committed
// value may serve reads without a refetch (zero means until invalidated).
func (s *Store) Register(key string, ttl time.Duration, fetch Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{fetch: fetch, ttl: ttl}
}

// Registered reports whether key has been declared.
func (s *Store) Registered(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Get returns the cached value for key. On a miss it kicks off a background
// refetch and returns ErrMiss; subscribers hear about the commit.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.kv.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrMiss) {
		return "", err
	}
	go func() {
		if err := s.Refresh(context.Background(), key); err != nil {
			jww.DEBUG.Printf("cache: background refetch of %q: %v", key, err)
		}
	}()
	return "", ErrMiss
}

// Refresh fetches key now and commits the result under the revision rule.
// A refresh already in flight for the key makes this call a no-op.
func (s *Store) Refresh(ctx context.Context, key string) error {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return errors.Errorf("cache: unregistered key %q", key)
	}
	if e.fetching {
		s.mu.Unlock()
		return nil
	}
	e.fetching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		e.fetching = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		rev := e.rev
		s.mu.Unlock()

		val, err := e.fetch(ctx)

		s.mu.Lock()
		if err != nil {
			e.lastErr = err
			s.mu.Unlock()
			return err
		}
		if e.rev != rev {
			// Invalidated while the fetch was in flight: the result is
			// already stale, throw it away and go again.
			s.mu.Unlock()
			jww.DEBUG.Printf("cache: discarding stale fetch of %q", key)
			continue
		}
		if kvErr := s.kv.Set(ctx, key, val, e.ttl); kvErr != nil {
			e.lastErr = kvErr
			s.mu.Unlock()
			return errors.Wrapf(kvErr, "commit %q", key)
		}
		e.hasValue = true
		e.lastFetchAt = time.Now()
		e.lastErr = nil
		s.mu.Unlock()

		s.notify(key)
		return nil
	}
}

// Invalidate marks keys stale: the cached values are dropped, revisions move
// so in-flight fetches are discarded, and subscribers are notified.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			s.mu.Unlock()
			continue
		}
		e.rev++
		e.hasValue = false
		s.mu.Unlock()

		if _, err := s.kv.Del(ctx, key); err != nil {
			jww.WARN.Printf("cache: drop %q: %v", key, err)
		}
		s.notify(key)
	}
}

// Patch rewrites the cached value in place without moving the revision, for
// message-level updates that should not force a full refetch.
func (s *Store) Patch(ctx context.Context, key string, fn func(string) (string, error)) error {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return errors.Errorf("cache: unregistered key %q", key)
	}
	ttl := e.ttl
	s.mu.Unlock()

	cur, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return nil // nothing cached to patch; the next read refetches anyway
		}
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, next, ttl); err != nil {
		return errors.Wrapf(err, "patch %q", key)
	}
	s.notify(key)
	return nil
}

// Subscribe registers a named observer called with each committed or
// invalidated key. Re-registering a name replaces the previous observer.
func (s *Store) Subscribe(name string, fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[name] = fn
}

// Unsubscribe detaches a named observer.
func (s *Store) Unsubscribe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, name)
}

func (s *Store) notify(key string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}

// Poll refetches key on a fixed interval until ctx is done.
func (s *Store) Poll(ctx context.Context, key string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx, key); err != nil {
				jww.DEBUG.Printf("cache: poll %q: %v", key, err)
			}
		}
	}
}

// Stats snapshots every registered key for diagnostics.
func (s *Store) Stats() map[string]KeyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]KeyStats, len(s.entries))
	for key, e := range s.entries {
		ks := KeyStats{Revision: e.rev, HasValue: e.hasValue, LastFetchAt: e.lastFetchAt}
		if e.lastErr != nil {
			ks.LastError = e.lastErr.Error()
		}
		out[key] = ks
	}
	return out
}
