package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(store Store, clock *FakeClock, cfg Config) *Registry {
	return NewRegistry(store, cfg, WithClock(clock), WithLocation(time.UTC))
}

func TestRegistry_SameLedgerPerProfile(t *testing.T) {
	reg := newTestRegistry(newMemStore(), NewFakeClock(testStart), DefaultConfig())
	ctx := context.Background()

	var first, second, other *Ledger
	require.NoError(t, reg.Do(ctx, "a", func(l *Ledger) error { first = l; return nil }))
	require.NoError(t, reg.Do(ctx, "a", func(l *Ledger) error { second = l; return nil }))
	require.NoError(t, reg.Do(ctx, "b", func(l *Ledger) error { other = l; return nil }))

	assert.Same(t, first, second)
	assert.Equal(t, "a", first.Profile())
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ConcurrentAwardsAreNotLost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DailyPointsLimit = 10000
	store := newMemStore()
	clock := NewFakeClock(testStart)
	reg := newTestRegistry(store, clock, cfg)
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.Do(ctx, "shared", func(l *Ledger) error {
				_, err := l.Award(ctx, ActionTrackerComplete)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var snap State
	require.NoError(t, reg.Do(ctx, "shared", func(l *Ledger) error { snap = l.Snapshot(); return nil }))
	assert.Equal(t, workers*5, snap.DailyPoints)
	assert.Equal(t, sumHistory(snap.History), snap.Points)

	stored, err := Decode(store.docs["shared"])
	require.NoError(t, err)
	assert.Equal(t, snap.Points, stored.Points)
	assert.Len(t, stored.History, len(snap.History))
}

func TestRegistry_EvictIdle(t *testing.T) {
	store := newMemStore()
	clock := NewFakeClock(testStart)
	reg := newTestRegistry(store, clock, DefaultConfig())
	ctx := context.Background()

	require.NoError(t, reg.Do(ctx, "a", func(l *Ledger) error {
		_, err := l.Award(ctx, ActionGoalAchieved)
		return err
	}))

	clock.Advance(10 * time.Minute)
	require.NoError(t, reg.Do(ctx, "b", func(*Ledger) error { return nil }))

	assert.Equal(t, 0, reg.EvictIdle(time.Hour))
	assert.Equal(t, 1, reg.EvictIdle(5*time.Minute))
	assert.Equal(t, 1, reg.Len())

	// evicted ledgers come back from the store
	var pts int
	require.NoError(t, reg.Do(ctx, "a", func(l *Ledger) error { pts = l.Summary().Points; return nil }))
	assert.Equal(t, 50, pts)
}

func TestRegistry_EvictSkipsLedgersInUse(t *testing.T) {
	clock := NewFakeClock(testStart)
	reg := newTestRegistry(newMemStore(), clock, DefaultConfig())
	ctx := context.Background()

	err := reg.Do(ctx, "busy", func(*Ledger) error {
		clock.Advance(time.Hour)
		assert.Equal(t, 0, reg.EvictIdle(time.Minute))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.EvictIdle(0))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_MintedIDsSurviveEviction(t *testing.T) {
	store := newMemStore()
	store.docs["legacy"] = []byte(`{
		"points": 10, "level": 1, "dailyPoints": 10, "dailyPointsLimit": 100,
		"lastResetDay": "2026-03-10",
		"history": [{"type": "task", "points": 10, "date": "2026-03-10T07:00:00Z"}]
	}`)
	clock := NewFakeClock(testStart)
	reg := newTestRegistry(store, clock, DefaultConfig())
	ctx := context.Background()

	var listed []ActivityRecord
	require.NoError(t, reg.Do(ctx, "legacy", func(l *Ledger) error {
		listed = l.History(HistoryQuery{})
		return nil
	}))
	require.Len(t, listed, 1)

	clock.Advance(time.Hour)
	require.Equal(t, 1, reg.EvictIdle(time.Minute))

	err := reg.Do(ctx, "legacy", func(l *Ledger) error {
		return l.DeleteRecord(ctx, listed[0].ID)
	})
	require.NoError(t, err)

	var pts int
	require.NoError(t, reg.Do(ctx, "legacy", func(l *Ledger) error { pts = l.Summary().Points; return nil }))
	assert.Equal(t, 0, pts)
}

func TestRegistry_CancelledFirstCallerDoesNotFailWaiters(t *testing.T) {
	store := &gatedStore{
		memStore: newMemStore(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	reg := newTestRegistry(store, NewFakeClock(testStart), DefaultConfig())
	noop := func(*Ledger) error { return nil }

	firstCtx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 2)
	go func() { errs <- reg.Do(firstCtx, "p", noop) }()

	<-store.started
	cancel()
	go func() { errs <- reg.Do(context.Background(), "p", noop) }()

	require.Eventually(t, func() bool {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		e := reg.entries["p"]
		return e != nil && e.inUse == 2
	}, 5*time.Second, 10*time.Millisecond)

	close(store.release)
	for i := 0; i < 2; i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_LoadErrorIsNotCached(t *testing.T) {
	store := &flakyStore{memStore: newMemStore(), failLoads: 1}
	reg := newTestRegistry(store, NewFakeClock(testStart), DefaultConfig())
	ctx := context.Background()

	err := reg.Do(ctx, "a", func(*Ledger) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())

	require.NoError(t, reg.Do(ctx, "a", func(*Ledger) error { return nil }))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_PropagatesCallbackError(t *testing.T) {
	reg := newTestRegistry(newMemStore(), NewFakeClock(testStart), DefaultConfig())
	err := reg.Do(context.Background(), "a", func(l *Ledger) error {
		return l.DeleteRecord(context.Background(), "nope")
	})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

type flakyStore struct {
	*memStore
	mu        sync.Mutex
	failLoads int
}

func (s *flakyStore) Load(ctx context.Context, profile string) ([]byte, error) {
	s.mu.Lock()
	if s.failLoads > 0 {
		s.failLoads--
		s.mu.Unlock()
		return nil, errors.New("timeout")
	}
	s.mu.Unlock()
	return s.memStore.Load(ctx, profile)
}

// gatedStore holds the first Load until release is closed.
type gatedStore struct {
	*memStore
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *gatedStore) Load(ctx context.Context, profile string) ([]byte, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.memStore.Load(ctx, profile)
}
