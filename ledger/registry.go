package ledger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// loadTimeout bounds the store round trip that brings a ledger into memory.
const loadTimeout = 15 * time.Second

type entry struct {
	ready    chan struct{}
	ledger   *Ledger
	err      error
	inUse    int
	lastUsed time.Time
}

// Registry hands out exactly one live Ledger per profile.
type Registry struct {
	mu      sync.Mutex
	store   Store
	cfg     Config
	opts    []Option
	o       options
	entries map[string]*entry
}

// NewRegistry creates a registry whose ledgers share store, cfg and opts.
func NewRegistry(store Store, cfg Config, opts ...Option) *Registry {
	return &Registry{
		store:   store,
		cfg:     cfg,
		opts:    opts,
		o:       buildOptions(opts),
		entries: make(map[string]*entry),
	}
}

// Config returns the reward configuration shared by all ledgers.
func (r *Registry) Config() Config { return r.cfg }

// Do runs fn against the profile's ledger, loading it on first use. The ledger
// is pinned in memory while fn runs.
func (r *Registry) Do(ctx context.Context, profile string, fn func(*Ledger) error) error {
	e, err := r.acquire(ctx, profile)
	if err != nil {
		return err
	}
	defer r.release(e)
	return fn(e.ledger)
}

func (r *Registry) acquire(ctx context.Context, profile string) (*entry, error) {
	r.mu.Lock()
	e, ok := r.entries[profile]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		r.entries[profile] = e
	}
	e.inUse++
	r.mu.Unlock()

	if !ok {
		// waiters share this load, so the first caller going away must not fail it
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		e.ledger, e.err = Open(loadCtx, profile, r.store, r.cfg, r.opts...)
		cancel()
		close(e.ready)
		if e.err != nil {
			r.mu.Lock()
			if r.entries[profile] == e {
				delete(r.entries, profile)
			}
			e.inUse--
			r.mu.Unlock()
			return nil, e.err
		}
		return e, nil
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		r.release(e)
		return nil, ctx.Err()
	}
	if e.err != nil {
		r.release(e)
		return nil, e.err
	}
	return e, nil
}

func (r *Registry) release(e *entry) {
	r.mu.Lock()
	e.inUse--
	e.lastUsed = r.o.clock.Now()
	r.mu.Unlock()
}

// EvictIdle drops ledgers that are not in use and were last touched at least
// idle ago. Evicted profiles are reloaded from the store on their next call.
func (r *Registry) EvictIdle(idle time.Duration) int {
	now := r.o.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for profile, e := range r.entries {
		if e.inUse > 0 || now.Sub(e.lastUsed) < idle {
			continue
		}
		delete(r.entries, profile)
		evicted++
	}
	if evicted > 0 {
		r.o.log.Debug("evicted idle ledgers", zap.Int("count", evicted), zap.Int("remaining", len(r.entries)))
	}
	return evicted
}

// Len reports how many ledgers are resident.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
