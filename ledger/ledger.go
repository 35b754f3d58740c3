// Package ledger keeps a profile's reward points, level and activity history.
//
// A Ledger is the single in-memory authority for one profile's document: every
// mutation happens under its lock and is written to the Store before it becomes
// visible, so concurrent callers never race read-modify-write cycles against storage.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type options struct {
	clock Clock
	loc   *time.Location
	log   *zap.Logger
	newID func() string
}

// Option customizes a Ledger or Registry.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLocation sets the location whose calendar days bound the daily cap.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithIDGenerator overrides how history record ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock: RealClock{},
		loc:   time.Local,
		log:   zap.NewNop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Ledger is one profile's reward ledger.
type Ledger struct {
	mu      sync.Mutex
	profile string
	cfg     Config
	store   Store
	opts    options
	state   State
}

// Open loads the profile's document from store, falling back to defaults when
// none exists or the stored one is corrupt. Only storage failures are returned.
func Open(ctx context.Context, profile string, store Store, cfg Config, opts ...Option) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	l := &Ledger{
		profile: profile,
		cfg:     cfg,
		store:   store,
		opts:    o,
	}
	log := o.log.With(zap.String("profile", profile))
	now := o.clock.Now()

	raw, err := store.Load(ctx, profile)
	switch {
	case errors.Is(err, ErrNoDocument):
		l.state = defaultState(cfg, now, o.loc)
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("load ledger %s: %w", profile, err)
	}

	st, err := Decode(raw)
	if err != nil {
		var serr *SerializationError
		if errors.As(err, &serr) {
			log.Warn("stored ledger is corrupt, starting from defaults", zap.Error(err))
			l.state = defaultState(cfg, now, o.loc)
			return l, nil
		}
		return nil, err
	}

	st, repaired := l.normalize(st, log)
	if repaired {
		// minted ids must survive a reload or listed records become undeletable
		doc, err := Encode(st)
		if err != nil {
			return nil, fmt.Errorf("encode ledger %s: %w", profile, err)
		}
		if err := store.Save(ctx, profile, doc); err != nil {
			return nil, fmt.Errorf("save repaired ledger %s: %w", profile, err)
		}
	}
	l.state = st
	l.rollover(&l.state, now)
	return l, nil
}

// normalize re-derives totals from the history and current configuration.
// It reports whether record ids or totals had to be repaired.
func (l *Ledger) normalize(st State, log *zap.Logger) (State, bool) {
	repaired := false
	if st.History == nil {
		st.History = []ActivityRecord{}
	}
	for i := range st.History {
		if st.History[i].ID == "" {
			st.History[i].ID = l.opts.newID()
			repaired = true
		}
	}
	if sum := sumHistory(st.History); sum != st.Points {
		log.Warn("ledger points drifted from history, using history total",
			zap.Int("stored", st.Points), zap.Int("history", sum))
		st.Points = sum
		repaired = true
	}
	st.Level = LevelFor(st.Points, l.cfg.LevelThresholds)
	st.DailyPointsLimit = l.cfg.DailyPointsLimit
	return st, repaired
}

// Profile returns the profile id this ledger belongs to.
func (l *Ledger) Profile() string { return l.profile }

// rollover zeroes the daily counter when the calendar day changed. It reports
// whether anything was reset.
func (l *Ledger) rollover(s *State, now time.Time) bool {
	today := now.In(l.opts.loc).Format(dayLayout)
	if s.LastResetDay == today {
		return false
	}
	l.opts.log.Debug("daily points rollover",
		zap.String("profile", l.profile),
		zap.String("from", s.LastResetDay),
		zap.String("to", today),
		zap.Int("dailyPoints", s.DailyPoints))
	s.DailyPoints = 0
	s.LastResetDay = today
	s.LastUpdated = now
	return true
}

// commit persists next and, on success, makes it the current state.
func (l *Ledger) commit(ctx context.Context, next State) error {
	doc, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encode ledger %s: %w", l.profile, err)
	}
	if err := l.store.Save(ctx, l.profile, doc); err != nil {
		return fmt.Errorf("save ledger %s: %w", l.profile, err)
	}
	l.state = next
	return nil
}

func (l *Ledger) newRecord(t RecordType, points int, now time.Time) ActivityRecord {
	return ActivityRecord{
		ID:     l.opts.newID(),
		Type:   t,
		Points: points,
		Date:   now,
	}
}

// Award credits the configured points for action, capped by what is left of
// today's allowance. A capped call grants nothing and reports LimitReached
// instead of failing.
func (l *Ledger) Award(ctx context.Context, action ActionType) (AwardResult, error) {
	requested, err := l.cfg.PointValue(action)
	if err != nil {
		return AwardResult{}, err
	}
	recType, _ := action.RecordType()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.opts.clock.Now()
	next := l.state.clone()
	rolled := l.rollover(&next, now)

	remaining := max(0, next.DailyPointsLimit-next.DailyPoints)
	granted := max(0, min(requested, remaining))

	if granted == 0 {
		if rolled {
			if err := l.commit(ctx, next); err != nil {
				return AwardResult{}, err
			}
		}
		res := AwardResult{
			NewLevel:       next.Level,
			LimitReached:   remaining == 0,
			DailyPoints:    next.DailyPoints,
			DailyRemaining: remaining,
		}
		if res.LimitReached {
			l.opts.log.Info("daily points limit reached",
				zap.String("profile", l.profile),
				zap.String("action", string(action)),
				zap.Int("dailyPoints", next.DailyPoints))
		}
		return res, nil
	}

	prevLevel := next.Level
	next.Points += granted
	next.DailyPoints += granted
	next.History = append(next.History, l.newRecord(recType, granted, now))
	next.Level = LevelFor(next.Points, l.cfg.LevelThresholds)

	leveledUp := next.Level > prevLevel
	if leveledUp {
		bonus := l.cfg.LevelUpBonus
		next.History = append(next.History, l.newRecord(RecordLevelUp, bonus, now))
		next.Points += bonus
		next.Level = LevelFor(next.Points, l.cfg.LevelThresholds)
	}
	next.LastUpdated = now

	if err := l.commit(ctx, next); err != nil {
		return AwardResult{}, err
	}

	if leveledUp {
		l.opts.log.Info("level up",
			zap.String("profile", l.profile),
			zap.Int("from", prevLevel),
			zap.Int("to", next.Level),
			zap.Int("points", next.Points))
	}

	return AwardResult{
		Granted:        granted,
		NewLevel:       next.Level,
		LeveledUp:      leveledUp,
		LimitReached:   next.DailyPoints >= next.DailyPointsLimit,
		DailyPoints:    next.DailyPoints,
		DailyRemaining: max(0, next.DailyPointsLimit-next.DailyPoints),
	}, nil
}

// DeleteRecord removes one history record and takes its points back out of the
// lifetime total. Today's daily counter is not adjusted.
func (l *Ledger) DeleteRecord(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, rec := range l.state.History {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	now := l.opts.clock.Now()
	next := l.state.clone()
	l.rollover(&next, now)

	removed := next.History[idx]
	next.History = append(next.History[:idx], next.History[idx+1:]...)
	next.Points = max(0, next.Points-removed.Points)
	next.Level = LevelFor(next.Points, l.cfg.LevelThresholds)
	next.LastUpdated = now

	return l.commit(ctx, next)
}

// Reset restores the ledger to its first-use defaults.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.commit(ctx, defaultState(l.cfg, l.opts.clock.Now(), l.opts.loc)); err != nil {
		return err
	}
	l.opts.log.Info("ledger reset", zap.String("profile", l.profile))
	return nil
}

// Summary returns totals and progress toward the next level.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover(&l.state, l.opts.clock.Now())

	s := l.state
	next, top := nextThreshold(s.Level, l.cfg.LevelThresholds)
	return Summary{
		Points:              s.Points,
		Level:               s.Level,
		MaxLevel:            top,
		DailyPoints:         s.DailyPoints,
		DailyPointsLimit:    s.DailyPointsLimit,
		DailyRemaining:      max(0, s.DailyPointsLimit-s.DailyPoints),
		NextLevelThreshold:  next,
		ProgressToNextLevel: progressPercent(s.Points, next),
	}
}

// Snapshot returns a copy of the full ledger document.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover(&l.state, l.opts.clock.Now())
	return l.state.clone()
}

// History returns records newest first, optionally filtered by type and truncated to q.Limit.
func (l *Ledger) History(q HistoryQuery) []ActivityRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ActivityRecord, 0, len(l.state.History))
	for i := len(l.state.History) - 1; i >= 0; i-- {
		rec := l.state.History[i]
		if q.Type != "" && rec.Type != q.Type {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// DailyTotals sums credited points per calendar day for the last days days,
// oldest first, including days with no activity.
func (l *Ledger) DailyTotals(days int) []DayTotal {
	if days < 1 {
		days = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	loc := l.opts.loc
	now := l.opts.clock.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	sums := make(map[string]int, days)
	for _, rec := range l.state.History {
		sums[rec.Date.In(loc).Format(dayLayout)] += rec.Points
	}

	out := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(dayLayout)
		out = append(out, DayTotal{Day: day, Points: sums[day]})
	}
	return out
}
