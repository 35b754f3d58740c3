package ledger

import (
	"context"
	"time"
)

// ActionType identifies a user action that can earn points.
type ActionType string

const (
	ActionTaskComplete    ActionType = "task_complete"
	ActionTrackerComplete ActionType = "tracker_complete"
	ActionGoalAchieved    ActionType = "goal_achieved"
)

// RecordType is the kind of an ActivityRecord stored in the history.
type RecordType string

const (
	RecordTask         RecordType = "task"
	RecordTracker      RecordType = "tracker"
	RecordGoalAchieved RecordType = "goal_achieved"
	RecordLevelUp      RecordType = "level_up"
)

// RecordType maps an action to the history record it produces.
func (a ActionType) RecordType() (RecordType, bool) {
	switch a {
	case ActionTaskComplete:
		return RecordTask, true
	case ActionTrackerComplete:
		return RecordTracker, true
	case ActionGoalAchieved:
		return RecordGoalAchieved, true
	}
	return "", false
}

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	switch t {
	case RecordTask, RecordTracker, RecordGoalAchieved, RecordLevelUp:
		return true
	}
	return false
}

// ActivityRecord is one credited event in the ledger history.
type ActivityRecord struct {
	ID     string     `json:"id"`
	Type   RecordType `json:"type"`
	Points int        `json:"points"`
	Date   time.Time  `json:"date"`
}

// State is the persisted ledger document.
type State struct {
	Points           int              `json:"points"`
	Level            int              `json:"level"`
	DailyPoints      int              `json:"dailyPoints"`
	DailyPointsLimit int              `json:"dailyPointsLimit"`
	LastResetDay     string           `json:"lastResetDay"`
	LastUpdated      time.Time        `json:"lastUpdated"`
	History          []ActivityRecord `json:"history"`
}

func (s State) clone() State {
	out := s
	out.History = make([]ActivityRecord, len(s.History))
	copy(out.History, s.History)
	return out
}

// AwardResult reports the outcome of a single Award call.
type AwardResult struct {
	Granted        int  `json:"granted"`
	NewLevel       int  `json:"newLevel"`
	LeveledUp      bool `json:"leveledUp"`
	LimitReached   bool `json:"limitReached"`
	DailyPoints    int  `json:"dailyPoints"`
	DailyRemaining int  `json:"dailyRemaining"`
}

// Summary is a read-only view of the ledger totals.
type Summary struct {
	Points              int  `json:"points"`
	Level               int  `json:"level"`
	MaxLevel            bool `json:"maxLevel"`
	DailyPoints         int  `json:"dailyPoints"`
	DailyPointsLimit    int  `json:"dailyPointsLimit"`
	DailyRemaining      int  `json:"dailyRemaining"`
	NextLevelThreshold  int  `json:"nextLevelThreshold"`
	ProgressToNextLevel int  `json:"progressToNextLevel"`
}

// HistoryQuery filters History results. Zero values mean no filter.
type HistoryQuery struct {
	Type  RecordType
	Limit int
}

// DayTotal is the sum of credited points on one calendar day.
type DayTotal struct {
	Day    string `json:"day"`
	Points int    `json:"points"`
}

// Store persists one ledger document per profile.
// Load returns ErrNoDocument when the profile has never been saved.
type Store interface {
	Load(ctx context.Context, profile string) ([]byte, error)
	Save(ctx context.Context, profile string, doc []byte) error
}
