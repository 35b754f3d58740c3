package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Encode serializes a ledger document.
func Encode(s State) ([]byte, error) {
	if s.History == nil {
		s.History = []ActivityRecord{}
	}
	return json.Marshal(s)
}

// Decode parses a ledger document. Unparseable or malformed documents yield a *SerializationError.
func Decode(b []byte) (State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, &SerializationError{Err: err}
	}
	if s.Points < 0 || s.DailyPoints < 0 {
		return State{}, &SerializationError{Err: errors.New("negative point totals")}
	}
	if s.LastResetDay != "" {
		if _, err := time.Parse(dayLayout, s.LastResetDay); err != nil {
			return State{}, &SerializationError{Err: fmt.Errorf("lastResetDay: %w", err)}
		}
	}
	for i, rec := range s.History {
		if !rec.Type.Valid() {
			return State{}, &SerializationError{Err: fmt.Errorf("history[%d]: unknown type %q", i, rec.Type)}
		}
		if rec.Points < 0 {
			return State{}, &SerializationError{Err: fmt.Errorf("history[%d]: negative points", i)}
		}
	}
	return s, nil
}

func defaultState(cfg Config, now time.Time, loc *time.Location) State {
	return State{
		Points:           0,
		Level:            1,
		DailyPoints:      0,
		DailyPointsLimit: cfg.DailyPointsLimit,
		LastResetDay:     now.In(loc).Format(dayLayout),
		LastUpdated:      now,
		History:          []ActivityRecord{},
	}
}

func sumHistory(history []ActivityRecord) int {
	total := 0
	for _, rec := range history {
		total += rec.Points
	}
	return total
}
