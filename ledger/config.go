package ledger

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the point values, cap and level table used by a ledger.
// Action point values must be positive so a zero grant always means the cap was hit.
type Config struct {
	TaskPoints       int   `json:"taskPoints" validate:"gt=0"`
	TrackerPoints    int   `json:"trackerPoints" validate:"gt=0"`
	GoalPoints       int   `json:"goalPoints" validate:"gt=0"`
	LevelUpBonus     int   `json:"levelUpBonus" validate:"gte=0"`
	DailyPointsLimit int   `json:"dailyPointsLimit" validate:"gte=0"`
	LevelThresholds  []int `json:"levelThresholds" validate:"required,min=1,dive,gte=0"`
}

// DefaultLevelThresholds is the stock level table; level N starts at index N-1.
var DefaultLevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000}

// DefaultConfig returns the stock reward configuration.
func DefaultConfig() Config {
	thresholds := make([]int, len(DefaultLevelThresholds))
	copy(thresholds, DefaultLevelThresholds)
	return Config{
		TaskPoints:       10,
		TrackerPoints:    5,
		GoalPoints:       50,
		LevelUpBonus:     50,
		DailyPointsLimit: 100,
		LevelThresholds:  thresholds,
	}
}

var validate = validator.New()

// Validate checks value ranges and that thresholds ascend strictly from zero.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid reward config: %w", err)
	}
	if c.LevelThresholds[0] != 0 {
		return fmt.Errorf("invalid reward config: first level threshold must be 0, got %d", c.LevelThresholds[0])
	}
	for i := 1; i < len(c.LevelThresholds); i++ {
		if c.LevelThresholds[i] <= c.LevelThresholds[i-1] {
			return fmt.Errorf("invalid reward config: level thresholds must be strictly ascending (index %d)", i)
		}
	}
	return nil
}

// PointValue returns the configured reward for an action.
func (c Config) PointValue(action ActionType) (int, error) {
	switch action {
	case ActionTaskComplete:
		return c.TaskPoints, nil
	case ActionTrackerComplete:
		return c.TrackerPoints, nil
	case ActionGoalAchieved:
		return c.GoalPoints, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}
