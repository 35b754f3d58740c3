package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"negative task points": func(c *Config) { c.TaskPoints = -1 },
		"negative limit":       func(c *Config) { c.DailyPointsLimit = -5 },
		"no thresholds":        func(c *Config) { c.LevelThresholds = nil },
		"not starting at zero": func(c *Config) { c.LevelThresholds = []int{10, 20} },
		"not ascending":        func(c *Config) { c.LevelThresholds = []int{0, 100, 100} },
		"negative threshold":   func(c *Config) { c.LevelThresholds = []int{0, -10} },
		"negative level bonus": func(c *Config) { c.LevelUpBonus = -50 },
		"zero goal points":     func(c *Config) { c.GoalPoints = 0 },
		"zero tracker points":  func(c *Config) { c.TrackerPoints = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_AllowsZeroBonusAndLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelUpBonus = 0
	cfg.DailyPointsLimit = 0
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfig_DoesNotShareThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelThresholds[1] = 1
	assert.Equal(t, 100, DefaultLevelThresholds[1])
}

func TestConfig_PointValue(t *testing.T) {
	cfg := DefaultConfig()

	v, err := cfg.PointValue(ActionGoalAchieved)
	require.NoError(t, err)
	assert.Equal(t, 50, v)

	_, err = cfg.PointValue("unknown")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestLevelFor(t *testing.T) {
	thresholds := DefaultLevelThresholds
	cases := []struct {
		points int
		level  int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{499, 3},
		{31999, 9},
		{32000, 10},
		{1_000_000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelFor(tc.points, thresholds), "points=%d", tc.points)
	}
}

func TestNextThreshold(t *testing.T) {
	next, top := nextThreshold(3, DefaultLevelThresholds)
	assert.Equal(t, 500, next)
	assert.False(t, top)

	next, top = nextThreshold(10, DefaultLevelThresholds)
	assert.Equal(t, 32000, next)
	assert.True(t, top)
}
