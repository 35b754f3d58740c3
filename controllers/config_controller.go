package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/utils"
)

// ConfigController serves the reward rules so clients can render point values and level bars.
type ConfigController struct {
	rules ledger.Config
}

func NewConfigController(rules ledger.Config) *ConfigController {
	return &ConfigController{rules: rules}
}

// GetRewards returns point values, the daily cap and the level table.
func (c *ConfigController) GetRewards(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"taskPoints":       c.rules.TaskPoints,
		"trackerPoints":    c.rules.TrackerPoints,
		"goalPoints":       c.rules.GoalPoints,
		"levelUpBonus":     c.rules.LevelUpBonus,
		"dailyPointsLimit": c.rules.DailyPointsLimit,
		"levelThresholds":  c.rules.LevelThresholds,
		"maxLevel":         len(c.rules.LevelThresholds),
	})
}
