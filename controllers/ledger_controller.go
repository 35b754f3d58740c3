package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/middleware"
	"github.com/cppla/momentum/utils"
)

// LedgerController exposes reward ledger operations per profile.
type LedgerController struct {
	registry *ledger.Registry
}

// NewLedgerController creates a new controller instance.
func NewLedgerController(registry *ledger.Registry) *LedgerController {
	return &LedgerController{registry: registry}
}

type awardRequest struct {
	Action ledger.ActionType `json:"action" binding:"required,oneof=task_complete tracker_complete goal_achieved"`
}

type historyQuery struct {
	Type  string `form:"type" binding:"omitempty,oneof=task tracker goal_achieved level_up"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

type dailyQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

// CreateProfile mints a fresh profile id; its ledger starts at defaults on first use.
func (c *LedgerController) CreateProfile(ctx *gin.Context) {
	utils.Created(ctx, gin.H{"profile_id": uuid.NewString()})
}

// Award credits points for a completed action.
func (c *LedgerController) Award(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}

	var req awardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "action must be one of task_complete, tracker_complete, goal_achieved")
		return
	}

	var res ledger.AwardResult
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		var err error
		res, err = l.Award(ctx.Request.Context(), req.Action)
		return err
	})
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownAction) {
			utils.Error(ctx, http.StatusBadRequest, 40020, err.Error())
			return
		}
		c.storageFailure(ctx, "award", profile, err)
		return
	}

	if res.Granted == 0 && res.LimitReached {
		utils.Notice(ctx, "daily limit reached", res)
		return
	}
	utils.Success(ctx, res)
}

// DeleteRecord removes one history record.
func (c *LedgerController) DeleteRecord(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}
	recordID := ctx.Param("recordId")

	var summary ledger.Summary
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		if err := l.DeleteRecord(ctx.Request.Context(), recordID); err != nil {
			return err
		}
		summary = l.Summary()
		return nil
	})
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "record not found")
			return
		}
		c.storageFailure(ctx, "delete record", profile, err)
		return
	}

	utils.Success(ctx, summary)
}

// Summary returns totals and level progress.
func (c *LedgerController) Summary(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}

	var summary ledger.Summary
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		summary = l.Summary()
		return nil
	})
	if err != nil {
		c.storageFailure(ctx, "summary", profile, err)
		return
	}
	utils.Success(ctx, summary)
}

// Ledger returns the full persisted document.
func (c *LedgerController) Ledger(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}

	var state ledger.State
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		state = l.Snapshot()
		return nil
	})
	if err != nil {
		c.storageFailure(ctx, "snapshot", profile, err)
		return
	}
	utils.Success(ctx, state)
}

// History lists recent activity, newest first.
func (c *LedgerController) History(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}

	var q historyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid history query")
		return
	}

	var records []ledger.ActivityRecord
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		records = l.History(ledger.HistoryQuery{Type: ledger.RecordType(q.Type), Limit: q.Limit})
		return nil
	})
	if err != nil {
		c.storageFailure(ctx, "history", profile, err)
		return
	}
	utils.Success(ctx, gin.H{"items": records, "count": len(records)})
}

// DailyTotals returns per-day point sums for charting.
func (c *LedgerController) DailyTotals(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}

	q := dailyQuery{Days: 7}
	if err := ctx.ShouldBindQuery(&q); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "days must be between 1 and 366")
		return
	}
	if q.Days == 0 {
		q.Days = 7
	}

	var totals []ledger.DayTotal
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		totals = l.DailyTotals(q.Days)
		return nil
	})
	if err != nil {
		c.storageFailure(ctx, "daily totals", profile, err)
		return
	}
	utils.Success(ctx, gin.H{"days": totals})
}

// Reset restores the profile's ledger to defaults.
func (c *LedgerController) Reset(ctx *gin.Context) {
	profile, ok := middleware.ProfileID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid profile id")
		return
	}

	var summary ledger.Summary
	err := c.registry.Do(ctx.Request.Context(), profile, func(l *ledger.Ledger) error {
		if err := l.Reset(ctx.Request.Context()); err != nil {
			return err
		}
		summary = l.Summary()
		return nil
	})
	if err != nil {
		c.storageFailure(ctx, "reset", profile, err)
		return
	}
	utils.Success(ctx, summary)
}

func (c *LedgerController) storageFailure(ctx *gin.Context, op, profile string, err error) {
	utils.Logger.Error("ledger operation failed",
		zap.String("op", op),
		zap.String("profile", profile),
		zap.Error(err))
	utils.Error(ctx, http.StatusInternalServerError, 50020, "ledger storage failure")
}
