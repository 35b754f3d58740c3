package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/momentum/config"
	"github.com/cppla/momentum/controllers"
	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/middleware"
	"github.com/cppla/momentum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, registry *ledger.Registry) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; without a path only panics are logged.
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err == nil {
			r.Use(utils.Ginzap(gl, time.RFC3339, true))
			r.Use(utils.RecoveryWithZap(gl, false))
		} else {
			utils.Sugar.Warnf("gin access log disabled: %v", err)
			r.Use(utils.RecoveryWithZap(utils.Logger, true))
		}
	} else {
		r.Use(utils.RecoveryWithZap(utils.Logger, true))
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	ledgerController := controllers.NewLedgerController(registry)
	configController := controllers.NewConfigController(registry.Config())

	api := r.Group("/api/v1")
	api.GET("/config/rewards", configController.GetRewards)

	limited := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)
	api.POST("/profiles", limited, ledgerController.CreateProfile)

	profile := api.Group("/profiles/:profile")
	profile.Use(middleware.ProfileRequired())
	profile.GET("/ledger", ledgerController.Ledger)
	profile.GET("/summary", ledgerController.Summary)
	profile.GET("/history", ledgerController.History)
	profile.GET("/history/daily", ledgerController.DailyTotals)

	mutations := profile.Group("")
	mutations.Use(limited)
	mutations.POST("/awards", ledgerController.Award)
	mutations.DELETE("/history/:recordId", ledgerController.DeleteRecord)
	mutations.POST("/reset", ledgerController.Reset)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
	})

	return r
}
