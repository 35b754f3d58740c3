package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cppla/momentum/ledger"
)

// Store drivers understood by storage.Open.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
)

// AppConfig holds file and environment driven configuration values.
type AppConfig struct {
	AppPort            string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Reward rules
	TaskPoints       int
	TrackerPoints    int
	GoalPoints       int
	LevelUpBonus     int
	DailyPointsLimit int
	LevelThresholds  []int
	// Timezone names the location whose midnight resets the daily cap ("Local" or an IANA name).
	Timezone string
	// Resident ledger eviction
	LedgerIdleMinutes   int
	LedgerEvictSchedule string
	// Ledger persistence
	StoreDriver string
	DataDir     string
	// SQL store
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis store
	RedisHost      string
	RedisPort      int
	RedisDB        int
	RedisPassword  string
	RedisKeyPrefix string
	// Mongo store
	MongoURI      string
	MongoDatabase string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	c, err := LoadFrom(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// LoadFrom builds a configuration from defaults, the JSON file at path (if present)
// and environment variable overrides, in that order, then validates it.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	applyDefaults(&c)
	if err := loadJSONConfig(path, &c); err != nil {
		return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}
	if err := c.RewardConfig().Validate(); err != nil {
		return AppConfig{}, err
	}
	if _, err := c.Location(); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

// RewardConfig returns the ledger rules described by this configuration.
func (c AppConfig) RewardConfig() ledger.Config {
	thresholds := make([]int, len(c.LevelThresholds))
	copy(thresholds, c.LevelThresholds)
	return ledger.Config{
		TaskPoints:       c.TaskPoints,
		TrackerPoints:    c.TrackerPoints,
		GoalPoints:       c.GoalPoints,
		LevelUpBonus:     c.LevelUpBonus,
		DailyPointsLimit: c.DailyPointsLimit,
		LevelThresholds:  thresholds,
	}
}

// Location resolves Timezone.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LedgerIdle is how long an unused ledger stays resident.
func (c AppConfig) LedgerIdle() time.Duration {
	return time.Duration(c.LedgerIdleMinutes) * time.Minute
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig overlays keys present in the JSON file onto out. A missing file is not an error.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	setString := func(m map[string]any, key string, dst *string) {
		if v, ok := m[key].(string); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(m map[string]any, key string, dst *int) {
		if v, ok := m[key].(float64); ok {
			*dst = int(v)
		}
	}
	setBool := func(m map[string]any, key string, dst *bool) {
		if v, ok := m[key].(bool); ok {
			*dst = v
		}
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	getIntSlice := func(m map[string]any, key string) []int {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]int, 0, len(arr))
		for _, it := range arr {
			if n, ok := it.(float64); ok {
				res = append(res, int(n))
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		setString(app, "AppPort", &out.AppPort)
		setInt(app, "RateLimitPerMinute", &out.RateLimitPerMinute)
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		setString(g, "Mode", &out.GinMode)
		setString(g, "LogPath", &out.GinPath)
	}

	if rw, ok := raw["reward"].(map[string]any); ok {
		setInt(rw, "TaskPoints", &out.TaskPoints)
		setInt(rw, "TrackerPoints", &out.TrackerPoints)
		setInt(rw, "GoalPoints", &out.GoalPoints)
		setInt(rw, "LevelUpBonus", &out.LevelUpBonus)
		setInt(rw, "DailyPointsLimit", &out.DailyPointsLimit)
		if list := getIntSlice(rw, "LevelThresholds"); len(list) > 0 {
			out.LevelThresholds = list
		}
		setString(rw, "Timezone", &out.Timezone)
	}

	if st, ok := raw["store"].(map[string]any); ok {
		setString(st, "Driver", &out.StoreDriver)
		setString(st, "DataDir", &out.DataDir)
		setInt(st, "IdleMinutes", &out.LedgerIdleMinutes)
		setString(st, "EvictSchedule", &out.LedgerEvictSchedule)
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		setString(dbs, "DatabaseURI", &out.DatabaseURI)
		setString(dbs, "DBHost", &out.DBHost)
		setString(dbs, "DBPort", &out.DBPort)
		setString(dbs, "DBUser", &out.DBUser)
		setString(dbs, "DBPassword", &out.DBPassword)
		setString(dbs, "DBName", &out.DBName)
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		setString(rds, "RedisHost", &out.RedisHost)
		setInt(rds, "RedisPort", &out.RedisPort)
		setInt(rds, "RedisDB", &out.RedisDB)
		setString(rds, "RedisPassword", &out.RedisPassword)
		setString(rds, "KeyPrefix", &out.RedisKeyPrefix)
	}

	if mg, ok := raw["mongo"].(map[string]any); ok {
		setString(mg, "URI", &out.MongoURI)
		setString(mg, "Database", &out.MongoDatabase)
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		setString(lg, "Level", &out.LogLevel)
		setString(lg, "Path", &out.LogPath)
		setInt(lg, "MaxSizeMB", &out.LogMaxSizeMB)
		setInt(lg, "MaxBackups", &out.LogMaxBackups)
		setInt(lg, "MaxAgeDays", &out.LogMaxAgeDays)
		setBool(lg, "Compress", &out.LogCompress)
	}

	return nil
}

// applyDefaults fills the stock values before the file and environment are applied.
func applyDefaults(c *AppConfig) {
	rules := ledger.DefaultConfig()

	c.AppPort = "8080"
	c.GinMode = "release"
	c.GinPath = "logs/go_gin.log"
	c.RateLimitPerMinute = 120
	c.AllowedOrigins = []string{"*"}

	c.TaskPoints = rules.TaskPoints
	c.TrackerPoints = rules.TrackerPoints
	c.GoalPoints = rules.GoalPoints
	c.LevelUpBonus = rules.LevelUpBonus
	c.DailyPointsLimit = rules.DailyPointsLimit
	c.LevelThresholds = rules.LevelThresholds
	c.Timezone = "Local"

	c.LedgerIdleMinutes = 30
	c.LedgerEvictSchedule = "@every 5m"
	c.StoreDriver = StoreFile
	c.DataDir = "data"

	c.DBHost = "127.0.0.1"
	c.DBPort = "3306"
	c.DBUser = "root"
	c.DBName = "momentum"

	c.RedisHost = "127.0.0.1"
	c.RedisPort = 6379
	c.RedisKeyPrefix = "momentum:ledger:"

	c.MongoURI = "mongodb://127.0.0.1:27017"
	c.MongoDatabase = "momentum"

	c.LogLevel = "info"
	c.LogMaxSizeMB = 100
	c.LogMaxBackups = 3
	c.LogMaxAgeDays = 7
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v := getEnv(key, ""); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid integer value for %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := getEnv(key, ""); v != "" {
			*dst = v == "true"
		}
	}

	setString("APP_PORT", &c.AppPort)
	setString("GIN_MODE", &c.GinMode)
	setString("GIN_PATH", &c.GinPath)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}

	setInt("TASK_POINTS", &c.TaskPoints)
	setInt("TRACKER_POINTS", &c.TrackerPoints)
	setInt("GOAL_POINTS", &c.GoalPoints)
	setInt("LEVEL_UP_BONUS", &c.LevelUpBonus)
	setInt("DAILY_POINTS_LIMIT", &c.DailyPointsLimit)
	if v := getEnv("LEVEL_THRESHOLDS", ""); v != "" {
		list, err := parseIntList(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid LEVEL_THRESHOLDS: %w", err))
		} else {
			c.LevelThresholds = list
		}
	}
	setString("TIMEZONE", &c.Timezone)

	setInt("LEDGER_IDLE_MINUTES", &c.LedgerIdleMinutes)
	setString("LEDGER_EVICT_SCHEDULE", &c.LedgerEvictSchedule)
	setString("STORE_DRIVER", &c.StoreDriver)
	setString("DATA_DIR", &c.DataDir)

	setString("DATABASE_URI", &c.DatabaseURI)
	setString("DB_HOST", &c.DBHost)
	setString("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)

	setString("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setString("REDIS_PASSWORD", &c.RedisPassword)
	setString("REDIS_KEY_PREFIX", &c.RedisKeyPrefix)

	setString("MONGO_URI", &c.MongoURI)
	setString("MONGO_DATABASE", &c.MongoDatabase)

	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)

	return errors.Join(errs...)
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func parseIntList(raw string) ([]int, error) {
	parts := splitAndTrim(raw)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
