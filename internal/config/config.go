package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingConfig is wrapped by every validation error about an unset key.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds application configuration loaded from the environment,
// optionally layered over a YAML file.
type Config struct {
	NotionAPIKey             string `yaml:"notion_api_key"`
	NotionAnnualGoalsDBID    string `yaml:"notion_annual_goals_db_id"`
	NotionQuarterlyGoalsDBID string `yaml:"notion_quarterly_goals_db_id"`
	NotionWeeklyGoalsDBID    string `yaml:"notion_weekly_goals_db_id"`
	NotionDailyPlannerDBID   string `yaml:"notion_daily_planner_db_id"`

	GoogleCalendarID      string `yaml:"google_calendar_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleTokenFile       string `yaml:"google_token_file"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	ContextDir       string `yaml:"context_dir"`
	BriefingTimezone string `yaml:"briefing_timezone"`
	MaxHistoryTurns  int    `yaml:"max_history_turns"`

	Env       string `yaml:"env"`
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Scheduled briefings are only enabled when both URLs are set.
	DatabaseURL      string `yaml:"database_url"`
	RedisURL         string `yaml:"redis_url"`
	BriefingSchedule string `yaml:"briefing_schedule"`
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honoured, and when path is non-empty the YAML file
// at path supplies values for keys the environment leaves unset.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	file := &Config{}
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		var err error
		file, err = loadFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		NotionAPIKey:             getEnv("NOTION_API_KEY", file.NotionAPIKey),
		NotionAnnualGoalsDBID:    getEnv("NOTION_ANNUAL_GOALS_DB_ID", file.NotionAnnualGoalsDBID),
		NotionQuarterlyGoalsDBID: getEnv("NOTION_QUARTERLY_GOALS_DB_ID", file.NotionQuarterlyGoalsDBID),
		NotionWeeklyGoalsDBID:    getEnv("NOTION_WEEKLY_GOALS_DB_ID", file.NotionWeeklyGoalsDBID),
		NotionDailyPlannerDBID:   getEnv("NOTION_DAILY_PLANNER_DB_ID", file.NotionDailyPlannerDBID),
		GoogleCalendarID:         getEnv("GOOGLE_CALENDAR_ID", file.GoogleCalendarID),
		GoogleCredentialsFile:    getEnv("GOOGLE_CREDENTIALS_FILE", withDefault(file.GoogleCredentialsFile, "credentials.json")),
		GoogleTokenFile:          getEnv("GOOGLE_TOKEN_FILE", withDefault(file.GoogleTokenFile, "token.json")),
		GeminiAPIKey:             getEnv("GEMINI_API_KEY", file.GeminiAPIKey),
		GeminiModel:              getEnv("GEMINI_MODEL", file.GeminiModel),
		ContextDir:               getEnv("CONTEXT_DIR", withDefault(file.ContextDir, "context")),
		BriefingTimezone:         getEnv("BRIEFING_TIMEZONE", withDefault(file.BriefingTimezone, "Local")),
		Env:                      getEnv("ENV", withDefault(file.Env, "development")),
		Port:                     getEnv("PORT", withDefault(file.Port, "3000")),
		LogLevel:                 getEnv("LOG_LEVEL", withDefault(file.LogLevel, "info")),
		LogFormat:                getEnv("LOG_FORMAT", withDefault(file.LogFormat, "text")),
		DatabaseURL:              getEnv("DATABASE_URL", file.DatabaseURL),
		RedisURL:                 getEnv("REDIS_URL", file.RedisURL),
		BriefingSchedule:         getEnv("BRIEFING_SCHEDULE", withDefault(file.BriefingSchedule, "0 6 * * *")),
	}

	maxTurns := file.MaxHistoryTurns
	if maxTurns == 0 {
		maxTurns = 40
	}
	if raw := os.Getenv("MAX_HISTORY_TURNS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid MAX_HISTORY_TURNS %q: must be a non-negative integer", raw)
		}
		maxTurns = n
	}
	cfg.MaxHistoryTurns = maxTurns

	return cfg, nil
}

// Validate checks that every identifier and credential needed to gather a
// briefing is present. All missing keys are reported at once.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"NOTION_API_KEY", c.NotionAPIKey},
		{"NOTION_ANNUAL_GOALS_DB_ID", c.NotionAnnualGoalsDBID},
		{"NOTION_QUARTERLY_GOALS_DB_ID", c.NotionQuarterlyGoalsDBID},
		{"NOTION_WEEKLY_GOALS_DB_ID", c.NotionWeeklyGoalsDBID},
		{"NOTION_DAILY_PLANNER_DB_ID", c.NotionDailyPlannerDBID},
		{"GOOGLE_CALENDAR_ID", c.GoogleCalendarID},
		{"GEMINI_API_KEY", c.GeminiAPIKey},
		{"GEMINI_MODEL", c.GeminiModel},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// SchedulingEnabled reports whether the briefing archive and scheduler
// have the backing services they need.
func (c *Config) SchedulingEnabled() bool {
	return c.DatabaseURL != "" && c.RedisURL != ""
}

// Location resolves BriefingTimezone. An unknown zone falls back to UTC
// with a warning.
func (c *Config) Location() *time.Location {
	if c.BriefingTimezone == "" || c.BriefingTimezone == "Local" {
		return time.Local
	}
	location, err := time.LoadLocation(c.BriefingTimezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", c.BriefingTimezone, "error", err)
		return time.UTC
	}
	return location
}

// loadFile decodes a YAML config file, rejecting unknown keys.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	slog.Debug("Loaded config file", "path", path)
	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func withDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}
