package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "NOTION_API_KEY", "NOTION_ANNUAL_GOALS_DB_ID", "NOTION_QUARTERLY_GOALS_DB_ID",
		"NOTION_WEEKLY_GOALS_DB_ID", "NOTION_DAILY_PLANNER_DB_ID", "GOOGLE_CALENDAR_ID",
		"GOOGLE_CREDENTIALS_FILE", "GOOGLE_TOKEN_FILE", "GEMINI_API_KEY", "GEMINI_MODEL",
		"CONTEXT_DIR", "BRIEFING_TIMEZONE", "MAX_HISTORY_TURNS", "PORT", "DATABASE_URL", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("NOTION_API_KEY", "secret_notion")
	t.Setenv("NOTION_ANNUAL_GOALS_DB_ID", "annual-db")
	t.Setenv("NOTION_QUARTERLY_GOALS_DB_ID", "quarterly-db")
	t.Setenv("NOTION_WEEKLY_GOALS_DB_ID", "weekly-db")
	t.Setenv("NOTION_DAILY_PLANNER_DB_ID", "daily-db")
	t.Setenv("GOOGLE_CALENDAR_ID", "primary")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "annual-db", cfg.NotionAnnualGoalsDBID)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "credentials.json", cfg.GoogleCredentialsFile)
	assert.Equal(t, "token.json", cfg.GoogleTokenFile)
	assert.Equal(t, "context", cfg.ContextDir)
	assert.Equal(t, 40, cfg.MaxHistoryTurns)
	assert.False(t, cfg.SchedulingEnabled())
}

func TestValidateReportsEveryMissingKey(t *testing.T) {
	cfg := &Config{NotionAPIKey: "secret", GeminiModel: "gemini-2.5-flash"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingConfig))
	for _, key := range []string{
		"NOTION_ANNUAL_GOALS_DB_ID",
		"NOTION_QUARTERLY_GOALS_DB_ID",
		"NOTION_WEEKLY_GOALS_DB_ID",
		"NOTION_DAILY_PLANNER_DB_ID",
		"GOOGLE_CALENDAR_ID",
		"GEMINI_API_KEY",
	} {
		assert.Contains(t, err.Error(), key)
	}
	assert.NotContains(t, err.Error(), "NOTION_API_KEY")
	assert.NotContains(t, err.Error(), "GEMINI_MODEL")
}

func TestLoadFileIsOverriddenByEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "briefing.yaml")
	content := "gemini_model: gemini-1.5-pro\ncontext_dir: ./notes\nmax_history_turns: 12\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "./notes", cfg.ContextDir)
	assert.Equal(t, 12, cfg.MaxHistoryTurns)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "briefing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemni_model: typo\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadRejectsInvalidMaxHistoryTurns(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)
	t.Setenv("MAX_HISTORY_TURNS", "-3")

	_, err := Load("")
	require.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := &Config{BriefingTimezone: "America/Chicago"}
	assert.Equal(t, "America/Chicago", cfg.Location().String())

	cfg.BriefingTimezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.BriefingTimezone = "Local"
	assert.Equal(t, time.Local, cfg.Location())
}
