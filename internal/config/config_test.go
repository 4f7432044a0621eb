package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mascot-survey/internal/config"
)

var keys = []string{
	"HTTP_ADDR", "SHEET_DB_API", "RECAPTCHA_SITE_KEY", "RECAPTCHA_SECRET", "DISABLE_CAPTCHA", "DISABLE_SUBMISSION_CHECK",
	"STORE_DRIVER", "STORE_DSN", "AGE_MIN", "AGE_MAX", "SESSION_SECRET", "SESSION_TTL",
	"CORS_ORIGINS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c := config.FromEnv()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "file", c.StoreDriver)
	assert.Equal(t, "./data/survey-store.json", c.StoreDSN)
	assert.Equal(t, 12, c.AgeMin)
	assert.Equal(t, 99, c.AgeMax)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)

	assert.Equal(t, []string{"SHEET_DB_API", "RECAPTCHA_SITE_KEY", "RECAPTCHA_SECRET"}, c.Missing())
	assert.Contains(t, c.Notices(), "using the development session secret (SESSION_SECRET)")
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHEET_DB_API", "https://sheetdb.io/api/v1/abc")
	t.Setenv("DISABLE_CAPTCHA", "true")
	t.Setenv("DISABLE_SUBMISSION_CHECK", "1")
	t.Setenv("AGE_MIN", "16")
	t.Setenv("AGE_MAX", "not-a-number")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "15m")

	c := config.FromEnv()
	assert.Empty(t, c.Missing(), "site key not needed with captcha off")
	assert.Equal(t, 16, c.AgeMin)
	assert.Equal(t, 99, c.AgeMax)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Contains(t, c.Notices(), "captcha verification is disabled (DISABLE_CAPTCHA)")
	assert.Contains(t, c.Notices(), "duplicate submission check is disabled (DISABLE_SUBMISSION_CHECK)")
}

func TestMissingCaptchaSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHEET_DB_API", "https://sheetdb.io/api/v1/abc")
	t.Setenv("RECAPTCHA_SITE_KEY", "site-key")

	c := config.FromEnv()
	assert.Equal(t, []string{"RECAPTCHA_SECRET"}, c.Missing(), "siteverify rejects every token without a secret")

	t.Setenv("RECAPTCHA_SECRET", "secret")
	assert.Empty(t, config.FromEnv().Missing())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHEET_DB_API=https://example.test/rows\nHTTP_ADDR=:9999\n"), 0o644))
	t.Setenv("HTTP_ADDR", ":7000")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/rows", c.SheetDBAPI)
	assert.Equal(t, ":7000", c.HTTPAddr, "environment wins over the file")
	os.Unsetenv("SHEET_DB_API")

	_, err = config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err, "a missing file is not an error")
}
