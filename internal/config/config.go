package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	SheetDBAPI          string
	SheetDBToken        string
	SheetDBTokenURL     string
	SheetDBClientID     string
	SheetDBClientSecret string

	RecaptchaSiteKey string
	RecaptchaSecret  string
	DisableCaptcha   bool

	DisableSubmissionCheck bool
	FingerprintSalt        string

	StoreDriver string // memory|file|sqlite|postgres|redis
	StoreDSN    string

	AssetBasePath string
	CatalogPath   string // optional YAML catalog; built-in when empty

	AgeMin int
	AgeMax int

	SessionSecret string
	SessionTTL    time.Duration

	CORSOrigins []string
	DefaultLang string
	LogLevel    slog.Level
}

const devSessionSecret = "dev-mascot-survey-secret"

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		SheetDBAPI:          os.Getenv("SHEET_DB_API"),
		SheetDBToken:        os.Getenv("SHEET_DB_TOKEN"),
		SheetDBTokenURL:     os.Getenv("SHEET_DB_TOKEN_URL"),
		SheetDBClientID:     os.Getenv("SHEET_DB_CLIENT_ID"),
		SheetDBClientSecret: os.Getenv("SHEET_DB_CLIENT_SECRET"),

		RecaptchaSiteKey: os.Getenv("RECAPTCHA_SITE_KEY"),
		RecaptchaSecret:  os.Getenv("RECAPTCHA_SECRET"),
		DisableCaptcha:   envBool("DISABLE_CAPTCHA", false),

		DisableSubmissionCheck: envBool("DISABLE_SUBMISSION_CHECK", false),
		FingerprintSalt:        os.Getenv("FINGERPRINT_SALT"),

		StoreDriver: envOr("STORE_DRIVER", "file"),
		StoreDSN:    envOr("STORE_DSN", "./data/survey-store.json"),

		AssetBasePath: envOr("ASSET_BASE_PATH", "./public"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),

		AgeMin: envInt("AGE_MIN", 12),
		AgeMax: envInt("AGE_MAX", 99),

		SessionSecret: envOr("SESSION_SECRET", devSessionSecret),
		SessionTTL:    envDuration("SESSION_TTL", 2*time.Hour),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:5173"),
		DefaultLang: envOr("DEFAULT_LANG", "nl"),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Missing lists required settings that are not set.
func (c Config) Missing() []string {
	var out []string
	if c.SheetDBAPI == "" {
		out = append(out, "SHEET_DB_API")
	}
	if !c.DisableCaptcha {
		if c.RecaptchaSiteKey == "" {
			out = append(out, "RECAPTCHA_SITE_KEY")
		}
		if c.RecaptchaSecret == "" {
			out = append(out, "RECAPTCHA_SECRET")
		}
	}
	return out
}

// Notices lists active escape hatches and development defaults.
func (c Config) Notices() []string {
	var out []string
	if c.DisableCaptcha {
		out = append(out, "captcha verification is disabled (DISABLE_CAPTCHA)")
	}
	if c.DisableSubmissionCheck {
		out = append(out, "duplicate submission check is disabled (DISABLE_SUBMISSION_CHECK)")
	}
	if c.SessionSecret == devSessionSecret {
		out = append(out, "using the development session secret (SESSION_SECRET)")
	}
	if c.AgeMin > c.AgeMax {
		out = append(out, "AGE_MIN is greater than AGE_MAX; no age will validate")
	}
	return out
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func envLevel(k string, def slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(os.Getenv(k))); err != nil {
		return def
	}
	return l
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
