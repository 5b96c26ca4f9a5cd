package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	LogLevel  string
	LogFormat string
	HTTPAddr  string

	ParseWorkers   int
	VocabularyPath string

	CatalogAPIBaseURL        string
	CatalogAPIToken          string
	CatalogRateLimitRPS      int
	CatalogTimeoutMs         int
	CatalogIncrementalHours  int
	CatalogIncrementalDays   int
	CatalogAislesRefreshDays int

	MatchOKThreshold     float64
	MatchReviewThreshold float64
	MatchGapThreshold    float64

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	ListenerProvider     string
	ListenerLabel        string
	ListenerIntervalSec  int
	ListenerFetchMax     int
	ListenerProcessBatch int
	ListenerAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "shoplist.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),

		ParseWorkers:   getEnvInt("PARSE_WORKERS", 4),
		VocabularyPath: getEnv("VOCABULARY_PATH", ""),

		CatalogAPIBaseURL:        getEnv("CATALOG_API_BASE_URL", "http://localhost:9090/api/v1"),
		CatalogAPIToken:          getEnv("CATALOG_API_TOKEN", ""),
		CatalogRateLimitRPS:      getEnvInt("CATALOG_RATE_LIMIT_RPS", 5),
		CatalogTimeoutMs:         getEnvInt("CATALOG_TIMEOUT_MS", 30000),
		CatalogIncrementalHours:  getEnvInt("CATALOG_INCREMENTAL_HOURS", 24),
		CatalogIncrementalDays:   getEnvInt("CATALOG_INCREMENTAL_DAYS", 2),
		CatalogAislesRefreshDays: getEnvInt("CATALOG_AISLES_REFRESH_DAYS", 30),

		MatchOKThreshold:     getEnvFloat("MATCH_OK_THRESHOLD", 0.85),
		MatchReviewThreshold: getEnvFloat("MATCH_REVIEW_THRESHOLD", 0.6),
		MatchGapThreshold:    getEnvFloat("MATCH_GAP_THRESHOLD", 0.08),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		ListenerProvider:     getEnv("RECIPE_LISTENER_PROVIDER", "gmail"),
		ListenerLabel:        getEnv("RECIPE_LISTENER_LABEL", "INBOX"),
		ListenerIntervalSec:  getEnvInt("RECIPE_LISTENER_INTERVAL_SEC", 60),
		ListenerFetchMax:     getEnvInt("RECIPE_LISTENER_FETCH_MAX", 20),
		ListenerProcessBatch: getEnvInt("RECIPE_LISTENER_PROCESS_BATCH", 20),
		ListenerAutoExport:   getEnvBool("RECIPE_LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
