package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
)

// DefaultServerPort はSERVER_PORT未設定時の待ち受けポート。
const DefaultServerPort = "8080"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Catalog
	CatalogBaseURL   string
	CatalogTimeout   time.Duration
	CatalogMaxSize   int64
	CatalogRateLimit float64
	CatalogBurst     int

	// Browse
	Language         model.Language
	PageSize         int
	SearchDebounce   time.Duration
	DetailTransition time.Duration
	DetailFetchItem  bool

	// Session registry
	SessionIdleTTL time.Duration
	SessionMax     int

	// Server
	ServerPort        string
	CORSAllowedOrigin string
	RateLimitGeneral  int

	// Search log（任意）
	DatabaseURL            string
	SearchLogRetentionDays int
	WorkerMetricsPort      string

	// Logging
	LogLevel string
	LogFile  string
}

// Load は環境変数からConfigを読み込む。
// 必須の環境変数はなく、未設定の項目はデフォルト値になる。
// 値の意味として不正な場合（未知の言語、0以下のページサイズ、http(s)以外のURL）はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.CatalogBaseURL = getEnvString("CATALOG_BASE_URL", "https://dataportal.livsmedelsverket.se/livsmedel")
	cfg.CatalogTimeout = getEnvDuration("CATALOG_TIMEOUT", 10*time.Second)
	cfg.CatalogMaxSize = getEnvInt64("CATALOG_MAX_SIZE", 5242880)
	cfg.CatalogRateLimit = getEnvFloat("CATALOG_RATE_LIMIT", 5)
	cfg.CatalogBurst = getEnvInt("CATALOG_BURST", 10)
	cfg.PageSize = getEnvInt("PAGE_SIZE", 20)
	cfg.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond)
	cfg.DetailTransition = getEnvDuration("DETAIL_TRANSITION", 100*time.Millisecond)
	cfg.DetailFetchItem = getEnvBool("DETAIL_FETCH_ITEM", true)
	cfg.SessionIdleTTL = getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute)
	cfg.SessionMax = getEnvInt("SESSION_MAX", 1000)
	cfg.ServerPort = getEnvString("SERVER_PORT", DefaultServerPort)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SearchLogRetentionDays = getEnvInt("SEARCH_LOG_RETENTION_DAYS", 14)
	cfg.WorkerMetricsPort = getEnvString("WORKER_METRICS_PORT", "9091")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFile = getEnvString("LOG_FILE", "livsmedel.log")

	var invalid []string

	lang, err := model.ParseLanguage(getEnvString("LANGUAGE", "1"))
	if err != nil {
		invalid = append(invalid, "LANGUAGE")
	}
	cfg.Language = lang

	if cfg.PageSize <= 0 {
		invalid = append(invalid, "PAGE_SIZE")
	}

	if err := ValidateBaseURL(cfg.CatalogBaseURL); err != nil {
		invalid = append(invalid, "CATALOG_BASE_URL")
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	return cfg, nil
}

// SearchLogEnabled は検索ログが有効かどうかを返す。
func (c *Config) SearchLogEnabled() bool {
	return c.DatabaseURL != ""
}

// ValidateBaseURL はカタログのベースURLがhttp(s)の絶対URLであることを検証する。
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host: %q", raw)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
