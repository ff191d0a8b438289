package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the aggregator.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       string

	// File feeds. Empty path disables the feed.
	CSVFeedPath       string
	XMLFeedPath       string
	CSVCurrency       string
	ExcludedLeagues   []string
	XMLLeagueFilter   string
	PerfLeagueName    string
	CatalogFilePath   string
	ReportPath        string
	ReportSummaryOnly bool

	DBEnabled bool
	DBURL     string

	HelloTicketsEnabled             bool
	HelloTicketsBaseURL             string
	HelloTicketsPublicKey           string
	HelloTicketsTimeout             time.Duration
	HelloTicketsMaxRetries          int
	HelloTicketsPageLimit           int
	HelloTicketsPerformerIDs        []int64
	HelloTicketsCircuitEnabled      bool
	HelloTicketsCircuitFailureCount int
	HelloTicketsCircuitOpenTimeout  time.Duration
	HelloTicketsCircuitHalfOpenReq  int

	SyncWorkers int
	ScheduleTTL time.Duration

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:          appEnv,
		ServiceName:     getEnv("SERVICE_NAME", "offer-aggregator"),
		ServiceVersion:  getEnv("SERVICE_VERSION", "dev"),
		LogLevel:        strings.ToLower(getEnv("APP_LOG_LEVEL", "info")),
		CSVFeedPath:     strings.TrimSpace(getEnv("CSV_FEED_PATH", "")),
		XMLFeedPath:     strings.TrimSpace(getEnv("XML_FEED_PATH", "")),
		CSVCurrency:     strings.ToUpper(strings.TrimSpace(getEnv("CSV_FEED_CURRENCY", "EUR"))),
		ExcludedLeagues: splitCSV(getEnv("EXCLUDED_LEAGUES", "")),
		XMLLeagueFilter: strings.TrimSpace(getEnv("XML_LEAGUE_FILTER", "")),
		PerfLeagueName:  strings.TrimSpace(getEnv("PERFORMANCE_LEAGUE_NAME", "")),
		CatalogFilePath: strings.TrimSpace(getEnv("TEAM_CATALOG_PATH", "")),
		ReportPath:      strings.TrimSpace(getEnv("REPORT_PATH", "reports/matches.json")),
	}

	cfg.ReportSummaryOnly, err = getEnvAsBool("REPORT_SUMMARY_ONLY", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPORT_SUMMARY_ONLY: %w", err)
	}

	cfg.DBEnabled, err = getEnvAsBool("DB_ENABLED", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.DBEnabled && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_ENABLED=true")
	}

	cfg.HelloTicketsEnabled, err = getEnvAsBool("HELLOTICKETS_ENABLED", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_ENABLED: %w", err)
	}
	cfg.HelloTicketsBaseURL = strings.TrimSpace(getEnv("HELLOTICKETS_BASE_URL", "https://api-live.hellotickets.com/v1"))
	cfg.HelloTicketsPublicKey = strings.TrimSpace(getEnv("HELLOTICKETS_PUBLIC_KEY", ""))
	if cfg.HelloTicketsEnabled && cfg.HelloTicketsPublicKey == "" {
		return Config{}, fmt.Errorf("HELLOTICKETS_PUBLIC_KEY is required when HELLOTICKETS_ENABLED=true")
	}

	cfg.HelloTicketsTimeout, err = time.ParseDuration(getEnv("HELLOTICKETS_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_TIMEOUT: %w", err)
	}
	cfg.HelloTicketsMaxRetries, err = getEnvAsInt("HELLOTICKETS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_MAX_RETRIES: %w", err)
	}
	if cfg.HelloTicketsMaxRetries < 0 {
		return Config{}, fmt.Errorf("HELLOTICKETS_MAX_RETRIES must be >= 0")
	}
	cfg.HelloTicketsPageLimit, err = getEnvAsInt("HELLOTICKETS_PAGE_LIMIT", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_PAGE_LIMIT: %w", err)
	}
	if cfg.HelloTicketsPageLimit < 1 {
		return Config{}, fmt.Errorf("HELLOTICKETS_PAGE_LIMIT must be >= 1")
	}

	cfg.HelloTicketsPerformerIDs, err = parseIDList(getEnv("HELLOTICKETS_PERFORMER_IDS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_PERFORMER_IDS: %w", err)
	}
	if cfg.HelloTicketsEnabled && len(cfg.HelloTicketsPerformerIDs) == 0 {
		return Config{}, fmt.Errorf("HELLOTICKETS_PERFORMER_IDS is required when HELLOTICKETS_ENABLED=true")
	}

	cfg.HelloTicketsCircuitEnabled, err = getEnvAsBool("HELLOTICKETS_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_CIRCUIT_ENABLED: %w", err)
	}
	cfg.HelloTicketsCircuitFailureCount, err = getEnvAsInt("HELLOTICKETS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.HelloTicketsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("HELLOTICKETS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.HelloTicketsCircuitOpenTimeout, err = time.ParseDuration(getEnv("HELLOTICKETS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.HelloTicketsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("HELLOTICKETS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cfg.HelloTicketsCircuitHalfOpenReq, err = getEnvAsInt("HELLOTICKETS_CIRCUIT_HALF_OPEN_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse HELLOTICKETS_CIRCUIT_HALF_OPEN_REQ: %w", err)
	}
	if cfg.HelloTicketsCircuitHalfOpenReq < 1 {
		return Config{}, fmt.Errorf("HELLOTICKETS_CIRCUIT_HALF_OPEN_REQ must be >= 1")
	}

	cfg.SyncWorkers, err = getEnvAsInt("SYNC_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WORKERS: %w", err)
	}
	if cfg.SyncWorkers < 1 {
		return Config{}, fmt.Errorf("SYNC_WORKERS must be >= 1")
	}
	cfg.ScheduleTTL, err = time.ParseDuration(getEnv("SCHEDULE_CACHE_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULE_CACHE_TTL: %w", err)
	}

	cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName)
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseBool(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseIDList(raw string) ([]int64, error) {
	var out []int64
	for _, item := range splitCSV(raw) {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %q", item)
		}
		out = append(out, value)
	}

	return out, nil
}
