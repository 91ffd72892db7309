package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env               string
	LogLevel          string
	DeployTarget      string
	BindHost          string
	HTTPPort          int
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	DataBackend string

	DatabaseDriver    string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	APIToken string

	Browser BrowserConfig
	Scrape  ScrapeConfig
}

// BrowserConfig controls how the headless browser is launched.
type BrowserConfig struct {
	ChromePath         string
	Headless           bool
	NoSandbox          bool
	UserAgent          string
	WindowWidth        int
	WindowHeight       int
	NavigationTimeout  time.Duration
	ResultsWaitTimeout time.Duration
}

// ScrapeConfig controls the scroll-and-collect loop and service limits.
type ScrapeConfig struct {
	SearchURL      string
	MaxPasses      int
	StablePasses   int
	ScrollDelta    float64
	PauseMin       time.Duration
	PauseMax       time.Duration
	MaxConcurrent  int
	Timeout        time.Duration
	CacheTTL       time.Duration
	MaxJobsLimit   int
	DefaultMaxJobs int
}

const (
	defaultEnv               = "development"
	defaultBindHost          = "0.0.0.0"
	defaultHTTPPort          = 8080
	renderHTTPPort           = 10000
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultDataBackend = "memory"

	defaultDatabaseDriver    = "pgx"
	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = time.Hour
	defaultDBConnMaxIdleTime = 30 * time.Minute

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/124.0.0.0 Safari/537.36"
	defaultWindowWidth        = 1366
	defaultWindowHeight       = 900
	defaultNavigationTimeout  = 60 * time.Second
	defaultResultsWaitTimeout = 10 * time.Second

	defaultSearchURL      = "https://www.linkedin.com/jobs/search/"
	defaultMaxPasses      = 60
	defaultStablePasses   = 4
	defaultScrollDelta    = 2500
	defaultPauseMin       = 800 * time.Millisecond
	defaultPauseMax       = 1800 * time.Millisecond
	defaultMaxConcurrent  = 2
	defaultScrapeTimeout  = 5 * time.Minute
	defaultMaxJobsLimit   = 500
	defaultDefaultMaxJobs = 50
)

// DeployTargetRender is the hosting provider whose container contract pins
// the listener to port 10000.
const DeployTargetRender = "render"

// Load reads configuration values from the environment, applying defaults where necessary.
func Load() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", defaultEnv),
		LogLevel:          strings.ToLower(os.Getenv("LOG_LEVEL")),
		DeployTarget:      strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_TARGET"))),
		BindHost:          getEnv("BIND_HOST", defaultBindHost),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),

		DataBackend: getEnv("DATA_BACKEND", defaultDataBackend),

		DatabaseDriver:    getEnv("DATABASE_DRIVER", defaultDatabaseDriver),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", defaultDBMaxIdleConns),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", defaultDBConnMaxLifetime),
		DBConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", defaultDBConnMaxIdleTime),

		APIToken: os.Getenv("API_TOKEN"),

		Browser: BrowserConfig{
			ChromePath:         os.Getenv("CHROME_PATH"),
			Headless:           getBool("BROWSER_HEADLESS", true),
			NoSandbox:          getBool("BROWSER_NO_SANDBOX", true),
			UserAgent:          getEnv("BROWSER_USER_AGENT", defaultUserAgent),
			WindowWidth:        getInt("BROWSER_WINDOW_WIDTH", defaultWindowWidth),
			WindowHeight:       getInt("BROWSER_WINDOW_HEIGHT", defaultWindowHeight),
			NavigationTimeout:  getDuration("NAVIGATION_TIMEOUT", defaultNavigationTimeout),
			ResultsWaitTimeout: getDuration("RESULTS_WAIT_TIMEOUT", defaultResultsWaitTimeout),
		},

		Scrape: ScrapeConfig{
			SearchURL:      getEnv("SEARCH_URL", defaultSearchURL),
			MaxPasses:      getInt("SCRAPE_MAX_PASSES", defaultMaxPasses),
			StablePasses:   getInt("SCRAPE_STABLE_PASSES", defaultStablePasses),
			ScrollDelta:    float64(getInt("SCRAPE_SCROLL_DELTA", defaultScrollDelta)),
			PauseMin:       getDuration("SCRAPE_PAUSE_MIN", defaultPauseMin),
			PauseMax:       getDuration("SCRAPE_PAUSE_MAX", defaultPauseMax),
			MaxConcurrent:  getInt("MAX_CONCURRENT_SCRAPES", defaultMaxConcurrent),
			Timeout:        getDuration("SCRAPE_TIMEOUT", defaultScrapeTimeout),
			CacheTTL:       getDuration("SCRAPE_CACHE_TTL", 0),
			MaxJobsLimit:   getInt("MAX_JOBS_LIMIT", defaultMaxJobsLimit),
			DefaultMaxJobs: getInt("DEFAULT_MAX_JOBS", defaultDefaultMaxJobs),
		},
	}

	cfg.HTTPPort = resolvePort(cfg.DeployTarget)

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.HTTPPort)
	}

	switch cfg.DataBackend {
	case "memory":
		// no-op
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown DATA_BACKEND value: %s", cfg.DataBackend)
	}

	if cfg.Scrape.MaxConcurrent < 1 {
		return Config{}, fmt.Errorf("MAX_CONCURRENT_SCRAPES must be at least 1")
	}
	if cfg.Scrape.PauseMax < cfg.Scrape.PauseMin {
		return Config{}, fmt.Errorf("SCRAPE_PAUSE_MAX must not be lower than SCRAPE_PAUSE_MIN")
	}
	// MAX_JOBS_LIMIT=0 disables the upper bound.
	if cfg.Scrape.MaxJobsLimit < 0 {
		return Config{}, fmt.Errorf("MAX_JOBS_LIMIT must not be negative")
	}
	if cfg.Scrape.DefaultMaxJobs < 1 {
		return Config{}, fmt.Errorf("DEFAULT_MAX_JOBS must be at least 1")
	}
	if cfg.Scrape.MaxJobsLimit > 0 && cfg.Scrape.DefaultMaxJobs > cfg.Scrape.MaxJobsLimit {
		return Config{}, fmt.Errorf("DEFAULT_MAX_JOBS must not exceed MAX_JOBS_LIMIT (%d)", cfg.Scrape.MaxJobsLimit)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindHost, c.HTTPPort)
}

// resolvePort picks the listener port. The render target ignores PORT.
func resolvePort(target string) int {
	if target == DeployTargetRender {
		return renderHTTPPort
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return getInt("HTTP_PORT", defaultHTTPPort)
}

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
