package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"product-intel/scraper"
	"product-intel/services"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBDriver         string
	DatabaseURL      string
	SQLitePath       string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	FetchTimeout   time.Duration
	UseBrowser     bool
	BrowserSettle  time.Duration
	ChromeBin      string

	HistoryDays   int
	RecentReviews int
	CSVOutputPath string
	PipelinePath  string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/product_intel.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "product_research"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvDuration("CACHE_TTL", time.Hour),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		UseBrowser:     getEnvBool("USE_BROWSER", false),
		BrowserSettle:  getEnvDuration("BROWSER_SETTLE", 3*time.Second),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		HistoryDays:   getEnvInt("HISTORY_DAYS", 90),
		RecentReviews: getEnvInt("RECENT_REVIEWS", 50),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_products.csv"),
		PipelinePath:  getEnv("PIPELINE_CONFIG", "./pipeline.yaml"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Pipeline is the YAML file describing what to analyse and how to read it.
// Selectors left out of the file fall back to the built-in defaults.
type Pipeline struct {
	Selectors scraper.Selectors        `yaml:"selectors"`
	Products  []services.Target        `yaml:"products"`
	Listings  []services.ListingTarget `yaml:"listings"`
}

// LoadPipeline reads the pipeline file at path. A missing file yields the
// default selectors and no targets.
func LoadPipeline(path string) (*Pipeline, error) {
	p := &Pipeline{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Printf("[config] No pipeline file at %s, using built-in selectors", path)
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	p.Selectors = p.Selectors.Merge(scraper.DefaultSelectors())
	for i := range p.Products {
		p.Products[i].URL = strings.TrimSpace(p.Products[i].URL)
		if p.Products[i].Source == "" {
			p.Products[i].Source = "generic"
		}
	}
	return p, nil
}

// SourcePrefixes maps each listing source to its source-id prefix.
func (p *Pipeline) SourcePrefixes() map[string]string {
	out := make(map[string]string, len(p.Selectors.Listings))
	for _, spec := range p.Selectors.Listings {
		if spec.SourceIDPrefix != "" {
			out[spec.Source] = spec.SourceIDPrefix
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
