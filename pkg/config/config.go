package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Materializer MaterializerConfig
	Stats        StatsConfig
	Recommender  RecommenderConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   []string
	AdminToken     string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type MaterializerConfig struct {
	RefreshInterval  time.Duration
	RefreshTimeout   time.Duration
	RefreshOnStartup bool
}

type StatsConfig struct {
	CacheTTL          time.Duration
	TopSideEffects    int
	TopLocations      int
	ComputeTimeout    time.Duration
	NullBooleanPolicy string
}

type RecommenderConfig struct {
	URL     string
	Timeout time.Duration
}

const (
	NullBooleanAsFalse = "false"
	NullBooleanExclude = "exclude"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	redisEnabled, err := getEnvBool("REDIS_ENABLED", false)
	if err != nil {
		return nil, err
	}
	refreshOnStartup, err := getEnvBool("REFRESH_ON_STARTUP", true)
	if err != nil {
		return nil, err
	}
	topSideEffects, err := getEnvInt("STATS_TOP_SIDE_EFFECTS", 10)
	if err != nil {
		return nil, err
	}
	topLocations, err := getEnvInt("STATS_TOP_LOCATIONS", 10)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := getEnvDuration("REFRESH_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	refreshTimeout, err := getEnvDuration("REFRESH_TIMEOUT", "5m")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("STATS_CACHE_TTL", "72h")
	if err != nil {
		return nil, err
	}
	computeTimeout, err := getEnvDuration("STATS_COMPUTE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	recommenderTimeout, err := getEnvDuration("RECOMMENDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "WhichGLP Insights API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: requestTimeout,
			AllowOrigins:   []string{getEnv("CORS_ALLOW_ORIGIN", "http://localhost:3000")},
			AdminToken:     getEnv("ADMIN_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:       redisEnabled,
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			KeyPrefix:     getEnv("REDIS_KEY_PREFIX", "whichglp"),
		},
		Materializer: MaterializerConfig{
			RefreshInterval:  refreshInterval,
			RefreshTimeout:   refreshTimeout,
			RefreshOnStartup: refreshOnStartup,
		},
		Stats: StatsConfig{
			CacheTTL:          cacheTTL,
			ComputeTimeout:    computeTimeout,
			TopSideEffects:    topSideEffects,
			TopLocations:      topLocations,
			NullBooleanPolicy: getEnv("STATS_NULL_BOOLEAN_POLICY", NullBooleanAsFalse),
		},
		Recommender: RecommenderConfig{
			URL:     getEnv("RECOMMENDER_URL", ""),
			Timeout: recommenderTimeout,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Password == "" {
		return errors.New("missing database password")
	}

	if c.Stats.NullBooleanPolicy != NullBooleanAsFalse && c.Stats.NullBooleanPolicy != NullBooleanExclude {
		return fmt.Errorf("invalid STATS_NULL_BOOLEAN_POLICY %q", c.Stats.NullBooleanPolicy)
	}

	if c.Stats.TopSideEffects <= 0 {
		return errors.New("STATS_TOP_SIDE_EFFECTS must be greater than 0")
	}

	if c.Stats.CacheTTL <= 0 {
		return errors.New("STATS_CACHE_TTL must be greater than 0")
	}

	if c.Materializer.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be greater than 0")
	}

	return nil
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

func getEnvDuration(key, defaultVal string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultVal))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}
