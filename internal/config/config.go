package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvDevelopment is the only APP_ENV value that accepts the default JWT secret.
	EnvDevelopment = "development"

	defaultJWTSecret = "change-me"
)

// Config holds application level configuration loaded from an optional YAML file
// and environment variables. Environment variables take precedence.
type Config struct {
	AppEnv          string        `yaml:"app_env"`
	ServerPort      string        `yaml:"server_port"`
	MySQLDSN        string        `yaml:"mysql_dsn"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisDB         int           `yaml:"redis_db"`
	RedisPass       string        `yaml:"redis_password"`
	JWTSecret       string        `yaml:"jwt_secret"`
	CORSOrigin      string        `yaml:"cors_origin"`
	RateLimitMax    int           `yaml:"rate_limit_max"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	OTLPEndpoint    string        `yaml:"otlp_endpoint"`
	TraceStdout     bool          `yaml:"trace_stdout"`
	ServiceName     string        `yaml:"service_name"`
	SwaggerHost     string        `yaml:"swagger_host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ResetDB         bool          `yaml:"reset_db"`
	AdminEmail      string        `yaml:"seed_admin_email"`
	AdminPassword   string        `yaml:"seed_admin_password"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		AppEnv:          EnvDevelopment,
		ServerPort:      "3001",
		MySQLDSN:        "user:password@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=True&loc=UTC",
		RedisAddr:       "localhost:6379",
		JWTSecret:       defaultJWTSecret,
		CORSOrigin:      "*",
		RateLimitMax:    100,
		RateLimitWindow: 15 * time.Minute,
		ServiceName:     "storefront",
		ShutdownTimeout: 10 * time.Second,
		AdminEmail:      "admin@example.com",
	}
}

// Load builds Config from defaults, the file named by CONFIG_FILE (if any) and the environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("rate limit needs a positive max and window, got %d per %s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if !cfg.IsDevelopment() && (cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret) {
		return nil, fmt.Errorf("JWT_SECRET must be set when APP_ENV is %q", cfg.AppEnv)
	}
	return cfg, nil
}

// IsDevelopment reports whether APP_ENV is the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
	c.AdminEmail = getEnv("SEED_ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = getEnv("SEED_ADMIN_PASSWORD", c.AdminPassword)

	var err error
	if c.RedisDB, err = getEnvInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.RateLimitMax, err = getEnvInt("RATE_LIMIT_MAX", c.RateLimitMax); err != nil {
		return err
	}
	if c.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	if c.TraceStdout, err = getEnvBool("OTEL_TRACES_STDOUT", c.TraceStdout); err != nil {
		return err
	}
	if c.ResetDB, err = getEnvBool("RESET_DB", c.ResetDB); err != nil {
		return err
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
