package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration: defaults, then the optional YAML
// file, then environment variables.
type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		Host         string `yaml:"host"`
		Port         string `yaml:"port"`
		User         string `yaml:"user"`
		Password     string `yaml:"password"`
		Name         string `yaml:"name"`
		SSLMode      string `yaml:"sslmode"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		Secret       string `yaml:"secret"`
		TTL          string `yaml:"ttl"`
		CookieSecure bool   `yaml:"cookie_secure"`
	} `yaml:"session"`

	Invite struct {
		TTL string `yaml:"ttl"`
	} `yaml:"invite"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Load reads configuration from path (skipped when empty or missing) and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.App.Env = "development"

	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownTimeout = "10s"

	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.User = "postgres"
	cfg.Database.Name = "portal_united"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.AutoMigrate = true

	cfg.Redis.Port = "6379"

	cfg.Session.TTL = "168h"
	cfg.Invite.TTL = "168h"

	cfg.CORS.AllowedOrigins = []string{"https://*", "http://localhost:8080"}
}

func loadFromEnv(cfg *Config) {
	cfg.App.Env = GetEnv("APP_ENV", cfg.App.Env)

	cfg.Server.Addr = GetEnv("HTTP_ADDR", cfg.Server.Addr)

	cfg.Database.Host = GetEnv("PG_HOST", cfg.Database.Host)
	cfg.Database.Port = GetEnv("PG_PORT", cfg.Database.Port)
	cfg.Database.User = GetEnv("PG_USER", cfg.Database.User)
	cfg.Database.Password = GetEnv("PG_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = GetEnv("PG_DB", cfg.Database.Name)
	cfg.Database.SSLMode = GetEnv("PG_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = GetEnvAsInt("PG_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = GetEnvAsInt("PG_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.AutoMigrate = GetEnvAsBool("PG_AUTO_MIGRATE", cfg.Database.AutoMigrate)

	cfg.Redis.Host = GetEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = GetEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = GetEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.Session.Secret = GetEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.TTL = GetEnv("SESSION_TTL", cfg.Session.TTL)
	cfg.Session.CookieSecure = GetEnvAsBool("SESSION_COOKIE_SECURE", cfg.Session.CookieSecure)

	cfg.Invite.TTL = GetEnv("INVITE_TTL", cfg.Invite.TTL)

	if origins := GetEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Session.Secret == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.Session.Secret = "dev-insecure-secret"
	}
	if _, err := time.ParseDuration(cfg.Session.TTL); err != nil {
		return fmt.Errorf("invalid session ttl: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Invite.TTL); err != nil {
		return fmt.Errorf("invalid invite ttl: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// RedisEnabled is false when no redis host is configured; sessions then stay in memory.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// PostgresDSN returns the postgres connection string used by both gorm and sqlx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Session.TTL)
	return d
}

func (c *Config) InviteTTL() time.Duration {
	d, _ := time.ParseDuration(c.Invite.TTL)
	return d
}

func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// GetEnvAsBool gets an environment variable as a boolean or returns a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(GetEnv(key, "")) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
