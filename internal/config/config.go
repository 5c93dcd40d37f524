package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		// Policy is "classic" (401 on anonymous access, /update enabled)
		// or "hardened" (redirect to /login, HttpOnly cookie, no /update).
		Policy string
	}
	Session struct {
		CookieName string
		MaxAge     int
		Seed       int64
		Backend    string
	}
	Redis struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}
	Form struct {
		MaxBody int64
	}
	Log struct {
		Level  string
		Format string
	}
}

var (
	validPolicies = []string{"classic", "hardened"}
	validBackends = []string{"memory", "redis"}
	validFormats  = []string{"text", "json"}
)

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// variables already present in the environment take precedence
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VULNSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("database.path", "db.sqlite3")
	v.SetDefault("auth.policy", "classic")
	v.SetDefault("session.cookiename", "sid")
	v.SetDefault("session.maxage", 3600)
	v.SetDefault("session.seed", 1)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyprefix", "vulnsite:")
	v.SetDefault("form.maxbody", 8192)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server addr is required")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if !oneOf(c.Auth.Policy, validPolicies) {
		return fmt.Errorf("auth policy must be one of %v, got %q", validPolicies, c.Auth.Policy)
	}
	if !oneOf(c.Session.Backend, validBackends) {
		return fmt.Errorf("session backend must be one of %v, got %q", validBackends, c.Session.Backend)
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name is required")
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("session max age must be positive, got %d", c.Session.MaxAge)
	}
	if c.Form.MaxBody <= 0 {
		return fmt.Errorf("form max body must be positive, got %d", c.Form.MaxBody)
	}
	if !oneOf(c.Log.Format, validFormats) {
		return fmt.Errorf("log format must be one of %v, got %q", validFormats, c.Log.Format)
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
