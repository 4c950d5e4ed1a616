package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for CampusGate.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	API      API      `yaml:"api"`
	Security Security `yaml:"security"`
	Upstream Upstream `yaml:"upstream"`
	MQTT     MQTT     `yaml:"mqtt"`
	Logging  Logging  `yaml:"logging"`
}

// Database contains SQLite credential-store settings.
type Database struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// Redis contains session-store connection settings.
// When disabled, CampusGate falls back to an in-process store (development only:
// sessions do not survive restarts and cannot be shared across instances).
type Redis struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// API contains HTTP server settings.
type API struct {
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	TLS      TLS         `yaml:"tls"`
	Timeouts APITimeouts `yaml:"timeouts"`
	CORS     CORS        `yaml:"cors"`
}

// TLS contains TLS certificate settings.
type TLS struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeouts contains HTTP timeout settings, in seconds.
type APITimeouts struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORS contains Cross-Origin Resource Sharing settings.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// Security contains token and account-policy settings.
type Security struct {
	JWT    JWT    `yaml:"jwt"`
	Policy Policy `yaml:"policy"`
}

// JWT contains signing settings for session tokens. TTLs are in minutes;
// session-store entries use the same validity windows.
type JWT struct {
	Secret          string `yaml:"secret"`
	AccessTokenTTL  int    `yaml:"access_token_ttl"`
	RefreshTokenTTL int    `yaml:"refresh_token_ttl"`
}

// AccessTTL returns the access token lifetime as a Duration.
func (j JWT) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenTTL) * time.Minute
}

// RefreshTTL returns the refresh token lifetime as a Duration.
func (j JWT) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTL) * time.Minute
}

// Policy contains account validation rules.
type Policy struct {
	MinUsernameLength int `yaml:"min_username_length"`
	MinPasswordLength int `yaml:"min_password_length"`
}

// Upstream contains settings for the downstream sensor/monitoring API
// that CampusGate proxies verbatim.
type Upstream struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the upstream request timeout as a Duration.
func (u Upstream) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// MQTT contains broker settings for audit event publication.
type MQTT struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// Logging contains logging settings.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// Loading order: hardcoded defaults, then YAML file values, then environment
// variables. Environment variables follow the pattern CAMPUSGATE_SECTION_KEY,
// e.g. CAMPUSGATE_DATABASE_PATH, CAMPUSGATE_JWT_SECRET.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// Access tokens live one hour, refresh tokens thirty days.
func defaultConfig() *Config {
	return &Config{
		Database: Database{
			Path:        "./data/campusgate.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Redis: Redis{
			Enabled: true,
			Addr:    "localhost:6379",
		},
		API: API{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeouts{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Security: Security{
			JWT: JWT{
				AccessTokenTTL:  60,
				RefreshTokenTTL: 43200,
			},
			Policy: Policy{
				MinUsernameLength: 3,
				MinPasswordLength: 8,
			},
		},
		Upstream: Upstream{
			TimeoutSeconds: 30,
		},
		MQTT: MQTT{
			Host:     "localhost",
			Port:     1883,
			ClientID: "campusgate",
			QoS:      1,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Only secrets and deployment-specific values are overridable; everything else
// belongs in the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CAMPUSGATE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CAMPUSGATE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CAMPUSGATE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CAMPUSGATE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CAMPUSGATE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("CAMPUSGATE_UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("CAMPUSGATE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("CAMPUSGATE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	// JWT secret: always override in production.
	if v := os.Getenv("CAMPUSGATE_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// minJWTSecretLength is the minimum accepted signing secret length.
// A short HMAC secret would let an attacker forge session tokens offline.
const minJWTSecretLength = 32

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required when redis is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	switch {
	case c.Security.JWT.Secret == "":
		errs = append(errs, "security.jwt.secret is required (set CAMPUSGATE_JWT_SECRET environment variable)")
	case len(c.Security.JWT.Secret) < minJWTSecretLength:
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if c.Security.JWT.AccessTokenTTL <= 0 {
		errs = append(errs, "security.jwt.access_token_ttl must be positive")
	}
	if c.Security.JWT.RefreshTokenTTL < c.Security.JWT.AccessTokenTTL {
		errs = append(errs, "security.jwt.refresh_token_ttl must not be shorter than access_token_ttl")
	}

	if c.Security.Policy.MinUsernameLength < 1 {
		errs = append(errs, "security.policy.min_username_length must be at least 1")
	}
	if c.Security.Policy.MinPasswordLength < 1 {
		errs = append(errs, "security.policy.min_password_length must be at least 1")
	}

	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	}

	if c.MQTT.Enabled && c.MQTT.Host == "" {
		errs = append(errs, "mqtt.host is required when mqtt is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReadTimeout returns the API read timeout as a Duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// WriteTimeout returns the API write timeout as a Duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// IdleTimeout returns the API idle timeout as a Duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
