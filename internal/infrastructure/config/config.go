package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for devicedash.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site          SiteConfig         `yaml:"site"`
	Backend       BackendConfig      `yaml:"backend"`
	Database      DatabaseConfig     `yaml:"database"`
	MQTT          MQTTConfig         `yaml:"mqtt"`
	API           APIConfig          `yaml:"api"`
	WebSocket     WebSocketConfig    `yaml:"websocket"`
	InfluxDB      InfluxDBConfig     `yaml:"influxdb"`
	Logging       LoggingConfig      `yaml:"logging"`
	Notifications NotificationConfig `yaml:"notifications"`
	Feed          FeedConfig         `yaml:"feed"`
}

// SiteConfig contains presentation settings for the dashboard.
type SiteConfig struct {
	// TitlePrefix is prepended to every page title ("prefix - page").
	// When empty, the localized default for Language is used.
	TitlePrefix string `yaml:"title_prefix" env:"DEVICEDASH_SITE_TITLE_PREFIX"`

	// Language is a BCP 47 tag selecting the message catalog (e.g. "zh-CN", "en").
	Language string `yaml:"language" env:"DEVICEDASH_SITE_LANGUAGE"`
}

// BackendConfig describes the remote device/MQTT backend the gateway talks to.
type BackendConfig struct {
	// BaseURL is the single fixed host every gateway call is issued against.
	BaseURL string `yaml:"base_url" env:"DEVICEDASH_BACKEND_URL"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path" env:"DEVICEDASH_DATABASE_PATH"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for the live feed.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled" env:"DEVICEDASH_MQTT_ENABLED"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" env:"DEVICEDASH_MQTT_HOST"`
	Port     int    `yaml:"port" env:"DEVICEDASH_MQTT_PORT"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"DEVICEDASH_MQTT_USERNAME"`
	Password string `yaml:"password" env:"DEVICEDASH_MQTT_PASSWORD"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Host     string           `yaml:"host" env:"DEVICEDASH_API_HOST"`
	Port     int              `yaml:"port" env:"DEVICEDASH_API_PORT"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"DEVICEDASH_INFLUXDB_ENABLED"`
	URL           string `yaml:"url" env:"DEVICEDASH_INFLUXDB_URL"`
	Token         string `yaml:"token" env:"DEVICEDASH_INFLUXDB_TOKEN"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DEVICEDASH_LOG_LEVEL"`
	Format string `yaml:"format" env:"DEVICEDASH_LOG_FORMAT"`
	Output string `yaml:"output"`
}

// NotificationConfig controls the transient toast notifications.
type NotificationConfig struct {
	// DurationSeconds is how long an error toast stays visible.
	DurationSeconds int `yaml:"duration_seconds"`
}

// FeedConfig controls the live MQTT message feed.
type FeedConfig struct {
	// Topics are subscribed when MQTT is enabled.
	Topics []string `yaml:"topics"`

	// RetainMessages is how many received messages the message log keeps.
	RetainMessages int `yaml:"retain_messages"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DEVICEDASH_SECTION_KEY
// For example: DEVICEDASH_BACKEND_URL, DEVICEDASH_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
// The backend address matches the development backend on localhost:8080.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Language: "zh-CN",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Path:        "./data/devicedash.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "devicedash",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 5173,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Notifications: NotificationConfig{
			DurationSeconds: 5,
		},
		Feed: FeedConfig{
			Topics:         []string{"test/topic", "device/report/#", "device/status/#"},
			RetainMessages: 200,
		},
	}
}

// applyEnvOverrides binds DEVICEDASH_* variables onto the tagged fields.
// Unset variables leave the file/default value in place.
func applyEnvOverrides(cfg *Config) error {
	return env.Parse(cfg)
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Backend.BaseURL == "" {
		errs = append(errs, "backend.base_url is required")
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "backend.base_url must be an absolute http(s) URL")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Notifications.DurationSeconds <= 0 {
		errs = append(errs, "notifications.duration_seconds must be positive")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// NotificationDuration returns how long a toast stays visible.
func (c *Config) NotificationDuration() time.Duration {
	return time.Duration(c.Notifications.DurationSeconds) * time.Second
}
