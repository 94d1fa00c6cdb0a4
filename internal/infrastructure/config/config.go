package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for HK Energy.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Source     SourceConfig     `yaml:"source"`
	Scan       ScanConfig       `yaml:"scan"`
	Facilities []FacilityConfig `yaml:"facilities"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// SourceConfig contains the archive database settings.
type SourceConfig struct {
	// Driver is one of sqlserver, pgx or sqlite3.
	Driver string `yaml:"driver"`

	// DSN is the driver connection string. Prefer HKENERGY_SOURCE_DSN.
	DSN string `yaml:"dsn"`

	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`

	// RequestTimeout bounds each sample query. Default: 90s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ConnectionTimeout bounds the startup connectivity check. Default: 90s
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`

	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the archive table columns.
type ColumnsConfig struct {
	Name      string `yaml:"name"`
	Value     string `yaml:"value"`
	Timestamp string `yaml:"timestamp"`
	Status    string `yaml:"status"`
}

// ScanConfig contains batch scan settings.
type ScanConfig struct {
	// ChunkSize is the number of tables fetched concurrently. Default: 3
	ChunkSize int `yaml:"chunk_size"`

	// ChunkPause is the wait between chunks. Negative disables it. Default: 100ms
	ChunkPause time.Duration `yaml:"chunk_pause"`

	// Interval is the cron schedule of the periodic scan. Default: "@every 60s"
	Interval string `yaml:"interval"`

	// RunOnStart triggers a scan immediately at startup.
	RunOnStart bool `yaml:"run_on_start"`
}

// FacilityConfig describes one monitored facility.
type FacilityConfig struct {
	// Table is the archive table holding the facility's tags.
	Table string `yaml:"table"`

	// Region groups facilities for display.
	Region string `yaml:"region"`

	// Limit is the contractual RTU active power cap. Zero disables the check.
	Limit float64 `yaml:"limit"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
//
// Write must exceed the longest batch, since POST /scan answers only when
// the batch has completed.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// tablePattern matches a plain or schema-qualified SQL identifier.
var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

var supportedDrivers = map[string]bool{
	"sqlserver": true,
	"pgx":       true,
	"sqlite3":   true,
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HKENERGY_SECTION_KEY
// For example: HKENERGY_SOURCE_DSN, HKENERGY_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
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
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "hkenergy",
			Name:     "HK Energy",
			Timezone: "Europe/Istanbul",
		},
		Source: SourceConfig{
			Driver:            "sqlserver",
			MaxOpenConns:      10,
			RequestTimeout:    90 * time.Second,
			ConnectionTimeout: 90 * time.Second,
			Columns: ColumnsConfig{
				Name:      "NAME",
				Value:     "WERT",
				Timestamp: "DATUMZEIT",
				Status:    "STATUS",
			},
		},
		Scan: ScanConfig{
			ChunkSize:  3,
			ChunkPause: 100 * time.Millisecond,
			Interval:   "@every 60s",
			RunOnStart: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hkenergy",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 300,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HKENERGY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Source
	if v := os.Getenv("HKENERGY_SOURCE_DRIVER"); v != "" {
		cfg.Source.Driver = v
	}
	if v := os.Getenv("HKENERGY_SOURCE_DSN"); v != "" {
		cfg.Source.DSN = v
	}

	// MQTT
	if v := os.Getenv("HKENERGY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HKENERGY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HKENERGY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("HKENERGY_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HKENERGY_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("HKENERGY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("HKENERGY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Source
	if !supportedDrivers[c.Source.Driver] {
		errs = append(errs, fmt.Sprintf("source.driver %q must be sqlserver, pgx or sqlite3", c.Source.Driver))
	}
	if c.Source.DSN == "" {
		errs = append(errs, "source.dsn is required (set HKENERGY_SOURCE_DSN environment variable)")
	}
	if c.Source.RequestTimeout < 0 || c.Source.ConnectionTimeout < 0 {
		errs = append(errs, "source timeouts must not be negative")
	}

	// Scan
	if c.Scan.ChunkSize < 1 {
		errs = append(errs, "scan.chunk_size must be at least 1")
	}
	if c.Scan.Interval == "" {
		errs = append(errs, "scan.interval is required")
	} else if _, err := cron.ParseStandard(c.Scan.Interval); err != nil {
		errs = append(errs, fmt.Sprintf("scan.interval %q is not a valid schedule: %v", c.Scan.Interval, err))
	}

	// Facilities
	seen := make(map[string]bool, len(c.Facilities))
	for i, f := range c.Facilities {
		switch {
		case !tablePattern.MatchString(f.Table):
			errs = append(errs, fmt.Sprintf("facilities[%d].table %q is not a valid table name", i, f.Table))
		case seen[f.Table]:
			errs = append(errs, fmt.Sprintf("facilities[%d].table %q is duplicated", i, f.Table))
		}
		seen[f.Table] = true
		if f.Limit < 0 {
			errs = append(errs, fmt.Sprintf("facilities[%d].limit must not be negative", i))
		}
	}

	// MQTT
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	// API
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// InfluxDB
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Tables returns the facility table names in configuration order.
func (c *Config) Tables() []string {
	tables := make([]string, len(c.Facilities))
	for i, f := range c.Facilities {
		tables[i] = f.Table
	}
	return tables
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
