package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "VGS"

// ConfigFileEnv names the variable that points Load at an explicit YAML file.
const ConfigFileEnv = "VGS_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Session   SessionConfig   `yaml:"session" envconfig:"SESSION"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"2m"`
	Version         string        `yaml:"version" envconfig:"VERSION" default:"dev"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"100"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/dashboard.log"`
}

// DatasetConfig describes where the sales table comes from.
type DatasetConfig struct {
	// Identifier is the owner/slug pair of the remote dataset.
	Identifier string `yaml:"identifier" envconfig:"IDENTIFIER" default:"gregorut/videogamesales"`
	FileName   string `yaml:"file_name" envconfig:"FILE_NAME" default:"vgsales.csv"`
	BaseURL    string `yaml:"base_url" envconfig:"BASE_URL" default:"https://www.kaggle.com/api/v1"`
	CacheDir   string `yaml:"cache_dir" envconfig:"CACHE_DIR" default:"data/cache"`
	// LocalDir skips the download and reads FileName from this directory.
	LocalDir        string        `yaml:"local_dir" envconfig:"LOCAL_DIR"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" default:"2m"`
}

// DashboardConfig holds the ranking sizes used when rendering views.
type DashboardConfig struct {
	PlatformTopN      int `yaml:"platform_top_n" envconfig:"PLATFORM_TOP_N" default:"15"`
	PublisherTopN     int `yaml:"publisher_top_n" envconfig:"PUBLISHER_TOP_N" default:"10"`
	PeakYears         int `yaml:"peak_years" envconfig:"PEAK_YEARS" default:"3"`
	MarketShareTopN   int `yaml:"market_share_top_n" envconfig:"MARKET_SHARE_TOP_N" default:"7"`
	TopGames          int `yaml:"top_games" envconfig:"TOP_GAMES" default:"20"`
	PublisherPlatform int `yaml:"publisher_platform_top_n" envconfig:"PUBLISHER_PLATFORM_TOP_N" default:"10"`
	RegionTopDefault  int `yaml:"region_top_default" envconfig:"REGION_TOP_DEFAULT" default:"10"`
	MaxCompareItems   int `yaml:"max_compare_items" envconfig:"MAX_COMPARE_ITEMS" default:"3"`
	MaxPageSize       int `yaml:"max_page_size" envconfig:"MAX_PAGE_SIZE" default:"500"`
}

// SessionConfig controls the in-memory filter sessions.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL" default:"2h"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL" default:"10m"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"4096"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
	WriteWait       time.Duration `yaml:"write_wait" envconfig:"WRITE_WAIT" default:"10s"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE" default:"65536"`
}

// TelemetryConfig toggles tracing and metrics exporters.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"vgsales-dashboard"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"false"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration from .env, the environment and an optional YAML file.
// Values found in the YAML file override environment values.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Dataset.Identifier == "" && c.Dataset.LocalDir == "" {
		return fmt.Errorf("dataset identifier or local dir is required")
	}

	if c.Dataset.FileName == "" {
		return fmt.Errorf("dataset file name is required")
	}

	d := c.Dashboard
	for name, v := range map[string]int{
		"platform_top_n":           d.PlatformTopN,
		"publisher_top_n":          d.PublisherTopN,
		"peak_years":               d.PeakYears,
		"market_share_top_n":       d.MarketShareTopN,
		"top_games":                d.TopGames,
		"publisher_platform_top_n": d.PublisherPlatform,
		"max_compare_items":        d.MaxCompareItems,
		"max_page_size":            d.MaxPageSize,
	} {
		if v <= 0 {
			return fmt.Errorf("dashboard %s must be positive, got %d", name, v)
		}
	}

	if d.RegionTopDefault < 5 || d.RegionTopDefault > 30 {
		return fmt.Errorf("dashboard region_top_default must be within [5, 30], got %d", d.RegionTopDefault)
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/dashboard.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  2 * time.Minute,
			Version:         "dev",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/dashboard.log",
		},
		Dataset: DatasetConfig{
			Identifier:  "gregorut/videogamesales",
			FileName:    "vgsales.csv",
			BaseURL:     "https://www.kaggle.com/api/v1",
			CacheDir:    "data/cache",
			HTTPTimeout: 2 * time.Minute,
		},
		Dashboard: DashboardConfig{
			PlatformTopN:      15,
			PublisherTopN:     10,
			PeakYears:         3,
			MarketShareTopN:   7,
			TopGames:          20,
			PublisherPlatform: 10,
			RegionTopDefault:  10,
			MaxCompareItems:   3,
			MaxPageSize:       500,
		},
		Session: SessionConfig{
			TTL:             2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			WriteWait:       10 * time.Second,
			MaxMessageSize:  65536,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "vgsales-dashboard",
			MetricsEnabled: true,
		},
	}
}
