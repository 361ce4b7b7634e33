package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "AGRO"

// ConfigFileEnv names an explicit config file, bypassing the search locations
const ConfigFileEnv = "AGRO_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	// MaxBodyBytes caps API request bodies
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DatasetConfig selects the dataset loaded at startup
type DatasetConfig struct {
	// Path is a .yaml, .yml or .xlsx file. Empty loads the embedded sample.
	Path string `yaml:"path" envconfig:"PATH"`
}

// AnalysisConfig holds the policy defaults of the scoring engine
type AnalysisConfig struct {
	TrendYears         int     `yaml:"trend_years" envconfig:"TREND_YEARS"`
	GapHighThreshold   float64 `yaml:"gap_high_threshold" envconfig:"GAP_HIGH_THRESHOLD"`
	GapMediumThreshold float64 `yaml:"gap_medium_threshold" envconfig:"GAP_MEDIUM_THRESHOLD"`
	// DefaultCostRatio applies when a ROI request omits annual_cost_ratio
	DefaultCostRatio float64        `yaml:"default_cost_ratio" envconfig:"DEFAULT_COST_RATIO"`
	Capacity         CapacityConfig `yaml:"capacity" envconfig:"CAPACITY"`
	BatchConcurrency int            `yaml:"batch_concurrency" envconfig:"BATCH_CONCURRENCY"`
	MaxBatchSize     int            `yaml:"max_batch_size" envconfig:"MAX_BATCH_SIZE"`
}

// CapacityConfig holds the plant defaults of the capacity ROI model
type CapacityConfig struct {
	CapacityT        float64 `yaml:"capacity_t" envconfig:"CAPACITY_T"`
	UtilizationPct   float64 `yaml:"utilization_pct" envconfig:"UTILIZATION_PCT"`
	MarginUSDPerT    float64 `yaml:"margin_usd_per_t" envconfig:"MARGIN_USD_PER_T"`
	OperatingCostPct float64 `yaml:"operating_cost_pct" envconfig:"OPERATING_COST_PCT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, the first config file found
// and AGRO_* environment variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return errors.New("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return errors.New("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return errors.New("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return errors.New("rate limit rps and burst must be positive")
	}

	// Logs are always JSON
	c.Logging.Format = "json"

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return c.Analysis.validate()
}

func (a AnalysisConfig) validate() error {
	if a.TrendYears < 2 {
		return fmt.Errorf("analysis trend years must be at least 2: %d", a.TrendYears)
	}

	if a.GapMediumThreshold <= 0 || a.GapMediumThreshold > a.GapHighThreshold || a.GapHighThreshold > 1 {
		return fmt.Errorf("gap thresholds must satisfy 0 < medium <= high <= 1: medium=%v high=%v",
			a.GapMediumThreshold, a.GapHighThreshold)
	}

	if a.DefaultCostRatio < 0 || a.DefaultCostRatio >= 1 {
		return fmt.Errorf("default cost ratio must be within [0,1): %v", a.DefaultCostRatio)
	}

	if a.BatchConcurrency <= 0 {
		return fmt.Errorf("batch concurrency must be positive: %d", a.BatchConcurrency)
	}

	if a.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive: %d", a.MaxBatchSize)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "console",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Analysis: AnalysisConfig{
			TrendYears:         5,
			GapHighThreshold:   0.50,
			GapMediumThreshold: 0.20,
			DefaultCostRatio:   0.65,
			Capacity: CapacityConfig{
				CapacityT:        50_000,
				UtilizationPct:   70,
				MarginUSDPerT:    150,
				OperatingCostPct: 65,
			},
			BatchConcurrency: 4,
			MaxBatchSize:     200,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "agroinvest",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
