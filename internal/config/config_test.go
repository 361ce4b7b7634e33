package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadFile tests layering of defaults, file and environment
func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Empty(t, cfg.Dataset.Path)

				assert.Equal(t, 5, cfg.Analysis.TrendYears)
				assert.Equal(t, 0.50, cfg.Analysis.GapHighThreshold)
				assert.Equal(t, 0.20, cfg.Analysis.GapMediumThreshold)
				assert.Equal(t, 0.65, cfg.Analysis.DefaultCostRatio)
				assert.Equal(t, 70.0, cfg.Analysis.Capacity.UtilizationPct)
				assert.Equal(t, 4, cfg.Analysis.BatchConcurrency)

				assert.Equal(t, "agroinvest", cfg.Telemetry.ServiceName)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"AGRO_SERVER_PORT":                       "9090",
				"AGRO_SERVER_READ_TIMEOUT":               "30s",
				"AGRO_SECURITY_ALLOWED_ORIGINS":          "http://example.com,https://example.com",
				"AGRO_LOGGING_LEVEL":                     "debug",
				"AGRO_LOGGING_FORMAT":                    "text",
				"AGRO_DATASET_PATH":                      "data/sadc.xlsx",
				"AGRO_ANALYSIS_GAP_HIGH_THRESHOLD":       "0.6",
				"AGRO_ANALYSIS_CAPACITY_UTILIZATION_PCT": "80",
				"AGRO_TELEMETRY_TRACE_EXPORTER":          "stdout",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() forces json
				assert.Equal(t, "data/sadc.xlsx", cfg.Dataset.Path)
				assert.Equal(t, 0.6, cfg.Analysis.GapHighThreshold)
				assert.Equal(t, 0.20, cfg.Analysis.GapMediumThreshold)
				assert.Equal(t, 80.0, cfg.Analysis.Capacity.UtilizationPct)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "config file with environment override",
			env: map[string]string{
				"AGRO_SERVER_PORT":   "7070",
				"AGRO_LOGGING_LEVEL": "warn",
			},
			file: `
server:
  port: 6060
  read_timeout: 20s
logging:
  level: error
analysis:
  trend_years: 3
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)                   // from env
				assert.Equal(t, "warn", cfg.Logging.Level)               // from env
				assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)  // from file
				assert.Equal(t, 3, cfg.Analysis.TrendYears)              // from file
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout) // default
				assert.Equal(t, 0.50, cfg.Analysis.GapHighThreshold)     // default
			},
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"AGRO_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "zero port number",
			env:     map[string]string{"AGRO_SERVER_PORT": "0"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"AGRO_SERVER_READ_TIMEOUT": "-5s"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"AGRO_SERVER_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "inverted thresholds",
			env:     map[string]string{"AGRO_ANALYSIS_GAP_MEDIUM_THRESHOLD": "0.7"},
			wantErr: true,
		},
		{
			name:    "unknown file key",
			file:    "server:\n  prot: 9000\n",
			wantErr: true,
		},
		{
			name:    "invalid YAML syntax",
			file:    "invalid: yaml: content: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFile(path)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		_, err := LoadFile("/non/existent/file.yaml")
		assert.Error(t, err)
	})
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8181\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}

// TestValidate tests the validate function
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid port - negative",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: true,
			errMsg:  "invalid server port: -1",
		},
		{
			name:    "invalid write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr: true,
			errMsg:  "server write timeout must be positive",
		},
		{
			name:    "empty allowed origins with CORS",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: true,
			errMsg:  "at least one allowed origin must be specified",
		},
		{
			name: "empty allowed origins without CORS",
			mutate: func(c *Config) {
				c.Security.AllowedOrigins = nil
				c.Security.EnableCORS = false
			},
		},
		{
			name:    "rate limit without burst",
			mutate:  func(c *Config) { c.Security.RateLimit.Burst = 0 },
			wantErr: true,
			errMsg:  "rate limit",
		},
		{
			name:    "unknown logging output",
			mutate:  func(c *Config) { c.Logging.Output = "syslog" },
			wantErr: true,
			errMsg:  "invalid logging output",
		},
		{
			name:    "trend window too short",
			mutate:  func(c *Config) { c.Analysis.TrendYears = 1 },
			wantErr: true,
			errMsg:  "trend years",
		},
		{
			name:    "high threshold above one",
			mutate:  func(c *Config) { c.Analysis.GapHighThreshold = 1.5 },
			wantErr: true,
			errMsg:  "gap thresholds",
		},
		{
			name:    "cost ratio of one",
			mutate:  func(c *Config) { c.Analysis.DefaultCostRatio = 1 },
			wantErr: true,
			errMsg:  "default cost ratio",
		},
		{
			name:    "zero batch concurrency",
			mutate:  func(c *Config) { c.Analysis.BatchConcurrency = 0 },
			wantErr: true,
			errMsg:  "batch concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}
