package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Loader builds a Model from a file on disk or the embedded sample
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new dataset loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the dataset at path. An empty path loads the embedded sample.
func (l *Loader) Load(ctx context.Context, path string) (*Model, error) {
	start := time.Now()
	if path == "" {
		m, err := Sample()
		if err != nil {
			return nil, err
		}
		l.logLoaded(ctx, "embedded:sadc", m, start)
		return m, nil
	}

	var (
		m   *Model
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}
		m, err = ParseYAML(data)
	case ".xlsx":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset %s: %w", path, err)
		}
		defer f.Close()
		m, err = ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "dataset load failed", "path", path, "error", err)
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	l.logLoaded(ctx, path, m, start)
	return m, nil
}

func (l *Loader) logLoaded(ctx context.Context, source string, m *Model, start time.Time) {
	s := m.Summary()
	l.logger.InfoContext(ctx, "dataset loaded",
		"source", source,
		"countries", len(s.Countries),
		"metrics", s.Metrics,
		"facilities", s.Facilities,
		"trade_flows", s.TradeFlows,
		"opportunities", s.Opportunities,
		"prices", s.Prices,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
