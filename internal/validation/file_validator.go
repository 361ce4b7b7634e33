package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"agroinvest/internal/infrastructure"
)

// DatasetExtensions lists the file types the dataset loader accepts
var DatasetExtensions = []string{".yaml", ".yml", ".xlsx"}

// FileValidator checks the report command's dataset and output arguments
// before any work starts. Every rejection is logged once with the check
// that failed.
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: infrastructure.WithComponent(logger, "file_validator")}
}

func (v *FileValidator) reject(check, path string, err error) error {
	infrastructure.WithError(v.logger, err).Error("File check failed",
		slog.String("check", check),
		slog.String("path", path))
	return err
}

// ValidateDatasetFile checks that path is a readable regular file with a
// dataset extension. Excel lock files left behind by an open workbook are
// rejected.
func (v *FileValidator) ValidateDatasetFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return v.reject("exists", path, fmt.Errorf("dataset %s does not exist", path))
	case err != nil:
		return v.reject("stat", path, fmt.Errorf("stat dataset %s: %w", path, err))
	case info.IsDir():
		return v.reject("regular_file", path, fmt.Errorf("dataset %s is a directory", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(DatasetExtensions, ext) {
		return v.reject("extension", path, fmt.Errorf("file %s is not a dataset (extension %q, want one of %s)",
			path, ext, strings.Join(DatasetExtensions, ", ")))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return v.reject("lock_file", path, fmt.Errorf("file %s is a temporary Excel file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return v.reject("readable", path, fmt.Errorf("dataset %s is not readable: %w", path, err))
	}
	f.Close()

	v.logger.Debug("Dataset file accepted", slog.String("path", path), slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory creates dir when missing and proves it writable
// with a marker file that is removed again.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return v.reject("output_directory", dir, fmt.Errorf("create output directory %s: %w", dir, err))
	}

	marker := filepath.Join(dir, ".write_test")
	f, err := os.Create(marker)
	if err != nil {
		return v.reject("output_writable", dir, fmt.Errorf("output directory %s is not writable: %w", dir, err))
	}
	f.Close()
	os.Remove(marker)
	return nil
}
