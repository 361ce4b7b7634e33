package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinvest/internal/shared/testutil"
)

func TestFileValidator_ValidateDatasetFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
		check         string
	}{
		{
			name: "yaml dataset",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sadc.yaml")
				require.NoError(t, os.WriteFile(file, []byte("countries: []"), 0644))
				return file
			},
		},
		{
			name: "upper case xlsx extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "SADC.XLSX")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr:       true,
			errorContains: "does not exist",
			check:         "exists",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "data.yaml")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:       true,
			errorContains: "is a directory",
			check:         "regular_file",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sadc.csv")
				require.NoError(t, os.WriteFile(file, []byte("a,b"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "not a dataset",
			check:         "extension",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$sadc.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
			check:         "lock_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)

			err := validator.ValidateDatasetFile(tt.setupFunc(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.True(t, handler.ContainsAttr("check", tt.check))
			} else {
				assert.NoError(t, err)
				assert.False(t, handler.ContainsMessage("File check failed"))
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	validator := NewFileValidator(logger)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports", "2024")
		require.NoError(t, validator.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		err := validator.ValidateOutputDirectory(file)
		assert.Error(t, err)
		assert.True(t, handler.ContainsAttr("check", "output_directory"))
	})
}
