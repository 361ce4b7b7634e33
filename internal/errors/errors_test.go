package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format"), http.StatusBadRequest, CodeInvalidRequest},
		{"dataset unavailable", New(http.StatusServiceUnavailable, CodeUnavailable, "dataset not loaded"), http.StatusServiceUnavailable, CodeUnavailable},
		{"single field", ErrValidation("opportunity_id", "opportunity_id is required"), http.StatusBadRequest, CodeValidationFailed},
		{"wrapped cause", InvalidRequestWithError(fmt.Errorf("bad json")), http.StatusBadRequest, CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.err.Message, tt.err.Error())
		})
	}
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "countries", Message: "countries is required"},
		{Field: "year_from", Message: "year_from must be at least 1900"},
	})

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, CodeValidationFailed, err.ErrorCode)

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
	assert.Equal(t, "countries", details.Errors[0].Field)

	single := ErrValidation("size_band", "size_band must be one of: small, medium, large")
	assert.Len(t, single.Details.(ValidationErrors).Errors, 1)
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusUnprocessableEntity, TypeInvalidAssumption, "Invalid Assumption", "horizon must be positive", "/api/roi").
		WithExtension("opportunity_id", "opp-zm-soy-crush").
		WithExtension("status", 999)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, TypeInvalidAssumption, got["type"])
	assert.Equal(t, "opp-zm-soy-crush", got["opportunity_id"])
	assert.EqualValues(t, http.StatusUnprocessableEntity, got["status"], "standard members win over extensions")
	assert.Equal(t, "/api/roi", got["instance"])
}

func TestProblemDetailsOmitsEmptyMembers(t *testing.T) {
	var pd ProblemDetails
	pd.WithExtension("trace_id", "abc")
	pd.Status = http.StatusNotFound

	data, err := json.Marshal(&pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
	assert.Equal(t, "abc", got["trace_id"])
}

func TestAppError(t *testing.T) {
	cause := errors.New("file missing")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{"dataset", NewDatasetError("load dataset", cause), ErrTypeDataset, "[DATASET] load dataset: file missing"},
		{"validation", NewAppValidationError("countries must not be empty"), ErrTypeValidation, "[VALIDATION] countries must not be empty"},
		{"not found", NewNotFoundError("opportunity opp-x"), ErrTypeNotFound, "[NOT_FOUND] opportunity opp-x not found"},
		{"config", NewConfigError("bad port", nil), ErrTypeConfig, "[CONFIG] bad port"},
		{"export", NewExportError("write sheet", cause), ErrTypeExport, "[EXPORT] write sheet: file missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}

	t.Run("unwrap and context", func(t *testing.T) {
		err := NewDatasetError("load dataset", cause).WithContext("path", "data.yaml")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "data.yaml", err.Context["path"])

		var appErr *AppError
		require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &appErr)
		assert.Equal(t, ErrTypeDataset, appErr.Type)
	})
}
