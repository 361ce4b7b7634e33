package roi

import (
	"errors"
	"fmt"
)

// ErrInvalidAssumption matches every *InvalidAssumptionError
var ErrInvalidAssumption = errors.New("invalid assumption")

// ErrUnknownParameter is returned for an unsupported sensitivity parameter
var ErrUnknownParameter = errors.New("unknown sensitivity parameter")

// InvalidAssumptionError reports assumptions that make an ROI undefined
type InvalidAssumptionError struct {
	OpportunityID string  `json:"opportunity_id"`
	Field         string  `json:"field"`
	Reason        string  `json:"reason"`
	Value         float64 `json:"value"`
}

// Error implements the error interface
func (e *InvalidAssumptionError) Error() string {
	return fmt.Sprintf("opportunity %s: invalid assumption %s=%g: %s", e.OpportunityID, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidAssumption
func (e *InvalidAssumptionError) Unwrap() error { return ErrInvalidAssumption }

func invalid(id, field string, v float64, reason string) error {
	return &InvalidAssumptionError{OpportunityID: id, Field: field, Reason: reason, Value: v}
}
