package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// RecordInvalidError identifies the record that failed domain validation.
// It is always returned marked with ErrValidation.
type RecordInvalidError struct {
	RecordType string
	RecordID   string
	Field      string
	Message    string
}

func (e *RecordInvalidError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("invalid %s: %s %s", e.RecordType, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s %s: %s %s", e.RecordType, e.RecordID, e.Field, e.Message)
}

// NewRecordInvalid builds a validation failure referencing the offending record
func NewRecordInvalid(recordType, recordID, field, message string) error {
	return WithError(&RecordInvalidError{
		RecordType: recordType,
		RecordID:   recordID,
		Field:      field,
		Message:    message,
	}).
		WithHintf("%s %s is invalid", recordType, field).
		WithReportableDetails(map[string]any{
			"record_type": recordType,
			"record_id":   recordID,
			"field":       field,
		}).
		Mark(ErrValidation)
}

// InvalidRecord extracts the invalid record reference from err, if any
func InvalidRecord(err error) (*RecordInvalidError, bool) {
	var rec *RecordInvalidError
	if errors.As(err, &rec) {
		return rec, true
	}
	return nil, false
}

// NewDelegateFailure wraps an error reported by a fee or credit collaborator
func NewDelegateFailure(err error, delegate string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["delegate"] = delegate
	return WithError(err).
		WithMessagef("%s failed", delegate).
		WithHintf("%s could not complete", delegate).
		WithReportableDetails(details).
		Mark(ErrDelegate)
}
