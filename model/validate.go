package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ValidationError reports a record or change-set that violates its declared
// schema. It is always raised before any query is issued, so a validation
// failure never causes a partial write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field %q: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRecord checks a record against its validate tags and enforces the
// caller-assigned identifier rule.
func validateRecord(rec Record) error {
	if rec.PrimaryID() == uuid.Nil {
		return &ValidationError{Field: IDColumn, Reason: "identifier must be assigned before the record is written"}
	}

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return &ValidationError{Field: f.Field(), Reason: fmt.Sprintf("failed %q constraint", f.Tag())}
		}
		return &ValidationError{Field: "", Reason: err.Error()}
	}

	return nil
}
