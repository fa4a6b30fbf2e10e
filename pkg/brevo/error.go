package brevo

import (
	"errors"
	"fmt"
)

// DuplicateParameterCode is returned by Brevo when the contact already exists.
const DuplicateParameterCode = "duplicate_parameter"

// APIError is returned when Brevo answers with a non-2xx status.
type APIError struct {
	Operation  string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "brevo error"
	}
	if e.Code != "" {
		return fmt.Sprintf("brevo %s failed: status %d: %s: %s", e.Operation, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("brevo %s failed: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// IsDuplicate reports whether err is a Brevo duplicate contact error.
func IsDuplicate(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == DuplicateParameterCode
}
