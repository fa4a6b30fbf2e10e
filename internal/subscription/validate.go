package subscription

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

const (
	ReasonEmailRequired      = "Email is required"
	ReasonEmailTooLong       = "Email is too long"
	ReasonInvalidEmailFormat = "Invalid email format"
	ReasonDomainNotAllowed   = "Email domain is not allowed"
)

// local@domain.tld, where no part holds whitespace or a second '@'.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// ValidationError carries the reason returned to the caller as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type Validator struct {
	MaxLength      int
	AllowedDomains []string // lower-cased, empty allows every domain
}

// Validate checks emptiness, then length in UTF-16 code units, then shape.
func (v Validator) Validate(email string) error {
	if email == "" {
		return &ValidationError{Reason: ReasonEmailRequired}
	}

	if utf16Length(email) > v.MaxLength {
		return &ValidationError{Reason: ReasonEmailTooLong}
	}

	if !emailPattern.MatchString(email) {
		return &ValidationError{Reason: ReasonInvalidEmailFormat}
	}

	if len(v.AllowedDomains) > 0 && !v.domainAllowed(email) {
		return &ValidationError{Reason: ReasonDomainNotAllowed}
	}

	return nil
}

// utf16Length counts what browsers report as a string's length, so a character
// outside the BMP counts twice.
func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		if size := utf16.RuneLen(r); size > 0 {
			n += size
		} else {
			n++
		}
	}
	return n
}

func (v Validator) domainAllowed(email string) bool {
	domain := strings.ToLower(email[strings.LastIndexByte(email, '@')+1:])
	for _, allowed := range v.AllowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}
