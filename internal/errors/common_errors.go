package errors

import (
	"errors"
)

// ErrorType groups the sentinel errors for log attributes.
type ErrorType string

const (
	ErrTypeNone       ErrorType = ""
	ErrTypeHardware   ErrorType = "HARDWARE"
	ErrTypeIdentifier ErrorType = "IDENTIFIER"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeLicense    ErrorType = "LICENSE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeUnknown    ErrorType = "UNKNOWN"
)

// TypeOf returns the group of the first sentinel err wraps. A malformed
// identifier is reported as such even when it is wrapped in a not-found error.
func TypeOf(err error) ErrorType {
	switch {
	case err == nil:
		return ErrTypeNone
	case errors.Is(err, ErrMalformedIdentifier):
		return ErrTypeIdentifier
	case errors.Is(err, ErrSignalUnavailable):
		return ErrTypeHardware
	case errors.Is(err, ErrPersistenceWriteFailed):
		return ErrTypeStorage
	case errors.Is(err, ErrRegistryUnreachable):
		return ErrTypeNetwork
	case errors.Is(err, ErrLicenseExpired), errors.Is(err, ErrLicenseNotFound):
		return ErrTypeLicense
	case errors.Is(err, ErrInvalidLicenseKey):
		return ErrTypeValidation
	default:
		return ErrTypeUnknown
	}
}
