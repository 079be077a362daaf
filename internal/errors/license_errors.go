package errors

import (
	"errors"
)

// Identity and license errors. Components wrap these with fmt.Errorf("...: %w")
// at the point of failure and swallow them at their own boundary; callers of
// the verifier only ever see them through Result.Err.
var (
	ErrSignalUnavailable      = errors.New("hardware signal unavailable")
	ErrMalformedIdentifier    = errors.New("malformed machine identifier")
	ErrPersistenceWriteFailed = errors.New("persistence write failed")
	ErrRegistryUnreachable    = errors.New("registry unreachable")
	ErrLicenseExpired         = errors.New("license expired")
	ErrLicenseNotFound        = errors.New("license not found")
	ErrInvalidLicenseKey      = errors.New("invalid license key")
)

// IsRetryable reports whether a later attempt could succeed without operator
// action. Only an unreachable registry qualifies.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRegistryUnreachable)
}

// IsUserActionRequired reports whether the error asks the user to contact the
// seller, either to register or to renew.
func IsUserActionRequired(err error) bool {
	return errors.Is(err, ErrLicenseNotFound) || errors.Is(err, ErrLicenseExpired)
}
