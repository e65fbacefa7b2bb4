// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConnectivity indicates the record store could not be reached (network, timeout, refused).
	ErrConnectivity = errors.New("record store unreachable")

	// ErrPermission indicates the store rejected the call (grants/rules).
	ErrPermission = errors.New("permission denied by record store")

	// ErrMissingCollection indicates the backing table does not exist (schema not migrated).
	ErrMissingCollection = errors.New("record store collection missing")

	// ErrValidation indicates caller-supplied input was rejected.
	ErrValidation = errors.New("validation")

	// ErrVersionConflict indicates the case changed owner since the caller last read it.
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated role lacks the capability.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates too many failed session attempts from one client.
	ErrRateLimited = errors.New("too many attempts")
)

// Validationf builds an ErrValidation-wrapped error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StoreUnavailable reports whether err means the live store cannot serve reads at all,
// which is the condition for switching to bundled fixtures.
func StoreUnavailable(err error) bool {
	return errors.Is(err, ErrConnectivity) || errors.Is(err, ErrMissingCollection)
}

// DataQualityWarning is a non-fatal finding about a record, logged rather than returned.
type DataQualityWarning struct {
	CaseID string
	Issue  string
}

func (w *DataQualityWarning) Error() string {
	return fmt.Sprintf("data quality: case %s: %s", w.CaseID, w.Issue)
}
