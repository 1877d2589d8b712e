package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidRefreshToken reports that the identity domain rejected a
// refresh-token grant. The stored pair must be left untouched and the
// account flagged for out-of-band re-authentication.
var ErrInvalidRefreshToken = errors.New("refresh token rejected by identity provider")

// MissingFieldError reports that a required form field was absent from (or
// duplicated in) scraped HTML. It means the platform's page layout no longer
// matches assumptions, or an error/interstitial page came back instead of
// the expected one. The run is aborted; retrying against an unexpected page
// is not useful without operator attention.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("form field %q not found exactly once in document", e.Field)
}

// ScopeMismatchError reports that a completed run does not correspond to the
// scope it was requested for. A session with the wrong scope must never be
// stored.
type ScopeMismatchError struct {
	Requested uuid.UUID
	Achieved  uuid.UUID
}

func (e ScopeMismatchError) Error() string {
	return fmt.Sprintf("authenticated scope %s does not match requested scope %s", e.Achieved, e.Requested)
}

// IsPermanent reports whether err is one of the failure kinds that retrying
// the run from the start cannot fix: unexpected page layout, wrong scope, or
// a rejected refresh token. Everything else (timeouts, connection failures,
// unexpected HTTP statuses) is treated as transient.
func IsPermanent(err error) bool {
	var missing MissingFieldError
	var mismatch ScopeMismatchError
	return errors.As(err, &missing) ||
		errors.As(err, &mismatch) ||
		errors.Is(err, ErrInvalidRefreshToken)
}
