package guard

import (
	"errors"
	"fmt"

	fderrors "github.com/fleetdeck/fleetdeck/internal/errors"
)

// Reason identifies why the guard rejected a request.
type Reason int

const (
	ReasonAlreadyInProgress Reason = iota
	ReasonDiskShrink
	ReasonMissingField
	ReasonOutOfRange
	ReasonDeclined
)

// String returns the reason name used in messages and logs.
func (r Reason) String() string {
	switch r {
	case ReasonAlreadyInProgress:
		return "already in progress"
	case ReasonDiskShrink:
		return "disk shrink rejected"
	case ReasonMissingField:
		return "missing field"
	case ReasonOutOfRange:
		return "out of range"
	case ReasonDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// ValidationError is a guard-level rejection. It never reaches the
// network and is surfaced to the operator immediately.
type ValidationError struct {
	Reason  Reason
	Action  Action
	VMID    int
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rejected (%s): %s", e.Action, e.Reason, e.Message)
}

// Structured converts the rejection into the shared error shape for
// display surfaces that render suggestions.
func (e *ValidationError) Structured() *fderrors.Error {
	return fderrors.New(fderrors.ErrValidation, e.Message, "")
}

// ReasonOf extracts the rejection reason from an error chain.
func ReasonOf(err error) (Reason, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	return 0, false
}

// IsReason reports whether err is a guard rejection with the given reason.
func IsReason(err error, reason Reason) bool {
	r, ok := ReasonOf(err)
	return ok && r == reason
}
