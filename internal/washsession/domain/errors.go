package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidNetwork         = errors.New("invalid_network")
	ErrInvalidID              = errors.New("invalid_session_id")
	ErrInvalidPartner         = errors.New("invalid_partner")
	ErrInvalidDriver          = errors.New("invalid_driver")
	ErrInvalidTrack           = errors.New("invalid_track")
	ErrInvalidEntryMode       = errors.New("invalid_entry_mode")
	ErrInvalidComponents      = errors.New("invalid_components")
	ErrInvalidPlateNumber     = errors.New("invalid_plate_number")
	ErrInvalidReason          = errors.New("invalid_rejection_reason")
	ErrCurrencyMismatch       = errors.New("currency_mismatch")
	ErrNotFound               = errors.New("session_not_found")
	ErrInvalidTransition      = errors.New("invalid_transition")
	ErrConcurrentModification = errors.New("concurrent_modification")
)

// TransitionError reports an operation invoked from a state outside its
// valid source set. It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	Status    Status
	Operation string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: session in state %s cannot %s", e.Status, e.Operation)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
