package scheduling

import (
	"errors"
)

// Errors returned by the scheduling service. Handlers map them to HTTP statuses.
var (
	ErrValidation          = errors.New("validation failed")
	ErrSlotTaken           = errors.New("this time slot is no longer available, please choose another one")
	ErrPastTimestamp       = errors.New("cannot book an appointment for a time that has already passed")
	ErrAlreadyRated        = errors.New("this appointment has already been rated")
	ErrForbidden           = errors.New("you are not allowed to act on this appointment")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAgendaNotFound      = errors.New("agenda not configured")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrNutriNotFound       = errors.New("nutritionist not found")
	ErrInvalidTransition   = errors.New("appointment status does not allow this operation")
	ErrNotEligible         = errors.New("appointment is not eligible for this operation")
	ErrInternal            = errors.New("internal error")
)

// ValidationError carries a message meant for the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// InternalError wraps a storage failure. Its message stays generic; the cause is
// kept for logging.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

// storeErr passes domain errors through untouched and marks anything else as internal.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, ErrAgendaNotFound),
		errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrNutriNotFound),
		errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrAlreadyRated),
		errors.Is(err, ErrPastTimestamp),
		errors.Is(err, ErrInternal):
		return err
	}
	return &InternalError{Op: op, Err: err}
}
