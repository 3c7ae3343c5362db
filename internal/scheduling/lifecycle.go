package scheduling

import (
	"strings"
	"time"

	"nutricare-server/internal/models"
)

// DefaultRescheduleMessage is sent to the patient when a booking is rejected so
// that another time can be picked.
const DefaultRescheduleMessage = "Time slot unavailable. Please reschedule the appointment for another available time."

// EventKind names a lifecycle event.
type EventKind string

const (
	EventConfirm EventKind = "confirm"
	EventReject  EventKind = "reject"
	EventCancel  EventKind = "cancel"
	EventRealize EventKind = "realize"
)

// Event is applied to an appointment by Transition.
type Event struct {
	Kind EventKind
	// Reason and Message are read for EventReject.
	Reason  models.RejectionReason
	Message string
	// By is read for EventCancel. Message, when set, is kept as the cancellation note.
	By models.CancelledBy
}

// Transition applies ev to a and is the only place where an appointment status
// changes. On error a is left untouched.
//
//	pending   --confirm--> confirmed
//	pending   --reject---> rejected
//	pending   --cancel---> cancelled
//	confirmed --cancel---> cancelled
//	confirmed --realize--> realized
func Transition(a *models.Appointment, ev Event, now time.Time) error {
	switch ev.Kind {
	case EventConfirm:
		if a.Status != models.StatusPending {
			return ErrInvalidTransition
		}
		a.Status = models.StatusConfirmed
		a.RejectionReason = nil
		a.RejectionMessage = ""
		a.ConfirmedAt = &now

	case EventReject:
		var msg string
		switch ev.Reason {
		case models.RejectionReschedule:
			msg = DefaultRescheduleMessage
		case models.RejectionCancellation:
			msg = strings.TrimSpace(ev.Message)
			if msg == "" {
				return invalid("a justification message is required to cancel the appointment")
			}
		default:
			return invalid("rejection type must be reschedule or cancellation")
		}
		if a.Status != models.StatusPending {
			return ErrInvalidTransition
		}
		reason := ev.Reason
		a.Status = models.StatusRejected
		a.RejectionReason = &reason
		a.RejectionMessage = msg
		a.ConfirmedAt = &now
		a.SlotKey = nil

	case EventCancel:
		if ev.By != models.CancelledByPatient && ev.By != models.CancelledByNutricionista {
			return invalid("cancellation must name who cancelled")
		}
		if a.Status != models.StatusPending && a.Status != models.StatusConfirmed {
			return ErrInvalidTransition
		}
		by := ev.By
		a.Status = models.StatusCancelled
		a.CancelledBy = &by
		a.CancelledAt = &now
		a.SlotKey = nil
		if msg := strings.TrimSpace(ev.Message); msg != "" {
			a.RejectionMessage = msg
		}

	case EventRealize:
		if a.Status != models.StatusConfirmed {
			return ErrInvalidTransition
		}
		a.Status = models.StatusRealized

	default:
		return invalid("unknown appointment event")
	}
	return nil
}

// holdSlot sets the slot key of a freshly created appointment.
func holdSlot(a *models.Appointment) {
	key := models.SlotKeyFor(a.NutricionistaID, a.ScheduledAt)
	a.SlotKey = &key
}
