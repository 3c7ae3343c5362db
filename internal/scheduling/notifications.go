package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nutricare-server/internal/models"
)

// Notification kinds, used by the client to pick an icon.
const (
	NotificationSuccess  = "success"
	NotificationCanceled = "canceled"
)

// Notification is a message shown to a patient about one of their appointments.
type Notification struct {
	AppointmentID   string                   `json:"appointmentId"`
	NutricionistaID string                   `json:"nutriId"`
	Status          models.AppointmentStatus `json:"status"`
	Type            string                   `json:"type"`
	Message         string                   `json:"message"`
	RejectionType   *models.RejectionReason  `json:"rejectionType,omitempty"`
	ActionURL       string                   `json:"actionUrl,omitempty"`
	At              time.Time                `json:"at"`
}

// Notifications derives the notifications of the acting patient from the
// current state of their appointments, newest first. When since is not zero only
// appointments changed after it are reported.
func (s *Service) Notifications(ctx context.Context, actor Actor, since time.Time) ([]Notification, error) {
	if !actor.IsPatient() {
		return nil, ErrForbidden
	}
	list, err := s.store.Appointments().ListByPatient(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr("list patient appointments", err)
	}

	out := make([]Notification, 0, len(list))
	for i := range list {
		a := &list[i]
		if !since.IsZero() && !a.UpdatedAt.After(since) {
			continue
		}
		if n, ok := s.notificationFor(a); ok {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}

func (s *Service) notificationFor(a *models.Appointment) (Notification, bool) {
	n := Notification{
		AppointmentID:   a.ID,
		NutricionistaID: a.NutricionistaID,
		Status:          a.Status,
		RejectionType:   a.RejectionReason,
		At:              a.UpdatedAt,
	}
	if a.ConfirmedAt != nil {
		n.At = *a.ConfirmedAt
	}
	when := a.ScheduledAt.In(s.loc)
	day, clock := when.Format("02/01/2006"), when.Format(clockLayout)

	switch a.Status {
	case models.StatusConfirmed:
		n.Type = NotificationSuccess
		n.Message = fmt.Sprintf("Your appointment on %s at %s has been confirmed.", day, clock)
	case models.StatusRejected:
		n.Type = NotificationCanceled
		if a.RejectionReason != nil && *a.RejectionReason == models.RejectionReschedule {
			n.Message = fmt.Sprintf("Your appointment request for %s at %s could not be accepted. %s", day, clock, DefaultRescheduleMessage)
			n.ActionURL = s.BookingLink(a.NutricionistaID)
		} else {
			n.Message = fmt.Sprintf("Your appointment on %s at %s has been cancelled by the nutritionist. Reason: %s", day, clock, a.RejectionMessage)
		}
	case models.StatusCancelled:
		if a.CancelledBy == nil || *a.CancelledBy != models.CancelledByNutricionista {
			return Notification{}, false
		}
		if a.CancelledAt != nil {
			n.At = *a.CancelledAt
		}
		n.Type = NotificationCanceled
		n.Message = fmt.Sprintf("Your appointment on %s at %s has been cancelled by the nutritionist.", day, clock)
		if a.RejectionMessage != "" {
			n.Message += " Reason: " + a.RejectionMessage
		}
	default:
		return Notification{}, false
	}
	return n, true
}
