package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"

	"nutricare-server/internal/models"
)

// StatusUpdate is a nutritionist decision on one appointment.
type StatusUpdate struct {
	AppointmentID    string
	Status           models.AppointmentStatus
	RejectionReason  models.RejectionReason
	RejectionMessage string
}

// UpdateStatus confirms, rejects or cancels an appointment of the acting
// nutritionist. Confirmation does not re-check the slot: the slot key has been
// held since booking.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, upd StatusUpdate) (*models.Appointment, error) {
	if !actor.IsNutricionista() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(upd.AppointmentID) == "" {
		return nil, invalid("appointment id is required")
	}

	var ev Event
	switch upd.Status {
	case models.StatusConfirmed:
		ev = Event{Kind: EventConfirm}
	case models.StatusRejected:
		ev = Event{Kind: EventReject, Reason: upd.RejectionReason, Message: upd.RejectionMessage}
	case models.StatusCancelled:
		ev = Event{Kind: EventCancel, By: models.CancelledByNutricionista, Message: upd.RejectionMessage}
	default:
		return nil, invalid("status must be confirmed, rejected or cancelled")
	}

	var appt *models.Appointment
	err := s.store.Transaction(ctx, func(tx Store) error {
		locked, err := tx.Appointments().Lock(ctx, upd.AppointmentID)
		if err != nil {
			return err
		}
		if locked.NutricionistaID != actor.UserID {
			return ErrForbidden
		}
		if err := Transition(locked, ev, s.now()); err != nil {
			return err
		}
		appt = locked
		return tx.Appointments().Update(ctx, locked)
	})
	if err != nil {
		return nil, storeErr("update appointment status", err)
	}
	s.log.Info().Str("appointment_id", appt.ID).Str("status", string(appt.Status)).Msg("appointment status updated")
	return appt, nil
}

// CancelByPatient cancels an appointment of the acting patient. Under the delete
// policy a pending appointment is removed, otherwise it is kept as cancelled.
// The returned bool reports whether the row was deleted.
func (s *Service) CancelByPatient(ctx context.Context, actor Actor, appointmentID string) (*models.Appointment, bool, error) {
	if !actor.IsPatient() {
		return nil, false, ErrForbidden
	}

	var (
		appt    *models.Appointment
		deleted bool
	)
	err := s.store.Transaction(ctx, func(tx Store) error {
		locked, err := tx.Appointments().Lock(ctx, appointmentID)
		if err != nil {
			return err
		}
		if locked.PatientID == nil || *locked.PatientID != actor.UserID {
			return ErrForbidden
		}
		appt = locked
		if locked.Status == models.StatusPending && s.policy == CancelDelete {
			deleted = true
			return tx.Appointments().Delete(ctx, locked.ID)
		}
		if err := Transition(locked, Event{Kind: EventCancel, By: models.CancelledByPatient}, s.now()); err != nil {
			return err
		}
		return tx.Appointments().Update(ctx, locked)
	})
	if err != nil {
		return nil, false, storeErr("cancel appointment", err)
	}
	if deleted {
		s.log.Info().Str("appointment_id", appt.ID).Msg("pending appointment deleted by patient")
	} else {
		s.log.Info().Str("appointment_id", appt.ID).Msg("appointment cancelled by patient")
	}
	return appt, deleted, nil
}

// RealizeElapsed marks confirmed appointments whose time has passed as realized.
// An empty patientID sweeps every patient. Each candidate is locked and checked
// again before it is written, so rows changed since the listing are skipped.
// Running it again is a no-op.
func (s *Service) RealizeElapsed(ctx context.Context, patientID string) (int, error) {
	now := s.now()
	elapsed, err := s.store.Appointments().ListConfirmedBefore(ctx, now, patientID)
	if err != nil {
		return 0, storeErr("list elapsed appointments", err)
	}
	realized := 0
	for _, candidate := range elapsed {
		changed := false
		err := s.store.Transaction(ctx, func(tx Store) error {
			appt, err := tx.Appointments().Lock(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if appt.Status != models.StatusConfirmed || !appt.ScheduledAt.Before(now) {
				return nil
			}
			if err := Transition(appt, Event{Kind: EventRealize}, now); err != nil {
				return err
			}
			changed = true
			return tx.Appointments().Update(ctx, appt)
		})
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			continue
		case err != nil:
			return realized, storeErr("realize appointment", err)
		}
		if changed {
			realized++
		}
	}
	return realized, nil
}

// NutricionistaContact returns the profile of a nutritionist.
func (s *Service) NutricionistaContact(ctx context.Context, id string) (*models.Nutricionista, error) {
	n, err := s.store.Nutricionistas().Get(ctx, id)
	if err != nil {
		return nil, storeErr("load nutritionist", err)
	}
	return n, nil
}

// PendingFor lists the pending appointments of the acting nutritionist, earliest first.
func (s *Service) PendingFor(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	if !actor.IsNutricionista() {
		return nil, ErrForbidden
	}
	list, err := s.store.Appointments().ListByNutricionistaStatus(ctx, actor.UserID, models.StatusPending)
	if err != nil {
		return nil, storeErr("list pending appointments", err)
	}
	sortByTime(list, false)
	return list, nil
}

// DayFor lists the confirmed appointments of the acting nutritionist on date.
func (s *Service) DayFor(ctx context.Context, actor Actor, date string) ([]models.Appointment, error) {
	if !actor.IsNutricionista() {
		return nil, ErrForbidden
	}
	from, to, err := s.DayBounds(date)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Appointments().ListByNutricionista(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, storeErr("list appointments", err)
	}
	confirmed := make([]models.Appointment, 0, len(all))
	for _, a := range all {
		if a.Status == models.StatusConfirmed {
			confirmed = append(confirmed, a)
		}
	}
	sortByTime(confirmed, false)
	return confirmed, nil
}

// PatientAppointments lists the appointments of the acting patient, newest first.
// Elapsed confirmed appointments are realized before listing.
func (s *Service) PatientAppointments(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	if !actor.IsPatient() {
		return nil, ErrForbidden
	}
	if _, err := s.RealizeElapsed(ctx, actor.UserID); err != nil {
		s.log.Warn().Err(err).Str("patient_id", actor.UserID).Msg("realize sweep on read failed")
	}
	list, err := s.store.Appointments().ListByPatient(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr("list patient appointments", err)
	}
	sortByTime(list, true)
	return list, nil
}

func sortByTime(list []models.Appointment, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return list[i].ScheduledAt.After(list[j].ScheduledAt)
		}
		return list[i].ScheduledAt.Before(list[j].ScheduledAt)
	})
}
