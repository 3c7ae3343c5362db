package scheduling

import (
	"context"
	"strings"

	"nutricare-server/internal/models"
)

// serviceCatalog lists the services that can be booked from the public page.
var serviceCatalog = map[string]bool{
	models.ServiceFirstVisit: true,
	models.ServiceFollowUp:   true,
	models.ServiceOnline:     true,
}

// BookingRequest is a pre-booking made from the public booking page.
type BookingRequest struct {
	NutricionistaID string
	ServiceName     string
	ServiceDuration int
	Date            string
	Time            string
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	// PatientID is set when the booking is made by a logged-in patient.
	PatientID string
}

func (r BookingRequest) validate() error {
	switch {
	case strings.TrimSpace(r.NutricionistaID) == "":
		return invalid("nutritionist id is required")
	case !serviceCatalog[r.ServiceName]:
		return invalid("unknown service")
	case r.ServiceDuration <= 0:
		return invalid("service duration must be positive")
	case strings.TrimSpace(r.PatientName) == "",
		strings.TrimSpace(r.PatientEmail) == "",
		strings.TrimSpace(r.PatientPhone) == "":
		return invalid("name, email and phone are required")
	}
	return nil
}

// Book creates a pending appointment in a free agenda slot.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	at, err := CombineDateTime(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, ErrPastTimestamp
	}

	agenda, err := s.store.Agendas().Get(ctx, req.NutricionistaID)
	if err != nil {
		return nil, storeErr("load agenda", err)
	}
	if !agenda.HasDay(req.Date) {
		return nil, invalid("the selected date is not available")
	}
	if !containsSlot(GenerateSlots(agenda.StartTime, agenda.EndTime, agenda.SlotDuration), req.Time) {
		return nil, invalid("the selected time is not one of the agenda slots")
	}
	startMin, _ := ParseClock(req.Time)
	endMin, _ := ParseClock(agenda.EndTime)
	if startMin+req.ServiceDuration > endMin {
		return nil, invalid("the selected service does not fit before the end of the agenda")
	}

	appt := &models.Appointment{
		NutricionistaID: req.NutricionistaID,
		PatientName:     strings.TrimSpace(req.PatientName),
		PatientEmail:    strings.TrimSpace(req.PatientEmail),
		PatientPhone:    strings.TrimSpace(req.PatientPhone),
		ServiceType:     req.ServiceName,
		DurationMinutes: req.ServiceDuration,
		ScheduledAt:     at,
		Status:          models.StatusPending,
	}
	if req.PatientID != "" {
		id := req.PatientID
		appt.PatientID = &id
	}
	if err := s.insert(ctx, appt); err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment_id", appt.ID).Str("nutri_id", appt.NutricionistaID).
		Time("scheduled_at", at).Msg("appointment booked")
	return appt, nil
}

// ScheduleReturn books a confirmed return visit for a patient of the acting
// nutritionist. The agenda grid does not apply to return visits.
func (s *Service) ScheduleReturn(ctx context.Context, actor Actor, patientID, date, clock string) (*models.Appointment, error) {
	if !actor.IsNutricionista() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(patientID) == "" {
		return nil, invalid("patient id is required")
	}
	at, err := CombineDateTime(date, clock, s.loc)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, ErrPastTimestamp
	}

	patient, err := s.store.Patients().Get(ctx, patientID)
	if err != nil {
		return nil, storeErr("load patient", err)
	}
	if patient.NutricionistaID != actor.UserID {
		return nil, ErrPatientNotFound
	}

	now := s.now()
	pid := patient.ID
	appt := &models.Appointment{
		NutricionistaID: actor.UserID,
		PatientID:       &pid,
		PatientName:     patient.Name,
		PatientEmail:    patient.Email,
		PatientPhone:    patient.Phone,
		ServiceType:     models.ServiceReturnVisit,
		DurationMinutes: models.ReturnVisitDuration,
		ScheduledAt:     at,
		Status:          models.StatusConfirmed,
		ConfirmedAt:     &now,
	}
	if err := s.insert(ctx, appt); err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment_id", appt.ID).Str("patient_id", pid).Msg("return visit scheduled")
	return appt, nil
}

// insert checks the slot and stores the appointment. The unique slot key still
// catches a concurrent booking that passed the check.
func (s *Service) insert(ctx context.Context, appt *models.Appointment) error {
	taken, err := s.store.Appointments().SlotTaken(ctx, appt.NutricionistaID, appt.ScheduledAt)
	if err != nil {
		return storeErr("check slot", err)
	}
	if taken {
		return ErrSlotTaken
	}
	holdSlot(appt)
	if err := s.store.Appointments().Create(ctx, appt); err != nil {
		appt.SlotKey = nil
		return storeErr("create appointment", err)
	}
	return nil
}

func containsSlot(slots []string, clock string) bool {
	want, ok := ParseClock(clock)
	if !ok {
		return false
	}
	for _, s := range slots {
		if m, _ := ParseClock(s); m == want {
			return true
		}
	}
	return false
}
