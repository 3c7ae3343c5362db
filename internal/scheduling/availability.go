package scheduling

import (
	"context"
	"errors"
	"strings"

	"nutricare-server/internal/models"
)

// Messages returned alongside an availability answer.
const (
	MsgAgendaNotConfigured = "agenda not configured"
	MsgDateNotAvailable    = "date not available"
	MsgNoSlotsLeft         = "no more slots available for this day"
)

// Availability is the answer of the availability resolver. Success is false when
// the nutritionist cannot be booked on that date at all.
type Availability struct {
	Success      bool
	Slots        []string
	SlotDuration int
	Message      string
}

// Availability lists the free slots of a nutritionist on date (YYYY-MM-DD).
// Booked slots are removed and, when date is today, so are the slots that are
// not strictly after the current clock time.
func (s *Service) Availability(ctx context.Context, nutricionistaID, date string) (*Availability, error) {
	if strings.TrimSpace(nutricionistaID) == "" {
		return nil, invalid("nutritionist id is required")
	}
	dayStart, dayEnd, err := s.DayBounds(date)
	if err != nil {
		return nil, err
	}

	agenda, err := s.store.Agendas().Get(ctx, nutricionistaID)
	if errors.Is(err, ErrAgendaNotFound) {
		return &Availability{Slots: []string{}, Message: MsgAgendaNotConfigured}, nil
	}
	if err != nil {
		return nil, storeErr("load agenda", err)
	}
	if !agenda.HasDay(date) {
		return &Availability{Slots: []string{}, SlotDuration: agenda.SlotDuration, Message: MsgDateNotAvailable}, nil
	}

	appointments, err := s.store.Appointments().ListByNutricionista(ctx, nutricionistaID, dayStart, dayEnd)
	if err != nil {
		return nil, storeErr("list appointments", err)
	}
	booked := s.bookedClocks(appointments)

	now := s.Now()
	isToday := now.Format(dateLayout) == date
	nowMinutes := now.Hour()*60 + now.Minute()

	free := []string{}
	for _, slot := range GenerateSlots(agenda.StartTime, agenda.EndTime, agenda.SlotDuration) {
		if booked[slot] {
			continue
		}
		if isToday {
			if m, _ := ParseClock(slot); m <= nowMinutes {
				continue
			}
		}
		free = append(free, slot)
	}

	result := &Availability{Success: true, Slots: free, SlotDuration: agenda.SlotDuration}
	if len(free) == 0 {
		result.Message = MsgNoSlotsLeft
	}
	return result, nil
}

// AgendaFor returns the agenda of a nutritionist.
func (s *Service) AgendaFor(ctx context.Context, nutricionistaID string) (*models.NutriAgenda, error) {
	agenda, err := s.store.Agendas().Get(ctx, nutricionistaID)
	if err != nil {
		return nil, storeErr("load agenda", err)
	}
	return agenda, nil
}

func (s *Service) bookedClocks(appointments []models.Appointment) map[string]bool {
	booked := make(map[string]bool, len(appointments))
	for i := range appointments {
		if !appointments[i].HoldsSlot() {
			continue
		}
		booked[appointments[i].ScheduledAt.In(s.loc).Format(clockLayout)] = true
	}
	return booked
}
