package scheduling

import (
	"context"
	"sort"

	"nutricare-server/internal/models"
)

// AgendaInput is the working-hours configuration submitted by a nutritionist.
type AgendaInput struct {
	Dates        []string
	StartTime    string
	EndTime      string
	SlotDuration int
}

// SaveAgenda replaces the agenda of the acting nutritionist.
func (s *Service) SaveAgenda(ctx context.Context, actor Actor, in AgendaInput) (*models.NutriAgenda, error) {
	if !actor.IsNutricionista() {
		return nil, ErrForbidden
	}
	if len(in.Dates) == 0 {
		return nil, invalid("select at least one available day")
	}
	start, ok := ParseClock(in.StartTime)
	if !ok {
		return nil, invalid("start time must use the HH:MM format")
	}
	end, ok := ParseClock(in.EndTime)
	if !ok {
		return nil, invalid("end time must use the HH:MM format")
	}
	if start >= end {
		return nil, invalid("start time must be before end time")
	}
	if in.SlotDuration <= 0 || start+in.SlotDuration > end {
		return nil, invalid("slot duration must be positive and fit between start and end time")
	}

	seen := make(map[string]bool, len(in.Dates))
	days := make([]string, 0, len(in.Dates))
	for _, d := range in.Dates {
		if _, err := ParseDate(d, s.loc); err != nil {
			return nil, invalid("dates must use the YYYY-MM-DD format")
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Strings(days)

	agenda := &models.NutriAgenda{
		NutricionistaID: actor.UserID,
		StartTime:       FormatClock(start),
		EndTime:         FormatClock(end),
		SlotDuration:    in.SlotDuration,
		AvailableDays:   days,
		UpdatedAt:       s.now(),
	}
	if err := s.store.Agendas().Save(ctx, agenda); err != nil {
		return nil, storeErr("save agenda", err)
	}
	s.log.Info().Str("nutri_id", actor.UserID).Int("days", len(days)).Msg("agenda saved")
	return agenda, nil
}
