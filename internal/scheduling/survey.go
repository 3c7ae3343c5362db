package scheduling

import (
	"context"
	"strings"

	"nutricare-server/internal/models"
)

// SurveyInput is the post-appointment survey of a patient. MealPlanRating is optional.
type SurveyInput struct {
	AppointmentID    string
	NutriRating      int
	NutriComments    string
	SystemRating     int
	SystemComments   string
	MealPlanRating   *int
	MealPlanComments string
}

func validScore(n int) bool { return n >= 1 && n <= 5 }

func (in SurveyInput) validate() error {
	if strings.TrimSpace(in.AppointmentID) == "" {
		return invalid("appointment id is required")
	}
	if !validScore(in.NutriRating) || !validScore(in.SystemRating) {
		return invalid("ratings must be between 1 and 5")
	}
	if in.MealPlanRating != nil && !validScore(*in.MealPlanRating) {
		return invalid("ratings must be between 1 and 5")
	}
	return nil
}

// SubmitSurvey stores the ratings of a past appointment and marks it rated. A
// confirmed appointment is realized in the same transaction.
func (s *Service) SubmitSurvey(ctx context.Context, actor Actor, in SurveyInput) error {
	if !actor.IsPatient() {
		return ErrForbidden
	}
	if err := in.validate(); err != nil {
		return err
	}

	now := s.now()
	err := s.store.Transaction(ctx, func(tx Store) error {
		appt, err := tx.Appointments().Lock(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if appt.PatientID == nil || *appt.PatientID != actor.UserID {
			return ErrForbidden
		}
		if appt.IsRated {
			return ErrAlreadyRated
		}
		if !appt.ScheduledAt.Before(now) {
			return ErrNotEligible
		}
		if appt.Status != models.StatusConfirmed && appt.Status != models.StatusRealized {
			return ErrNotEligible
		}

		ratings := []models.Rating{
			newRating(appt, models.RatingNutricionista, in.NutriRating, in.NutriComments),
			newRating(appt, models.RatingSystem, in.SystemRating, in.SystemComments),
		}
		if in.MealPlanRating != nil {
			ratings = append(ratings, newRating(appt, models.RatingMealPlan, *in.MealPlanRating, in.MealPlanComments))
		}
		if err := tx.Ratings().Create(ctx, ratings); err != nil {
			return err
		}

		appt.IsRated = true
		if appt.Status == models.StatusConfirmed {
			if err := Transition(appt, Event{Kind: EventRealize}, now); err != nil {
				return err
			}
		}
		return tx.Appointments().Update(ctx, appt)
	})
	if err != nil {
		return storeErr("submit survey", err)
	}
	s.log.Info().Str("appointment_id", in.AppointmentID).Msg("survey submitted")
	return nil
}

func newRating(appt *models.Appointment, target models.RatingTarget, score int, comments string) models.Rating {
	return models.Rating{
		AppointmentID:   appt.ID,
		NutricionistaID: appt.NutricionistaID,
		PatientID:       *appt.PatientID,
		Target:          target,
		Score:           score,
		Comments:        strings.TrimSpace(comments),
	}
}
