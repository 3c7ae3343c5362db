package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricare-server/internal/models"
)

func surveyFor(appointmentID string) SurveyInput {
	return SurveyInput{
		AppointmentID: appointmentID,
		NutriRating:   5,
		NutriComments: "Great",
		SystemRating:  4,
	}
}

func TestSubmitSurvey_RealizesAndMarksRated(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-10", "08:00"), Status: models.StatusConfirmed})

	in := surveyFor(a.ID)
	mp := 3
	in.MealPlanRating = &mp
	require.NoError(t, svc.SubmitSurvey(context.Background(), patientActor, in))

	stored := store.get(a.ID)
	assert.True(t, stored.IsRated)
	assert.Equal(t, models.StatusRealized, stored.Status)
	require.Len(t, store.ratings, 3)
	assert.Equal(t, models.RatingNutricionista, store.ratings[0].Target)
	assert.Equal(t, models.RatingMealPlan, store.ratings[2].Target)

	err := svc.SubmitSurvey(context.Background(), patientActor, surveyFor(a.ID))
	assert.ErrorIs(t, err, ErrAlreadyRated)
	assert.Len(t, store.ratings, 3)
}

func TestSubmitSurvey_Eligibility(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	future := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-11", "08:00"), Status: models.StatusConfirmed})
	rejected := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-09", "08:00"), Status: models.StatusRejected})
	foreign := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr("patient-2"), ScheduledAt: at("2026-03-09", "09:00"), Status: models.StatusRealized})

	assert.ErrorIs(t, svc.SubmitSurvey(context.Background(), patientActor, surveyFor(future.ID)), ErrNotEligible)
	assert.ErrorIs(t, svc.SubmitSurvey(context.Background(), patientActor, surveyFor(rejected.ID)), ErrNotEligible)
	assert.ErrorIs(t, svc.SubmitSurvey(context.Background(), patientActor, surveyFor(foreign.ID)), ErrForbidden)

	bad := surveyFor(future.ID)
	bad.SystemRating = 6
	assert.ErrorIs(t, svc.SubmitSurvey(context.Background(), patientActor, bad), ErrValidation)

	assert.Empty(t, store.ratings)
}
