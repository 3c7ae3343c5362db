package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricare-server/internal/models"
)

func consultationFor(appointmentID string) ConsultationInput {
	return ConsultationInput{
		AppointmentID:   appointmentID,
		PatientID:       patientID,
		Weight:          72.5,
		Height:          170,
		SubjectiveNotes: "Reports better sleep",
		ObjectiveNotes:  "Weight down 1kg",
		AssessmentNotes: "Good adherence",
		PlanNotes:       "Keep plan, add snack",
	}
}

func TestBMI(t *testing.T) {
	assert.Equal(t, 25.1, BMI(72.5, 170))
	assert.Equal(t, 22.9, BMI(70, 175))
	assert.Zero(t, BMI(0, 170))
	assert.Zero(t, BMI(70, 0))
}

func TestRecordConsultation_RealizesConfirmed(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-10", "08:00"), Status: models.StatusConfirmed})

	c, err := svc.RecordConsultation(context.Background(), nutriActor, consultationFor(a.ID))
	require.NoError(t, err)
	assert.Equal(t, 25.1, c.BMI)
	assert.Equal(t, a.ScheduledAt, c.ConsultationDate)
	assert.Equal(t, models.StatusRealized, store.get(a.ID).Status)

	_, err = svc.RecordConsultation(context.Background(), nutriActor, consultationFor(a.ID))
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Len(t, store.consultations, 1)
}

func TestRecordConsultation_AcceptsSweptAppointment(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-09", "08:00"), Status: models.StatusRealized})

	_, err := svc.RecordConsultation(context.Background(), nutriActor, consultationFor(a.ID))
	require.NoError(t, err)

	stored := store.get(a.ID)
	assert.Equal(t, models.StatusRealized, stored.Status)
	require.NotNil(t, stored.PatientID)
	assert.Equal(t, patientID, *stored.PatientID)
}

func TestRecordConsultation_Eligibility(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	pending := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "08:00"), Status: models.StatusPending})
	foreign := store.seed(models.Appointment{NutricionistaID: "nutri-2", ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusConfirmed})
	otherPatient := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr("patient-2"), ScheduledAt: at("2026-03-11", "10:00"), Status: models.StatusConfirmed})

	_, err := svc.RecordConsultation(context.Background(), nutriActor, consultationFor(pending.ID))
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = svc.RecordConsultation(context.Background(), nutriActor, consultationFor(foreign.ID))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RecordConsultation(context.Background(), nutriActor, consultationFor(otherPatient.ID))
	assert.ErrorIs(t, err, ErrValidation)

	bad := consultationFor(pending.ID)
	bad.PlanNotes = " "
	_, err = svc.RecordConsultation(context.Background(), nutriActor, bad)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, store.consultations)
}
