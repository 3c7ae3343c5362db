package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricare-server/internal/models"
)

func TestUpdateStatus_Confirm(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusPending})

	got, err := svc.UpdateStatus(context.Background(), nutriActor, StatusUpdate{AppointmentID: a.ID, Status: models.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, models.StatusConfirmed, store.get(a.ID).Status)
}

func TestUpdateStatus_RejectCancellationWithoutMessage(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusPending})

	_, err := svc.UpdateStatus(context.Background(), nutriActor, StatusUpdate{
		AppointmentID:   a.ID,
		Status:          models.StatusRejected,
		RejectionReason: models.RejectionCancellation,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.StatusPending, store.get(a.ID).Status)
}

func TestUpdateStatus_Guards(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusPending})

	other := Actor{UserID: "nutri-2", Role: models.RoleNutricionista}
	_, err := svc.UpdateStatus(context.Background(), other, StatusUpdate{AppointmentID: a.ID, Status: models.StatusConfirmed})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(context.Background(), patientActor, StatusUpdate{AppointmentID: a.ID, Status: models.StatusConfirmed})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(context.Background(), nutriActor, StatusUpdate{AppointmentID: a.ID, Status: models.StatusRealized})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), nutriActor, StatusUpdate{AppointmentID: "missing", Status: models.StatusConfirmed})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatus_NutricionistaCancelsConfirmed(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusConfirmed})

	_, err := svc.UpdateStatus(context.Background(), nutriActor, StatusUpdate{AppointmentID: a.ID, Status: models.StatusCancelled, RejectionMessage: "Sick leave"})
	require.NoError(t, err)

	stored := store.get(a.ID)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, models.CancelledByNutricionista, *stored.CancelledBy)
	assert.Nil(t, stored.SlotKey)
}

func TestCancelByPatient_RetainPolicy(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusPending})

	_, deleted, err := svc.CancelByPatient(context.Background(), patientActor, a.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	stored := store.get(a.ID)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, models.CancelledByPatient, *stored.CancelledBy)
	assert.Nil(t, stored.SlotKey)

	_, err = svc.Book(context.Background(), bookingFor("2026-03-11", "09:00"))
	assert.NoError(t, err, "cancelled slot is free again")
}

func TestCancelByPatient_DeletePolicy(t *testing.T) {
	svc, store := newTestService(t, CancelDelete)
	pending := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusPending})
	confirmed := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-11", "10:00"), Status: models.StatusConfirmed})

	_, deleted, err := svc.CancelByPatient(context.Background(), patientActor, pending.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, store.appointments, pending.ID)

	_, deleted, err = svc.CancelByPatient(context.Background(), patientActor, confirmed.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "confirmed appointments are always kept")
	assert.Equal(t, models.StatusCancelled, store.get(confirmed.ID).Status)
}

func TestCancelByPatient_Guards(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	a := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr("patient-2"), ScheduledAt: at("2026-03-11", "09:00"), Status: models.StatusPending})
	done := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-01", "09:00"), Status: models.StatusRealized})

	_, _, err := svc.CancelByPatient(context.Background(), patientActor, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.CancelByPatient(context.Background(), patientActor, done.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, _, err = svc.CancelByPatient(context.Background(), nutriActor, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRealizeElapsed(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	past := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-10", "08:00"), Status: models.StatusConfirmed})
	future := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-10", "10:00"), Status: models.StatusConfirmed})
	pending := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-09", "08:00"), Status: models.StatusPending})

	n, err := svc.RealizeElapsed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.StatusRealized, store.get(past.ID).Status)
	assert.Equal(t, models.StatusConfirmed, store.get(future.ID).Status)
	assert.Equal(t, models.StatusPending, store.get(pending.ID).Status)

	n, err = svc.RealizeElapsed(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRealizeElapsed_ScopedToPatient(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	mine := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr(patientID), ScheduledAt: at("2026-03-09", "08:00"), Status: models.StatusConfirmed})
	theirs := store.seed(models.Appointment{NutricionistaID: nutriID, PatientID: strPtr("patient-2"), ScheduledAt: at("2026-03-09", "09:00"), Status: models.StatusConfirmed})

	list, err := svc.PatientAppointments(context.Background(), patientActor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusRealized, list[0].Status)
	assert.Equal(t, models.StatusRealized, store.get(mine.ID).Status)
	assert.Equal(t, models.StatusConfirmed, store.get(theirs.ID).Status)
}

func TestPendingAndDayLists(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	late := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-12", "10:00"), Status: models.StatusPending})
	early := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "10:00"), Status: models.StatusPending})
	conf := store.seed(models.Appointment{NutricionistaID: nutriID, ScheduledAt: at("2026-03-11", "11:00"), Status: models.StatusConfirmed})
	store.seed(models.Appointment{NutricionistaID: "nutri-2", ScheduledAt: at("2026-03-11", "08:00"), Status: models.StatusPending})

	pending, err := svc.PendingFor(context.Background(), nutriActor)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, early.ID, pending[0].ID)
	assert.Equal(t, late.ID, pending[1].ID)

	day, err := svc.DayFor(context.Background(), nutriActor, "2026-03-11")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, conf.ID, day[0].ID)
}

func TestNutricionistaContact(t *testing.T) {
	svc, store := newTestService(t, CancelRetain)
	store.nutris[nutriID] = models.Nutricionista{BaseModel: models.BaseModel{ID: nutriID}, Name: "Dra. Paula", Phone: "11988887777"}

	n, err := svc.NutricionistaContact(context.Background(), nutriID)
	require.NoError(t, err)
	assert.Equal(t, "Dra. Paula", n.Name)
	assert.Equal(t, "11988887777", n.Phone)

	_, err = svc.NutricionistaContact(context.Background(), "nutri-9")
	assert.ErrorIs(t, err, ErrNutriNotFound)
}
