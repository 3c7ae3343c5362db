package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
)

const nutriID = "nutri-1"

var slotTime = time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := models.Open(models.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "nutricare.db"),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return New(db)
}

func pendingAt(at time.Time) *models.Appointment {
	key := models.SlotKeyFor(nutriID, at)
	return &models.Appointment{
		NutricionistaID: nutriID,
		PatientName:     "Ana Souza",
		PatientEmail:    "ana@example.com",
		PatientPhone:    "11999990000",
		ServiceType:     models.ServiceFirstVisit,
		DurationMinutes: 60,
		ScheduledAt:     at,
		Status:          models.StatusPending,
		SlotKey:         &key,
	}
}

func TestAppointments_CreateOnHeldSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Appointments().Create(ctx, pendingAt(slotTime)))

	err := store.Appointments().Create(ctx, pendingAt(slotTime))
	assert.ErrorIs(t, err, scheduling.ErrSlotTaken)

	taken, err := store.Appointments().SlotTaken(ctx, nutriID, slotTime)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestAppointments_ReleasedSlotCanBeRebooked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := pendingAt(slotTime)
	require.NoError(t, store.Appointments().Create(ctx, first))

	require.NoError(t, scheduling.Transition(first, scheduling.Event{Kind: scheduling.EventReject, Reason: models.RejectionReschedule}, slotTime))
	require.NoError(t, store.Appointments().Update(ctx, first))

	taken, err := store.Appointments().SlotTaken(ctx, nutriID, slotTime)
	require.NoError(t, err)
	assert.False(t, taken)

	second := pendingAt(slotTime)
	require.NoError(t, store.Appointments().Create(ctx, second))

	require.NoError(t, scheduling.Transition(second, scheduling.Event{Kind: scheduling.EventCancel, By: models.CancelledByPatient}, slotTime))
	require.NoError(t, store.Appointments().Update(ctx, second))
	require.NoError(t, store.Appointments().Create(ctx, pendingAt(slotTime)))

	stored, err := store.Appointments().Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	assert.Nil(t, stored.SlotKey)
}

func TestAppointments_UpdateOntoHeldSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	held := pendingAt(slotTime)
	require.NoError(t, store.Appointments().Create(ctx, held))
	other := pendingAt(slotTime.Add(time.Hour))
	require.NoError(t, store.Appointments().Create(ctx, other))

	key := *held.SlotKey
	other.SlotKey = &key
	err := store.Appointments().Update(ctx, other)
	assert.ErrorIs(t, err, scheduling.ErrSlotTaken)
}

func TestAppointments_ListConfirmedBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mine := pendingAt(slotTime)
	mine.Status = models.StatusConfirmed
	mine.PatientID = strPtr("patient-1")
	require.NoError(t, store.Appointments().Create(ctx, mine))

	theirs := pendingAt(slotTime.Add(time.Hour))
	theirs.Status = models.StatusConfirmed
	theirs.PatientID = strPtr("patient-2")
	require.NoError(t, store.Appointments().Create(ctx, theirs))

	require.NoError(t, store.Appointments().Create(ctx, pendingAt(slotTime.Add(2*time.Hour))))

	cutoff := slotTime.Add(3 * time.Hour)
	all, err := store.Appointments().ListConfirmedBefore(ctx, cutoff, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := store.Appointments().ListConfirmedBefore(ctx, cutoff, "patient-1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, mine.ID, scoped[0].ID)

	early, err := store.Appointments().ListConfirmedBefore(ctx, slotTime, "")
	require.NoError(t, err)
	assert.Empty(t, early)
}

func TestAppointments_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Appointments().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, scheduling.ErrAppointmentNotFound)

	_, err = store.Nutricionistas().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, scheduling.ErrNutriNotFound)
}

func TestAgendas_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Agendas().Get(ctx, nutriID)
	assert.ErrorIs(t, err, scheduling.ErrAgendaNotFound)

	require.NoError(t, store.Agendas().Save(ctx, &models.NutriAgenda{
		NutricionistaID: nutriID,
		StartTime:       "08:00",
		EndTime:         "12:00",
		SlotDuration:    60,
		AvailableDays:   []string{"2026-03-10"},
	}))
	require.NoError(t, store.Agendas().Save(ctx, &models.NutriAgenda{
		NutricionistaID: nutriID,
		StartTime:       "13:00",
		EndTime:         "18:00",
		SlotDuration:    30,
		AvailableDays:   []string{"2026-03-11", "2026-03-12"},
	}))

	got, err := store.Agendas().Get(ctx, nutriID)
	require.NoError(t, err)
	assert.Equal(t, "13:00", got.StartTime)
	assert.Equal(t, 30, got.SlotDuration)
	assert.Equal(t, []string{"2026-03-11", "2026-03-12"}, []string(got.AvailableDays))

	var count int64
	require.NoError(t, store.db.Model(&models.NutriAgenda{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConsultations_OnePerAppointment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	appt := pendingAt(slotTime)
	require.NoError(t, store.Appointments().Create(ctx, appt))

	consultation := func() *models.Consultation {
		return &models.Consultation{AppointmentID: appt.ID, NutricionistaID: nutriID, PatientID: "patient-1"}
	}
	require.NoError(t, store.Consultations().Create(ctx, consultation()))

	exists, err := store.Consultations().ExistsForAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	err = store.Consultations().Create(ctx, consultation())
	assert.ErrorIs(t, err, scheduling.ErrNotEligible)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	appt := pendingAt(slotTime)
	require.NoError(t, store.Appointments().Create(ctx, appt))

	err := store.Transaction(ctx, func(tx scheduling.Store) error {
		locked, err := tx.Appointments().Lock(ctx, appt.ID)
		if err != nil {
			return err
		}
		require.NoError(t, scheduling.Transition(locked, scheduling.Event{Kind: scheduling.EventConfirm}, slotTime))
		if err := tx.Appointments().Update(ctx, locked); err != nil {
			return err
		}
		return scheduling.ErrForbidden
	})
	assert.ErrorIs(t, err, scheduling.ErrForbidden)

	stored, err := store.Appointments().Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestService_RebookAfterRejection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Agendas().Save(ctx, &models.NutriAgenda{
		NutricionistaID: nutriID,
		StartTime:       "08:00",
		EndTime:         "12:00",
		SlotDuration:    60,
		AvailableDays:   []string{"2026-03-11"},
	}))

	svc := scheduling.NewService(store, scheduling.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) },
		Logger:   zerolog.Nop(),
	})
	req := scheduling.BookingRequest{
		NutricionistaID: nutriID,
		ServiceName:     models.ServiceFirstVisit,
		ServiceDuration: 60,
		Date:            "2026-03-11",
		Time:            "09:00",
		PatientName:     "Ana Souza",
		PatientEmail:    "ana@example.com",
		PatientPhone:    "11999990000",
	}
	first, err := svc.Book(ctx, req)
	require.NoError(t, err)

	_, err = svc.Book(ctx, req)
	assert.ErrorIs(t, err, scheduling.ErrSlotTaken)

	nutri := scheduling.Actor{UserID: nutriID, Role: models.RoleNutricionista}
	_, err = svc.UpdateStatus(ctx, nutri, scheduling.StatusUpdate{
		AppointmentID:   first.ID,
		Status:          models.StatusRejected,
		RejectionReason: models.RejectionReschedule,
	})
	require.NoError(t, err)

	second, err := svc.Book(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func strPtr(s string) *string { return &s }
