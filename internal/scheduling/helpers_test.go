package scheduling

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"nutricare-server/internal/models"
)

const (
	nutriID   = "nutri-1"
	patientID = "patient-1"
)

var brt = time.FixedZone("BRT", -3*60*60)

// fixedNow is 2026-03-10 09:30 in the service zone.
var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, brt)

var (
	nutriActor   = Actor{UserID: nutriID, Role: models.RoleNutricionista}
	patientActor = Actor{UserID: patientID, Role: models.RolePatient}
)

func newTestService(t *testing.T, policy CancelPolicy) (*Service, *fakeStore) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := newFakeStore(clock)
	store.agendas[nutriID] = models.NutriAgenda{
		NutricionistaID: nutriID,
		StartTime:       "08:00",
		EndTime:         "12:00",
		SlotDuration:    60,
		AvailableDays:   []string{"2026-03-10", "2026-03-11"},
	}
	store.patients[patientID] = models.Patient{
		BaseModel:       models.BaseModel{ID: patientID},
		Name:            "Ana Souza",
		Email:           "ana@example.com",
		Phone:           "11999990000",
		NutricionistaID: nutriID,
	}
	svc := NewService(store, Options{
		Location:     brt,
		Now:          clock,
		CancelPolicy: policy,
		AppURL:       "https://nutricare.test",
		Logger:       zerolog.Nop(),
	})
	return svc, store
}

func at(date, clock string) time.Time {
	t, err := CombineDateTime(date, clock, brt)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

func bookingFor(date, clock string) BookingRequest {
	return BookingRequest{
		NutricionistaID: nutriID,
		ServiceName:     models.ServiceFirstVisit,
		ServiceDuration: 60,
		Date:            date,
		Time:            clock,
		PatientName:     "Ana Souza",
		PatientEmail:    "ana@example.com",
		PatientPhone:    "11999990000",
	}
}
