package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nutricare-server/internal/models"
)

// fakeStore is an in-memory Store. It enforces the slot key uniqueness the
// database enforces and rolls back on a failed Transaction.
type fakeStore struct {
	mu            sync.Mutex
	seq           int
	now           func() time.Time
	appointments  map[string]models.Appointment
	agendas       map[string]models.NutriAgenda
	consultations map[string]models.Consultation
	patients      map[string]models.Patient
	nutris        map[string]models.Nutricionista
	ratings       []models.Rating

	failWith error
}

var _ Store = (*fakeStore)(nil)

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:           now,
		appointments:  map[string]models.Appointment{},
		agendas:       map[string]models.NutriAgenda{},
		consultations: map[string]models.Consultation{},
		patients:      map[string]models.Patient{},
		nutris:        map[string]models.Nutricionista{},
	}
}

func (f *fakeStore) Appointments() AppointmentStore   { return fakeAppointments{f} }
func (f *fakeStore) Agendas() AgendaStore             { return fakeAgendas{f} }
func (f *fakeStore) Consultations() ConsultationStore { return fakeConsultations{f} }
func (f *fakeStore) Ratings() RatingStore             { return fakeRatings{f} }
func (f *fakeStore) Patients() PatientStore           { return fakePatients{f} }
func (f *fakeStore) Nutricionistas() NutricionistaStore {
	return fakeNutricionistas{f}
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(Store) error) error {
	f.mu.Lock()
	appts := cloneMap(f.appointments)
	consultations := cloneMap(f.consultations)
	ratings := append([]models.Rating(nil), f.ratings...)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.appointments, f.consultations, f.ratings = appts, consultations, ratings
		f.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// seed stores an appointment as-is, setting an id and a slot key when it holds one.
func (f *fakeStore) seed(a models.Appointment) models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = f.nextID("appt")
	}
	if a.HoldsSlot() && a.SlotKey == nil {
		key := models.SlotKeyFor(a.NutricionistaID, a.ScheduledAt)
		a.SlotKey = &key
	}
	f.appointments[a.ID] = a
	return a
}

func (f *fakeStore) get(id string) models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appointments[id]
}

type fakeAppointments struct{ f *fakeStore }

func (s fakeAppointments) Get(_ context.Context, id string) (*models.Appointment, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.failWith != nil {
		return nil, s.f.failWith
	}
	a, ok := s.f.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (s fakeAppointments) Lock(ctx context.Context, id string) (*models.Appointment, error) {
	return s.Get(ctx, id)
}

func (s fakeAppointments) SlotTaken(_ context.Context, nutriID string, at time.Time) (bool, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	key := models.SlotKeyFor(nutriID, at)
	for _, a := range s.f.appointments {
		if a.SlotKey != nil && *a.SlotKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (s fakeAppointments) ListByNutricionista(_ context.Context, nutriID string, from, to time.Time) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		return a.NutricionistaID == nutriID && !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to)
	})
}

func (s fakeAppointments) ListByNutricionistaStatus(_ context.Context, nutriID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		return a.NutricionistaID == nutriID && a.Status == status
	})
}

func (s fakeAppointments) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		return a.PatientID != nil && *a.PatientID == patientID
	})
}

func (s fakeAppointments) ListConfirmedBefore(_ context.Context, cutoff time.Time, patientID string) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		if patientID != "" && (a.PatientID == nil || *a.PatientID != patientID) {
			return false
		}
		return a.Status == models.StatusConfirmed && a.ScheduledAt.Before(cutoff)
	})
}

func (s fakeAppointments) filter(keep func(models.Appointment) bool) ([]models.Appointment, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.failWith != nil {
		return nil, s.f.failWith
	}
	out := []models.Appointment{}
	for _, a := range s.f.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s fakeAppointments) Create(_ context.Context, a *models.Appointment) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if a.SlotKey != nil {
		for _, other := range s.f.appointments {
			if other.SlotKey != nil && *other.SlotKey == *a.SlotKey {
				return ErrSlotTaken
			}
		}
	}
	a.ID = s.f.nextID("appt")
	a.CreatedAt = s.f.now()
	a.UpdatedAt = a.CreatedAt
	s.f.appointments[a.ID] = *a
	return nil
}

func (s fakeAppointments) Update(_ context.Context, a *models.Appointment) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if _, ok := s.f.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	if a.SlotKey != nil {
		for id, other := range s.f.appointments {
			if id != a.ID && other.SlotKey != nil && *other.SlotKey == *a.SlotKey {
				return ErrSlotTaken
			}
		}
	}
	a.UpdatedAt = s.f.now()
	s.f.appointments[a.ID] = *a
	return nil
}

func (s fakeAppointments) Delete(_ context.Context, id string) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.appointments, id)
	return nil
}

type fakeAgendas struct{ f *fakeStore }

func (s fakeAgendas) Get(_ context.Context, nutriID string) (*models.NutriAgenda, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.failWith != nil {
		return nil, s.f.failWith
	}
	a, ok := s.f.agendas[nutriID]
	if !ok {
		return nil, ErrAgendaNotFound
	}
	return &a, nil
}

func (s fakeAgendas) Save(_ context.Context, agenda *models.NutriAgenda) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.agendas[agenda.NutricionistaID] = *agenda
	return nil
}

type fakeConsultations struct{ f *fakeStore }

func (s fakeConsultations) ExistsForAppointment(_ context.Context, appointmentID string) (bool, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, c := range s.f.consultations {
		if c.AppointmentID == appointmentID {
			return true, nil
		}
	}
	return false, nil
}

func (s fakeConsultations) Create(_ context.Context, c *models.Consultation) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, other := range s.f.consultations {
		if other.AppointmentID == c.AppointmentID {
			return ErrNotEligible
		}
	}
	c.ID = s.f.nextID("cons")
	s.f.consultations[c.ID] = *c
	return nil
}

type fakeRatings struct{ f *fakeStore }

func (s fakeRatings) Create(_ context.Context, ratings []models.Rating) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.ratings = append(s.f.ratings, ratings...)
	return nil
}

type fakePatients struct{ f *fakeStore }

func (s fakePatients) Get(_ context.Context, id string) (*models.Patient, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	p, ok := s.f.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

type fakeNutricionistas struct{ f *fakeStore }

func (s fakeNutricionistas) Get(_ context.Context, id string) (*models.Nutricionista, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	n, ok := s.f.nutris[id]
	if !ok {
		return nil, ErrNutriNotFound
	}
	return &n, nil
}
