package scheduling

import (
	"context"
	"time"

	"nutricare-server/internal/models"
)

// AppointmentStore persists appointments.
type AppointmentStore interface {
	Get(ctx context.Context, id string) (*models.Appointment, error)
	// Lock loads an appointment and holds a row lock until the surrounding
	// transaction ends.
	Lock(ctx context.Context, id string) (*models.Appointment, error)
	// SlotTaken reports whether an appointment still holds the slot.
	SlotTaken(ctx context.Context, nutricionistaID string, at time.Time) (bool, error)
	// ListByNutricionista returns appointments scheduled in [from, to).
	ListByNutricionista(ctx context.Context, nutricionistaID string, from, to time.Time) ([]models.Appointment, error)
	ListByNutricionistaStatus(ctx context.Context, nutricionistaID string, status models.AppointmentStatus) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	// ListConfirmedBefore returns confirmed appointments scheduled before cutoff.
	// A non-empty patientID restricts the result to that patient.
	ListConfirmedBefore(ctx context.Context, cutoff time.Time, patientID string) ([]models.Appointment, error)
	// Create returns ErrSlotTaken when the slot key is already in use.
	Create(ctx context.Context, a *models.Appointment) error
	// Update writes a and returns ErrSlotTaken when its slot key is held by
	// another appointment.
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

// AgendaStore persists the per-nutritionist agenda configuration.
type AgendaStore interface {
	// Get returns ErrAgendaNotFound when the nutritionist never configured one.
	Get(ctx context.Context, nutricionistaID string) (*models.NutriAgenda, error)
	Save(ctx context.Context, agenda *models.NutriAgenda) error
}

// ConsultationStore persists consultation records.
type ConsultationStore interface {
	ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error)
	// Create returns ErrNotEligible when the appointment already has a record.
	Create(ctx context.Context, c *models.Consultation) error
}

// RatingStore persists survey answers.
type RatingStore interface {
	Create(ctx context.Context, ratings []models.Rating) error
}

// PatientStore reads patient profiles.
type PatientStore interface {
	Get(ctx context.Context, id string) (*models.Patient, error)
}

// NutricionistaStore reads nutritionist profiles.
type NutricionistaStore interface {
	Get(ctx context.Context, id string) (*models.Nutricionista, error)
}

// Store groups the stores used by the service. Transaction runs fn with a Store
// bound to a single database transaction, rolled back when fn returns an error.
type Store interface {
	Appointments() AppointmentStore
	Agendas() AgendaStore
	Consultations() ConsultationStore
	Ratings() RatingStore
	Patients() PatientStore
	Nutricionistas() NutricionistaStore
	Transaction(ctx context.Context, fn func(Store) error) error
}
