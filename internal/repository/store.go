// Package repository implements the scheduling storage contracts with gorm.
package repository

import (
	"context"

	"gorm.io/gorm"

	"nutricare-server/internal/scheduling"
)

// Store is the gorm backed scheduling.Store.
type Store struct {
	db *gorm.DB
}

var _ scheduling.Store = (*Store)(nil)

// New wraps db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Appointments() scheduling.AppointmentStore   { return &appointmentStore{db: s.db} }
func (s *Store) Agendas() scheduling.AgendaStore             { return &agendaStore{db: s.db} }
func (s *Store) Consultations() scheduling.ConsultationStore { return &consultationStore{db: s.db} }
func (s *Store) Ratings() scheduling.RatingStore             { return &ratingStore{db: s.db} }
func (s *Store) Patients() scheduling.PatientStore           { return &patientStore{db: s.db} }
func (s *Store) Nutricionistas() scheduling.NutricionistaStore {
	return &nutricionistaStore{db: s.db}
}

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(scheduling.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
