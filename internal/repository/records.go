package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
)

type agendaStore struct {
	db *gorm.DB
}

func (s *agendaStore) Get(ctx context.Context, nutricionistaID string) (*models.NutriAgenda, error) {
	var a models.NutriAgenda
	if err := s.db.WithContext(ctx).First(&a, "nutricionista_id = ?", nutricionistaID).Error; err != nil {
		return nil, notFound(err, scheduling.ErrAgendaNotFound)
	}
	return &a, nil
}

// Save upserts the agenda; a nutritionist has exactly one.
func (s *agendaStore) Save(ctx context.Context, agenda *models.NutriAgenda) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "nutricionista_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "slot_duration", "available_days", "updated_at"}),
		}).
		Create(agenda).Error
}

type consultationStore struct {
	db *gorm.DB
}

func (s *consultationStore) ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error
	return count > 0, err
}

func (s *consultationStore) Create(ctx context.Context, c *models.Consultation) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return scheduling.ErrNotEligible
	}
	return err
}

type ratingStore struct {
	db *gorm.DB
}

func (s *ratingStore) Create(ctx context.Context, ratings []models.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&ratings).Error
}

type patientStore struct {
	db *gorm.DB
}

func (s *patientStore) Get(ctx context.Context, id string) (*models.Patient, error) {
	var p models.Patient
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrPatientNotFound)
	}
	return &p, nil
}

type nutricionistaStore struct {
	db *gorm.DB
}

func (s *nutricionistaStore) Get(ctx context.Context, id string) (*models.Nutricionista, error) {
	var n models.Nutricionista
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrNutriNotFound)
	}
	return &n, nil
}
