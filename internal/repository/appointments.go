package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
)

type appointmentStore struct {
	db *gorm.DB
}

func (s *appointmentStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrAppointmentNotFound)
	}
	return &a, nil
}

func (s *appointmentStore) Lock(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, scheduling.ErrAppointmentNotFound)
	}
	return &a, nil
}

func (s *appointmentStore) SlotTaken(ctx context.Context, nutricionistaID string, at time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("slot_key = ?", models.SlotKeyFor(nutricionistaID, at)).
		Count(&count).Error
	return count > 0, err
}

func (s *appointmentStore) ListByNutricionista(ctx context.Context, nutricionistaID string, from, to time.Time) ([]models.Appointment, error) {
	var list []models.Appointment
	err := s.db.WithContext(ctx).
		Where("nutricionista_id = ? AND scheduled_at >= ? AND scheduled_at < ?", nutricionistaID, from, to).
		Order("scheduled_at").
		Find(&list).Error
	return list, err
}

func (s *appointmentStore) ListByNutricionistaStatus(ctx context.Context, nutricionistaID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	var list []models.Appointment
	err := s.db.WithContext(ctx).
		Where("nutricionista_id = ? AND status = ?", nutricionistaID, status).
		Order("scheduled_at").
		Find(&list).Error
	return list, err
}

func (s *appointmentStore) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var list []models.Appointment
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("scheduled_at DESC").
		Find(&list).Error
	return list, err
}

func (s *appointmentStore) ListConfirmedBefore(ctx context.Context, cutoff time.Time, patientID string) ([]models.Appointment, error) {
	var list []models.Appointment
	q := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_at < ?", models.StatusConfirmed, cutoff)
	if patientID != "" {
		q = q.Where("patient_id = ?", patientID)
	}
	err := q.Order("scheduled_at").Find(&list).Error
	return list, err
}

func (s *appointmentStore) Create(ctx context.Context, a *models.Appointment) error {
	err := s.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return scheduling.ErrSlotTaken
	}
	return err
}

func (s *appointmentStore) Update(ctx context.Context, a *models.Appointment) error {
	err := s.db.WithContext(ctx).Save(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return scheduling.ErrSlotTaken
	}
	return err
}

func (s *appointmentStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id).Error
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
