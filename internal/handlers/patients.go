package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/models"
	"nutricare-server/internal/utils"
)

// PatientHandler serves the patient records of a nutritionist.
type PatientHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, log zerolog.Logger) *PatientHandler {
	return &PatientHandler{DB: db, Log: log}
}

// PatientSummary is a row of the patient list.
type PatientSummary struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone"`
	Status          models.PatientStatus `json:"status"`
	NextAppointment *time.Time           `json:"nextAppointment"`
}

// List returns the patients of the logged-in nutritionist with their next
// confirmed appointment.
func (h *PatientHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var patients []models.Patient
	if err := h.DB.WithContext(ctx).
		Where("nutricionista_id = ?", id.UserID).
		Order("name").
		Find(&patients).Error; err != nil {
		dbError(c, h.Log, err, "Failed to fetch patients")
		return
	}

	var upcoming []models.Appointment
	if err := h.DB.WithContext(ctx).
		Where("nutricionista_id = ? AND status = ? AND scheduled_at > ? AND patient_id IS NOT NULL",
			id.UserID, models.StatusConfirmed, time.Now()).
		Order("scheduled_at").
		Find(&upcoming).Error; err != nil {
		dbError(c, h.Log, err, "Failed to fetch patients")
		return
	}
	next := make(map[string]time.Time, len(upcoming))
	for _, a := range upcoming {
		if _, seen := next[*a.PatientID]; !seen {
			next[*a.PatientID] = a.ScheduledAt
		}
	}

	list := make([]PatientSummary, 0, len(patients))
	for _, p := range patients {
		row := PatientSummary{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Status: p.Status}
		if at, ok := next[p.ID]; ok {
			row.NextAppointment = &at
		}
		list = append(list, row)
	}
	utils.Success(c, "Patients fetched successfully", list)
}

// Details returns one patient of the logged-in nutritionist.
func (h *PatientHandler) Details(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	patientID, ok := validID(c, "id")
	if !ok {
		return
	}

	var patient models.Patient
	err := h.DB.WithContext(c.Request.Context()).
		Where("id = ? AND nutricionista_id = ?", patientID, id.UserID).
		First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to fetch patient")
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// Anamnese returns the intake questionnaires of a patient, oldest first.
func (h *PatientHandler) Anamnese(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	patientID, ok := validID(c, "id")
	if !ok {
		return
	}

	var records []models.Anamnese
	if err := h.DB.WithContext(c.Request.Context()).
		Where("patient_id = ? AND nutricionista_id = ?", patientID, id.UserID).
		Order("created_at").
		Find(&records).Error; err != nil {
		dbError(c, h.Log, err, "Failed to fetch anamnese")
		return
	}
	if len(records) == 0 {
		utils.NotFound(c, "Anamnese not found")
		return
	}
	utils.Success(c, "Anamnese fetched successfully", records)
}
