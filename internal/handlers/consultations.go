package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// ConsultationHandler handles consultation records.
type ConsultationHandler struct {
	DB  *gorm.DB
	Svc Scheduler
	Log zerolog.Logger
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(db *gorm.DB, svc Scheduler, log zerolog.Logger) *ConsultationHandler {
	return &ConsultationHandler{DB: db, Svc: svc, Log: log}
}

// CreateConsultationRequest represents the measurements and SOAP notes of a consultation.
type CreateConsultationRequest struct {
	AppointmentID string  `json:"appointmentId" binding:"required"`
	PatientID     string  `json:"patientId" binding:"required"`
	Weight        float64 `json:"weight" binding:"required,gt=0"`
	Height        float64 `json:"height" binding:"required,gt=0"`

	CircumWaist   *float64 `json:"circumWaist" binding:"omitempty,gt=0"`
	CircumAbdomen *float64 `json:"circumAbdomen" binding:"omitempty,gt=0"`
	CircumHip     *float64 `json:"circumHip" binding:"omitempty,gt=0"`
	CircumArm     *float64 `json:"circumArm" binding:"omitempty,gt=0"`

	SkinfoldTriceps     *float64 `json:"skinfoldTriceps" binding:"omitempty,gt=0"`
	SkinfoldSubscapular *float64 `json:"skinfoldSubscapular" binding:"omitempty,gt=0"`
	SkinfoldSuprailiac  *float64 `json:"skinfoldSuprailiac" binding:"omitempty,gt=0"`
	SkinfoldAbdominal   *float64 `json:"skinfoldAbdominal" binding:"omitempty,gt=0"`

	BodyFatPercentage *float64 `json:"bodyFatPercentage" binding:"omitempty,gt=0,lt=100"`

	SubjectiveNotes string `json:"subjectiveNotes" binding:"required"`
	ObjectiveNotes  string `json:"objectiveNotes" binding:"required"`
	AssessmentNotes string `json:"assessmentNotes" binding:"required"`
	PlanNotes       string `json:"planNotes" binding:"required"`
}

// Create records a consultation and realizes its appointment.
func (h *ConsultationHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req CreateConsultationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	consultation, err := h.Svc.RecordConsultation(c.Request.Context(), id.Actor(), scheduling.ConsultationInput{
		AppointmentID:       req.AppointmentID,
		PatientID:           req.PatientID,
		Weight:              req.Weight,
		Height:              req.Height,
		CircumWaist:         req.CircumWaist,
		CircumAbdomen:       req.CircumAbdomen,
		CircumHip:           req.CircumHip,
		CircumArm:           req.CircumArm,
		SkinfoldTriceps:     req.SkinfoldTriceps,
		SkinfoldSubscapular: req.SkinfoldSubscapular,
		SkinfoldSuprailiac:  req.SkinfoldSuprailiac,
		SkinfoldAbdominal:   req.SkinfoldAbdominal,
		BodyFatPercentage:   req.BodyFatPercentage,
		SubjectiveNotes:     req.SubjectiveNotes,
		ObjectiveNotes:      req.ObjectiveNotes,
		AssessmentNotes:     req.AssessmentNotes,
		PlanNotes:           req.PlanNotes,
	})
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Created(c, "Consultation recorded successfully", consultation)
}

// ConsultationEntry is a history row with the service of its appointment.
type ConsultationEntry struct {
	models.Consultation
	ServiceType string `json:"serviceType"`
}

// ConsultationHistory is the follow-up record of a patient.
type ConsultationHistory struct {
	History []ConsultationEntry `json:"history"`
	// PendingAppointments have no consultation recorded yet.
	PendingAppointments []models.Appointment `json:"pendingAppointments"`
}

// History lists the consultations of a patient of the logged-in nutritionist,
// newest first, along with the appointments still waiting for a record.
func (h *ConsultationHandler) History(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	patientID, ok := validID(c, "patientId")
	if !ok {
		return
	}

	var consultations []models.Consultation
	if err := h.DB.WithContext(c.Request.Context()).
		Preload("Appointment").
		Where("patient_id = ? AND nutricionista_id = ?", patientID, id.UserID).
		Order("consultation_date DESC").
		Find(&consultations).Error; err != nil {
		dbError(c, h.Log, err, "Failed to fetch consultation history")
		return
	}

	history := make([]ConsultationEntry, 0, len(consultations))
	for _, record := range consultations {
		history = append(history, ConsultationEntry{Consultation: record, ServiceType: record.Appointment.ServiceType})
	}

	var pending []models.Appointment
	if err := h.DB.WithContext(c.Request.Context()).
		Where("patient_id = ? AND nutricionista_id = ?", patientID, id.UserID).
		Where("status IN ?", []models.AppointmentStatus{models.StatusConfirmed, models.StatusRealized}).
		Where("id NOT IN (?)", h.DB.Model(&models.Consultation{}).Select("appointment_id").Where("patient_id = ?", patientID)).
		Order("scheduled_at DESC").
		Find(&pending).Error; err != nil {
		dbError(c, h.Log, err, "Failed to fetch consultation history")
		return
	}

	utils.Success(c, "Consultation history fetched successfully", ConsultationHistory{
		History:             history,
		PendingAppointments: pending,
	})
}
