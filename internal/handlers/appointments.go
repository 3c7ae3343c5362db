package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nutricare-server/internal/middleware"
	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// AppointmentHandler handles booking and appointment lifecycle requests.
type AppointmentHandler struct {
	Svc Scheduler
	Log zerolog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc Scheduler, log zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc, Log: log}
}

// AvailabilityQuery holds the query parameters of the availability lookup.
type AvailabilityQuery struct {
	NutriID string `form:"nutriId" binding:"required"`
	Date    string `form:"date" binding:"required,isodate"`
}

// AvailabilityResponse lists the free slots of a day.
type AvailabilityResponse struct {
	Success        bool     `json:"success"`
	AvailableSlots []string `json:"availableSlots"`
	SlotDuration   int      `json:"slotDuration"`
	Message        string   `json:"message,omitempty"`
}

// Available returns the free slots of a nutritionist on a date.
func (h *AppointmentHandler) Available(c *gin.Context) {
	var q AvailabilityQuery
	if !utils.BindQuery(c, &q) {
		return
	}

	avail, err := h.Svc.Availability(c.Request.Context(), q.NutriID, q.Date)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Success:        avail.Success,
		AvailableSlots: avail.Slots,
		SlotDuration:   avail.SlotDuration,
		Message:        avail.Message,
	})
}

// BookRequest represents the request body of a public pre-booking.
type BookRequest struct {
	NutriID         string `json:"nutriId" binding:"required"`
	ServiceName     string `json:"serviceName" binding:"required"`
	ServiceDuration int    `json:"serviceDuration" binding:"required,gt=0"`
	Date            string `json:"date" binding:"required,isodate"`
	Time            string `json:"time" binding:"required,clock"`
	PatientName     string `json:"patientName" binding:"required"`
	PatientEmail    string `json:"patientEmail" binding:"required,email"`
	PatientPhone    string `json:"patientPhone" binding:"required"`
}

// BookResponse is returned after a successful booking.
type BookResponse struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointmentId"`
	Message       string `json:"message"`
}

// Book creates a pending appointment. A logged-in patient is linked to it.
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req BookRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	booking := scheduling.BookingRequest{
		NutricionistaID: req.NutriID,
		ServiceName:     req.ServiceName,
		ServiceDuration: req.ServiceDuration,
		Date:            req.Date,
		Time:            req.Time,
		PatientName:     req.PatientName,
		PatientEmail:    req.PatientEmail,
		PatientPhone:    req.PatientPhone,
	}
	if id, ok := middleware.IdentityFromContext(c); ok && id.Role == models.RolePatient {
		booking.PatientID = id.UserID
	}

	appt, err := h.Svc.Book(c.Request.Context(), booking)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, BookResponse{
		Success:       true,
		AppointmentID: appt.ID,
		Message:       "Appointment requested. You will be notified once the nutritionist confirms it.",
	})
}

// DayQuery selects the day of the nutritionist agenda; today when empty.
type DayQuery struct {
	Date string `form:"date" binding:"omitempty,isodate"`
}

// ForDay lists the confirmed appointments of the nutritionist on a day.
func (h *AppointmentHandler) ForDay(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var q DayQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	if q.Date == "" {
		q.Date = h.Svc.Now().Format("2006-01-02")
	}

	list, err := h.Svc.DayFor(c.Request.Context(), id.Actor(), q.Date)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", list)
}

// Pending lists the appointments waiting for the nutritionist decision.
func (h *AppointmentHandler) Pending(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	list, err := h.Svc.PendingFor(c.Request.Context(), id.Actor())
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Success(c, "Pending appointments fetched successfully", list)
}

// UpdateStatusRequest represents the nutritionist decision on an appointment.
type UpdateStatusRequest struct {
	AppointmentID    string `json:"appointmentId" binding:"required"`
	Status           string `json:"status" binding:"required,oneof=confirmed rejected cancelled"`
	RejectionType    string `json:"rejectionType" binding:"omitempty,oneof=reschedule cancellation"`
	RejectionMessage string `json:"rejectionMessage"`
}

// UpdateStatus confirms, rejects or cancels an appointment.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Svc.UpdateStatus(c.Request.Context(), id.Actor(), scheduling.StatusUpdate{
		AppointmentID:    req.AppointmentID,
		Status:           models.AppointmentStatus(req.Status),
		RejectionReason:  models.RejectionReason(req.RejectionType),
		RejectionMessage: req.RejectionMessage,
	})
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appt)
}

// ScheduleReturnRequest represents a return visit booked by the nutritionist.
type ScheduleReturnRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	Date      string `json:"returnDate" binding:"required,isodate"`
	Time      string `json:"returnTime" binding:"required,clock"`
}

// ScheduleReturn books a confirmed return visit.
func (h *AppointmentHandler) ScheduleReturn(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req ScheduleReturnRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Svc.ScheduleReturn(c.Request.Context(), id.Actor(), req.PatientID, req.Date, req.Time)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Created(c, "Return visit scheduled successfully", appt)
}

// NutriContact is how a patient reaches their nutritionist.
type NutriContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PatientAppointmentsResponse is the patient appointment list. NutriData is
// null when the patient has no nutritionist on record.
type PatientAppointmentsResponse struct {
	Appointments []models.Appointment `json:"appointments"`
	NutriData    *NutriContact        `json:"nutriData"`
}

// PatientAppointments lists the appointments of the logged-in patient along
// with the contact of their nutritionist.
func (h *AppointmentHandler) PatientAppointments(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	list, err := h.Svc.PatientAppointments(c.Request.Context(), id.Actor())
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}

	resp := PatientAppointmentsResponse{Appointments: list}
	if id.NutricionistaID != "" {
		nutri, err := h.Svc.NutricionistaContact(c.Request.Context(), id.NutricionistaID)
		switch {
		case errors.Is(err, scheduling.ErrNutriNotFound):
		case err != nil:
			utils.HandleError(c, h.Log, err)
			return
		default:
			resp.NutriData = &NutriContact{Name: nutri.Name, Phone: nutri.Phone}
		}
	}
	utils.Success(c, "Appointments fetched successfully", resp)
}

// CancelRequest identifies the appointment a patient cancels.
type CancelRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// Cancel cancels an appointment of the logged-in patient.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req CancelRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, deleted, err := h.Svc.CancelByPatient(c.Request.Context(), id.Actor(), req.AppointmentID)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	if deleted {
		utils.Success(c, "Appointment request removed successfully", nil)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", appt)
}
