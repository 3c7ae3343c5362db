package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nutricare-server/internal/middleware"
	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// Scheduler is the part of scheduling.Service the handlers depend on.
type Scheduler interface {
	Availability(ctx context.Context, nutricionistaID, date string) (*scheduling.Availability, error)
	AgendaFor(ctx context.Context, nutricionistaID string) (*models.NutriAgenda, error)
	SaveAgenda(ctx context.Context, actor scheduling.Actor, in scheduling.AgendaInput) (*models.NutriAgenda, error)
	Book(ctx context.Context, req scheduling.BookingRequest) (*models.Appointment, error)
	ScheduleReturn(ctx context.Context, actor scheduling.Actor, patientID, date, clock string) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, actor scheduling.Actor, upd scheduling.StatusUpdate) (*models.Appointment, error)
	CancelByPatient(ctx context.Context, actor scheduling.Actor, appointmentID string) (*models.Appointment, bool, error)
	PendingFor(ctx context.Context, actor scheduling.Actor) ([]models.Appointment, error)
	DayFor(ctx context.Context, actor scheduling.Actor, date string) ([]models.Appointment, error)
	PatientAppointments(ctx context.Context, actor scheduling.Actor) ([]models.Appointment, error)
	NutricionistaContact(ctx context.Context, id string) (*models.Nutricionista, error)
	Notifications(ctx context.Context, actor scheduling.Actor, since time.Time) ([]scheduling.Notification, error)
	RecordConsultation(ctx context.Context, actor scheduling.Actor, in scheduling.ConsultationInput) (*models.Consultation, error)
	SubmitSurvey(ctx context.Context, actor scheduling.Actor, in scheduling.SurveyInput) error
	BookingLink(nutricionistaID string) string
	Now() time.Time
}

var _ Scheduler = (*scheduling.Service)(nil)

// currentIdentity fetches the caller or answers 401.
func currentIdentity(c *gin.Context) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return middleware.Identity{}, false
	}
	return id, true
}

// dbError logs a failed query and answers 500 without leaking its details.
func dbError(c *gin.Context, log zerolog.Logger, err error, msg string) {
	log.Error().Err(err).Str("request_id", c.GetString("requestID")).Msg(msg)
	utils.InternalServerError(c, msg)
}

// validID answers 400 when param is not a UUID.
func validID(c *gin.Context, param string) (string, bool) {
	raw := c.Param(param)
	if _, err := uuid.Parse(raw); err != nil {
		utils.BadRequest(c, "Invalid "+param+" format")
		return "", false
	}
	return raw, true
}
