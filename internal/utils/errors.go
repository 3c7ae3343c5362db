package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nutricare-server/internal/scheduling"
)

// StatusFor maps a scheduling error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, scheduling.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, scheduling.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, scheduling.ErrAppointmentNotFound),
		errors.Is(err, scheduling.ErrAgendaNotFound),
		errors.Is(err, scheduling.ErrPatientNotFound),
		errors.Is(err, scheduling.ErrNutriNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrSlotTaken),
		errors.Is(err, scheduling.ErrPastTimestamp),
		errors.Is(err, scheduling.ErrAlreadyRated),
		errors.Is(err, scheduling.ErrInvalidTransition),
		errors.Is(err, scheduling.ErrNotEligible):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the error envelope for err. Internal errors are logged and
// answered with a generic message.
func HandleError(c *gin.Context, log zerolog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", c.GetString("requestID")).
			Str("path", c.FullPath()).
			Msg("request failed")
		InternalServerError(c, "Internal server error")
		return
	}
	Error(c, status, err.Error())
}
