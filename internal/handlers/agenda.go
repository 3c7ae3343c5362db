package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// AgendaHandler handles the working-hours configuration of a nutritionist.
type AgendaHandler struct {
	Svc Scheduler
	Log zerolog.Logger
}

// NewAgendaHandler creates a new AgendaHandler.
func NewAgendaHandler(svc Scheduler, log zerolog.Logger) *AgendaHandler {
	return &AgendaHandler{Svc: svc, Log: log}
}

// GenerateAgendaRequest represents the agenda submitted by the nutritionist.
type GenerateAgendaRequest struct {
	Dates        []string `json:"dates" binding:"required,min=1,dive,isodate"`
	StartTime    string   `json:"startTime" binding:"required,clock"`
	EndTime      string   `json:"endTime" binding:"required,clock"`
	SlotDuration int      `json:"slotDuration" binding:"required,gt=0"`
}

// Generate replaces the agenda of the logged-in nutritionist.
func (h *AgendaHandler) Generate(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req GenerateAgendaRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	agenda, err := h.Svc.SaveAgenda(c.Request.Context(), id.Actor(), scheduling.AgendaInput{
		Dates:        req.Dates,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		SlotDuration: req.SlotDuration,
	})
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Success(c, "Agenda saved successfully", agenda)
}
