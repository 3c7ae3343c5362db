package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// SurveyHandler receives post-appointment surveys.
type SurveyHandler struct {
	Svc Scheduler
	Log zerolog.Logger
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(svc Scheduler, log zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{Svc: svc, Log: log}
}

// SurveyRequest represents the survey answers. The meal plan rating is optional.
type SurveyRequest struct {
	AppointmentID    string `json:"appointmentId" binding:"required"`
	NutriRating      int    `json:"nutriRating" binding:"required,min=1,max=5"`
	NutriComments    string `json:"nutriComments"`
	SystemRating     int    `json:"systemRating" binding:"required,min=1,max=5"`
	SystemComments   string `json:"systemComments"`
	MealPlanRating   *int   `json:"mealPlanRating" binding:"omitempty,min=1,max=5"`
	MealPlanComments string `json:"mealPlanComments"`
}

// Submit stores the survey of the logged-in patient.
func (h *SurveyHandler) Submit(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req SurveyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	err := h.Svc.SubmitSurvey(c.Request.Context(), id.Actor(), scheduling.SurveyInput{
		AppointmentID:    req.AppointmentID,
		NutriRating:      req.NutriRating,
		NutriComments:    req.NutriComments,
		SystemRating:     req.SystemRating,
		SystemComments:   req.SystemComments,
		MealPlanRating:   req.MealPlanRating,
		MealPlanComments: req.MealPlanComments,
	})
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Created(c, "Thank you for your feedback!", nil)
}
