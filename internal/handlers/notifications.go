package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nutricare-server/internal/utils"
)

// NotificationHandler serves the patient notification feed.
type NotificationHandler struct {
	Svc Scheduler
	Log zerolog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc Scheduler, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Log: log}
}

// NotificationsQuery represents the optional polling cursor.
type NotificationsQuery struct {
	Since string `form:"since"`
}

// List returns the notifications of the logged-in patient. With since, only
// appointments changed after that instant are reported.
func (h *NotificationHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var q NotificationsQuery
	if !utils.BindQuery(c, &q) {
		return
	}

	var since time.Time
	if q.Since != "" {
		t, err := time.Parse(time.RFC3339, q.Since)
		if err != nil {
			utils.BadRequest(c, "Invalid timestamp format. Use RFC3339 format (e.g., 2006-01-02T15:04:05Z07:00)")
			return
		}
		since = t
	}

	list, err := h.Svc.Notifications(c.Request.Context(), id.Actor(), since)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	utils.Success(c, "Notifications fetched successfully", list)
}
