package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// NutricionistaHandler handles the nutritionist profile and public contact lookups.
type NutricionistaHandler struct {
	DB  *gorm.DB
	Svc Scheduler
	Log zerolog.Logger
}

// NewNutricionistaHandler creates a new NutricionistaHandler.
func NewNutricionistaHandler(db *gorm.DB, svc Scheduler, log zerolog.Logger) *NutricionistaHandler {
	return &NutricionistaHandler{DB: db, Svc: svc, Log: log}
}

// NutricionistaDetails is the profile of the logged-in nutritionist.
type NutricionistaDetails struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	CRN           string   `json:"crn"`
	AvailableDays []string `json:"availableDays"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
	SlotDuration  int      `json:"slotDuration,omitempty"`
}

// GetDetails returns the profile and agenda of the logged-in nutritionist.
func (h *NutricionistaHandler) GetDetails(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var nutri models.Nutricionista
	err := h.DB.WithContext(ctx).First(&nutri, "id = ?", id.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "Nutritionist not found")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to load nutritionist")
		return
	}

	details := NutricionistaDetails{
		ID:            nutri.ID,
		Name:          nutri.Name,
		Email:         nutri.Email,
		Phone:         nutri.Phone,
		CRN:           nutri.CRNCode,
		AvailableDays: []string{},
	}
	agenda, err := h.Svc.AgendaFor(ctx, id.UserID)
	switch {
	case err == nil:
		details.AvailableDays = append(details.AvailableDays, agenda.AvailableDays...)
		details.StartTime = agenda.StartTime
		details.EndTime = agenda.EndTime
		details.SlotDuration = agenda.SlotDuration
	case !errors.Is(err, scheduling.ErrAgendaNotFound):
		utils.HandleError(c, h.Log, err)
		return
	}

	utils.Success(c, "Nutritionist details fetched successfully", details)
}

// UpdateDetailsRequest represents the editable profile fields.
type UpdateDetailsRequest struct {
	Name  string `json:"name" binding:"required,max=150"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,max=30"`
}

// UpdateDetails updates the user and the nutritionist profile together.
func (h *NutricionistaHandler) UpdateDetails(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req UpdateDetailsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	errEmailTaken := errors.New("email taken")
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ? AND id <> ?", req.Email, id.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errEmailTaken
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id.UserID).
			Updates(map[string]interface{}{"name": req.Name, "email": req.Email}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Nutricionista{}).Where("id = ?", id.UserID).
			Updates(map[string]interface{}{"name": req.Name, "email": req.Email, "phone": req.Phone}).Error
	})
	if errors.Is(err, errEmailTaken) {
		utils.Conflict(c, "Email already in use")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to update nutritionist")
		return
	}

	utils.Success(c, "Details updated successfully", req)
}

// UpdatePasswordRequest represents a password change.
type UpdatePasswordRequest struct {
	CurrentPassword      string `json:"currentPassword" binding:"required"`
	NewPassword          string `json:"newPassword" binding:"required,strongpassword"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=NewPassword"`
}

// UpdatePassword changes the password after checking the current one.
func (h *NutricionistaHandler) UpdatePassword(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var user models.User
	if err := db.First(&user, "id = ?", id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		dbError(c, h.Log, err, "Failed to update password")
		return
	}
	if !user.CheckPassword(req.CurrentPassword) {
		utils.BadRequest(c, "Current password is incorrect")
		return
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		dbError(c, h.Log, err, "Failed to update password")
		return
	}
	if err := db.Model(&user).Update("password", user.Password).Error; err != nil {
		dbError(c, h.Log, err, "Failed to update password")
		return
	}

	utils.Success(c, "Password updated successfully", nil)
}

// Link returns the public pre-booking link of the logged-in nutritionist.
func (h *NutricionistaHandler) Link(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	utils.Success(c, "Link generated successfully", gin.H{"link": h.Svc.BookingLink(id.UserID)})
}

// PublicContact is what anyone may see of a nutritionist.
type PublicContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone"`
}

// Public returns the name and phone of a nutritionist.
func (h *NutricionistaHandler) Public(c *gin.Context) {
	nutri, ok := h.lookup(c)
	if !ok {
		return
	}
	utils.Success(c, "Nutritionist fetched successfully", PublicContact{Name: nutri.Name, Phone: nutri.Phone})
}

// Contact returns only the phone of a nutritionist.
func (h *NutricionistaHandler) Contact(c *gin.Context) {
	nutri, ok := h.lookup(c)
	if !ok {
		return
	}
	utils.Success(c, "Contact fetched successfully", PublicContact{Phone: nutri.Phone})
}

func (h *NutricionistaHandler) lookup(c *gin.Context) (*models.Nutricionista, bool) {
	nutriID, ok := validID(c, "id")
	if !ok {
		return nil, false
	}
	var nutri models.Nutricionista
	err := h.DB.WithContext(c.Request.Context()).
		Select("id", "name", "phone").
		First(&nutri, "id = ?", nutriID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "Nutritionist not found")
		return nil, false
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to load nutritionist")
		return nil, false
	}
	return &nutri, true
}
