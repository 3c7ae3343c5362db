package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/config"
	"nutricare-server/internal/models"
	"nutricare-server/internal/utils"
)

const refreshCookie = "refresh_token"

var (
	errEmailRegistered      = errors.New("email already registered")
	errUnknownNutricionista = errors.New("nutritionist not found")
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Log: log}
}

// RoleProbe reads only the role of a registration body.
type RoleProbe struct {
	Role string `json:"role" binding:"required,oneof=nutricionista paciente"`
}

// NutricionistaRegisterRequest represents a nutritionist sign-up.
type NutricionistaRegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=150"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,strongpassword"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=Password"`
	Phone                string `json:"phone" binding:"required,max=30"`
	CRN                  string `json:"crn" binding:"required,crn"`
}

// PatientRegisterData holds the credentials part of a patient sign-up.
type PatientRegisterData struct {
	Name     string `json:"name" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required,max=30"`
	NutriID  string `json:"nutriId" binding:"required,uuid"`
}

// AnamneseData is the intake questionnaire sent with a patient sign-up.
type AnamneseData struct {
	Weight            float64  `json:"weight" binding:"required,gt=0"`
	Height            float64  `json:"height" binding:"required,gt=0"`
	BirthDate         string   `json:"birthDate" binding:"omitempty,isodate"`
	Objectives        []string `json:"objectives"`
	HealthIssues      string   `json:"healthIssues"`
	Surgeries         string   `json:"surgeries"`
	Digestion         string   `json:"digestion"`
	BowelHabits       string   `json:"bowelHabits"`
	StoolConsistency  string   `json:"stoolConsistency"`
	WaterIntake       string   `json:"waterIntake"`
	MenstrualCycle    string   `json:"menstrualCycle"`
	PreviousTreatment string   `json:"previousTreatment"`
	Chewing           string   `json:"chewing"`
	Allergies         string   `json:"allergies"`
	Aversions         string   `json:"aversions"`
	FavoriteFoods     string   `json:"favoriteFoods"`
	Alcohol           string   `json:"alcohol"`
	Medication        string   `json:"medication"`
	PhysicalActivity  string   `json:"physicalActivity"`
	Sleep             string   `json:"sleep"`
	BloodTests        string   `json:"bloodTests"`
	Expectations      string   `json:"expectations"`
}

// PatientRegisterRequest represents a patient sign-up. AppointmentID links a
// pre-booking made before the account existed.
type PatientRegisterRequest struct {
	RegisterData  PatientRegisterData `json:"registerData" binding:"required"`
	AnamneseData  AnamneseData        `json:"anamneseData" binding:"required"`
	AppointmentID string              `json:"appointmentId" binding:"omitempty,uuid"`
}

// Register dispatches on the role of the request body.
func (h *AuthHandler) Register(c *gin.Context) {
	var probe RoleProbe
	if !utils.BindAndValidate(c, &probe) {
		return
	}
	switch models.Role(probe.Role) {
	case models.RoleNutricionista:
		h.registerNutricionista(c)
	default:
		h.registerPatient(c)
	}
}

func (h *AuthHandler) registerNutricionista(c *gin.Context) {
	var req NutricionistaRegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{Name: req.Name, Email: req.Email, Role: models.RoleNutricionista}
	if err := user.SetPassword(req.Password); err != nil {
		dbError(c, h.Log, err, "Failed to create account")
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, req.Email); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		nutri := models.Nutricionista{
			BaseModel: models.BaseModel{ID: user.ID},
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			CRNCode:   req.CRN,
		}
		return tx.Create(&nutri).Error
	})
	if h.registrationFailed(c, err) {
		return
	}

	utils.Created(c, "Nutritionist account created successfully", user.Sanitize())
}

func (h *AuthHandler) registerPatient(c *gin.Context) {
	var req PatientRegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	reg, an := req.RegisterData, req.AnamneseData

	var birth *time.Time
	if an.BirthDate != "" {
		t, _ := time.Parse("2006-01-02", an.BirthDate)
		birth = &t
	}

	user := models.User{Name: reg.Name, Email: reg.Email, Role: models.RolePatient}
	if err := user.SetPassword(reg.Password); err != nil {
		dbError(c, h.Log, err, "Failed to create account")
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, reg.Email); err != nil {
			return err
		}
		var nutriCount int64
		if err := tx.Model(&models.Nutricionista{}).Where("id = ?", reg.NutriID).Count(&nutriCount).Error; err != nil {
			return err
		}
		if nutriCount == 0 {
			return errUnknownNutricionista
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		patient := models.Patient{
			BaseModel:       models.BaseModel{ID: user.ID},
			Name:            reg.Name,
			Email:           reg.Email,
			Phone:           reg.Phone,
			NutricionistaID: reg.NutriID,
			Status:          models.PatientActive,
		}
		if err := tx.Omit("Nutricionista").Create(&patient).Error; err != nil {
			return err
		}
		anamnese := models.Anamnese{
			NutricionistaID:   reg.NutriID,
			PatientID:         user.ID,
			Name:              reg.Name,
			Weight:            an.Weight,
			Height:            an.Height,
			BirthDate:         birth,
			Objectives:        an.Objectives,
			HealthIssues:      an.HealthIssues,
			Surgeries:         an.Surgeries,
			Digestion:         an.Digestion,
			BowelHabits:       an.BowelHabits,
			StoolConsistency:  an.StoolConsistency,
			WaterIntake:       an.WaterIntake,
			MenstrualCycle:    an.MenstrualCycle,
			PreviousTreatment: an.PreviousTreatment,
			Chewing:           an.Chewing,
			Allergies:         an.Allergies,
			Aversions:         an.Aversions,
			FavoriteFoods:     an.FavoriteFoods,
			Alcohol:           an.Alcohol,
			Medication:        an.Medication,
			PhysicalActivity:  an.PhysicalActivity,
			Sleep:             an.Sleep,
			BloodTests:        an.BloodTests,
			Expectations:      an.Expectations,
		}
		if err := tx.Create(&anamnese).Error; err != nil {
			return err
		}
		if req.AppointmentID == "" {
			return nil
		}
		return tx.Model(&models.Appointment{}).
			Where("id = ? AND nutricionista_id = ? AND patient_id IS NULL", req.AppointmentID, reg.NutriID).
			Update("patient_id", user.ID).Error
	})
	if h.registrationFailed(c, err) {
		return
	}

	resp := user.Sanitize()
	resp.NutricionistaID = reg.NutriID
	utils.Created(c, "Registration and anamnese completed successfully", resp)
}

func ensureEmailFree(tx *gorm.DB, email string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errEmailRegistered
	}
	return nil
}

// registrationFailed answers the error of a registration transaction, if any.
func (h *AuthHandler) registrationFailed(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errEmailRegistered), errors.Is(err, gorm.ErrDuplicatedKey):
		utils.Conflict(c, "This email is already registered. Please log in or use a different email.")
	case errors.Is(err, errUnknownNutricionista):
		utils.NotFound(c, "Nutritionist not found")
	default:
		dbError(c, h.Log, err, "Failed to create account")
	}
	return true
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
	RedirectURL  string               `json:"redirectUrl"`
}

// redirectFor is the landing page of each role.
func redirectFor(role models.Role) string {
	if role == models.RoleNutricionista {
		return "/pages/nutricionista/dashboard.html"
	}
	return "/pages/paciente/dashboard.html"
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
			return
		}
		dbError(c, h.Log, err, "Failed to log in")
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	nutriID, err := h.owningNutricionista(db, &user)
	if err != nil {
		dbError(c, h.Log, err, "Failed to log in")
		return
	}

	access, refresh, ok := h.issueTokens(c, db, &user, nutriID)
	if !ok {
		return
	}

	sanitized := user.Sanitize()
	sanitized.NutricionistaID = nutriID
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         sanitized,
		RedirectURL:  redirectFor(user.Role),
	})
}

// owningNutricionista returns the nutritionist of a patient, empty for a nutritionist.
func (h *AuthHandler) owningNutricionista(db *gorm.DB, user *models.User) (string, error) {
	if user.Role != models.RolePatient {
		return "", nil
	}
	var patient models.Patient
	err := db.Select("nutricionista_id").First(&patient, "id = ?", user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return patient.NutricionistaID, err
}

// issueTokens signs a token pair, stores the refresh token and sets its cookie.
func (h *AuthHandler) issueTokens(c *gin.Context, db *gorm.DB, user *models.User, nutriID string) (string, string, bool) {
	access, refresh, err := utils.GenerateTokens(user, nutriID, h.Cfg)
	if err != nil {
		dbError(c, h.Log, err, "Failed to generate tokens")
		return "", "", false
	}
	ttl := time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour
	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Omit("User").Create(&stored).Error; err != nil {
		dbError(c, h.Log, err, "Failed to store refresh token")
		return "", "", false
	}
	c.SetCookie(refreshCookie, refresh, int(ttl.Seconds()), "/", "", !h.Cfg.IsDev(), true)
	return access, refresh, true
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates the refresh token and issues a new access token. The
// cookie takes precedence over the body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	claims, err := utils.ValidateToken(token, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var stored models.RefreshToken
	err = db.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		token, claims.UserID, false, time.Now()).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to refresh token")
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		dbError(c, h.Log, err, "Failed to refresh token")
		return
	}

	if err := db.Model(&stored).Update("is_revoked", true).Error; err != nil {
		dbError(c, h.Log, err, "Failed to refresh token")
		return
	}

	access, refresh, ok := h.issueTokens(c, db, &user, claims.NutricionistaID)
	if !ok {
		return
	}

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the refresh token and clears its cookie. Unknown tokens are
// not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if token == "" {
		var req LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	if token != "" {
		err := h.DB.WithContext(c.Request.Context()).Model(&models.RefreshToken{}).
			Where("token = ? AND is_revoked = ?", token, false).
			Updates(map[string]interface{}{"is_revoked": true, "expires_at": time.Now()}).Error
		if err != nil {
			dbError(c, h.Log, err, "Failed to log out")
			return
		}
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", !h.Cfg.IsDev(), true)
	utils.Success(c, "Logout successful", gin.H{"redirectUrl": "/pages/login.html"})
}

// Me returns the logged-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var user models.User
	err := h.DB.WithContext(c.Request.Context()).First(&user, "id = ?", id.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "User not found")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to load user")
		return
	}

	resp := user.Sanitize()
	resp.NutricionistaID = id.NutricionistaID
	utils.Success(c, "User fetched successfully", resp)
}
