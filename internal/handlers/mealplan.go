package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/models"
	"nutricare-server/internal/utils"
)

// MealPlanHandler handles the food library and patient meal plans.
type MealPlanHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewMealPlanHandler creates a new MealPlanHandler.
func NewMealPlanHandler(db *gorm.DB, log zerolog.Logger) *MealPlanHandler {
	return &MealPlanHandler{DB: db, Log: log}
}

// FoodEntry is a food listed in the library.
type FoodEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Foods returns the food library grouped by category.
func (h *MealPlanHandler) Foods(c *gin.Context) {
	var foods []models.Food
	if err := h.DB.WithContext(c.Request.Context()).Order("category, name").Find(&foods).Error; err != nil {
		dbError(c, h.Log, err, "Failed to fetch foods")
		return
	}

	library := make(map[string][]FoodEntry)
	for _, f := range foods {
		library[f.Category] = append(library[f.Category], FoodEntry{ID: f.ID, Name: f.Name})
	}
	utils.Success(c, "Foods fetched successfully", library)
}

// MealItemRequest is a food and its quantity inside a meal.
type MealItemRequest struct {
	FoodID   string `json:"foodId" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
}

// MealRequest is one meal of a plan.
type MealRequest struct {
	Name  string            `json:"name" binding:"required"`
	Items []MealItemRequest `json:"items" binding:"dive"`
}

// SaveMealPlanRequest represents a full meal plan.
type SaveMealPlanRequest struct {
	PatientID string        `json:"patientId" binding:"required"`
	Title     string        `json:"title"`
	Meals     []MealRequest `json:"meals" binding:"required,min=1,dive"`
}

// Save replaces the meal plan of a patient of the logged-in nutritionist.
func (h *MealPlanHandler) Save(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req SaveMealPlanRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	plan := models.MealPlan{
		PatientID:       req.PatientID,
		NutricionistaID: id.UserID,
		Title:           req.Title,
	}
	for i, m := range req.Meals {
		meal := models.Meal{Name: m.Name, DisplayOrder: i}
		for _, item := range m.Items {
			meal.Items = append(meal.Items, models.MealItem{FoodID: item.FoodID, Quantity: item.Quantity})
		}
		plan.Meals = append(plan.Meals, meal)
	}

	errPatient := errors.New("patient not found")
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Patient{}).
			Where("id = ? AND nutricionista_id = ?", req.PatientID, id.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errPatient
		}

		var old []models.MealPlan
		if err := tx.Where("patient_id = ?", req.PatientID).Find(&old).Error; err != nil {
			return err
		}
		for i := range old {
			if err := deleteMealPlan(tx, &old[i]); err != nil {
				return err
			}
		}
		return tx.Omit("Meals.Items.Food").Create(&plan).Error
	})
	if errors.Is(err, errPatient) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to save meal plan")
		return
	}
	utils.Created(c, "Meal plan saved successfully", plan)
}

// deleteMealPlan removes a plan with its meals and items.
func deleteMealPlan(tx *gorm.DB, plan *models.MealPlan) error {
	mealIDs := tx.Model(&models.Meal{}).Select("id").Where("meal_plan_id = ?", plan.ID)
	if err := tx.Where("meal_id IN (?)", mealIDs).Delete(&models.MealItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("meal_plan_id = ?", plan.ID).Delete(&models.Meal{}).Error; err != nil {
		return err
	}
	return tx.Delete(plan).Error
}

// Get returns the meal plan of a patient. Patients only see their own plan and
// nutritionists only the plans of their patients.
func (h *MealPlanHandler) Get(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	patientID, ok := validID(c, "patientId")
	if !ok {
		return
	}

	query := h.DB.WithContext(c.Request.Context()).Where("patient_id = ?", patientID)
	switch id.Role {
	case models.RolePatient:
		if patientID != id.UserID {
			utils.Forbidden(c, "You can only view your own meal plan")
			return
		}
	case models.RoleNutricionista:
		query = query.Where("nutricionista_id = ?", id.UserID)
	}

	var plan models.MealPlan
	err := query.
		Preload("Meals", func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }).
		Preload("Meals.Items").
		Preload("Meals.Items.Food").
		Order("created_at DESC").
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Success(c, "No meal plan found", nil)
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to fetch meal plan")
		return
	}
	utils.Success(c, "Meal plan fetched successfully", plan)
}
