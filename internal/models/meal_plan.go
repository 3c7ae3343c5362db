package models

// Food is an entry of the shared food library.
type Food struct {
	BaseModel
	Name     string `gorm:"size:150;not null" json:"name"`
	Category string `gorm:"size:80;index;not null" json:"category"`
}

// MealPlan is the current eating plan of a patient. Saving a new plan replaces
// the previous one.
type MealPlan struct {
	BaseModel
	PatientID       string `gorm:"size:36;index;not null" json:"patientId"`
	NutricionistaID string `gorm:"size:36;index;not null" json:"nutriId"`
	Title           string `gorm:"size:150" json:"title"`

	Meals []Meal `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE" json:"meals"`
}

// Meal is one named meal (breakfast, lunch...) inside a plan.
type Meal struct {
	BaseModel
	MealPlanID   string `gorm:"size:36;index;not null" json:"-"`
	Name         string `gorm:"size:100;not null" json:"name"`
	DisplayOrder int    `json:"displayOrder"`

	Items []MealItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"items"`
}

// MealItem is a food with its quantity inside a meal.
type MealItem struct {
	BaseModel
	MealID   string `gorm:"size:36;index;not null" json:"-"`
	FoodID   string `gorm:"size:36;not null" json:"foodId"`
	Quantity string `gorm:"size:80" json:"quantity"`

	Food Food `gorm:"foreignKey:FoodID" json:"food"`
}
