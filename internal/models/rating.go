package models

// RatingTarget is what a survey answer rates.
type RatingTarget string

const (
	RatingNutricionista RatingTarget = "nutricionista"
	RatingSystem        RatingTarget = "system"
	RatingMealPlan      RatingTarget = "meal_plan"
)

// Rating is one answer of the post-appointment survey.
type Rating struct {
	BaseModel
	AppointmentID   string       `gorm:"size:36;index;not null" json:"appointmentId"`
	NutricionistaID string       `gorm:"size:36;index;not null" json:"nutriId"`
	PatientID       string       `gorm:"size:36;index;not null" json:"patientId"`
	Target          RatingTarget `gorm:"size:20;not null" json:"target"`
	Score           int          `gorm:"not null" json:"score"`
	Comments        string       `gorm:"type:text" json:"comments"`
}
