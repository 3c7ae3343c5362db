package models

import (
	"time"

	"gorm.io/datatypes"
)

// Nutricionista is the professional profile. ID equals the owning User ID.
type Nutricionista struct {
	BaseModel
	Name    string `gorm:"size:150;not null" json:"name"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Phone   string `gorm:"size:30" json:"phone"`
	CRNCode string `gorm:"column:crn_code;size:20" json:"crn"`
}

// PatientStatus marks whether a patient is still followed by the nutritionist.
type PatientStatus string

const (
	PatientActive   PatientStatus = "active"
	PatientInactive PatientStatus = "inactive"
)

// Patient is the patient profile. ID equals the owning User ID.
type Patient struct {
	BaseModel
	Name            string        `gorm:"size:150;not null" json:"name"`
	Email           string        `gorm:"size:255;not null" json:"email"`
	Phone           string        `gorm:"size:30" json:"phone"`
	NutricionistaID string        `gorm:"size:36;index;not null" json:"nutriId"`
	Status          PatientStatus `gorm:"size:20;default:'active'" json:"status"`

	Nutricionista Nutricionista `gorm:"foreignKey:NutricionistaID" json:"-"`
}

// Anamnese is the intake questionnaire captured at patient registration.
type Anamnese struct {
	BaseModel
	NutricionistaID   string                      `gorm:"size:36;index" json:"nutriId"`
	PatientID         string                      `gorm:"size:36;index" json:"patientId"`
	Name              string                      `gorm:"size:150" json:"name"`
	Weight            float64                     `json:"weight"`
	Height            float64                     `json:"height"`
	BirthDate         *time.Time                  `json:"birthDate,omitempty"`
	Objectives        datatypes.JSONSlice[string] `json:"objectives"`
	HealthIssues      string                      `gorm:"type:text" json:"healthIssues"`
	Surgeries         string                      `gorm:"type:text" json:"surgeries"`
	Digestion         string                      `gorm:"size:255" json:"digestion"`
	BowelHabits       string                      `gorm:"size:255" json:"bowelHabits"`
	StoolConsistency  string                      `gorm:"size:255" json:"stoolConsistency"`
	WaterIntake       string                      `gorm:"size:255" json:"waterIntake"`
	MenstrualCycle    string                      `gorm:"size:255" json:"menstrualCycle"`
	PreviousTreatment string                      `gorm:"type:text" json:"previousTreatment"`
	Chewing           string                      `gorm:"size:255" json:"chewing"`
	Allergies         string                      `gorm:"type:text" json:"allergies"`
	Aversions         string                      `gorm:"type:text" json:"aversions"`
	FavoriteFoods     string                      `gorm:"type:text" json:"favoriteFoods"`
	Alcohol           string                      `gorm:"size:255" json:"alcohol"`
	Medication        string                      `gorm:"type:text" json:"medication"`
	PhysicalActivity  string                      `gorm:"type:text" json:"physicalActivity"`
	Sleep             string                      `gorm:"size:255" json:"sleep"`
	BloodTests        string                      `gorm:"type:text" json:"bloodTests"`
	Expectations      string                      `gorm:"type:text" json:"expectations"`
}
