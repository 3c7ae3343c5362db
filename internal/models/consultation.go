package models

import (
	"time"
)

// Consultation records the measurements and SOAP notes of a realized
// appointment. Rows are never updated.
type Consultation struct {
	BaseModel
	AppointmentID    string    `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	PatientID        string    `gorm:"size:36;index;not null" json:"patientId"`
	NutricionistaID  string    `gorm:"size:36;index;not null" json:"nutriId"`
	ConsultationDate time.Time `json:"consultationDate"`

	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	BMI    float64 `gorm:"column:bmi" json:"bmi"`

	CircumWaist   *float64 `json:"circumWaist,omitempty"`
	CircumAbdomen *float64 `json:"circumAbdomen,omitempty"`
	CircumHip     *float64 `json:"circumHip,omitempty"`
	CircumArm     *float64 `json:"circumArm,omitempty"`

	SkinfoldTriceps     *float64 `json:"skinfoldTriceps,omitempty"`
	SkinfoldSubscapular *float64 `json:"skinfoldSubscapular,omitempty"`
	SkinfoldSuprailiac  *float64 `json:"skinfoldSuprailiac,omitempty"`
	SkinfoldAbdominal   *float64 `json:"skinfoldAbdominal,omitempty"`

	BodyFatPercentage *float64 `json:"bodyFatPercentage,omitempty"`

	SubjectiveNotes string `gorm:"type:text;not null" json:"subjectiveNotes"`
	ObjectiveNotes  string `gorm:"type:text;not null" json:"objectiveNotes"`
	AssessmentNotes string `gorm:"type:text;not null" json:"assessmentNotes"`
	PlanNotes       string `gorm:"type:text;not null" json:"planNotes"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
