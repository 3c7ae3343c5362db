package models

import (
	"time"

	"gorm.io/datatypes"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusRejected  AppointmentStatus = "rejected"
	StatusRealized  AppointmentStatus = "realized"
	StatusCancelled AppointmentStatus = "cancelled"
)

// RejectionReason distinguishes a "pick another time" rejection from a definitive one.
type RejectionReason string

const (
	RejectionReschedule   RejectionReason = "reschedule"
	RejectionCancellation RejectionReason = "cancellation"
)

// CancelledBy records which side cancelled an appointment.
type CancelledBy string

const (
	CancelledByPatient       CancelledBy = "patient"
	CancelledByNutricionista CancelledBy = "nutricionista"
)

// Service types offered on the booking page.
const (
	ServiceFirstVisit   = "Primeira Consulta"
	ServiceFollowUp     = "Retorno"
	ServiceOnline       = "Online"
	ServiceReturnVisit  = "Consulta de Retorno"
	ReturnVisitDuration = 45
)

// Appointment is a booking with a nutritionist. PatientID stays empty until the
// patient registers through the booking link, so the contact data is copied at
// booking time.
//
// SlotKey is set while the appointment occupies its time slot and cleared once it
// is rejected or cancelled; its unique index is what prevents double booking.
type Appointment struct {
	BaseModel
	NutricionistaID  string            `gorm:"size:36;index:idx_nutri_schedule;not null" json:"nutriId"`
	PatientID        *string           `gorm:"size:36;index" json:"patientId,omitempty"`
	PatientName      string            `gorm:"size:150;not null" json:"patientName"`
	PatientEmail     string            `gorm:"size:255;not null" json:"patientEmail"`
	PatientPhone     string            `gorm:"size:30" json:"patientPhone"`
	ServiceType      string            `gorm:"size:50;not null" json:"serviceType"`
	DurationMinutes  int               `gorm:"not null" json:"duration"`
	ScheduledAt      time.Time         `gorm:"index:idx_nutri_schedule;not null" json:"scheduledAt"`
	Status           AppointmentStatus `gorm:"size:20;index;default:'pending'" json:"status"`
	SlotKey          *string           `gorm:"size:80;uniqueIndex" json:"-"`
	RejectionReason  *RejectionReason  `gorm:"size:20" json:"rejectionType,omitempty"`
	RejectionMessage string            `gorm:"type:text" json:"rejectionMessage,omitempty"`
	ConfirmedAt      *time.Time        `json:"confirmedAt,omitempty"`
	CancelledBy      *CancelledBy      `gorm:"size:20" json:"cancelledBy,omitempty"`
	CancelledAt      *time.Time        `json:"cancelledAt,omitempty"`
	IsRated          bool              `gorm:"default:false" json:"isRated"`
}

// HoldsSlot reports whether the appointment still blocks its time slot.
func (a *Appointment) HoldsSlot() bool {
	return a.Status != StatusRejected && a.Status != StatusCancelled
}

// SlotKeyFor builds the value stored in Appointment.SlotKey.
func SlotKeyFor(nutricionistaID string, at time.Time) string {
	return nutricionistaID + "|" + at.UTC().Format(time.RFC3339)
}

// NutriAgenda is the working-hours configuration of a nutritionist. It is
// replaced as a whole every time the nutritionist regenerates the agenda.
type NutriAgenda struct {
	NutricionistaID string                      `gorm:"primaryKey;size:36" json:"nutriId"`
	StartTime       string                      `gorm:"size:5;not null" json:"startTime"`
	EndTime         string                      `gorm:"size:5;not null" json:"endTime"`
	SlotDuration    int                         `gorm:"not null" json:"slotDuration"`
	AvailableDays   datatypes.JSONSlice[string] `json:"availableDays"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// HasDay reports whether date (YYYY-MM-DD) is open for booking.
func (a *NutriAgenda) HasDay(date string) bool {
	for _, d := range a.AvailableDays {
		if d == date {
			return true
		}
	}
	return false
}
