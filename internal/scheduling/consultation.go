package scheduling

import (
	"context"
	"math"
	"strings"

	"nutricare-server/internal/models"
)

// ConsultationInput holds what the nutritionist records at the end of an appointment.
type ConsultationInput struct {
	AppointmentID string
	PatientID     string
	Weight        float64
	Height        float64

	CircumWaist, CircumAbdomen, CircumHip, CircumArm                              *float64
	SkinfoldTriceps, SkinfoldSubscapular, SkinfoldSuprailiac, SkinfoldAbdominal *float64
	BodyFatPercentage                                                             *float64

	SubjectiveNotes string
	ObjectiveNotes  string
	AssessmentNotes string
	PlanNotes       string
}

func (in ConsultationInput) validate() error {
	switch {
	case strings.TrimSpace(in.AppointmentID) == "" || strings.TrimSpace(in.PatientID) == "":
		return invalid("appointment and patient are required")
	case in.Weight <= 0 || in.Height <= 0:
		return invalid("weight and height must be positive")
	case strings.TrimSpace(in.SubjectiveNotes) == "",
		strings.TrimSpace(in.ObjectiveNotes) == "",
		strings.TrimSpace(in.AssessmentNotes) == "",
		strings.TrimSpace(in.PlanNotes) == "":
		return invalid("all SOAP notes are required")
	}
	return nil
}

// BMI computes weight (kg) / height (m) squared from a height in centimetres,
// rounded to one decimal. Non-positive inputs give 0.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}

// RecordConsultation stores the consultation of an appointment and realizes it,
// in one transaction. Only confirmed or already realized appointments without a
// consultation are eligible.
func (s *Service) RecordConsultation(ctx context.Context, actor Actor, in ConsultationInput) (*models.Consultation, error) {
	if !actor.IsNutricionista() {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var consultation *models.Consultation
	err := s.store.Transaction(ctx, func(tx Store) error {
		appt, err := tx.Appointments().Lock(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if appt.NutricionistaID != actor.UserID {
			return ErrForbidden
		}
		if appt.Status != models.StatusConfirmed && appt.Status != models.StatusRealized {
			return ErrNotEligible
		}
		if appt.PatientID != nil && *appt.PatientID != in.PatientID {
			return invalid("the appointment belongs to another patient")
		}
		exists, err := tx.Consultations().ExistsForAppointment(ctx, appt.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrNotEligible
		}

		consultation = &models.Consultation{
			AppointmentID:       appt.ID,
			PatientID:           in.PatientID,
			NutricionistaID:     actor.UserID,
			ConsultationDate:    appt.ScheduledAt,
			Weight:              in.Weight,
			Height:              in.Height,
			BMI:                 BMI(in.Weight, in.Height),
			CircumWaist:         in.CircumWaist,
			CircumAbdomen:       in.CircumAbdomen,
			CircumHip:           in.CircumHip,
			CircumArm:           in.CircumArm,
			SkinfoldTriceps:     in.SkinfoldTriceps,
			SkinfoldSubscapular: in.SkinfoldSubscapular,
			SkinfoldSuprailiac:  in.SkinfoldSuprailiac,
			SkinfoldAbdominal:   in.SkinfoldAbdominal,
			BodyFatPercentage:   in.BodyFatPercentage,
			SubjectiveNotes:     strings.TrimSpace(in.SubjectiveNotes),
			ObjectiveNotes:      strings.TrimSpace(in.ObjectiveNotes),
			AssessmentNotes:     strings.TrimSpace(in.AssessmentNotes),
			PlanNotes:           strings.TrimSpace(in.PlanNotes),
		}
		if err := tx.Consultations().Create(ctx, consultation); err != nil {
			return err
		}

		if appt.PatientID == nil {
			pid := in.PatientID
			appt.PatientID = &pid
		}
		if appt.Status == models.StatusConfirmed {
			if err := Transition(appt, Event{Kind: EventRealize}, s.now()); err != nil {
				return err
			}
		}
		return tx.Appointments().Update(ctx, appt)
	})
	if err != nil {
		return nil, storeErr("record consultation", err)
	}
	s.log.Info().Str("appointment_id", in.AppointmentID).Str("consultation_id", consultation.ID).Msg("consultation recorded")
	return consultation, nil
}
