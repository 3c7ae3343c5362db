package scheduling

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nutricare-server/internal/models"
)

// CancelPolicy decides what happens to a pending appointment the patient cancels.
type CancelPolicy string

const (
	// CancelRetain keeps the row as cancelled history.
	CancelRetain CancelPolicy = "retain"
	// CancelDelete removes the row.
	CancelDelete CancelPolicy = "delete"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   models.Role
}

// IsNutricionista reports whether the actor is a nutritionist.
func (a Actor) IsNutricionista() bool { return a.Role == models.RoleNutricionista }

// IsPatient reports whether the actor is a patient.
func (a Actor) IsPatient() bool { return a.Role == models.RolePatient }

// Options configures a Service.
type Options struct {
	Location     *time.Location
	Now          func() time.Time
	CancelPolicy CancelPolicy
	// AppURL is the public base URL used to build booking links.
	AppURL string
	Logger zerolog.Logger
}

// Service implements slot availability and the appointment lifecycle on top of a Store.
type Service struct {
	store  Store
	loc    *time.Location
	now    func() time.Time
	policy CancelPolicy
	appURL string
	log    zerolog.Logger
}

// NewService builds a Service. Missing options fall back to UTC, time.Now and
// the retain policy.
func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:  store,
		loc:    opts.Location,
		now:    opts.Now,
		policy: opts.CancelPolicy,
		appURL: opts.AppURL,
		log:    opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.policy == "" {
		s.policy = CancelRetain
	}
	return s
}

// Location returns the time zone slots are expressed in.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the current time in the service time zone.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// BookingLink returns the public pre-booking page of a nutritionist.
func (s *Service) BookingLink(nutricionistaID string) string {
	return fmt.Sprintf("%s/pages/paciente/preSchedule.html?nutriId=%s", s.appURL, nutricionistaID)
}

// DayBounds returns [midnight, next midnight) of date in the service time zone.
func (s *Service) DayBounds(date string) (time.Time, time.Time, error) {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("date must use the YYYY-MM-DD format")
	}
	return day, day.AddDate(0, 0, 1), nil
}
