package handlers

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

// DashboardHandler serves the dashboard aggregates of both roles.
type DashboardHandler struct {
	DB  *gorm.DB
	Svc Scheduler
	Log zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB, svc Scheduler, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{DB: db, Svc: svc, Log: log}
}

// TodayAppointment is a row of the nutritionist's day.
type TodayAppointment struct {
	ID          string `json:"id"`
	PatientName string `json:"patientName"`
	ServiceType string `json:"serviceType"`
	Time        string `json:"time"`
}

// OverviewKPIs are the headline numbers of the nutritionist dashboard.
type OverviewKPIs struct {
	TodayAppointments int      `json:"todayAppointments"`
	ActivePatients    int64    `json:"activePatients"`
	PendingRequests   int      `json:"pendingRequests"`
	AvgScore          *float64 `json:"avgScore"`
}

// Overview is the nutritionist dashboard.
type Overview struct {
	KPIs              OverviewKPIs       `json:"kpis"`
	TodayAppointments []TodayAppointment `json:"todayAppointments"`
}

// Overview returns today's confirmed appointments, active patients, pending
// requests and the average rating of the logged-in nutritionist.
func (h *DashboardHandler) Overview(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	actor := id.Actor()

	today, err := h.Svc.DayFor(ctx, actor, h.Svc.Now().Format("2006-01-02"))
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}
	pending, err := h.Svc.PendingFor(ctx, actor)
	if err != nil {
		utils.HandleError(c, h.Log, err)
		return
	}

	var active int64
	if err := h.DB.WithContext(ctx).Model(&models.Patient{}).
		Where("nutricionista_id = ? AND status = ?", id.UserID, models.PatientActive).
		Count(&active).Error; err != nil {
		dbError(c, h.Log, err, "Failed to load dashboard")
		return
	}

	avg, err := h.averageScore(c, id.UserID)
	if err != nil {
		dbError(c, h.Log, err, "Failed to load dashboard")
		return
	}

	loc := h.Svc.Now().Location()
	rows := make([]TodayAppointment, 0, len(today))
	for _, a := range today {
		rows = append(rows, TodayAppointment{
			ID:          a.ID,
			PatientName: a.PatientName,
			ServiceType: a.ServiceType,
			Time:        a.ScheduledAt.In(loc).Format("15:04"),
		})
	}

	utils.Success(c, "Dashboard fetched successfully", Overview{
		KPIs: OverviewKPIs{
			TodayAppointments: len(today),
			ActivePatients:    active,
			PendingRequests:   len(pending),
			AvgScore:          avg,
		},
		TodayAppointments: rows,
	})
}

func (h *DashboardHandler) averageScore(c *gin.Context, nutriID string) (*float64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := h.DB.WithContext(c.Request.Context()).Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("nutricionista_id = ? AND target = ?", nutriID, models.RatingNutricionista).
		Scan(&result).Error
	if err != nil || result.Count == 0 {
		return nil, err
	}
	avg := float64(int(result.Avg*10+0.5)) / 10
	return &avg, nil
}

// MetricsQuery selects the period in days.
type MetricsQuery struct {
	Period int `form:"period" binding:"omitempty,oneof=7 30 90 365"`
}

// LabeledSeries is a chart series.
type LabeledSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// MetricsKPIs are the performance numbers of a period.
type MetricsKPIs struct {
	Patients        int64   `json:"patients"`
	Realized        int64   `json:"realized"`
	Retention       float64 `json:"retention"`
	AvgAppointments float64 `json:"avgAppointments"`
}

// Metrics is the performance report of a nutritionist.
type Metrics struct {
	Period           int           `json:"period"`
	KPIs             MetricsKPIs   `json:"kpis"`
	AppointmentTypes LabeledSeries `json:"appointmentTypes"`
	PatientGoals     LabeledSeries `json:"patientGoals"`
}

// Metrics reports realized appointments per service type, patient goals and
// retention (patients with more than one realized appointment) over a period.
func (h *DashboardHandler) Metrics(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var q MetricsQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	if q.Period == 0 {
		q.Period = 30
	}
	ctx := c.Request.Context()
	since := h.Svc.Now().AddDate(0, 0, -q.Period)

	var patients int64
	if err := h.DB.WithContext(ctx).Model(&models.Patient{}).
		Where("nutricionista_id = ?", id.UserID).
		Count(&patients).Error; err != nil {
		dbError(c, h.Log, err, "Failed to load metrics")
		return
	}

	var realized []models.Appointment
	if err := h.DB.WithContext(ctx).
		Where("nutricionista_id = ? AND status = ? AND scheduled_at >= ?", id.UserID, models.StatusRealized, since).
		Find(&realized).Error; err != nil {
		dbError(c, h.Log, err, "Failed to load metrics")
		return
	}

	var anamneses []models.Anamnese
	if err := h.DB.WithContext(ctx).
		Select("objectives").
		Where("nutricionista_id = ?", id.UserID).
		Find(&anamneses).Error; err != nil {
		dbError(c, h.Log, err, "Failed to load metrics")
		return
	}

	types := map[string]int{}
	perPatient := map[string]int{}
	for _, a := range realized {
		types[a.ServiceType]++
		if a.PatientID != nil {
			perPatient[*a.PatientID]++
		}
	}
	goals := map[string]int{}
	for _, an := range anamneses {
		for _, g := range an.Objectives {
			if g = strings.TrimSpace(g); g != "" {
				goals[g]++
			}
		}
	}

	kpis := MetricsKPIs{Patients: patients, Realized: int64(len(realized))}
	if len(perPatient) > 0 {
		returning := 0
		for _, n := range perPatient {
			if n > 1 {
				returning++
			}
		}
		kpis.Retention = round1(float64(returning) * 100 / float64(len(perPatient)))
		kpis.AvgAppointments = round1(float64(len(realized)) / float64(len(perPatient)))
	}

	utils.Success(c, "Metrics fetched successfully", Metrics{
		Period:           q.Period,
		KPIs:             kpis,
		AppointmentTypes: series(types),
		PatientGoals:     series(goals),
	})
}

// series orders counts by descending value, then label.
func series(counts map[string]int) LabeledSeries {
	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	s := LabeledSeries{Labels: labels, Data: make([]int, len(labels))}
	for i, l := range labels {
		s.Data[i] = counts[l]
	}
	return s
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// NextAppointment is the next confirmed appointment of a patient.
type NextAppointment struct {
	ID          string    `json:"id"`
	ServiceType string    `json:"serviceType"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Duration    int       `json:"duration"`
}

// EvolutionPoint is one measurement of the patient history.
type EvolutionPoint struct {
	Date              time.Time `json:"date"`
	Weight            float64   `json:"weight"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage"`
	CircumWaist       *float64  `json:"circumWaist"`
	CircumAbdomen     *float64  `json:"circumAbdomen"`
	CircumHip         *float64  `json:"circumHip"`
}

// PatientKPIs are the headline numbers of the patient dashboard.
type PatientKPIs struct {
	CurrentWeight    float64  `json:"currentWeight"`
	InitialWeight    float64  `json:"initialWeight"`
	Height           float64  `json:"height"`
	BMI              float64  `json:"bmi"`
	WeightDifference float64  `json:"weightDifference"`
	Objectives       []string `json:"objectives"`
}

// PatientOverview is the patient dashboard.
type PatientOverview struct {
	PatientName      string           `json:"patientName"`
	NutriID          string           `json:"nutriId"`
	NutriName        string           `json:"nutriName"`
	NutriPhone       string           `json:"nutriPhone"`
	KPIs             PatientKPIs      `json:"kpis"`
	NextAppointment  *NextAppointment `json:"nextAppointment"`
	EvolutionHistory []EvolutionPoint `json:"evolutionHistory"`
}

// PatientOverview returns weight evolution, BMI, objectives and the next
// appointment of the logged-in patient. The first anamnese is the baseline and
// the latest consultation the current state.
func (h *DashboardHandler) PatientOverview(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)

	var patient models.Patient
	err := db.Preload("Nutricionista").First(&patient, "id = ?", id.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "Patient data not found")
		return
	}
	if err != nil {
		dbError(c, h.Log, err, "Failed to load dashboard")
		return
	}

	var baseline models.Anamnese
	hasBaseline := true
	if err := db.Where("patient_id = ?", id.UserID).Order("created_at").First(&baseline).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			dbError(c, h.Log, err, "Failed to load dashboard")
			return
		}
		hasBaseline = false
	}

	var consultations []models.Consultation
	if err := db.Where("patient_id = ?", id.UserID).Order("consultation_date").Find(&consultations).Error; err != nil {
		dbError(c, h.Log, err, "Failed to load dashboard")
		return
	}

	var next *NextAppointment
	var upcoming models.Appointment
	err = db.Where("patient_id = ? AND status = ? AND scheduled_at > ?", id.UserID, models.StatusConfirmed, h.Svc.Now()).
		Order("scheduled_at").
		First(&upcoming).Error
	switch {
	case err == nil:
		next = &NextAppointment{
			ID:          upcoming.ID,
			ServiceType: upcoming.ServiceType,
			ScheduledAt: upcoming.ScheduledAt,
			Duration:    upcoming.DurationMinutes,
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		dbError(c, h.Log, err, "Failed to load dashboard")
		return
	}

	kpis := PatientKPIs{Objectives: []string{}}
	history := make([]EvolutionPoint, 0, len(consultations)+1)
	if hasBaseline {
		kpis.InitialWeight = baseline.Weight
		kpis.CurrentWeight = baseline.Weight
		kpis.Height = baseline.Height
		for _, o := range baseline.Objectives {
			if o = strings.TrimSpace(o); o != "" {
				kpis.Objectives = append(kpis.Objectives, o)
			}
		}
		history = append(history, EvolutionPoint{Date: baseline.CreatedAt, Weight: baseline.Weight})
	}
	for _, cons := range consultations {
		history = append(history, EvolutionPoint{
			Date:              cons.ConsultationDate,
			Weight:            cons.Weight,
			BodyFatPercentage: cons.BodyFatPercentage,
			CircumWaist:       cons.CircumWaist,
			CircumAbdomen:     cons.CircumAbdomen,
			CircumHip:         cons.CircumHip,
		})
	}
	if n := len(consultations); n > 0 {
		kpis.CurrentWeight = consultations[n-1].Weight
		kpis.Height = consultations[n-1].Height
	}
	kpis.BMI = scheduling.BMI(kpis.CurrentWeight, kpis.Height)
	kpis.WeightDifference = round1(kpis.CurrentWeight - kpis.InitialWeight)

	utils.Success(c, "Dashboard fetched successfully", PatientOverview{
		PatientName:      patient.Name,
		NutriID:          patient.NutricionistaID,
		NutriName:        patient.Nutricionista.Name,
		NutriPhone:       patient.Nutricionista.Phone,
		KPIs:             kpis,
		NextAppointment:  next,
		EvolutionHistory: history,
	})
}
