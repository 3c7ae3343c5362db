package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nutricare-server/internal/config"
	"nutricare-server/internal/handlers"
	"nutricare-server/internal/middleware"
	"nutricare-server/internal/models"
)

// Deps are the shared dependencies of the handlers.
type Deps struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Svc    handlers.Scheduler
	Logger zerolog.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.DB, d.Cfg, d.Logger)
	agendaHandler := handlers.NewAgendaHandler(d.Svc, d.Logger)
	appointmentHandler := handlers.NewAppointmentHandler(d.Svc, d.Logger)
	notificationHandler := handlers.NewNotificationHandler(d.Svc, d.Logger)
	surveyHandler := handlers.NewSurveyHandler(d.Svc, d.Logger)
	consultationHandler := handlers.NewConsultationHandler(d.DB, d.Svc, d.Logger)
	dashboardHandler := handlers.NewDashboardHandler(d.DB, d.Svc, d.Logger)
	nutriHandler := handlers.NewNutricionistaHandler(d.DB, d.Svc, d.Logger)
	patientHandler := handlers.NewPatientHandler(d.DB, d.Logger)
	mealPlanHandler := handlers.NewMealPlanHandler(d.DB, d.Logger)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		public.GET("/schedule/available", appointmentHandler.Available)
		// A logged-in patient is linked to the booking.
		public.POST("/schedule/book", middleware.OptionalAuth(d.Cfg), appointmentHandler.Book)

		public.GET("/nutricionistas/:id", nutriHandler.Public)
		public.GET("/nutricionistas/:id/contact", nutriHandler.Contact)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(d.Cfg))
	{
		private.POST("/auth/logout", authHandler.Logout)
		private.GET("/auth/me", authHandler.Me)

		// Either role; patients only see their own plan.
		private.GET("/mealplan/:patientId", mealPlanHandler.Get)

		nutri := private.Group("")
		nutri.Use(middleware.RoleAuthMiddleware(models.RoleNutricionista))
		{
			profile := nutri.Group("/nutricionista")
			{
				profile.GET("/details", nutriHandler.GetDetails)
				profile.PUT("/details", nutriHandler.UpdateDetails)
				profile.PUT("/password", nutriHandler.UpdatePassword)
				profile.PUT("/agenda", agendaHandler.Generate)
				profile.GET("/link", nutriHandler.Link)
				profile.GET("/appointments", appointmentHandler.ForDay)
				profile.GET("/appointments/pending", appointmentHandler.Pending)
				profile.PUT("/appointments/status", appointmentHandler.UpdateStatus)
			}

			nutri.POST("/appointments/schedule-return", appointmentHandler.ScheduleReturn)

			nutri.POST("/consultations", consultationHandler.Create)
			nutri.GET("/consultations/:patientId", consultationHandler.History)

			nutri.GET("/patients", patientHandler.List)
			nutri.GET("/patients/:id", patientHandler.Details)
			nutri.GET("/patients/:id/anamnese", patientHandler.Anamnese)

			nutri.GET("/foods", mealPlanHandler.Foods)
			nutri.POST("/mealplan", mealPlanHandler.Save)

			nutri.GET("/dashboard/overview", dashboardHandler.Overview)
			nutri.GET("/dashboard/metrics", dashboardHandler.Metrics)
		}

		patient := private.Group("/patient")
		patient.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			patient.GET("/appointments", appointmentHandler.PatientAppointments)
			patient.DELETE("/appointments", appointmentHandler.Cancel)
			patient.GET("/notifications", notificationHandler.List)
			patient.GET("/dashboard-overview", dashboardHandler.PatientOverview)
			patient.POST("/survey", surveyHandler.Submit)
		}
	}
}
