package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"klinik-app-server/internal/booking"
	"klinik-app-server/internal/chatbot"
	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/config"
	"klinik-app-server/internal/handlers"
	"klinik-app-server/internal/middleware"
	"klinik-app-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, chatClient *chatbot.Client, log zerolog.Logger) {
	clk := clock.System()
	bookingSvc := booking.NewService(db, clk, log)

	authHandler := handlers.NewAuthHandler(db, cfg, log)
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db, log)
	scheduleHandler := handlers.NewScheduleHandler(db)
	visitHandler := handlers.NewVisitHandler(db, bookingSvc)
	recordHandler := handlers.NewMedicalRecordHandler(db)
	reportHandler := handlers.NewReportHandler(db)
	chatHandler := handlers.NewChatHandler(db, chatClient, clk, log)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Portal account management (admin only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Doctor roster: readable by everyone, managed by admin
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)

			adminDoctors := doctorRoutes.Group("")
			adminDoctors.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminDoctors.POST("", doctorHandler.CreateDoctor)
				adminDoctors.PUT("/:id", doctorHandler.UpdateDoctor)
				adminDoctors.DELETE("/:id", doctorHandler.DeleteDoctor)
			}
		}

		// Patient registry
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor, models.RoleManagement), patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID) // patients self-restricted in handler
			patientRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), patientHandler.CreatePatient)
			patientRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), patientHandler.UpdatePatient)
		}

		// Schedule catalog: readable by everyone, managed by admin
		scheduleRoutes := private.Group("/schedules")
		{
			scheduleRoutes.GET("", scheduleHandler.GetSchedules)
			scheduleRoutes.GET("/day/:day", scheduleHandler.GetSchedulesForDay)

			adminSchedules := scheduleRoutes.Group("")
			adminSchedules.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminSchedules.POST("", scheduleHandler.CreateSchedule)
				adminSchedules.PUT("/:id", scheduleHandler.UpdateSchedule)
				adminSchedules.DELETE("/:id", scheduleHandler.DeleteSchedule)
			}
		}

		// Visit lifecycle; the booking service enforces the role policy and
		// ownership on every mutation, route middleware just narrows the surface.
		visitRoutes := private.Group("/visits")
		{
			visitRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RolePatient), visitHandler.BookVisit)
			visitRoutes.GET("", visitHandler.GetVisits)
			visitRoutes.GET("/:id", visitHandler.GetVisitByID)
			visitRoutes.PATCH("/:id/start", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), visitHandler.StartExamination)
			visitRoutes.PATCH("/:id/cancel", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), visitHandler.CancelVisit)
			visitRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor), visitHandler.CompleteExamination)
		}

		// Medical records: written only via the examination workflow
		recordRoutes := private.Group("/medical-records")
		{
			recordRoutes.GET("/visit/:visitId", recordHandler.GetRecordForVisit)
			recordRoutes.GET("/patient/:patientId", recordHandler.GetRecordsForPatient)
		}

		// Period report (management and admin)
		reportRoutes := private.Group("/reports")
		reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManagement))
		{
			reportRoutes.GET("/visits", reportHandler.GetVisitReport)
		}

		// Patient portal assistant
		private.POST("/chat", chatHandler.Chat)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
