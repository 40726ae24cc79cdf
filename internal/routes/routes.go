package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/config"
	"github.com/BruksfildServices01/barber-assistant/internal/conversation"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/handlers"
	"github.com/BruksfildServices01/barber-assistant/internal/intent"
	"github.com/BruksfildServices01/barber-assistant/internal/interpreter"
	"github.com/BruksfildServices01/barber-assistant/internal/middleware"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-assistant/internal/usecase/appointment"
)

// Deps are the long-lived pieces built by cmd/api.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger

	Store directory.Store
	// DB is nil when the directory is not backed by postgres.
	DB *gorm.DB

	States      conversation.Repository
	Locks       conversation.Locker
	Interpreter interpreter.Interpreter

	Sender notifier.Sender
	Audit  *audit.Dispatcher
	Notify *notifier.Dispatcher
}

func RegisterRoutes(r *gin.Engine, deps Deps) error {
	cfg := deps.Config

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(deps.Log),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	// ======================================================
	// INFRA
	// ======================================================
	slots, err := availability.NewEngine(deps.Store, cfg.DefaultOpen, cfg.DefaultClose)
	if err != nil {
		return err
	}

	// ======================================================
	// USE CASES
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(deps.Store, slots, deps.Audit, deps.Notify)
	cancelUC := ucAppointment.NewCancelAppointment(deps.Store, deps.Audit, deps.Notify)
	completeUC := ucAppointment.NewCompleteAppointment(deps.Store, deps.Audit)
	remindersUC := ucAppointment.NewSendReminders(deps.Store, deps.Notify)
	listByDateUC := ucAppointment.NewListAppointmentsByDate(deps.Store)
	upcomingUC := ucAppointment.NewListUpcoming(deps.Store)

	// ======================================================
	// CONVERSATION
	// ======================================================
	machine := conversation.NewMachine(
		deps.Store,
		slots,
		bookUC,
		cancelUC,
		upcomingUC,
		conversation.Settings{
			BusinessName: cfg.BusinessName,
			HorizonDays:  cfg.HorizonDays,
		},
		timezone.Now,
		deps.Log.Named("conversation"),
	)

	router := intent.NewRouter(
		deps.Store,
		deps.States,
		deps.Locks,
		machine,
		deps.Interpreter,
		cfg.HistoryLimit,
		deps.Log.Named("intent"),
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	webhookHandler := handlers.NewWebhookHandler(router, deps.Sender, cfg.WhatsAppVerifyToken, deps.Log.Named("webhook"))
	authHandler := handlers.NewAuthHandler(cfg)
	meHandler := handlers.NewMeHandler(cfg)
	appointmentHandler := handlers.NewAppointmentHandler(listByDateUC, completeUC, cancelUC, remindersUC)
	serviceHandler := handlers.NewServiceHandler(deps.Store, deps.Audit)
	barberHandler := handlers.NewBarberHandler(deps.Store, deps.Audit)
	customerHandler := handlers.NewCustomerHandler(deps.Store)
	publicHandler := handlers.NewPublicHandler(deps.Store, slots)

	// ======================================================
	// ROUTES
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/webhook", webhookHandler.Verify)
	r.POST("/webhook", webhookHandler.Receive)

	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		public := api.Group("/public")
		{
			public.GET("/services", publicHandler.ListServices)
			public.GET("/availability", publicHandler.Availability)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly(cfg.JWTSecret))
		{
			admin.GET("/me", meHandler.GetMe)

			admin.GET("/appointments", appointmentHandler.ListByDate)
			admin.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			admin.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)
			admin.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			admin.POST("/reminders", appointmentHandler.SendReminders)

			admin.GET("/services", serviceHandler.List)
			admin.POST("/services", serviceHandler.Create)
			admin.PATCH("/services/:id", serviceHandler.Update)

			admin.GET("/barbers", barberHandler.List)
			admin.POST("/barbers", barberHandler.Create)
			admin.PATCH("/barbers/:id", barberHandler.Update)
			admin.PUT("/barbers/:id/working-hours", barberHandler.UpdateWorkingHours)

			admin.GET("/customers", customerHandler.List)

			if deps.DB != nil {
				admin.GET("/audit-logs", handlers.NewAuditLogsHandler(deps.DB).List)
			}
		}
	}

	return nil
}
