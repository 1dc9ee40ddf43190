package routes

import (
	"time"

	_ "bloodbridge-http-service/docs"
	"bloodbridge-http-service/internal/app/controllers"
	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter builds the gin engine with all middleware and routes wired
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *container.ServiceContainer) {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Metrics())

	serviceContainer := container.NewServiceContainer(db, cfg, nil)
	middleware.InitAuthMiddleware(cfg, db)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", middleware.MetricsHandler())

	registerRoutes(r, serviceContainer)
	return r, serviceContainer
}

// registerRoutes wires all API routes
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerDonorRoutes(api, container)
	registerPatientRoutes(api, container)
	registerAdminRoutes(api, container)
}

// registerPublicRoutes wires routes that need no token
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// The anonymous-traffic budget lives on its own subgroup so it never
	// throttles the authenticated route groups registered on api.
	public := api.Group("/")
	// 10 requests per second per IP, burst of 20
	public.Use(middleware.IPRateLimiter(10, 20))

	healthController := controllers.NewHealthCheckController()
	public.GET("/ping", healthController.Ping)
	public.GET("/health", healthController.Ping)

	public.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))
	public.POST("/auth/register/donor", controllers.HandleJWTFunc(container, "registerDonor"))
	public.POST("/auth/register/patient", controllers.HandleJWTFunc(container, "registerPatient"))

	// Public stock board, served from the Redis snapshot when warm
	public.GET("/stocks", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleStockFunc(container, "getStocks"))
	public.GET("/stocks/:group", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleStockFunc(container, "getStock"))

	// Anonymous urgent requests get a tighter per-path budget
	quickGroup := public.Group("/requests")
	quickGroup.Use(middleware.PathRateLimiter(2, 5))
	quickGroup.POST("/quick", controllers.HandleRequestFunc(container, "createQuickRequest"))
}

// registerDonorRoutes wires routes for authenticated donors
func registerDonorRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	donor := api.Group("/")
	donor.Use(middleware.AuthenticateDonor())
	donor.Use(middleware.IPRateLimiter(30, 50))

	donor.PUT("/donors/me/availability", controllers.HandleDonorFunc(container, "setAvailability"))
	donor.PUT("/donors/me/medical", controllers.HandleDonorFunc(container, "updateMedicalProfile"))
	donor.GET("/donors/me/donations", controllers.HandleDonorFunc(container, "getMyDonations"))
	donor.GET("/donors/me/badges", controllers.HandleDonorFunc(container, "getMyBadges"))
	donor.GET("/donors/me/requests", controllers.HandleRequestFunc(container, "getMyRequests"))

	donor.POST("/donations", controllers.HandleDonationFunc(container, "createDonation"))

	donor.GET("/appointments", controllers.HandleAppointmentFunc(container, "getMyAppointments"))
	donor.POST("/appointments", controllers.HandleAppointmentFunc(container, "bookAppointment"))
	donor.DELETE("/appointments/:id", controllers.HandleAppointmentFunc(container, "cancelAppointment"))
	donor.GET("/appointments/slots", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleAppointmentFunc(container, "getSlots"))
}

// registerPatientRoutes wires routes for authenticated patients
func registerPatientRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	patient := api.Group("/")
	patient.Use(middleware.AuthenticatePatient())
	patient.Use(middleware.IPRateLimiter(30, 50))

	patient.GET("/patients/me/requests", controllers.HandlePatientFunc(container, "getMyRequests"))
}

// registerSharedRoutes wires routes any authenticated user may call
func registerSharedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	shared := api.Group("/")
	shared.Use(middleware.Authentication())
	shared.Use(middleware.IPRateLimiter(30, 50))

	shared.POST("/requests", controllers.HandleRequestFunc(container, "createRequest"))
	shared.POST("/feedback", controllers.HandleFeedbackFunc(container, "createFeedback"))

	shared.GET("/notifications", controllers.HandleNotificationFunc(container, "getNotifications"))
	shared.POST("/notifications/:id/read", controllers.HandleNotificationFunc(container, "markRead"))
	shared.POST("/notifications/read-all", controllers.HandleNotificationFunc(container, "markAllRead"))
}

// registerAdminRoutes wires staff-only routes
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	registerSharedRoutes(api, container)

	auth := api.Group("/")
	auth.Use(middleware.AuthenticateAdmin())
	auth.Use(middleware.IPRateLimiter(30, 50))

	adminGroup := auth.Group("/admins")
	adminGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleAdminFunc(container, "getAdmins"))
	adminGroup.POST("", controllers.HandleAdminFunc(container, "createAdmin"))
	adminGroup.PUT("/:id", controllers.HandleAdminFunc(container, "updateAdmin"))
	adminGroup.DELETE("/:id", controllers.HandleAdminFunc(container, "deleteAdmin"))

	auth.GET("/dashboard", middleware.Cache(middleware.CacheConfig{Expiration: 10 * time.Second}), controllers.HandleAdminFunc(container, "getDashboard"))
	auth.GET("/audit-logs", controllers.HandleAdminFunc(container, "getAuditLogs"))

	donorGroup := auth.Group("/donors")
	donorGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleDonorFunc(container, "getDonors"))
	donorGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleDonorFunc(container, "getDonor"))
	donorGroup.PUT("/:id", controllers.HandleDonorFunc(container, "updateDonor"))
	donorGroup.DELETE("/:id", controllers.HandleDonorFunc(container, "deleteDonor"))

	patientGroup := auth.Group("/patients")
	patientGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandlePatientFunc(container, "getPatients"))
	patientGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandlePatientFunc(container, "getPatient"))
	patientGroup.PUT("/:id", controllers.HandlePatientFunc(container, "updatePatient"))
	patientGroup.DELETE("/:id", controllers.HandlePatientFunc(container, "deletePatient"))

	requestGroup := auth.Group("/requests")
	requestGroup.GET("", controllers.HandleRequestFunc(container, "getRequests"))
	requestGroup.GET("/:id", controllers.HandleRequestFunc(container, "getRequest"))
	requestGroup.POST("/:id/approve", controllers.HandleRequestFunc(container, "approveRequest"))
	requestGroup.POST("/:id/reject", controllers.HandleRequestFunc(container, "rejectRequest"))
	requestGroup.GET("/:id/recommendations", controllers.HandleRequestFunc(container, "getRecommendations"))

	donationGroup := auth.Group("/donations")
	donationGroup.GET("", controllers.HandleDonationFunc(container, "getDonations"))
	donationGroup.POST("/:id/approve", controllers.HandleDonationFunc(container, "approveDonation"))
	donationGroup.POST("/:id/reject", controllers.HandleDonationFunc(container, "rejectDonation"))

	auth.POST("/stocks/adjust", controllers.HandleStockFunc(container, "adjustStock"))

	feedbackGroup := auth.Group("/feedback")
	feedbackGroup.GET("", controllers.HandleFeedbackFunc(container, "getFeedback"))
	feedbackGroup.DELETE("/:id", controllers.HandleFeedbackFunc(container, "deleteFeedback"))

	emergencyGroup := auth.Group("/emergency")
	emergencyGroup.POST("/broadcasts", controllers.HandleEmergencyFunc(container, "sendBroadcast"))
	emergencyGroup.GET("/broadcasts", controllers.HandleEmergencyFunc(container, "getBroadcasts"))
	emergencyGroup.GET("/broadcasts/:id", controllers.HandleEmergencyFunc(container, "getBroadcast"))

	slotGroup := auth.Group("/appointments/slots")
	slotGroup.POST("", controllers.HandleAppointmentFunc(container, "createSlot"))
	slotGroup.DELETE("/:id", controllers.HandleAppointmentFunc(container, "deleteSlot"))

	reportGroup := auth.Group("/reports")
	reportGroup.GET("/export", controllers.HandleReportFunc(container, "exportReport"))
	reportGroup.GET("/exports", controllers.HandleReportFunc(container, "getExportLogs"))
}
