package container

import (
	"context"
	"sync"
	"time"

	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer manages dependency injection for all services
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// base services
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService

	// infrastructure-facing services
	geocodingService services.InterfaceGeocodingService
	smsService       services.InterfaceSMSService
	mqttAlertService services.InterfaceMQTTAlertService

	// business services
	adminService        services.InterfaceAdminService
	donorService        services.InterfaceDonorService
	patientService      services.InterfacePatientService
	stockService        services.InterfaceStockService
	requestService      services.InterfaceRequestService
	donationService     services.InterfaceDonationService
	feedbackService     services.InterfaceFeedbackService
	auditService        services.InterfaceAuditService
	notificationService services.InterfaceNotificationService
	recommenderService  services.InterfaceRecommenderService
	broadcastService    services.InterfaceBroadcastService
	appointmentService  services.InterfaceAppointmentService
	badgeService        services.InterfaceBadgeService
	reportService       services.InterfaceReportService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warning("Redis ping failed: %v, continuing without cache", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices wires every service in dependency order
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config, c.db)
	c.redisService = services.NewRedisService(c.config)

	c.geocodingService = services.NewGeocodingService(c.config)
	c.smsService = services.NewSMSService(c.db, c.config)

	c.mqttAlertService = services.NewMQTTAlertService(c.config)
	if err := c.mqttAlertService.Connect(); err != nil {
		logger.Warning("MQTT connection failed: %v", err)
	}

	c.auditService = services.NewAuditService(c.db, c.config)
	c.notificationService = services.NewNotificationService(c.db, c.config)

	c.adminService = services.NewAdminService(c.db, c.config)
	c.donorService = services.NewDonorService(c.db, c.config, c.geocodingService)
	c.patientService = services.NewPatientService(c.db, c.config)
	c.stockService = services.NewStockService(c.db, c.config, c.auditService, c.redisService)
	c.badgeService = services.NewBadgeService(c.db, c.config, c.notificationService)

	c.requestService = services.NewRequestService(c.db, c.config, c.stockService,
		c.auditService, c.smsService, c.notificationService, c.mqttAlertService)
	c.donationService = services.NewDonationService(c.db, c.config, c.stockService,
		c.auditService, c.notificationService, c.badgeService)
	c.feedbackService = services.NewFeedbackService(c.db, c.config)
	c.recommenderService = services.NewRecommenderService(c.db, c.config, c.geocodingService)
	c.broadcastService = services.NewBroadcastService(c.db, c.config, c.smsService,
		c.auditService, c.mqttAlertService)
	c.appointmentService = services.NewAppointmentService(c.db, c.config,
		c.notificationService, c.smsService)
	c.reportService = services.NewReportService(c.db, c.config, c.auditService)
}

// GetService returns the service registered under the given name
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "geocoding":
		return c.geocodingService
	case "sms":
		return c.smsService
	case "mqtt_alert":
		return c.mqttAlertService
	case "admin":
		return c.adminService
	case "donor":
		return c.donorService
	case "patient":
		return c.patientService
	case "stock":
		return c.stockService
	case "request":
		return c.requestService
	case "donation":
		return c.donationService
	case "feedback":
		return c.feedbackService
	case "audit":
		return c.auditService
	case "notification":
		return c.notificationService
	case "recommender":
		return c.recommenderService
	case "broadcast":
		return c.broadcastService
	case "appointment":
		return c.appointmentService
	case "badge":
		return c.badgeService
	case "report":
		return c.reportService
	default:
		return nil
	}
}

// GetDB returns the database handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Shutdown releases long-lived connections held by services
func (c *ServiceContainer) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mqttAlertService != nil {
		c.mqttAlertService.Disconnect()
	}
}
