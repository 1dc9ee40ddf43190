// @title           BloodBridge HTTP Service API
// @version         1.0
// @description     A blood bank management system covering donors, patients, requests, donations and emergency alerts
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@bloodbridge.local

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"bloodbridge-http-service/internal/app/jobs"
	"bloodbridge-http-service/internal/app/routes"
	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/internal/infrastructure/database"
	Logger "bloodbridge-http-service/pkg/logger"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Environment variables may already be set another way, so a missing
	// .env file is not fatal
	if err := godotenv.Load(); err != nil {
		Logger.Warning("could not load .env file: %v", err)
	} else {
		Logger.Info(".env file loaded")
	}

	cfg := config.GetConfig()

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("failed to create database connection pool: %v", err)
	}
	db := pool.GetDB()

	if cfg.DBMigrationMode == "drop" {
		log.Println("warning: running in drop mode, all tables will be dropped and recreated")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("failed to drop and recreate tables: %v", err)
		}
	} else {
		if err := autoMigrate(db); err != nil {
			log.Fatalf("auto migration failed: %v", err)
		}
	}

	if err := seedBaseline(db, cfg); err != nil {
		log.Fatalf("failed to seed baseline data: %v", err)
	}

	r, serviceContainer := routes.SetupRouter(db, cfg)

	smsService := serviceContainer.GetService("sms").(services.InterfaceSMSService)
	dispatcher := jobs.NewSMSDispatcher(db, smsService)
	dispatchScheduler := dispatcher.StartDispatchCron()

	appointmentService := serviceContainer.GetService("appointment").(services.InterfaceAppointmentService)
	reminder := jobs.NewAppointmentReminder(appointmentService)
	reminderScheduler := reminder.StartReminderCron()

	// Stop background work on SIGINT/SIGTERM before the process exits
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		Logger.Info("shutting down background schedulers")
		dispatchScheduler.Stop()
		reminderScheduler.Stop()
		serviceContainer.Shutdown()
		if err := pool.Close(); err != nil {
			Logger.Warning("failed to close database pool: %v", err)
		}
		os.Exit(0)
	}()

	port := cfg.ServerPort
	Logger.Info("server listening on http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("failed to start server: %v", err)
		os.Exit(1)
	}
}

// migratedModels is the full table set, ordered so referenced tables come
// before the ones pointing at them
func migratedModels() []interface{} {
	return []interface{}{
		&models.Admin{},
		&models.Donor{},
		&models.Patient{},
		&models.Stock{},
		&models.BloodRequest{},
		&models.BloodDonate{},
		&models.Feedback{},
		&models.ActionAuditLog{},
		&models.ReportExportLog{},
		&models.EmergencyBroadcast{},
		&models.BroadcastDelivery{},
		&models.InAppNotification{},
		&models.SMSOutbox{},
		&models.DonationAppointmentSlot{},
		&models.DonationAppointment{},
		&models.VerificationBadge{},
	}
}

// autoMigrate adds missing tables and columns without touching existing ones
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(migratedModels()...)
}

// dropAndRecreateTables rebuilds the schema from scratch
func dropAndRecreateTables(db *gorm.DB) error {
	tables := migratedModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return err
		}
	}
	return db.AutoMigrate(tables...)
}

// seedBaseline guarantees the stock rows and the bootstrap admin exist
func seedBaseline(db *gorm.DB, cfg *config.Config) error {
	stockService := services.NewStockService(db, cfg, services.NewAuditService(db, cfg), nil)
	if err := stockService.SeedStocks(); err != nil {
		return err
	}
	adminService := services.NewAdminService(db, cfg)
	return adminService.EnsureDefaultAdmin()
}
