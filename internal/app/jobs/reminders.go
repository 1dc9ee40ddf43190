package jobs

import (
	"time"

	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/pkg/logger"

	"github.com/go-co-op/gocron"
)

// AppointmentReminder periodically delivers due appointment reminders.
type AppointmentReminder struct {
	Appointments services.InterfaceAppointmentService
}

// NewAppointmentReminder creates a new appointment reminder job
func NewAppointmentReminder(appointments services.InterfaceAppointmentService) *AppointmentReminder {
	return &AppointmentReminder{Appointments: appointments}
}

// StartReminderCron checks for due reminders every minute
func (r *AppointmentReminder) StartReminderCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Minutes().Do(func() {
		sent, err := r.Appointments.SendDueReminders(time.Now())
		if err != nil {
			logger.Error("appointment reminder run failed: %v", err)
			return
		}
		if sent > 0 {
			logger.Info("sent %d appointment reminders", sent)
		}
	})

	scheduler.StartAsync()
	logger.Info("appointment reminder cron started")

	return scheduler
}
