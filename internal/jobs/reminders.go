// Package jobs holds the scheduled background work: the daily reminder run
// that emails patients about installments due soon or overdue.
package jobs

import (
	"time"

	"github.com/belasaude/clinic-service/internal/config"
	"github.com/belasaude/clinic-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// InstallmentSource lists pending installments around their due date
type InstallmentSource interface {
	UpcomingInstallments(days int) ([]models.DueInstallment, error)
}

// ReminderSender delivers one reminder to one patient
type ReminderSender interface {
	SendInstallmentReminder(to, patientName, procedure string, number, total int, dueDate time.Time, amount decimal.Decimal, isOverdue bool) error
}

// Reminders is the daily installment-reminder job
type Reminders struct {
	source InstallmentSource
	sender ReminderSender
	log    *logrus.Logger
	cfg    *config.Config
	now    func() time.Time
}

// NewReminders creates the reminder job
func NewReminders(source InstallmentSource, sender ReminderSender, log *logrus.Logger, cfg *config.Config) *Reminders {
	return &Reminders{source: source, sender: sender, log: log, cfg: cfg, now: time.Now}
}

// Start registers the job with the cron schedule from configuration
func (j *Reminders) Start(c *cron.Cron) error {
	_, err := c.AddFunc(j.cfg.ReminderCron, j.Run)
	return err
}

// Run executes one reminder sweep. Each reminder is fire-and-forget: a
// delivery failure is logged and the sweep continues with the next row.
func (j *Reminders) Run() {
	due, err := j.source.UpcomingInstallments(j.cfg.ReminderDays)
	if err != nil {
		j.log.Errorf("Reminder sweep failed to list installments: %v", err)
		return
	}

	today := j.now()
	sent := 0
	for _, d := range due {
		if d.PatientEmail == "" {
			continue
		}
		in := d.Installment
		overdue := in.DueDate.Before(today.Truncate(24 * time.Hour))
		err := j.sender.SendInstallmentReminder(d.PatientEmail, d.PatientName, d.Procedure,
			in.Number, in.TotalInstallments, in.DueDate, in.Amount, overdue)
		if err != nil {
			j.log.Errorf("Failed to remind patient %s about installment %d: %v", d.PatientEmail, in.ID, err)
			continue
		}
		sent++
	}
	j.log.Infof("Reminder sweep finished: %d installment(s) due, %d email(s) sent", len(due), sent)
}
