package cron

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/meinhoongagan/clinic-app/availability"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
	"github.com/meinhoongagan/clinic-app/utils"
	"github.com/robfig/cron/v3"
)

// Reminders mails patients about their appointments of the next day.
type Reminders struct {
	Appointments store.Appointments
	Users        store.Users
	Mailer       utils.Mailer
	Location     *time.Location
	Log          *slog.Logger
}

// Start schedules the reminder job on spec (standard 5-field cron) in the clinic timezone.
func (r *Reminders) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(r.Location))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := r.Send(ctx, time.Now()); err != nil {
			r.Log.Error("reminder run failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	c.Start()
	r.Log.Info("cron job scheduler started for appointment reminders", "spec", spec)
	return c, nil
}

// Send mails a reminder for every appointment on the day after now and returns how many
// were sent. A failure for one appointment is logged and does not stop the others.
func (r *Reminders) Send(ctx context.Context, now time.Time) (int, error) {
	tomorrow := now.In(r.Location).AddDate(0, 0, 1).Format(availability.DateLayout)

	appointments, err := r.Appointments.ListByDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("fetch appointments of %s: %w", tomorrow, err)
	}
	r.Log.Info("sending appointment reminders", "date", tomorrow, "count", len(appointments))

	sent := 0
	for i := range appointments {
		a := &appointments[i]
		log := r.Log.With("appointment_id", a.ID)
		if a.Patient == nil {
			log.Warn("reminder skipped, patient missing")
			continue
		}
		user, err := r.Users.GetByID(ctx, a.Patient.UserID)
		if err != nil {
			log.Warn("reminder skipped, user lookup failed", "err", err)
			continue
		}
		if err := r.Mailer.Send(user.Email, "Reminder: appointment tomorrow", reminderEmail(user, a)); err != nil {
			log.Warn("failed to send reminder", "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func reminderEmail(user *models.User, a *models.Appointment) string {
	doctor := "your doctor"
	if a.Doctor != nil {
		doctor = a.Doctor.FullName()
	}
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder of your appointment tomorrow.</p>
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
		</ul>
		<p>If you cannot come, please contact the clinic as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, html.EscapeString(user.Name), html.EscapeString(doctor), a.Date, a.Time)
}
