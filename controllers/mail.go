package controllers

import (
	"fmt"
	"html"

	"github.com/meinhoongagan/clinic-app/models"
)

func welcomeEmail(user *models.User) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your clinic account has been activated. You can now log in and book appointments.</p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, html.EscapeString(user.Name))
}

func resetPasswordEmail(user *models.User, password string) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your password has been reset. Your new password is:</p>
		<p><strong>%s</strong></p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, html.EscapeString(user.Name), html.EscapeString(password))
}

func bookingEmail(user *models.User, doctor *models.Doctor, appointment *models.Appointment) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment has been booked.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> %s (%s)</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
		</ul>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, html.EscapeString(user.Name), html.EscapeString(doctor.FullName()), html.EscapeString(doctor.Specialization),
		appointment.Date, appointment.Time)
}
