package utils

import (
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}

// LogMailer stands in when SMTP is not configured. Only the envelope is logged,
// never the body: reset mails carry passwords.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) Send(to, subject, body string) error {
	m.Log.Info("mail not sent, smtp disabled", "to", to, "subject", subject)
	return nil
}
