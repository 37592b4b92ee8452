package jobs

import (
	"fmt"
	"net/smtp"
	"strings"
)

// MailerConfig carries SMTP connection settings.
type MailerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer sends plain-text email over SMTP. The net/smtp client upgrades to
// STARTTLS when the server offers it.
type Mailer struct {
	cfg MailerConfig
}

// NewMailer constructs a Mailer.
func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one message.
func (m *Mailer) Send(payload SendEmailPayload) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mailer: SMTP host not configured")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	msg := buildMessage(m.cfg.From, payload)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{payload.To}, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", payload.To, err)
	}
	return nil
}

func buildMessage(from string, payload SendEmailPayload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", payload.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", payload.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(payload.Body)
	return []byte(b.String())
}

// WelcomeEmail builds the registration welcome message.
func WelcomeEmail(to, loginURL string) SendEmailPayload {
	body := fmt.Sprintf(
		"Welcome aboard!\n\nYour account has been created. You can sign in at %s using this email address.\n\nThe Voli team",
		loginURL,
	)
	return SendEmailPayload{
		To:      to,
		Subject: "Welcome to Voli",
		Body:    body,
	}
}
