package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"text/template"
	"time"

	"eventvenue/pkg/logger"
)

// EmailSender delivers a notification over email
type EmailSender interface {
	Send(ctx context.Context, notification *Notification) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// NewSMTPConfigFromEnv creates SMTP config from environment variables
func NewSMTPConfigFromEnv() *SMTPConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	timeout, _ := time.ParseDuration(os.Getenv("SMTP_TIMEOUT"))
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SMTPConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		FromEmail: os.Getenv("FROM_EMAIL"),
		FromName:  "EventVenue",
		Timeout:   timeout,
	}
}

// SMTPSender sends notification emails over SMTP
type SMTPSender struct {
	config    *SMTPConfig
	templates map[NotificationType]*template.Template
}

func NewSMTPSender(config *SMTPConfig) (*SMTPSender, error) {
	if config.Host == "" || config.FromEmail == "" {
		return nil, fmt.Errorf("SMTP host and from address are required")
	}

	s := &SMTPSender{
		config:    config,
		templates: make(map[NotificationType]*template.Template),
	}
	for t, body := range defaultTemplates {
		parsed, err := template.New(string(t)).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", t, err)
		}
		s.templates[t] = parsed
	}
	return s, nil
}

func (s *SMTPSender) Send(ctx context.Context, notification *Notification) error {
	tmpl, ok := s.templates[notification.Type]
	if !ok {
		return fmt.Errorf("no template for notification type %s", notification.Type)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, notification.Data); err != nil {
		return fmt.Errorf("failed to render %s template: %w", notification.Type, err)
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.config.FromName, s.config.FromEmail,
		notification.RecipientEmail, notification.Subject, body.String())

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail,
		[]string{notification.RecipientEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.GetDefault().Info("notification email sent",
		"notification_id", notification.ID,
		"type", notification.Type,
		"recipient", notification.RecipientEmail)
	return nil
}

var defaultTemplates = map[NotificationType]string{
	TypeBookingConfirmed: `Your booking {{.booking_ref}} is confirmed.

Total: {{.total_amount}} ({{.points_used}} points + {{.fee_points}} points platform fee).

Thank you for booking with EventVenue.`,

	TypeBookingCancelled: `Your booking {{.booking_ref}} has been cancelled.

Refund: {{.refund_amount}} ({{.refund_percentage}}%, {{.points_refunded}} points returned to your account).

We hope to see you again.`,

	TypeEventCancelled: `An event you booked has been cancelled by the organizer.

Your booking is eligible for a full refund; cancel it at any time to receive 100% of your points back.`,

	TypeEventRescheduled: `An event you booked has been rescheduled.

If the new date does not work for you, cancelling refunds 95% of your points.`,
}
