// Package mailer delivers requester notifications through a plain SMTP relay.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strconv"

	"barangay-portal-backend/models"
	"barangay-portal-backend/workflow"

	"github.com/jordan-wright/email"
)

// SMTP satisfies workflow.NotificationDispatcher.
type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// FromEnv builds the dispatcher from SMTP_* environment variables.
func FromEnv() *SMTP {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "Barangay Records <records@barangay.local>"
	}
	return &SMTP{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
	}
}

// Send emails the requester the status-specific message. The SMTP exchange has
// no context support of its own, so delivery is abandoned when ctx expires;
// the caller reports that as a failed notification step.
func (m *SMTP) Send(ctx context.Context, req models.DocumentRequest, kind workflow.NotificationKind, payload workflow.Payload) error {
	if req.Email == "" {
		return fmt.Errorf("request %d has no requester email", req.ID)
	}

	subject, body := Compose(req, kind, payload)

	msg := email.NewEmail()
	msg.From = m.From
	msg.To = []string{req.Email}
	msg.Subject = subject
	msg.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Password, m.Host)
	}

	done := make(chan error, 1)
	go func() { done <- msg.Send(addr, auth) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compose renders the subject and plain-text body for a notification kind.
func Compose(req models.DocumentRequest, kind workflow.NotificationKind, payload workflow.Payload) (subject, body string) {
	switch kind {
	case workflow.NotificationReady:
		subject = fmt.Sprintf("Your %s is ready for pickup", req.DocumentType)
		body = fmt.Sprintf(
			"Good day %s,\n\n"+
				"Your request %s (%s) is now ready for release.\n"+
				"Please claim it at %s and bring PHP %s as payment.\n\n"+
				"Thank you.",
			req.RequesterName, req.ReferenceNumber, req.DocumentType,
			payload.PickupLocation, payload.Amount)
	case workflow.NotificationRejected:
		subject = fmt.Sprintf("Your %s request was not approved", req.DocumentType)
		body = fmt.Sprintf(
			"Good day %s,\n\n"+
				"We regret to inform you that your request %s (%s) was not approved.\n"+
				"You may visit the barangay office for details or submit a new request.\n\n"+
				"Thank you.",
			req.RequesterName, req.ReferenceNumber, req.DocumentType)
	default:
		subject = "Update on your document request"
		body = fmt.Sprintf("Good day %s,\n\nYour request %s is now %s.\n\nThank you.",
			req.RequesterName, req.ReferenceNumber, payload.Status)
	}
	return subject, body
}
