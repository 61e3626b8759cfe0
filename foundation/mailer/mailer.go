// Package mailer delivers transactional email through SendGrid.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrDelivery is returned when the provider refuses a message.
var ErrDelivery = errors.New("mail delivery failed")

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Config represents the information required to construct a Mailer.
type Config struct {
	Log       *logger.Logger
	APIKey    string
	FromName  string
	FromEmail string
}

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends email. Without an API key it only logs what it would have
// sent, which is what local development wants.
type Mailer struct {
	log       *logger.Logger
	client    sender
	fromName  string
	fromEmail string
}

// New constructs a Mailer.
func New(cfg Config) *Mailer {
	m := Mailer{
		log:       cfg.Log,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}

	if cfg.APIKey != "" {
		m.client = sendgrid.NewSendClient(cfg.APIKey)
	}

	return &m
}

// Send delivers the message.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m.client == nil {
		m.log.Info(ctx, "mailer: delivery disabled", "to", msg.ToEmail, "subject", msg.Subject)
		return nil
	}

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)

	resp, err := m.client.SendWithContext(ctx, mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML))
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send: status[%d] body[%s]: %w", resp.StatusCode, resp.Body, ErrDelivery)
	}

	m.log.Info(ctx, "mailer: delivered", "to", msg.ToEmail, "subject", msg.Subject, "status", resp.StatusCode)

	return nil
}
