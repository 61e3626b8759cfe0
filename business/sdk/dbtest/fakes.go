package dbtest

import (
	"context"
	"sync"

	"github.com/jcpaschoal/propman/foundation/mailer"
)

// Mailer records the messages it is asked to send. Setting Err makes every
// send fail.
type Mailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error
}

// Send implements invitationbus.Mailer.
func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.sent = append(m.sent, msg)

	return nil
}

// Sent returns a copy of the delivered messages.
func (m *Mailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]mailer.Message(nil), m.sent...)
}

// Event is a published subject and payload.
type Event struct {
	Subject string
	Payload any
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements issuebus.Publisher.
func (p *Publisher) Publish(ctx context.Context, subject string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, Event{Subject: subject, Payload: event})

	return nil
}

// Events returns a copy of the published events.
func (p *Publisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Event(nil), p.events...)
}
