// Package natsbus publishes domain events to NATS subjects.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/nats-io/nats.go"
)

// Config represents the information required to connect.
type Config struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int
}

// Publisher sends JSON encoded events. A zero Publisher, or one built without
// a URL, only logs.
type Publisher struct {
	log *logger.Logger
	nc  *nats.Conn
}

// Connect dials the NATS server. An empty URL yields a log-only publisher.
func Connect(log *logger.Logger, cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return &Publisher{log: log}, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{log: log, nc: nc}, nil
}

// Publish marshals the event and sends it on the subject.
func (p *Publisher) Publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if p.nc == nil {
		if p.log != nil {
			p.log.Debug(ctx, "natsbus: publish skipped", "subject", subject, "bytes", len(data))
		}
		return nil
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish: subject[%s]: %w", subject, err)
	}

	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}

	return p.nc.Drain()
}
