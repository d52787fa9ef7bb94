// Package notify publishes contact events to NATS so that downstream workers
// (mail relays, CRM sync) can react to new and removed submissions.
//
// Publishing uses core NATS: messages are buffered by the client and flushed
// in the background, so Publish never waits on the network. Delivery is best
// effort.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// Publisher sends domain.ContactEvent values as JSON to
// "<prefix>.submitted" and "<prefix>.deleted".
type Publisher struct {
	nc      *nats.Conn
	prefix  string
	publish func(subject string, data []byte) error
}

// Connect dials url and returns a Publisher. The connection retries in the
// background, so an unreachable server at startup is not fatal.
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("go-contact-backend"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	log.Info().Str("url", url).Str("prefix", prefix).Msg("nats publisher ready")
	return newPublisher(nc, prefix, nc.Publish), nil
}

func newPublisher(nc *nats.Conn, prefix string, pub func(string, []byte) error) *Publisher {
	return &Publisher{nc: nc, prefix: strings.Trim(prefix, "."), publish: pub}
}

// Subject maps an event type to its NATS subject under prefix.
func Subject(prefix, eventType string) string {
	suffix := eventType
	if i := strings.LastIndexByte(eventType, '.'); i >= 0 {
		suffix = eventType[i+1:]
	}
	if prefix == "" {
		return suffix
	}
	return prefix + "." + suffix
}

// Publish encodes ev and hands it to the NATS client.
func (p *Publisher) Publish(ctx context.Context, ev domain.ContactEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := Subject(p.prefix, ev.Type)
	if err := p.publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	log.Debug().Str("subject", subject).Int("size", len(data)).Msg("event published")
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
