package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

const (
	maxReconnects = 10
	reconnectWait = 2 * time.Second
)

// Connect dials NATS and keeps reconnecting in the background on failures.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	log := logger.With("component", "nats")

	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("disconnected from NATS", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// Relay shares events between every server using the same room store.
// Published events go to NATS only and come back through the subscription,
// so each process, including the publisher, delivers them exactly once.
type Relay struct {
	nc      *nats.Conn
	subject string
	hub     *Hub
	logger  *slog.Logger

	sub *nats.Subscription
}

func NewRelay(nc *nats.Conn, subject string, hub *Hub, logger *slog.Logger) *Relay {
	return &Relay{
		nc:      nc,
		subject: subject,
		hub:     hub,
		logger:  logger.With("component", "relay", "subject", subject),
	}
}

// Start subscribes to the subject and feeds received events into the hub.
func (that *Relay) Start() error {
	sub, err := that.nc.Subscribe(that.subject, that.receive)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", that.subject, err)
	}

	if err = that.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("failed to flush subscription: %w", err)
	}

	that.sub = sub

	return nil
}

func (that *Relay) Publish(_ context.Context, ev entity.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err = that.nc.Publish(that.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (that *Relay) Close() error {
	if that.sub == nil {
		return nil
	}

	if err := that.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return nil
}

func (that *Relay) receive(msg *nats.Msg) {
	var ev entity.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		that.logger.Error("failed to decode event", "error", err)
		return
	}

	that.hub.Deliver(ev)
}
