package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const auditGroup = "verifier-audit"

// NATS publishes events on "<subject>.<type>" and consumes them with a queue group.
type NATS struct {
	log     *slog.Logger
	nc      *nats.Conn
	subject string
}

// NewNATS constructs a thin NATS-based event bus.
func NewNATS(log *slog.Logger, nc *nats.Conn, subject string) *NATS {
	return &NATS{log: log, nc: nc, subject: subject}
}

func (n *NATS) Publish(_ context.Context, ev Event) error {
	if ev.Type == "" {
		return errors.New("event type required")
	}
	body, err := json.Marshal(stamp(ev))
	if err != nil {
		return err
	}
	return n.nc.Publish(n.subject+"."+string(ev.Type), body)
}

func (n *NATS) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := n.nc.QueueSubscribe(n.subject+".>", auditGroup, func(msg *nats.Msg) {
		n.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

// Close drains pending publishes and closes the connection.
func (n *NATS) Close() error {
	return n.nc.Drain()
}

func (n *NATS) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		n.log.Error("failed to decode event", "subject", msg.Subject, "err", err)
		return
	}
	if err := handler(ctx, ev); err != nil {
		n.log.Error("event handler failed", "id", ev.ID, "type", ev.Type, "err", err)
	}
}
