package events

import "context"

// NoOp discards every event. Used when EVENTS_PROVIDER=none.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (NoOp) Publish(ctx context.Context, ev Event) error {
	return nil
}

func (NoOp) Close() error {
	return nil
}
