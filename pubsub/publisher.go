package pubsub

import "context"

// Publisher sends messages to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}
