package pubsub

import (
	"context"
)

// Subscriber binds handlers to broker queues.
type Subscriber interface {
	// Subscribe starts delivering messages arriving on queue to handler.
	Subscribe(queue string, handler Handler) (Subscription, error)
	Flush() error
}

// Handler is called for every message delivered on a subscription.
type Handler func(ctx context.Context, msg Replier)

// Replier is a received message that can be answered.
type Replier interface {
	Subject() string
	Data() []byte

	Reply(msg Reply) error
}

// Subscription is an active binding of a handler to a queue.
type Subscription interface {
	Unsubscribe() error
}
