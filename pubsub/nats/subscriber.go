package nats

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

// Subscriber returns a NATS wrapper implementing the pubsub.Subscriber interface.
// With a non-empty group, instances sharing the group load-balance a queue.
func Subscriber(nats *nats.Conn, group string) pubsub.Subscriber {
	return &subscriber{nats: nats, group: group}
}

type subscriber struct {
	nats  *nats.Conn
	group string
}

// Subscribe implements the pubsub.Subscriber interface.
func (s *subscriber) Subscribe(queue string, handler pubsub.Handler) (pubsub.Subscription, error) {
	cb := func(msg *nats.Msg) {
		handler(context.Background(), message{msg: msg})
	}
	if s.group == "" {
		return s.nats.Subscribe(queue, cb)
	}
	return s.nats.QueueSubscribe(queue, s.group, cb)
}

// Flush implements the pubsub.Subscriber interface.
func (s *subscriber) Flush() error {
	return s.nats.Flush()
}
