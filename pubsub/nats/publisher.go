package nats

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

// Publisher returns a NATS wrapper implementing the pubsub.Publisher interface.
func Publisher(nats *nats.Conn) pubsub.Publisher {
	return &publisher{nats: nats}
}

type publisher struct {
	nats *nats.Conn
}

// Publish implements the pubsub.Publisher interface. Core NATS publishing does
// not block, so ctx is only checked before handing the message over.
func (s *publisher) Publish(ctx context.Context, msg pubsub.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.nats.PublishMsg(&nats.Msg{
		Subject: msg.Subject,
		Reply:   msg.Reply,
		Data:    msg.Data,
	})
}
