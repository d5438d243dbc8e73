package container

import (
	"context"
	"errors"
	"time"

	"google.golang.org/protobuf/proto"
)

// ProduceFunc builds the payload of the next message. msgCtx is the optional
// context passed when a send is triggered on demand; it is nil for scheduled sends.
type ProduceFunc func(ctx context.Context, msgCtx any) ([]byte, error)

// Messenger is a named message producer. ID is the topic the produced
// messages are published on. A positive Interval makes the container send a
// message every Interval while running.
type Messenger struct {
	ID       string
	Produce  ProduceFunc
	Interval time.Duration
}

func (m Messenger) validate() error {
	if m.ID == "" {
		return errors.New("messenger has no id")
	}
	if m.Produce == nil {
		return errors.New("messenger has no producer")
	}
	return nil
}

// ProtoMessenger creates a Messenger whose payload is the protobuf encoding
// of the message returned by produce.
func ProtoMessenger(id string, interval time.Duration, produce func(ctx context.Context, msgCtx any) (proto.Message, error)) Messenger {
	return Messenger{
		ID:       id,
		Interval: interval,
		Produce: func(ctx context.Context, msgCtx any) ([]byte, error) {
			msg, err := produce(ctx, msgCtx)
			if err != nil {
				return nil, err
			}
			return proto.Marshal(msg)
		},
	}
}
