package memory_test

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/tehsphinx/pubsubfacade/pubsub"
	"github.com/tehsphinx/pubsubfacade/pubsub/memory"
)

func TestRoundTrip(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()
	broker := memory.New()

	var got []string
	sub, err := broker.Subscribe("q1", func(_ context.Context, msg pubsub.Replier) {
		got = append(got, string(msg.Data()))
	})
	asrt.NoErr(err)
	asrt.Equal(broker.Subscribers("q1"), 1)

	asrt.NoErr(broker.Publish(ctx, pubsub.Message{Subject: "q1", Data: []byte("a")}))
	asrt.NoErr(broker.Publish(ctx, pubsub.Message{Subject: "q2", Data: []byte("b")}))

	asrt.NoErr(sub.Unsubscribe())
	asrt.NoErr(sub.Unsubscribe())
	asrt.Equal(broker.Subscribers("q1"), 0)

	asrt.NoErr(broker.Publish(ctx, pubsub.Message{Subject: "q1", Data: []byte("c")}))
	asrt.Equal(got, []string{"a"})
}

func TestReply(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()
	broker := memory.New()

	_, err := broker.Subscribe("q.ping", func(_ context.Context, msg pubsub.Replier) {
		asrt.NoErr(msg.Reply(pubsub.Reply{Data: []byte("pong")}))
	})
	asrt.NoErr(err)

	var reply string
	_, err = broker.Subscribe("inbox", func(_ context.Context, msg pubsub.Replier) {
		reply = string(msg.Data())
	})
	asrt.NoErr(err)

	asrt.NoErr(broker.Publish(ctx, pubsub.Message{Subject: "q.ping", Reply: "inbox"}))
	asrt.Equal(reply, "pong")
}

func TestClosed(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	asrt.NoErr(broker.Close())

	_, err := broker.Subscribe("q1", func(context.Context, pubsub.Replier) {})
	asrt.Equal(err, memory.ErrClosed)
	asrt.Equal(broker.Publish(context.Background(), pubsub.Message{Subject: "q1"}), memory.ErrClosed)
}
