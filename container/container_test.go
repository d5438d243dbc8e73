package container_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tehsphinx/pubsubfacade/container"
	"github.com/tehsphinx/pubsubfacade/internal/natstest"
	"github.com/tehsphinx/pubsubfacade/metrics"
	"github.com/tehsphinx/pubsubfacade/pubsub"
	"github.com/tehsphinx/pubsubfacade/pubsub/memory"
	pubnats "github.com/tehsphinx/pubsubfacade/pubsub/nats"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func staticMessenger(id, payload string) container.Messenger {
	return container.Messenger{
		ID: id,
		Produce: func(context.Context, any) ([]byte, error) {
			return []byte(payload), nil
		},
	}
}

func TestRunStop(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker, container.WithCloser(broker))

	asrt.True(!c.IsRunning())
	asrt.NoErr(c.Run(context.Background(), true))
	asrt.True(c.IsRunning())
	asrt.True(errors.Is(c.Run(context.Background(), true), container.ErrAlreadyRunning))

	asrt.NoErr(c.Stop())
	asrt.True(!c.IsRunning())
	asrt.NoErr(c.Stop())

	err := broker.Publish(context.Background(), pubsub.Message{Subject: "q1"})
	asrt.Equal(err, memory.ErrClosed)
}

func TestRunBlocking(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker)

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan error, 1)
	go func() {
		returned <- c.Run(ctx, false)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !c.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	asrt.True(c.IsRunning())

	cancel()
	select {
	case err := <-returned:
		asrt.NoErr(err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	asrt.True(!c.IsRunning())
}

func TestAttachDetach(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()
	broker := memory.New()
	c := container.New(broker, broker)

	var got []string
	err := c.Consumer().AttachMessageConsumer("q1", func(_ context.Context, msg pubsub.Replier) {
		got = append(got, string(msg.Data()))
	})
	asrt.NoErr(err)
	asrt.Equal(c.Consumer().Queues(), []string{"q1"})

	asrt.NoErr(broker.Publish(ctx, pubsub.Message{Subject: "q1", Data: []byte("m1")}))
	asrt.Equal(got, []string{"m1"})

	asrt.NoErr(c.Consumer().DetachMessageConsumer("q1"))
	asrt.Equal(broker.Subscribers("q1"), 0)
	asrt.Equal(len(c.Consumer().Queues()), 0)

	err = c.Consumer().DetachMessageConsumer("q1")
	asrt.True(errors.Is(err, container.ErrNotAttached))
}

func TestAttachReplaces(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker)

	var first, second int
	asrt.NoErr(c.Consumer().AttachMessageConsumer("q1", func(context.Context, pubsub.Replier) { first++ }))
	asrt.NoErr(c.Consumer().AttachMessageConsumer("q1", func(context.Context, pubsub.Replier) { second++ }))
	asrt.Equal(broker.Subscribers("q1"), 1)

	asrt.NoErr(broker.Publish(context.Background(), pubsub.Message{Subject: "q1"}))
	asrt.Equal(first, 0)
	asrt.Equal(second, 1)
}

func TestTriggerMessenger(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()
	broker := memory.New()
	c := container.New(broker, broker)

	var got []string
	_, err := broker.Subscribe("flights", func(_ context.Context, msg pubsub.Replier) {
		got = append(got, string(msg.Data()))
	})
	asrt.NoErr(err)

	m := container.Messenger{
		ID: "flights",
		Produce: func(_ context.Context, msgCtx any) ([]byte, error) {
			return []byte("flight " + msgCtx.(string)), nil
		},
	}
	asrt.NoErr(c.Producer().TriggerMessenger(ctx, m, "AF123"))
	asrt.Equal(got, []string{"flight AF123"})

	failing := container.Messenger{
		ID: "flights",
		Produce: func(context.Context, any) ([]byte, error) {
			return nil, errors.New("no data")
		},
	}
	asrt.True(c.Producer().TriggerMessenger(ctx, failing, nil) != nil)
	asrt.Equal(len(got), 1)
}

func TestScheduleValidates(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker)

	asrt.True(c.Producer().ScheduleMessenger(container.Messenger{ID: "t1"}) != nil)
	asrt.True(c.Producer().ScheduleMessenger(staticMessenger("", "x")) != nil)

	asrt.NoErr(c.Producer().ScheduleMessenger(staticMessenger("t2", "x")))
	asrt.NoErr(c.Producer().ScheduleMessenger(staticMessenger("t1", "x")))
	asrt.Equal(c.Producer().Messengers(), []string{"t1", "t2"})
}

func TestIntervalMessenger(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker)

	var m sync.Mutex
	var count int
	_, err := broker.Subscribe("ticks", func(context.Context, pubsub.Replier) {
		m.Lock()
		count++
		m.Unlock()
	})
	asrt.NoErr(err)

	messenger := staticMessenger("ticks", "tick")
	messenger.Interval = 5 * time.Millisecond
	asrt.NoErr(c.Producer().ScheduleMessenger(messenger))

	time.Sleep(20 * time.Millisecond)
	m.Lock()
	asrt.Equal(count, 0) // nothing is sent before the container runs
	m.Unlock()

	asrt.NoErr(c.Run(context.Background(), true))
	time.Sleep(50 * time.Millisecond)
	asrt.NoErr(c.Stop())

	m.Lock()
	sent := count
	m.Unlock()
	asrt.True(sent > 0)

	time.Sleep(20 * time.Millisecond)
	m.Lock()
	asrt.Equal(count, sent) // and nothing after it stopped
	m.Unlock()
}

func TestProtoMessenger(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker)

	var got string
	_, err := broker.Subscribe("names", func(_ context.Context, msg pubsub.Replier) {
		var v wrapperspb.StringValue
		asrt.NoErr(proto.Unmarshal(msg.Data(), &v))
		got = v.GetValue()
	})
	asrt.NoErr(err)

	m := container.ProtoMessenger("names", 0, func(_ context.Context, msgCtx any) (proto.Message, error) {
		return wrapperspb.String(msgCtx.(string)), nil
	})
	asrt.NoErr(c.Producer().TriggerMessenger(context.Background(), m, "EBBR"))
	asrt.Equal(got, "EBBR")
}

func TestNATSTransport(t *testing.T) {
	asrt := is.New(t)

	conn, shutdown, err := natstest.NewConn()
	asrt.NoErr(err)
	defer shutdown()

	c := container.New(pubnats.Publisher(conn), pubnats.Subscriber(conn, ""))

	received := make(chan string, 1)
	asrt.NoErr(c.Consumer().AttachMessageConsumer("q.airports", func(_ context.Context, msg pubsub.Replier) {
		received <- string(msg.Data())
	}))
	asrt.NoErr(c.Run(context.Background(), true))
	defer c.Stop()

	asrt.NoErr(c.Producer().TriggerMessenger(context.Background(), staticMessenger("q.airports", "LFPG"), nil))

	select {
	case got := <-received:
		asrt.Equal(got, "LFPG")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestMetrics(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()
	broker := memory.New()
	reg := prometheus.NewRegistry()
	c := container.New(broker, broker, container.WithMetrics(metrics.New(reg)))

	asrt.NoErr(c.Consumer().AttachMessageConsumer("q1", func(context.Context, pubsub.Replier) {}))
	asrt.NoErr(c.Consumer().AttachMessageConsumer("q2", func(context.Context, pubsub.Replier) {}))
	asrt.NoErr(c.Producer().TriggerMessenger(ctx, staticMessenger("q1", "x"), nil))
	asrt.NoErr(c.Producer().TriggerMessenger(ctx, staticMessenger("q1", "y"), nil))
	asrt.NoErr(c.Consumer().DetachMessageConsumer("q2"))

	expected := `
# HELP pubsubfacade_attached_consumers Number of queues with an attached consumer
# TYPE pubsubfacade_attached_consumers gauge
pubsubfacade_attached_consumers 1
# HELP pubsubfacade_messages_consumed_total Total number of messages delivered to consumers per queue
# TYPE pubsubfacade_messages_consumed_total counter
pubsubfacade_messages_consumed_total{queue="q1"} 2
# HELP pubsubfacade_messages_published_total Total number of messages published per topic
# TYPE pubsubfacade_messages_published_total counter
pubsubfacade_messages_published_total{result="ok",topic="q1"} 2
`
	asrt.NoErr(testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

func TestPublishRate(t *testing.T) {
	asrt := is.New(t)
	broker := memory.New()
	c := container.New(broker, broker, container.WithPublishRate(0.1, 1))

	m := staticMessenger("slow", "x")
	asrt.NoErr(c.Producer().TriggerMessenger(context.Background(), m, nil))

	// the next slot is ten seconds away
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Producer().TriggerMessenger(ctx, m, nil)
	asrt.True(err != nil)
}
