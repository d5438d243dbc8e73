package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/segmentio/kafka-go"
	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

func TestReplyTo(t *testing.T) {
	asrt := is.New(t)

	asrt.Equal(replyTo(kafka.Message{}), "")
	asrt.Equal(replyTo(kafka.Message{Headers: []kafka.Header{
		{Key: "trace", Value: []byte("abc")},
		{Key: replyHeader, Value: []byte("answers")},
	}}), "answers")
}

func TestSubscribeEmptyQueue(t *testing.T) {
	asrt := is.New(t)

	c := NewClient("localhost:9092")
	defer c.Close()

	_, err := Subscriber(c, "group", logging.Noop{}).Subscribe("", nil)
	asrt.True(err != nil)
}

func TestReplyWithoutHeader(t *testing.T) {
	asrt := is.New(t)

	c := NewClient("localhost:9092")
	defer c.Close()

	m := message{client: c, msg: kafka.Message{Topic: "t1", Value: []byte("x")}}
	asrt.Equal(m.Subject(), "t1")
	asrt.Equal(string(m.Data()), "x")
	asrt.True(m.Reply(pubsub.Reply{Data: []byte("y")}) != nil)
}

type failingReader struct {
	reads chan struct{}
}

func (r *failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	r.reads <- struct{}{}
	return kafka.Message{}, errors.New("broker unreachable")
}

func (r *failingReader) Close() error {
	return nil
}

type errorLog struct {
	logging.Noop
	m    sync.Mutex
	errs []string
}

func (l *errorLog) Errorf(format string, _ ...interface{}) {
	l.m.Lock()
	defer l.m.Unlock()
	l.errs = append(l.errs, format)
}

func TestReadBackoff(t *testing.T) {
	asrt := is.New(t)

	r := &failingReader{reads: make(chan struct{}, 10)}
	log := &errorLog{}
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{reader: r, cancel: cancel, log: log, backoff: time.Hour}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.read(ctx, nil, func(context.Context, pubsub.Replier) {
			t.Error("handler called on read error")
		})
	}()

	<-r.reads
	select {
	case <-r.reads:
		t.Fatal("read retried without backoff")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read loop did not stop on cancel")
	}

	log.m.Lock()
	defer log.m.Unlock()
	asrt.Equal(len(log.errs), 1)
}
