// Package kafka implements the pubsub interfaces on top of Kafka. The
// message subject is the Kafka topic; a subscription reads the topic named
// like its queue within a consumer group.
package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

const (
	replyHeader    = "reply-to"
	writeTimeout   = 5 * time.Second
	commitInterval = time.Second
	maxAttempts    = 3
	readBackoff    = time.Second
)

// Client holds the writer shared by the publisher and repliers.
type Client struct {
	brokers []string
	writer  *kafka.Writer
}

// NewClient creates a client for the given broker addresses. Topics are
// created on first write if the cluster allows it.
func NewClient(brokers ...string) *Client {
	return &Client{
		brokers: brokers,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			WriteTimeout:           writeTimeout,
			RequiredAcks:           kafka.RequireOne,
			MaxAttempts:            maxAttempts,
			AllowAutoTopicCreation: true,
		},
	}
}

// Close flushes pending writes and closes the writer.
func (c *Client) Close() error {
	return c.writer.Close()
}

func (c *Client) write(ctx context.Context, msg pubsub.Message) error {
	km := kafka.Message{
		Topic: msg.Subject,
		Value: msg.Data,
		Time:  time.Now(),
	}
	if msg.Reply != "" {
		km.Headers = []kafka.Header{{Key: replyHeader, Value: []byte(msg.Reply)}}
	}
	return c.writer.WriteMessages(ctx, km)
}

// Publisher returns a Kafka wrapper implementing the pubsub.Publisher interface.
func Publisher(c *Client) pubsub.Publisher {
	return &publisher{client: c}
}

type publisher struct {
	client *Client
}

// Publish implements the pubsub.Publisher interface.
func (s *publisher) Publish(ctx context.Context, msg pubsub.Message) error {
	return s.client.write(ctx, msg)
}

// Subscriber returns a Kafka wrapper implementing the pubsub.Subscriber
// interface. All subscriptions join the consumer group groupID. Read errors
// are reported to log.
func Subscriber(c *Client, groupID string, log logging.Logger) pubsub.Subscriber {
	if log == nil {
		log = logging.Noop{}
	}
	return &subscriber{client: c, groupID: groupID, log: log}
}

type subscriber struct {
	client  *Client
	groupID string
	log     logging.Logger
}

// Subscribe implements the pubsub.Subscriber interface. Messages are read
// and handled sequentially in a dedicated goroutine.
func (s *subscriber) Subscribe(queue string, handler pubsub.Handler) (pubsub.Subscription, error) {
	if queue == "" {
		return nil, errors.New("kafka: empty queue name")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        s.client.brokers,
		GroupID:        s.groupID,
		Topic:          queue,
		CommitInterval: commitInterval,
		StartOffset:    kafka.LastOffset,
	})

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{reader: reader, cancel: cancel, log: s.log, backoff: readBackoff}
	go sub.read(ctx, s.client, handler)
	return sub, nil
}

// Flush implements the pubsub.Subscriber interface. Readers connect lazily,
// there is nothing to flush.
func (s *subscriber) Flush() error {
	return nil
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type subscription struct {
	reader  messageReader
	cancel  context.CancelFunc
	log     logging.Logger
	backoff time.Duration
	once    sync.Once
	err     error
}

func (s *subscription) read(ctx context.Context, client *Client, handler pubsub.Handler) {
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			s.log.Errorf("kafka read failed: error => %v", err)

			timer := time.NewTimer(s.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			continue
		}
		handler(ctx, message{client: client, msg: msg})
	}
}

// Unsubscribe implements the pubsub.Subscription interface.
func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.cancel()
		s.err = s.reader.Close()
	})
	return s.err
}

type message struct {
	client *Client
	msg    kafka.Message
}

var _ pubsub.Replier = (*message)(nil)

// Subject implements the pubsub.Replier interface.
func (m message) Subject() string {
	return m.msg.Topic
}

// Data implements the pubsub.Replier interface.
func (m message) Data() []byte {
	return m.msg.Value
}

// Reply implements the pubsub.Replier interface by writing to the topic
// named in the reply-to header.
func (m message) Reply(reply pubsub.Reply) error {
	to := replyTo(m.msg)
	if to == "" {
		return errors.New("kafka: message has no reply-to header")
	}
	return m.client.write(context.Background(), pubsub.Message{Subject: to, Data: reply.Data})
}

func replyTo(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == replyHeader {
			return string(h.Value)
		}
	}
	return ""
}
