// Package amqp implements the pubsub interfaces on top of an AMQP 0.9.1
// broker such as RabbitMQ. Messages are published to a single exchange with
// the message subject as routing key; subscriptions consume named queues the
// subscription manager has already declared and bound.
package amqp

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

// Conn holds the connection and channel shared by the publisher and the subscriber.
type Conn struct {
	conn *amqp.Connection

	m  sync.Mutex
	ch *amqp.Channel
}

// Dial connects to the broker at url and opens a channel.
func Dial(url string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Conn{conn: conn, ch: ch}, nil
}

// Close closes the channel and the connection.
func (c *Conn) Close() error {
	c.m.Lock()
	defer c.m.Unlock()

	if err := c.ch.Close(); err != nil && err != amqp.ErrClosed {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// Publisher returns an AMQP wrapper implementing the pubsub.Publisher interface.
func Publisher(conn *Conn, exchange string) pubsub.Publisher {
	return &publisher{conn: conn, exchange: exchange}
}

type publisher struct {
	conn     *Conn
	exchange string
}

// Publish implements the pubsub.Publisher interface.
func (s *publisher) Publish(ctx context.Context, msg pubsub.Message) error {
	s.conn.m.Lock()
	defer s.conn.m.Unlock()

	return s.conn.ch.PublishWithContext(ctx, s.exchange, msg.Subject, false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		ReplyTo:     msg.Reply,
		Body:        msg.Data,
	})
}

// Subscriber returns an AMQP wrapper implementing the pubsub.Subscriber interface.
func Subscriber(conn *Conn) pubsub.Subscriber {
	return &subscriber{conn: conn}
}

type subscriber struct {
	conn *Conn
}

// Subscribe implements the pubsub.Subscriber interface. Deliveries are
// auto-acknowledged and handled sequentially in a dedicated goroutine.
func (s *subscriber) Subscribe(queue string, handler pubsub.Handler) (pubsub.Subscription, error) {
	tag := consumerTag(queue)

	s.conn.m.Lock()
	deliveries, err := s.conn.ch.Consume(queue, tag, true, false, false, false, nil)
	s.conn.m.Unlock()
	if err != nil {
		return nil, err
	}

	go func() {
		for d := range deliveries {
			handler(context.Background(), message{conn: s.conn, delivery: d})
		}
	}()

	return &subscription{conn: s.conn, tag: tag}, nil
}

// Flush implements the pubsub.Subscriber interface. Consume registers
// synchronously, so there is nothing to flush.
func (s *subscriber) Flush() error {
	return nil
}

type subscription struct {
	conn *Conn
	tag  string
}

// Unsubscribe implements the pubsub.Subscription interface. Cancelling the
// consumer closes its delivery channel, which ends the handler goroutine.
func (s *subscription) Unsubscribe() error {
	s.conn.m.Lock()
	defer s.conn.m.Unlock()

	return s.conn.ch.Cancel(s.tag, false)
}

type message struct {
	conn     *Conn
	delivery amqp.Delivery
}

var _ pubsub.Replier = (*message)(nil)

// Subject implements the pubsub.Replier interface.
func (m message) Subject() string {
	return m.delivery.RoutingKey
}

// Data implements the pubsub.Replier interface.
func (m message) Data() []byte {
	return m.delivery.Body
}

// Reply implements the pubsub.Replier interface by publishing to the
// delivery's reply-to queue through the default exchange.
func (m message) Reply(msg pubsub.Reply) error {
	m.conn.m.Lock()
	defer m.conn.m.Unlock()

	return m.conn.ch.PublishWithContext(context.Background(), "", m.delivery.ReplyTo, false, false, amqp.Publishing{
		ContentType:   "application/octet-stream",
		CorrelationId: m.delivery.CorrelationId,
		Body:          msg.Data,
	})
}
