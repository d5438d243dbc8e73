// Package memory provides an in-process transport. Messages published on a
// subject are delivered synchronously to every handler subscribed to a queue
// of the same name.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tehsphinx/pubsubfacade/pubsub"
)

// ErrClosed is returned by operations on a closed broker.
var ErrClosed = errors.New("memory: broker is closed")

var (
	_ pubsub.Publisher  = (*Broker)(nil)
	_ pubsub.Subscriber = (*Broker)(nil)
)

// Broker implements both pubsub.Publisher and pubsub.Subscriber.
type Broker struct {
	m      sync.RWMutex
	subs   map[string][]*handler
	closed bool
}

type handler struct {
	fn     pubsub.Handler
	active atomic.Bool
}

// New creates an empty in-process broker.
func New() *Broker {
	return &Broker{subs: make(map[string][]*handler)}
}

// Publish implements the pubsub.Publisher interface.
func (b *Broker) Publish(ctx context.Context, msg pubsub.Message) error {
	b.m.RLock()
	if b.closed {
		b.m.RUnlock()
		return ErrClosed
	}
	handlers := make([]*handler, len(b.subs[msg.Subject]))
	copy(handlers, b.subs[msg.Subject])
	b.m.RUnlock()

	for _, h := range handlers {
		if h.active.Load() {
			h.fn(ctx, message{broker: b, msg: msg})
		}
	}
	return nil
}

// Subscribe implements the pubsub.Subscriber interface.
func (b *Broker) Subscribe(queue string, fn pubsub.Handler) (pubsub.Subscription, error) {
	b.m.Lock()
	defer b.m.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	h := &handler{fn: fn}
	h.active.Store(true)
	b.subs[queue] = append(b.subs[queue], h)
	return &subscription{broker: b, queue: queue, handler: h}, nil
}

// Flush implements the pubsub.Subscriber interface. Delivery is synchronous,
// there is never anything to flush.
func (b *Broker) Flush() error {
	return nil
}

// Subscribers returns the number of active handlers on queue.
func (b *Broker) Subscribers(queue string) int {
	b.m.RLock()
	defer b.m.RUnlock()

	var n int
	for _, h := range b.subs[queue] {
		if h.active.Load() {
			n++
		}
	}
	return n
}

// Close drops all subscriptions and rejects further use.
func (b *Broker) Close() error {
	b.m.Lock()
	defer b.m.Unlock()

	b.closed = true
	b.subs = make(map[string][]*handler)
	return nil
}

func (b *Broker) remove(queue string, h *handler) {
	b.m.Lock()
	defer b.m.Unlock()

	handlers := b.subs[queue]
	for i, cur := range handlers {
		if cur == h {
			b.subs[queue] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
	if len(b.subs[queue]) == 0 {
		delete(b.subs, queue)
	}
}

type subscription struct {
	broker  *Broker
	queue   string
	handler *handler
}

// Unsubscribe implements the pubsub.Subscription interface.
func (s *subscription) Unsubscribe() error {
	if !s.handler.active.Swap(false) {
		return nil
	}
	s.broker.remove(s.queue, s.handler)
	return nil
}

type message struct {
	broker *Broker
	msg    pubsub.Message
}

// Subject implements the pubsub.Replier interface.
func (m message) Subject() string {
	return m.msg.Subject
}

// Data implements the pubsub.Replier interface.
func (m message) Data() []byte {
	return m.msg.Data
}

// Reply implements the pubsub.Replier interface.
func (m message) Reply(reply pubsub.Reply) error {
	if m.msg.Reply == "" {
		return errors.New("memory: message has no reply subject")
	}
	return m.broker.Publish(context.Background(), pubsub.Message{
		Subject: m.msg.Reply,
		Data:    reply.Data,
	})
}
