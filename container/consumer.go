package container

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/metrics"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

// Consumer keeps the registry of message consumers attached to queues.
type Consumer struct {
	sub     pubsub.Subscriber
	log     logging.Logger
	metrics *metrics.Indicators

	m    sync.RWMutex
	subs map[string]pubsub.Subscription
}

func newConsumer(sub pubsub.Subscriber, opt options) *Consumer {
	return &Consumer{
		sub:     sub,
		log:     opt.logger,
		metrics: opt.metrics,
		subs:    make(map[string]pubsub.Subscription),
	}
}

// AttachMessageConsumer starts delivering messages of queue to handler.
// A consumer already attached to the same queue is replaced.
func (s *Consumer) AttachMessageConsumer(queue string, handler pubsub.Handler) error {
	subscr, err := s.sub.Subscribe(queue, s.counted(queue, handler))
	if err != nil {
		return fmt.Errorf("attach consumer to queue %q: %w", queue, err)
	}

	s.register(queue, subscr)
	s.log.Infof("attached: queue => %v", queue)
	return nil
}

// DetachMessageConsumer stops the consumer attached to queue.
func (s *Consumer) DetachMessageConsumer(queue string) error {
	s.m.Lock()
	subscr, ok := s.subs[queue]
	delete(s.subs, queue)
	s.metrics.SetConsumers(len(s.subs))
	s.m.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNotAttached, queue)
	}
	if r := subscr.Unsubscribe(); r != nil {
		return fmt.Errorf("detach consumer from queue %q: %w", queue, r)
	}

	s.log.Infof("detached: queue => %v", queue)
	return nil
}

// Queues returns the queues with an attached consumer, sorted.
func (s *Consumer) Queues() []string {
	s.m.RLock()
	defer s.m.RUnlock()

	queues := make([]string, 0, len(s.subs))
	for q := range s.subs {
		queues = append(queues, q)
	}
	sort.Strings(queues)
	return queues
}

func (s *Consumer) register(queue string, sub pubsub.Subscription) {
	s.m.Lock()
	defer s.m.Unlock()

	if subscr, ok := s.subs[queue]; ok {
		_ = subscr.Unsubscribe()
		s.log.Infof("un-subscribed: queue => %v: consumer attached to same queue", queue)
	}
	s.subs[queue] = sub
	s.metrics.SetConsumers(len(s.subs))
}

func (s *Consumer) counted(queue string, handler pubsub.Handler) pubsub.Handler {
	if s.metrics == nil {
		return handler
	}
	return func(ctx context.Context, msg pubsub.Replier) {
		s.metrics.AddConsumed(queue)
		handler(ctx, msg)
	}
}

func (s *Consumer) flush() error {
	return s.sub.Flush()
}
