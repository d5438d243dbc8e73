package container

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/metrics"
	"github.com/tehsphinx/pubsubfacade/pubsub"
	"golang.org/x/time/rate"
)

// Producer keeps the scheduled messengers and sends their messages.
type Producer struct {
	pub     pubsub.Publisher
	log     logging.Logger
	metrics *metrics.Indicators
	limiter *rate.Limiter

	m          sync.Mutex
	messengers map[string]Messenger
	tickers    map[string]context.CancelFunc
	runCtx     context.Context
	wg         sync.WaitGroup
}

func newProducer(pub pubsub.Publisher, opt options) *Producer {
	return &Producer{
		pub:        pub,
		log:        opt.logger,
		metrics:    opt.metrics,
		limiter:    opt.limiter,
		messengers: make(map[string]Messenger),
		tickers:    make(map[string]context.CancelFunc),
	}
}

// ScheduleMessenger registers m under its id, replacing a previous messenger
// with the same id. Messengers with an interval start sending once the
// container runs.
func (p *Producer) ScheduleMessenger(m Messenger) error {
	if r := m.validate(); r != nil {
		return r
	}

	p.m.Lock()
	defer p.m.Unlock()

	if cancel, ok := p.tickers[m.ID]; ok {
		cancel()
		delete(p.tickers, m.ID)
	}
	p.messengers[m.ID] = m
	if p.runCtx != nil {
		p.startTicker(p.runCtx, m)
	}

	p.log.Infof("scheduled: messenger => %v, interval => %v", m.ID, m.Interval)
	return nil
}

// TriggerMessenger produces a message with m now and publishes it on m.ID.
func (p *Producer) TriggerMessenger(ctx context.Context, m Messenger, msgCtx any) error {
	if r := m.validate(); r != nil {
		return r
	}

	data, err := m.Produce(ctx, msgCtx)
	if err != nil {
		return fmt.Errorf("produce message for %q: %w", m.ID, err)
	}

	if p.limiter != nil {
		if r := p.limiter.Wait(ctx); r != nil {
			return fmt.Errorf("wait to publish on %q: %w", m.ID, r)
		}
	}

	err = p.pub.Publish(ctx, pubsub.Message{Subject: m.ID, Data: data})
	p.metrics.ObservePublish(m.ID, err)
	if err != nil {
		return fmt.Errorf("publish message on %q: %w", m.ID, err)
	}
	return nil
}

// Messengers returns the ids of the scheduled messengers, sorted.
func (p *Producer) Messengers() []string {
	p.m.Lock()
	defer p.m.Unlock()

	ids := make([]string, 0, len(p.messengers))
	for id := range p.messengers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Producer) start(ctx context.Context) {
	p.m.Lock()
	defer p.m.Unlock()

	p.runCtx = ctx
	for _, m := range p.messengers {
		p.startTicker(ctx, m)
	}
}

func (p *Producer) stop() {
	p.m.Lock()
	for id, cancel := range p.tickers {
		cancel()
		delete(p.tickers, id)
	}
	p.runCtx = nil
	p.m.Unlock()

	p.wg.Wait()
}

// startTicker must be called with p.m held.
func (p *Producer) startTicker(ctx context.Context, m Messenger) {
	if m.Interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.tickers[m.ID] = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if r := p.TriggerMessenger(ctx, m, nil); r != nil {
					p.log.Errorf("scheduled send failed: messenger => %v: %v", m.ID, r)
				}
			}
		}
	}()
}
