// Package container owns the broker transport of a process: it runs the
// producer side (scheduled and on-demand messengers) and the consumer side
// (handlers attached to queues) over the pubsub interfaces.
package container

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

var (
	// ErrAlreadyRunning is returned by Run on a running container.
	ErrAlreadyRunning = errors.New("container is already running")
	// ErrNotAttached is returned when detaching a queue without consumer.
	ErrNotAttached = errors.New("no message consumer attached to queue")
)

// Container runs producers and consumers on a broker transport.
type Container struct {
	log      logging.Logger
	closer   io.Closer
	producer *Producer
	consumer *Consumer

	m         sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a container on top of the given transport. The container is
// not started.
func New(pub pubsub.Publisher, sub pubsub.Subscriber, opts ...Option) *Container {
	opt := getOptions(opts)

	return &Container{
		log:      opt.logger,
		closer:   opt.closer,
		producer: newProducer(pub, opt),
		consumer: newConsumer(sub, opt),
	}
}

// Producer returns the producer side of the container.
func (c *Container) Producer() *Producer {
	return c.producer
}

// Consumer returns the consumer side of the container.
func (c *Container) Consumer() *Consumer {
	return c.consumer
}

// IsRunning reports whether the container has been started and not stopped.
func (c *Container) IsRunning() bool {
	return c.running.Load()
}

// Run starts the container. With threaded set it returns as soon as the
// container is running; otherwise it blocks until ctx is cancelled or Stop is called.
func (c *Container) Run(ctx context.Context, threaded bool) error {
	c.m.Lock()
	if c.running.Load() {
		c.m.Unlock()
		return ErrAlreadyRunning
	}
	if r := c.consumer.flush(); r != nil {
		c.m.Unlock()
		return r
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.running.Store(true)
	c.producer.start(runCtx)
	c.m.Unlock()

	c.log.Info("container started")

	go func() {
		defer close(done)

		<-runCtx.Done()
		c.producer.stop()
		c.running.Store(false)
		c.log.Info("container stopped")
	}()

	if threaded {
		return nil
	}
	<-done
	return nil
}

// Stop stops a running container and closes the underlying transport.
// A stopped container cannot be restarted on the same transport.
func (c *Container) Stop() error {
	c.m.Lock()
	cancel, done := c.cancel, c.done
	c.m.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	var err error
	c.closeOnce.Do(func() {
		if c.closer != nil {
			err = c.closer.Close()
		}
	})
	return err
}
