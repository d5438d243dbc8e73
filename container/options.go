package container

import (
	"io"

	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/metrics"
	"golang.org/x/time/rate"
)

// Option defines an option for configuring the container.
type Option func(opt *options)

func getOptions(opts []Option) options {
	opt := options{
		logger: logging.Noop{},
	}

	for _, o := range opts {
		o(&opt)
	}
	return opt
}

type options struct {
	logger  logging.Logger
	closer  io.Closer
	metrics *metrics.Indicators
	limiter *rate.Limiter
}

// WithLogger sets the logger for the container.
func WithLogger(log logging.Logger) Option {
	return func(opt *options) {
		opt.logger = log
	}
}

// WithCloser registers the transport connection to be closed on Stop.
func WithCloser(c io.Closer) Option {
	return func(opt *options) {
		opt.closer = c
	}
}

// WithMetrics records published and consumed messages in m.
func WithMetrics(m *metrics.Indicators) Option {
	return func(opt *options) {
		opt.metrics = m
	}
}

// WithPublishRate limits publishing to perSecond messages with bursts of up
// to burst messages. A send waits for a free slot or fails once its context
// is done.
func WithPublishRate(perSecond float64, burst int) Option {
	return func(opt *options) {
		if burst < 1 {
			burst = 1
		}
		opt.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}
