package pubsubfacade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tehsphinx/pubsubfacade/logging"
)

// Option defines an option for configuring a facade.
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
	logger     logging.Logger
	registerer prometheus.Registerer
}

// WithLogger sets the logger for the facade. It takes precedence over the
// LOGGING section of a configuration file.
func WithLogger(log logging.Logger) Option {
	return func(opt *options) {
		opt.logger = log
	}
}

// WithMetrics registers the metrics of containers created from a
// configuration file with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(opt *options) {
		opt.registerer = reg
	}
}
