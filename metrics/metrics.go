// Package metrics exposes prometheus indicators for the container: messages
// published and consumed, and the number of attached consumers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pubsubfacade"

// Result label values of the published counter.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Indicators records container activity. A nil *Indicators is valid and
// records nothing.
type Indicators struct {
	published *prometheus.CounterVec
	consumed  *prometheus.CounterVec
	consumers prometheus.Gauge
}

// New creates the indicators and registers them with reg.
func New(reg prometheus.Registerer) *Indicators {
	return &Indicators{
		published: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_published_total",
				Help:      "Total number of messages published per topic",
			},
			[]string{"topic", "result"},
		),
		consumed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_consumed_total",
				Help:      "Total number of messages delivered to consumers per queue",
			},
			[]string{"queue"},
		),
		consumers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "attached_consumers",
				Help:      "Number of queues with an attached consumer",
			},
		),
	}
}

// ObservePublish counts a publish attempt on topic.
func (i *Indicators) ObservePublish(topic string, err error) {
	if i == nil {
		return
	}

	result := ResultOK
	if err != nil {
		result = ResultError
	}
	i.published.With(prometheus.Labels{"topic": topic, "result": result}).Inc()
}

// AddConsumed counts a message delivered on queue.
func (i *Indicators) AddConsumed(queue string) {
	if i == nil {
		return
	}
	i.consumed.With(prometheus.Labels{"queue": queue}).Inc()
}

// SetConsumers sets the number of attached consumers.
func (i *Indicators) SetConsumers(n int) {
	if i == nil {
		return
	}
	i.consumers.Set(float64(n))
}
