package metrics

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIndicators(t *testing.T) {
	asrt := is.New(t)
	i := New(prometheus.NewRegistry())

	i.ObservePublish("t1", nil)
	i.ObservePublish("t1", nil)
	i.ObservePublish("t1", errors.New("broker down"))
	i.AddConsumed("q1")
	i.SetConsumers(3)

	asrt.Equal(testutil.ToFloat64(i.published.WithLabelValues("t1", ResultOK)), 2.0)
	asrt.Equal(testutil.ToFloat64(i.published.WithLabelValues("t1", ResultError)), 1.0)
	asrt.Equal(testutil.ToFloat64(i.consumed.WithLabelValues("q1")), 1.0)
	asrt.Equal(testutil.ToFloat64(i.consumers), 3.0)
}

func TestNilIndicators(t *testing.T) {
	var i *Indicators
	i.ObservePublish("t1", nil)
	i.AddConsumed("q1")
	i.SetConsumers(1)
}
