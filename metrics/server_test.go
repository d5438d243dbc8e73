package metrics

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tehsphinx/pubsubfacade/logging"
)

func drain(t *testing.T, errCh <-chan error) []error {
	t.Helper()

	var errs []error
	timeout := time.After(5 * time.Second)
	for {
		select {
		case err, ok := <-errCh:
			if !ok {
				return errs
			}
			errs = append(errs, err)
		case <-timeout:
			t.Fatal("error channel not closed")
		}
	}
}

func TestServeAddressInUse(t *testing.T) {
	asrt := is.New(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	asrt.NoErr(err)
	defer lis.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := drain(t, Serve(ctx, lis.Addr().String(), prometheus.NewRegistry(), logging.Noop{}))
	asrt.Equal(len(errs), 1)
}

func TestServeCancelledAddressInUse(t *testing.T) {
	asrt := is.New(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	asrt.NoErr(err)
	defer lis.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := drain(t, Serve(ctx, lis.Addr().String(), prometheus.NewRegistry(), logging.Noop{}))
	asrt.True(len(errs) <= 1)
}
