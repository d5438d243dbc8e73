package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tehsphinx/pubsubfacade/logging"
)

const readHeaderTimeout = 5 * time.Second

// Serve exposes the metrics of reg on addr under /metrics until ctx is done.
// The returned channel reports a failing server and is closed once the server
// has returned.
func Serve(ctx context.Context, addr string, reg prometheus.Gatherer, log logging.Logger) <-chan error {
	errCh := make(chan error, 2)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("metrics server listening: address => %v", addr)
		serveErr <- srv.ListenAndServe()
	}()

	go func() {
		defer close(errCh)

		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server failed: %w", err)
			}
			return
		case <-ctx.Done():
		}

		if err := srv.Shutdown(context.Background()); err != nil {
			errCh <- err
		}
		if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server failed: %w", err)
		}
		log.Info("metrics server stopped")
	}()
	return errCh
}
