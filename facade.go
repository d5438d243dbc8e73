// Package pubsubfacade combines a broker container and the REST API of a
// subscription management service behind publisher and subscriber
// operations. The API keeps track of topics and subscriptions, the container
// moves the actual messages: every facade operation performs the remote call
// and registers the matching producer or consumer locally.
//
// State-changing operations require the container to run; call Start once
// at process startup.
package pubsubfacade

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tehsphinx/pubsubfacade/container"
	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/pubsub"
	"github.com/tehsphinx/pubsubfacade/restclient"
)

// CredentialsPinger is implemented by API clients that can verify their credentials.
type CredentialsPinger interface {
	PingCredentials(ctx context.Context) error
}

type facade struct {
	container *container.Container
	log       logging.Logger
}

func newFacade(ctx context.Context, c *container.Container, api CredentialsPinger, opts []Option) (facade, error) {
	if r := checkCredentials(ctx, api); r != nil {
		return facade{}, r
	}

	opt := getOptions(opts)
	return facade{
		container: c,
		log:       opt.logger,
	}, nil
}

func checkCredentials(ctx context.Context, api CredentialsPinger) error {
	err := api.PingCredentials(ctx)
	if err == nil {
		return nil
	}
	if code, ok := restclient.StatusCode(err); ok && code == http.StatusUnauthorized {
		return ErrAuthentication
	}
	return fmt.Errorf("ping credentials: %w", err)
}

// Start runs the underlying container. With threaded set it returns once the
// container runs in the background; otherwise it blocks until ctx is
// cancelled or Stop is called.
func (f *facade) Start(ctx context.Context, threaded bool) error {
	return f.container.Run(ctx, threaded)
}

// Stop stops the container and closes its broker connection.
func (f *facade) Stop() error {
	return f.container.Stop()
}

// IsRunning reports whether the container runs.
func (f *facade) IsRunning() bool {
	return f.container.IsRunning()
}

// Container returns the underlying container.
func (f *facade) Container() *container.Container {
	return f.container
}

func (f *facade) requireRunning() error {
	if !f.container.IsRunning() {
		return ErrNotRunning
	}
	return nil
}

func (f *facade) attach(queue string, consumer pubsub.Handler) error {
	return f.container.Consumer().AttachMessageConsumer(queue, consumer)
}

// detach removes the consumer of queue. A queue without consumer is not an
// error: after a restart without preload the registry is empty while the
// remote subscription still exists.
func (f *facade) detach(queue string) error {
	err := f.container.Consumer().DetachMessageConsumer(queue)
	if errors.Is(err, container.ErrNotAttached) {
		f.log.Infof("detach skipped: queue => %v: no consumer attached", queue)
		return nil
	}
	return err
}
