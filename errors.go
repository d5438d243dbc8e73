package pubsubfacade

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tehsphinx/pubsubfacade/restclient"
)

var (
	// ErrConfigFormat is returned for config files without a YAML extension.
	ErrConfigFormat = errors.New("config files should end with '.yml' or '.yaml' extension")
	// ErrAuthentication is returned when the API rejects the configured credentials.
	ErrAuthentication = errors.New("invalid credentials")
	// ErrNotRunning is returned by state-changing operations before Start.
	ErrNotRunning = errors.New("action cannot complete because container has not been started yet")
	// ErrNotFound is returned when a topic or subscription does not exist remotely.
	ErrNotFound = errors.New("not found")
	// ErrTopicNotFound is returned when subscribing to an unknown topic.
	ErrTopicNotFound = fmt.Errorf("topic %w", ErrNotFound)
)

// apiErr wraps an API client error with msg. A 404 response additionally
// matches ErrNotFound.
func apiErr(err error, msg string) error {
	if code, ok := restclient.StatusCode(err); ok && code == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %w", msg, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
