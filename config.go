package pubsubfacade

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env"
	"github.com/tehsphinx/pubsubfacade/container"
	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/metrics"
	"github.com/tehsphinx/pubsubfacade/restclient"
	"gopkg.in/yaml.v3"
)

// Config is the content of a facade configuration file.
type Config struct {
	Broker  container.BrokerConfig `yaml:"BROKER"`
	API     restclient.Config      `yaml:"SUBSCRIPTION-MANAGER-API"`
	Logging *logging.Config        `yaml:"LOGGING"`
}

// LoadConfig reads a YAML configuration file. Broker and API credentials can
// be overridden with the BROKER_USERNAME, BROKER_PASSWORD, SM_API_USERNAME
// and SM_API_PASSWORD environment variables.
func LoadConfig(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrConfigFormat, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if r := yaml.Unmarshal(raw, &cfg); r != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, r)
	}
	if r := env.Parse(&cfg.Broker); r != nil {
		return Config{}, fmt.Errorf("broker config from environment: %w", r)
	}
	if r := env.Parse(&cfg.API); r != nil {
		return Config{}, fmt.Errorf("api config from environment: %w", r)
	}
	return cfg, nil
}

// Factories builds the collaborators of a facade from its configuration.
// A facade variant is the combination of a Factories value and a constructor.
type Factories[A any] struct {
	Container func(cfg container.BrokerConfig, opts ...container.Option) (*container.Container, error)
	APIClient func(cfg restclient.Config) (A, error)
}

// CreateFromConfig loads the configuration file at path, builds the container
// and the API client with factories and hands them to build. If the file has a
// LOGGING section, the resulting logger is used unless WithLogger is given.
// WithMetrics registers the container metrics.
func CreateFromConfig[F any, A any](
	ctx context.Context,
	path string,
	factories Factories[A],
	build func(ctx context.Context, c *container.Container, api A, opts ...Option) (F, error),
	opts ...Option,
) (F, error) {
	var zero F

	cfg, err := LoadConfig(path)
	if err != nil {
		return zero, err
	}

	if cfg.Logging != nil {
		l, err := logging.New(*cfg.Logging)
		if err != nil {
			return zero, err
		}
		opts = append([]Option{WithLogger(l)}, opts...)
	}
	opt := getOptions(opts)
	containerOpts := []container.Option{container.WithLogger(opt.logger)}
	if opt.registerer != nil {
		containerOpts = append(containerOpts, container.WithMetrics(metrics.New(opt.registerer)))
	}

	c, err := factories.Container(cfg.Broker, containerOpts...)
	if err != nil {
		return zero, fmt.Errorf("create container: %w", err)
	}

	api, err := factories.APIClient(cfg.API)
	if err != nil {
		_ = c.Stop()
		return zero, fmt.Errorf("create api client: %w", err)
	}

	f, err := build(ctx, c, api, opts...)
	if err != nil {
		_ = c.Stop()
		return zero, err
	}
	return f, nil
}
