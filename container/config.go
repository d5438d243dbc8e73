package container

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	pubamqp "github.com/tehsphinx/pubsubfacade/pubsub/amqp"
	pubkafka "github.com/tehsphinx/pubsubfacade/pubsub/kafka"
	"github.com/tehsphinx/pubsubfacade/pubsub/memory"
	pubnats "github.com/tehsphinx/pubsubfacade/pubsub/nats"
)

// Supported broker protocols.
const (
	ProtocolNATS   = "nats"
	ProtocolAMQP   = "amqp"
	ProtocolKafka  = "kafka"
	ProtocolMemory = "memory"
)

const (
	defaultNATSPort     = 4222
	defaultAMQPPort     = 5672
	defaultAMQPSPort    = 5671
	defaultKafkaPort    = 9092
	defaultAMQPExchange = "amq.topic"
	connectionName      = "pubsubfacade"
)

// BrokerConfig is the BROKER section of the facade configuration file.
type BrokerConfig struct {
	// Protocol selects the transport: amqp (default), nats, kafka or memory.
	// With amqp a queue is bound to the topic it subscribes to. nats has no
	// such binding: a message published on a topic only reaches a queue whose
	// subject equals the topic name.
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username" env:"BROKER_USERNAME"`
	Password string `yaml:"password" env:"BROKER_PASSWORD"`
	TLS      bool   `yaml:"tls"`
	// Exchange messages are published to (amqp only). Defaults to amq.topic.
	Exchange string `yaml:"exchange"`
	// QueueGroup load-balances queues between instances. It is the queue
	// group for nats and the consumer group for kafka.
	QueueGroup string `yaml:"queue_group"`
	// PublishRate limits the messages published per second. Zero means no limit.
	PublishRate  float64 `yaml:"publish_rate"`
	PublishBurst int     `yaml:"publish_burst"`
}

func (c BrokerConfig) protocol() string {
	if c.Protocol == "" {
		return ProtocolAMQP
	}
	return strings.ToLower(c.Protocol)
}

// URL returns the connection url of the broker.
func (c BrokerConfig) URL() (string, error) {
	var scheme string
	port := c.Port

	switch c.protocol() {
	case ProtocolNATS:
		scheme = "nats"
		if c.TLS {
			scheme = "tls"
		}
		if port == 0 {
			port = defaultNATSPort
		}
	case ProtocolAMQP:
		scheme = "amqp"
		if port == 0 {
			port = defaultAMQPPort
		}
		if c.TLS {
			scheme = "amqps"
			if c.Port == 0 {
				port = defaultAMQPSPort
			}
		}
	default:
		return "", fmt.Errorf("broker protocol %q has no url", c.Protocol)
	}

	if c.Host == "" {
		return "", fmt.Errorf("broker host is not configured")
	}

	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String(), nil
}

// Brokers returns the kafka broker addresses. Host may list several hosts
// separated by commas; hosts without port get Port or 9092.
func (c BrokerConfig) Brokers() ([]string, error) {
	port := c.Port
	if port == 0 {
		port = defaultKafkaPort
	}

	var brokers []string
	for _, host := range strings.Split(c.Host, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(host); err != nil {
			host = net.JoinHostPort(host, strconv.Itoa(port))
		}
		brokers = append(brokers, host)
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("broker host is not configured")
	}
	return brokers, nil
}

// CreateFromConfig connects to the broker described by cfg and returns a
// container on top of it. The container is not started.
func CreateFromConfig(cfg BrokerConfig, opts ...Option) (*Container, error) {
	switch cfg.protocol() {
	case ProtocolMemory:
		broker := memory.New()
		return New(broker, broker, cfg.containerOptions(opts, broker)...), nil

	case ProtocolNATS:
		u, err := cfg.URL()
		if err != nil {
			return nil, err
		}
		nc, err := nats.Connect(u, nats.Name(connectionName))
		if err != nil {
			return nil, fmt.Errorf("connect to nats broker: %w", err)
		}
		closer := closerFunc(func() error {
			nc.Close()
			return nil
		})
		return New(pubnats.Publisher(nc), pubnats.Subscriber(nc, cfg.QueueGroup), cfg.containerOptions(opts, closer)...), nil

	case ProtocolAMQP:
		u, err := cfg.URL()
		if err != nil {
			return nil, err
		}
		conn, err := pubamqp.Dial(u)
		if err != nil {
			return nil, fmt.Errorf("connect to amqp broker: %w", err)
		}
		exchange := cfg.Exchange
		if exchange == "" {
			exchange = defaultAMQPExchange
		}
		return New(pubamqp.Publisher(conn, exchange), pubamqp.Subscriber(conn), cfg.containerOptions(opts, conn)...), nil

	case ProtocolKafka:
		brokers, err := cfg.Brokers()
		if err != nil {
			return nil, err
		}
		group := cfg.QueueGroup
		if group == "" {
			group = connectionName
		}
		client := pubkafka.NewClient(brokers...)
		return New(pubkafka.Publisher(client), pubkafka.Subscriber(client, group, getOptions(opts).logger), cfg.containerOptions(opts, client)...), nil
	}

	return nil, fmt.Errorf("unsupported broker protocol %q", cfg.Protocol)
}

// containerOptions appends the options derived from c to opts without
// modifying the caller's slice.
func (c BrokerConfig) containerOptions(opts []Option, closer io.Closer) []Option {
	all := make([]Option, 0, len(opts)+2)
	all = append(all, opts...)
	all = append(all, WithCloser(closer))
	if c.PublishRate > 0 {
		all = append(all, WithPublishRate(c.PublishRate, c.PublishBurst))
	}
	return all
}
