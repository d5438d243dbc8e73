package pubsubfacade

import (
	"context"
	"fmt"

	"github.com/tehsphinx/pubsubfacade/container"
	"github.com/tehsphinx/pubsubfacade/restclient"
	"github.com/tehsphinx/pubsubfacade/smclient"
)

// TopicsAPI lists the topics known to the subscription manager.
type TopicsAPI interface {
	GetTopics(ctx context.Context) ([]smclient.Topic, error)
}

// PublisherAPI is the part of the subscription manager API a Publisher uses.
type PublisherAPI interface {
	CredentialsPinger
	TopicsAPI
	PostTopic(ctx context.Context, topic smclient.Topic) (smclient.Topic, error)
}

var _ PublisherAPI = (*smclient.Client)(nil)

var publisherFactories = Factories[PublisherAPI]{
	Container: container.CreateFromConfig,
	APIClient: func(cfg restclient.Config) (PublisherAPI, error) {
		c, err := smclient.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

// Publisher registers topics with the subscription manager and sends their
// messages through the container.
type Publisher struct {
	facade
	api PublisherAPI
}

// NewPublisher creates a publisher. It fails with ErrAuthentication if the
// API rejects its credentials. The container is not started.
func NewPublisher(ctx context.Context, c *container.Container, api PublisherAPI, opts ...Option) (*Publisher, error) {
	f, err := newFacade(ctx, c, api, opts)
	if err != nil {
		return nil, err
	}
	return &Publisher{facade: f, api: api}, nil
}

// NewPublisherFromConfig creates a publisher from a configuration file.
func NewPublisherFromConfig(ctx context.Context, path string, opts ...Option) (*Publisher, error) {
	return CreateFromConfig(ctx, path, publisherFactories, NewPublisher, opts...)
}

// TopicByName looks a topic up by its name. The boolean reports whether it exists.
func (p *Publisher) TopicByName(ctx context.Context, name string) (smclient.Topic, bool, error) {
	return topicByName(ctx, p.api, name)
}

// GetOrCreateTopic returns the topic with the given name, creating it if it
// does not exist. Concurrent callers may both create the topic; uniqueness
// of names is up to the subscription manager.
func (p *Publisher) GetOrCreateTopic(ctx context.Context, name string) (smclient.Topic, error) {
	topic, ok, err := p.TopicByName(ctx, name)
	if err != nil {
		return smclient.Topic{}, err
	}
	if ok {
		return topic, nil
	}

	topic, err = p.api.PostTopic(ctx, smclient.Topic{Name: name})
	if err != nil {
		return smclient.Topic{}, apiErr(err, fmt.Sprintf("create topic %q", name))
	}
	p.log.Infof("topic created: name => %v, id => %v", topic.Name, topic.ID)
	return topic, nil
}

// AddTopicMessenger makes sure the topic of the messenger exists and
// schedules the messenger in the container.
func (p *Publisher) AddTopicMessenger(ctx context.Context, m container.Messenger) (smclient.Topic, error) {
	topic, err := p.GetOrCreateTopic(ctx, m.ID)
	if err != nil {
		return smclient.Topic{}, err
	}

	if r := p.container.Producer().ScheduleMessenger(m); r != nil {
		return smclient.Topic{}, r
	}
	return topic, nil
}

// PreScheduleMessenger schedules the messenger of a topic that already exists
// in the subscription manager, without creating anything remotely. It is
// meant for service startup, to reconnect messengers to their topics.
func (p *Publisher) PreScheduleMessenger(ctx context.Context, m container.Messenger) error {
	_, ok, err := p.TopicByName(ctx, m.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrTopicNotFound, m.ID)
	}

	return p.container.Producer().ScheduleMessenger(m)
}

// PublishTopicMessenger sends a message produced by m now. msgCtx is handed
// to the messenger's producer.
func (p *Publisher) PublishTopicMessenger(ctx context.Context, m container.Messenger, msgCtx any) error {
	if r := p.requireRunning(); r != nil {
		return r
	}

	return p.container.Producer().TriggerMessenger(ctx, m, msgCtx)
}

func topicByName(ctx context.Context, api TopicsAPI, name string) (smclient.Topic, bool, error) {
	topics, err := api.GetTopics(ctx)
	if err != nil {
		return smclient.Topic{}, false, apiErr(err, "get topics")
	}

	for _, topic := range topics {
		if topic.Name == name {
			return topic, true, nil
		}
	}
	return smclient.Topic{}, false, nil
}
