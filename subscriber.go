package pubsubfacade

import (
	"context"
	"fmt"

	"github.com/tehsphinx/pubsubfacade/container"
	"github.com/tehsphinx/pubsubfacade/pubsub"
	"github.com/tehsphinx/pubsubfacade/restclient"
	"github.com/tehsphinx/pubsubfacade/smclient"
)

// SubscriberAPI is the part of the subscription manager API a Subscriber uses.
type SubscriberAPI interface {
	CredentialsPinger
	TopicsAPI
	GetSubscriptionByID(ctx context.Context, id smclient.ID) (smclient.Subscription, error)
	PostSubscription(ctx context.Context, sub smclient.Subscription) (smclient.Subscription, error)
	PutSubscription(ctx context.Context, id smclient.ID, patch smclient.SubscriptionPatch) (smclient.Subscription, error)
	DeleteSubscriptionByID(ctx context.Context, id smclient.ID) error
}

var _ SubscriberAPI = (*smclient.Client)(nil)

var subscriberFactories = Factories[SubscriberAPI]{
	Container: container.CreateFromConfig,
	APIClient: func(cfg restclient.Config) (SubscriberAPI, error) {
		c, err := smclient.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

// Subscriber creates subscriptions in the subscription manager and attaches
// message consumers to their queues.
type Subscriber struct {
	facade
	api SubscriberAPI
}

// NewSubscriber creates a subscriber. It fails with ErrAuthentication if the
// API rejects its credentials. The container is not started.
func NewSubscriber(ctx context.Context, c *container.Container, api SubscriberAPI, opts ...Option) (*Subscriber, error) {
	f, err := newFacade(ctx, c, api, opts)
	if err != nil {
		return nil, err
	}
	return &Subscriber{facade: f, api: api}, nil
}

// NewSubscriberFromConfig creates a subscriber from a configuration file.
func NewSubscriberFromConfig(ctx context.Context, path string, opts ...Option) (*Subscriber, error) {
	return CreateFromConfig(ctx, path, subscriberFactories, NewSubscriber, opts...)
}

// PreloadQueueMessageConsumer attaches consumer to the queue of an existing
// subscription without calling the API. It is meant for service startup, to
// reconnect consumers to subscriptions that already exist.
func (s *Subscriber) PreloadQueueMessageConsumer(queue string, consumer pubsub.Handler) error {
	if r := s.requireRunning(); r != nil {
		return r
	}

	return s.attach(queue, consumer)
}

// Subscribe creates a subscription to the topic with the given name and
// attaches consumer to the subscription's queue.
func (s *Subscriber) Subscribe(ctx context.Context, topicName string, consumer pubsub.Handler) (smclient.Subscription, error) {
	if r := s.requireRunning(); r != nil {
		return smclient.Subscription{}, r
	}

	topic, ok, err := topicByName(ctx, s.api, topicName)
	if err != nil {
		return smclient.Subscription{}, err
	}
	if !ok {
		return smclient.Subscription{}, fmt.Errorf("%w: %q", ErrTopicNotFound, topicName)
	}

	sub, err := s.api.PostSubscription(ctx, smclient.Subscription{TopicID: topic.ID})
	if err != nil {
		return smclient.Subscription{}, apiErr(err, fmt.Sprintf("create subscription to topic %q", topicName))
	}

	if r := s.attach(sub.Queue, consumer); r != nil {
		// the subscription would never be consumed: drop it again
		if dr := s.api.DeleteSubscriptionByID(ctx, sub.ID); dr != nil {
			s.log.Errorf("failed to delete unconsumed subscription %v: %v", sub.ID, dr)
		}
		return smclient.Subscription{}, r
	}

	s.log.Infof("subscribed: topic => %v, subscription => %v, queue => %v", topicName, sub.ID, sub.Queue)
	return sub, nil
}

// Pause deactivates the subscription. The service unbinds its queue from the
// topic, so no messages arrive until Resume.
func (s *Subscriber) Pause(ctx context.Context, sub smclient.Subscription) (smclient.Subscription, error) {
	return s.setActive(ctx, sub, false)
}

// Resume reactivates a paused subscription.
func (s *Subscriber) Resume(ctx context.Context, sub smclient.Subscription) (smclient.Subscription, error) {
	return s.setActive(ctx, sub, true)
}

func (s *Subscriber) setActive(ctx context.Context, sub smclient.Subscription, active bool) (smclient.Subscription, error) {
	if r := s.requireRunning(); r != nil {
		return smclient.Subscription{}, r
	}

	updated, err := s.api.PutSubscription(ctx, sub.ID, smclient.SetActive(active))
	if err != nil {
		return smclient.Subscription{}, apiErr(err, fmt.Sprintf("update subscription %v", sub.ID))
	}
	return updated, nil
}

// Unsubscribe removes the subscription. The remote record is fetched first,
// then the local consumer is detached so nothing is delivered to it anymore,
// and finally the subscription is deleted remotely.
func (s *Subscriber) Unsubscribe(ctx context.Context, sub smclient.Subscription) error {
	if r := s.requireRunning(); r != nil {
		return r
	}

	remote, err := s.api.GetSubscriptionByID(ctx, sub.ID)
	if err != nil {
		return apiErr(err, fmt.Sprintf("get subscription %v", sub.ID))
	}

	queue := remote.Queue
	if queue == "" {
		queue = sub.Queue
	}
	if r := s.detach(queue); r != nil {
		return r
	}

	if r := s.api.DeleteSubscriptionByID(ctx, sub.ID); r != nil {
		return apiErr(r, fmt.Sprintf("delete subscription %v", sub.ID))
	}

	s.log.Infof("unsubscribed: subscription => %v, queue => %v", sub.ID, queue)
	return nil
}
