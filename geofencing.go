package pubsubfacade

import (
	"context"
	"fmt"

	"github.com/tehsphinx/pubsubfacade/container"
	"github.com/tehsphinx/pubsubfacade/gfclient"
	"github.com/tehsphinx/pubsubfacade/pubsub"
	"github.com/tehsphinx/pubsubfacade/restclient"
)

// GeofencingAPI is the part of the geofencing service API a GeofencingSubscriber uses.
type GeofencingAPI interface {
	CredentialsPinger
	PostSubscription(ctx context.Context, filter gfclient.UASZonesFilter) (gfclient.SubscriptionReply, error)
	GetSubscriptionByID(ctx context.Context, id string) (gfclient.Subscription, error)
	PutSubscription(ctx context.Context, id string, active bool) error
	DeleteSubscriptionByID(ctx context.Context, id string) error
}

var _ GeofencingAPI = (*gfclient.Client)(nil)

var geofencingFactories = Factories[GeofencingAPI]{
	Container: container.CreateFromConfig,
	APIClient: func(cfg restclient.Config) (GeofencingAPI, error) {
		c, err := gfclient.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

// GeofencingSubscription references a UAS zones subscription.
type GeofencingSubscription struct {
	ID    string
	Queue string
}

// GeofencingSubscriber subscribes to UAS zone updates of the geofencing service.
type GeofencingSubscriber struct {
	facade
	api GeofencingAPI
}

// NewGeofencingSubscriber creates a geofencing subscriber. It fails with
// ErrAuthentication if the API rejects its credentials.
func NewGeofencingSubscriber(ctx context.Context, c *container.Container, api GeofencingAPI, opts ...Option) (*GeofencingSubscriber, error) {
	f, err := newFacade(ctx, c, api, opts)
	if err != nil {
		return nil, err
	}
	return &GeofencingSubscriber{facade: f, api: api}, nil
}

// NewGeofencingSubscriberFromConfig creates a geofencing subscriber from a configuration file.
func NewGeofencingSubscriberFromConfig(ctx context.Context, path string, opts ...Option) (*GeofencingSubscriber, error) {
	return CreateFromConfig(ctx, path, geofencingFactories, NewGeofencingSubscriber, opts...)
}

// PreloadQueueMessageConsumer attaches consumer to the publication location
// of an existing subscription without calling the API.
func (s *GeofencingSubscriber) PreloadQueueMessageConsumer(queue string, consumer pubsub.Handler) error {
	if r := s.requireRunning(); r != nil {
		return r
	}

	return s.attach(queue, consumer)
}

// Subscribe creates a subscription for the UAS zones matching filter and
// attaches consumer to its publication location.
func (s *GeofencingSubscriber) Subscribe(ctx context.Context, filter gfclient.UASZonesFilter, consumer pubsub.Handler) (GeofencingSubscription, error) {
	if r := s.requireRunning(); r != nil {
		return GeofencingSubscription{}, r
	}

	reply, err := s.api.PostSubscription(ctx, filter)
	if err != nil {
		return GeofencingSubscription{}, apiErr(err, "create uas zones subscription")
	}

	if r := s.attach(reply.PublicationLocation, consumer); r != nil {
		if dr := s.api.DeleteSubscriptionByID(ctx, reply.SubscriptionID); dr != nil {
			s.log.Errorf("failed to delete unconsumed subscription %v: %v", reply.SubscriptionID, dr)
		}
		return GeofencingSubscription{}, r
	}

	s.log.Infof("subscribed: subscription => %v, queue => %v", reply.SubscriptionID, reply.PublicationLocation)
	return GeofencingSubscription{ID: reply.SubscriptionID, Queue: reply.PublicationLocation}, nil
}

// Pause deactivates the subscription.
func (s *GeofencingSubscriber) Pause(ctx context.Context, sub GeofencingSubscription) error {
	return s.setActive(ctx, sub, false)
}

// Resume reactivates the subscription.
func (s *GeofencingSubscriber) Resume(ctx context.Context, sub GeofencingSubscription) error {
	return s.setActive(ctx, sub, true)
}

func (s *GeofencingSubscriber) setActive(ctx context.Context, sub GeofencingSubscription, active bool) error {
	if r := s.requireRunning(); r != nil {
		return r
	}

	if r := s.api.PutSubscription(ctx, sub.ID, active); r != nil {
		return apiErr(r, fmt.Sprintf("update subscription %v", sub.ID))
	}
	return nil
}

// Unsubscribe fetches the subscription, detaches its consumer and deletes it remotely.
func (s *GeofencingSubscriber) Unsubscribe(ctx context.Context, sub GeofencingSubscription) error {
	if r := s.requireRunning(); r != nil {
		return r
	}

	remote, err := s.api.GetSubscriptionByID(ctx, sub.ID)
	if err != nil {
		return apiErr(err, fmt.Sprintf("get subscription %v", sub.ID))
	}

	queue := remote.PublicationLocation
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
