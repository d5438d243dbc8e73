// Package gfclient is a REST client for the geofencing service, which
// publishes UAS zone updates to subscribers matching a zones filter.
package gfclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tehsphinx/pubsubfacade/restclient"
)

const (
	pingPath          = "uas_zones/ping"
	subscriptionsPath = "subscriptions/"
)

// Client talks to the geofencing service API.
type Client struct {
	rest *restclient.Client
}

// New creates a client from the API configuration.
func New(cfg restclient.Config) (*Client, error) {
	rest, err := restclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{rest: rest}, nil
}

// PingCredentials checks the configured credentials against the API.
func (c *Client) PingCredentials(ctx context.Context) error {
	return c.rest.Do(ctx, http.MethodGet, pingPath, nil, nil)
}

// PostSubscription creates a subscription for the zones matching filter.
func (c *Client) PostSubscription(ctx context.Context, filter UASZonesFilter) (SubscriptionReply, error) {
	var reply SubscriptionReply
	if err := c.rest.Do(ctx, http.MethodPost, subscriptionsPath, subscriptionsRequest{UASZonesFilter: filter}, &reply); err != nil {
		return SubscriptionReply{}, err
	}
	return reply, nil
}

// GetSubscriptionByID fetches a single subscription.
func (c *Client) GetSubscriptionByID(ctx context.Context, id string) (Subscription, error) {
	var reply subscriptionDetailsReply
	if err := c.rest.Do(ctx, http.MethodGet, subscriptionPath(id), nil, &reply); err != nil {
		return Subscription{}, err
	}
	return reply.Subscription, nil
}

// PutSubscription activates or deactivates a subscription.
func (c *Client) PutSubscription(ctx context.Context, id string, active bool) error {
	return c.rest.Do(ctx, http.MethodPut, subscriptionPath(id), subscriptionUpdate{Active: active}, nil)
}

// DeleteSubscriptionByID deletes a subscription.
func (c *Client) DeleteSubscriptionByID(ctx context.Context, id string) error {
	return c.rest.Do(ctx, http.MethodDelete, subscriptionPath(id), nil, nil)
}

func subscriptionPath(id string) string {
	return subscriptionsPath + url.PathEscape(id)
}
