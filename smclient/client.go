// Package smclient is a REST client for the subscription manager, the
// service keeping track of topics and of the subscriptions (queues) bound to
// them.
package smclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tehsphinx/pubsubfacade/restclient"
)

const (
	pingPath          = "ping"
	topicsPath        = "topics/"
	subscriptionsPath = "subscriptions/"
)

// Client talks to the subscription manager API.
type Client struct {
	rest *restclient.Client
}

// New creates a client from the SUBSCRIPTION-MANAGER-API configuration.
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

// GetTopics lists all topics.
func (c *Client) GetTopics(ctx context.Context) ([]Topic, error) {
	var topics []Topic
	if err := c.rest.Do(ctx, http.MethodGet, topicsPath, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// PostTopic creates a topic.
func (c *Client) PostTopic(ctx context.Context, topic Topic) (Topic, error) {
	var created Topic
	if err := c.rest.Do(ctx, http.MethodPost, topicsPath, topic, &created); err != nil {
		return Topic{}, err
	}
	return created, nil
}

// GetSubscriptions lists the subscriptions of the authenticated user.
func (c *Client) GetSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := c.rest.Do(ctx, http.MethodGet, subscriptionsPath, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// GetSubscriptionByID fetches a single subscription.
func (c *Client) GetSubscriptionByID(ctx context.Context, id ID) (Subscription, error) {
	var sub Subscription
	if err := c.rest.Do(ctx, http.MethodGet, subscriptionPath(id), nil, &sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// PostSubscription creates a subscription for sub.TopicID. The service assigns
// its queue and active state; other fields of sub are not sent.
func (c *Client) PostSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	var created Subscription
	body := subscriptionCreate{TopicID: sub.TopicID}
	if err := c.rest.Do(ctx, http.MethodPost, subscriptionsPath, body, &created); err != nil {
		return Subscription{}, err
	}
	return created, nil
}

// PutSubscription updates a subscription and returns the new state.
func (c *Client) PutSubscription(ctx context.Context, id ID, patch SubscriptionPatch) (Subscription, error) {
	var updated Subscription
	if err := c.rest.Do(ctx, http.MethodPut, subscriptionPath(id), patch, &updated); err != nil {
		return Subscription{}, err
	}
	return updated, nil
}

// DeleteSubscriptionByID deletes a subscription.
func (c *Client) DeleteSubscriptionByID(ctx context.Context, id ID) error {
	return c.rest.Do(ctx, http.MethodDelete, subscriptionPath(id), nil, nil)
}

func subscriptionPath(id ID) string {
	return subscriptionsPath + url.PathEscape(string(id))
}
