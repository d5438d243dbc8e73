package smclient

import (
	"bytes"
	"encoding/json"
)

// ID identifies a remote record. The service may encode ids as JSON strings
// or numbers; both decode to the same ID.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Topic is a named publish channel.
type Topic struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// Subscription links a topic to a delivery queue.
type Subscription struct {
	ID      ID     `json:"id,omitempty"`
	TopicID ID     `json:"topic_id,omitempty"`
	Queue   string `json:"queue,omitempty"`
	Active  bool   `json:"active"`
}

// subscriptionCreate is the body of a subscription creation.
type subscriptionCreate struct {
	TopicID ID `json:"topic_id"`
}

// SubscriptionPatch is the body of a subscription update.
type SubscriptionPatch struct {
	Active *bool `json:"active,omitempty"`
}

// SetActive returns a patch that only changes the active flag.
func SetActive(active bool) SubscriptionPatch {
	return SubscriptionPatch{Active: &active}
}
