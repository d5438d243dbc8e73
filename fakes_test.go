package pubsubfacade_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tehsphinx/pubsubfacade/gfclient"
	"github.com/tehsphinx/pubsubfacade/restclient"
	"github.com/tehsphinx/pubsubfacade/smclient"
)

// fakeAPI is an in-memory subscription manager recording every call.
type fakeAPI struct {
	m       sync.Mutex
	pingErr error
	calls   []string
	topics  []smclient.Topic
	subs    map[smclient.ID]smclient.Subscription
	nextID  int
}

func newFakeAPI(topics ...smclient.Topic) *fakeAPI {
	return &fakeAPI{
		topics: topics,
		subs:   make(map[smclient.ID]smclient.Subscription),
	}
}

func (f *fakeAPI) record(call string) {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) count(call string) int {
	f.m.Lock()
	defer f.m.Unlock()

	var n int
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) PingCredentials(context.Context) error {
	f.record("ping")
	return f.pingErr
}

func (f *fakeAPI) GetTopics(context.Context) ([]smclient.Topic, error) {
	f.record("getTopics")
	f.m.Lock()
	defer f.m.Unlock()
	return append([]smclient.Topic(nil), f.topics...), nil
}

func (f *fakeAPI) PostTopic(_ context.Context, topic smclient.Topic) (smclient.Topic, error) {
	f.record("postTopic")
	f.m.Lock()
	defer f.m.Unlock()

	f.nextID++
	topic.ID = smclient.ID(fmt.Sprintf("t%d", f.nextID))
	f.topics = append(f.topics, topic)
	return topic, nil
}

func (f *fakeAPI) GetSubscriptionByID(_ context.Context, id smclient.ID) (smclient.Subscription, error) {
	f.record("getSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	sub, ok := f.subs[id]
	if !ok {
		return smclient.Subscription{}, &restclient.APIError{StatusCode: http.StatusNotFound}
	}
	return sub, nil
}

func (f *fakeAPI) PostSubscription(_ context.Context, sub smclient.Subscription) (smclient.Subscription, error) {
	f.record("postSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	f.nextID++
	sub.ID = smclient.ID(fmt.Sprintf("s%d", f.nextID))
	sub.Queue = fmt.Sprintf("q%d", f.nextID)
	sub.Active = true
	f.subs[sub.ID] = sub
	return sub, nil
}

func (f *fakeAPI) PutSubscription(_ context.Context, id smclient.ID, patch smclient.SubscriptionPatch) (smclient.Subscription, error) {
	f.record("putSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	sub, ok := f.subs[id]
	if !ok {
		return smclient.Subscription{}, &restclient.APIError{StatusCode: http.StatusNotFound}
	}
	if patch.Active != nil {
		sub.Active = *patch.Active
	}
	f.subs[id] = sub
	return sub, nil
}

func (f *fakeAPI) DeleteSubscriptionByID(_ context.Context, id smclient.ID) error {
	f.record("deleteSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	if _, ok := f.subs[id]; !ok {
		return &restclient.APIError{StatusCode: http.StatusNotFound}
	}
	delete(f.subs, id)
	return nil
}

// fakeGeofencingAPI is an in-memory geofencing service recording every call.
type fakeGeofencingAPI struct {
	m     sync.Mutex
	calls []string
	subs  map[string]gfclient.Subscription
}

func newFakeGeofencingAPI() *fakeGeofencingAPI {
	return &fakeGeofencingAPI{subs: make(map[string]gfclient.Subscription)}
}

func (f *fakeGeofencingAPI) record(call string) {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGeofencingAPI) count(call string) int {
	f.m.Lock()
	defer f.m.Unlock()

	var n int
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeGeofencingAPI) PingCredentials(context.Context) error {
	f.record("ping")
	return nil
}

func (f *fakeGeofencingAPI) PostSubscription(_ context.Context, filter gfclient.UASZonesFilter) (gfclient.SubscriptionReply, error) {
	f.record("postSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	id := fmt.Sprintf("gf%d", len(f.subs)+1)
	sub := gfclient.Subscription{
		ID:                  id,
		PublicationLocation: "uas_zones." + id,
		Active:              true,
		UASZonesFilter:      &filter,
	}
	f.subs[id] = sub
	return gfclient.SubscriptionReply{
		SubscriptionID:      sub.ID,
		PublicationLocation: sub.PublicationLocation,
		GenericReply:        gfclient.GenericReply{RequestStatus: "OK"},
	}, nil
}

func (f *fakeGeofencingAPI) GetSubscriptionByID(_ context.Context, id string) (gfclient.Subscription, error) {
	f.record("getSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	sub, ok := f.subs[id]
	if !ok {
		return gfclient.Subscription{}, &restclient.APIError{StatusCode: http.StatusNotFound}
	}
	return sub, nil
}

func (f *fakeGeofencingAPI) PutSubscription(_ context.Context, id string, active bool) error {
	f.record("putSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	sub, ok := f.subs[id]
	if !ok {
		return &restclient.APIError{StatusCode: http.StatusNotFound}
	}
	sub.Active = active
	f.subs[id] = sub
	return nil
}

func (f *fakeGeofencingAPI) DeleteSubscriptionByID(_ context.Context, id string) error {
	f.record("deleteSubscription")
	f.m.Lock()
	defer f.m.Unlock()

	delete(f.subs, id)
	return nil
}
