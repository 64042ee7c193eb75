package broadcast_test

import (
	"encoding/json"
	"testing"

	"github.com/nestline/nestline/pkg/infra/broadcast"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	hub := broadcast.NewHub(logrus.New())
	ch := hub.Subscribe("sub-1")
	defer hub.Unsubscribe("sub-1")

	hub.Publish(broadcast.Event{Type: broadcast.EventPostCreated, Data: map[string]string{"id": "p1"}})

	payload := <-ch
	var event broadcast.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, broadcast.EventPostCreated, event.Type)
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := broadcast.NewHub(logrus.New())
	ch := hub.Subscribe("slow")
	defer hub.Unsubscribe("slow")

	// Overflow the buffer; Publish must return without blocking.
	for i := 0; i < 64; i++ {
		hub.Publish(broadcast.Event{Type: broadcast.EventReactionAdded})
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 16, delivered)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := broadcast.NewHub(logrus.New())
	ch := hub.Subscribe("sub-2")
	assert.Equal(t, 1, hub.Count())

	hub.Unsubscribe("sub-2")
	assert.Equal(t, 0, hub.Count())

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is harmless.
	hub.Unsubscribe("sub-2")
}

func TestHub_PublishWithNoSubscribers(t *testing.T) {
	hub := broadcast.NewHub(logrus.New())
	hub.Publish(broadcast.Event{Type: broadcast.EventPostDeleted})
	assert.Equal(t, 0, hub.Count())
}
