package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	EventPostCreated   = "post_created"
	EventReactionAdded = "reaction_added"
	EventPostDeleted   = "post_deleted"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans published events out to live-update subscribers. Delivery is
// best-effort: a subscriber whose buffer is full misses the event, and
// Publish never blocks on a slow consumer.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan []byte
	bufferSize  int
	logger      *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]chan []byte),
		bufferSize:  16,
		logger:      logger,
	}
}

// Subscribe registers a subscriber and returns its event channel. The channel
// is closed by Unsubscribe.
func (h *Hub) Subscribe(id string) <-chan []byte {
	ch := make(chan []byte, h.bufferSize)
	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()
	h.logger.WithField("subscriber", id).Debug("live subscriber registered")
	return ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		close(ch)
		h.logger.WithField("subscriber", id).Debug("live subscriber removed")
	}
}

// Publish serializes the event once and offers it to every subscriber.
func (h *Hub) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("failed to serialize broadcast event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- payload:
		default:
			h.logger.WithFields(logrus.Fields{
				"subscriber": id,
				"event":      event.Type,
			}).Debug("dropping event for slow subscriber")
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
