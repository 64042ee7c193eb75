package websocket

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nestline/nestline/pkg/infra/broadcast"
	"github.com/nestline/nestline/pkg/infra/prometheus"
)

const (
	pongWait   = 45 * time.Second
	pingPeriod = 30 * time.Second
)

type liveHandler struct {
	logger *logrus.Logger
	hub    *broadcast.Hub
}

func NewLiveHandler(logger *logrus.Logger, hub *broadcast.Hub) Handler {
	return &liveHandler{
		logger: logger,
		hub:    hub,
	}
}

// Handle streams hub events to the client until the connection drops.
// The reader goroutine exists only to detect close frames; inbound
// payloads are discarded.
func (h *liveHandler) Handle(c *websocket.Conn) {
	subscriberID := uuid.NewString()
	events := h.hub.Subscribe(subscriberID)
	defer h.hub.Unsubscribe(subscriberID)

	prometheus.LiveSubscribers.Inc()
	defer prometheus.LiveSubscribers.Dec()

	h.logger.WithField("subscriber", subscriberID).Debug("live subscriber connected")

	if err := c.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.WithError(err).Error("failed to set read deadline")
		return
	}
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.logger.WithField("subscriber", subscriberID).Debug("live subscriber disconnected")
			return
		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				h.logger.WithError(err).Debug("failed to send ping to live subscriber")
				return
			}
		case payload, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.WithError(err).Debug("error writing event to live subscriber")
				return
			}
		}
	}
}
