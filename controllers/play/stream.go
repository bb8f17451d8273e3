package play

import (
	"gundu/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// StreamUpgrade rejects plain HTTP requests on the stream route.
func (h *Handler) StreamUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream pushes hub events to the client until it disconnects. Events may be
// delivered more than once across reconnects; clients treat repeats as
// no-ops.
func (h *Handler) Stream(conn *websocket.Conn) {
	ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.L.Debug("stream write failed", zap.Error(err))
				return
			}
		}
	}
}
