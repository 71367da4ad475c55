package service

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/ai-chat-backend/internal/sse"
)

// EventService streams broadcast events to clients over SSE
type EventService struct {
	hub *sse.Hub
}

// NewEventService creates a new event service
func NewEventService(hub *sse.Hub) *EventService {
	return &EventService{hub: hub}
}

// RegisterRoutes registers the event stream route
func (s *EventService) RegisterRoutes(r *gin.Engine) {
	r.GET("/events", s.Stream)
}

// Stream subscribes the caller and relays events until the client goes away
// or the subscriber is torn down. The first frame is always the connected
// announcement carrying the server identity.
// @Summary Event stream
// @Tags events
// @Produce text/event-stream
// @Router /events [get]
func (s *EventService) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sub := s.hub.Subscribe(c.Query("client_id"))
	defer s.hub.Unsubscribe(sub)

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return false
			}
			_, err := io.WriteString(w, event.FormatSSE())
			return err == nil
		case <-sub.Done():
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}
