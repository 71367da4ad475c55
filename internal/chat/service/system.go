package service

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/ai-chat-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/writeback"
	"github.com/lk2023060901/ai-chat-backend/internal/sse"
)

// SystemService exposes operational counters for debugging
type SystemService struct {
	queue *writeback.Queue
	hub   *sse.Hub
}

// NewSystemService creates a new system service
func NewSystemService(queue *writeback.Queue, hub *sse.Hub) *SystemService {
	return &SystemService{queue: queue, hub: hub}
}

// RegisterRoutes registers system routes
func (s *SystemService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", s.Stats)
}

// Stats reports write-behind queue counters and subscriber count
// @Summary Runtime statistics
// @Tags system
// @Produce json
// @Router /api/v1/stats [get]
func (s *SystemService) Stats(c *gin.Context) {
	stats := s.queue.Stats()
	response.Success(c, gin.H{
		"writeback": gin.H{
			"submitted": stats.Submitted,
			"completed": stats.Completed,
			"failed":    stats.Failed,
		},
		"subscribers": s.hub.Count(),
	})
}
