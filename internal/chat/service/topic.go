package service

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	"github.com/lk2023060901/ai-chat-backend/internal/gateway"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/response"
)

// TopicService handles HTTP requests for topic and message operations
type TopicService struct {
	gw *gateway.Gateway
}

// NewTopicService creates a new topic service
func NewTopicService(gw *gateway.Gateway) *TopicService {
	return &TopicService{gw: gw}
}

// RegisterRoutes registers topic and message routes
func (s *TopicService) RegisterRoutes(r *gin.RouterGroup) {
	topics := r.Group("/topics")
	{
		topics.GET("", s.ListTopics)
		topics.POST("", s.CreateTopic)
		topics.GET("/:id", s.GetTopic)
		topics.PUT("/:id", s.UpdateTopic)
		topics.DELETE("/:id", s.DeleteTopic)
		topics.GET("/:id/messages", s.GetTopicMessages)
		topics.POST("/:id/messages", s.SendMessage)
	}
	r.POST("/conversations", s.CreateNewConversation)
}

// createTopicRequest is the REST body for topic creation; the assistant
// reference travels in the body rather than the path.
type createTopicRequest struct {
	AssistantID string `json:"assistant_id"`
	Name        string `json:"name"`
}

// sendMessageRequest is the REST body for appending a message. The topic id
// comes from the path.
type sendMessageRequest struct {
	Content string `json:"content"`
	Role    string `json:"role"`
	Type    string `json:"type"`
}

// ListTopics lists topics, optionally scoped to one assistant
// @Summary List topics
// @Tags topics
// @Produce json
// @Param assistant_id query string false "Assistant ID"
// @Router /api/v1/topics [get]
func (s *TopicService) ListTopics(c *gin.Context) {
	cmd := gateway.ListTopicsCommand{AssistantID: c.Query("assistant_id")}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetTopic retrieves a topic by ID, messages included
// @Summary Get topic
// @Tags topics
// @Produce json
// @Param id path string true "Topic ID"
// @Router /api/v1/topics/{id} [get]
func (s *TopicService) GetTopic(c *gin.Context) {
	cmd := gateway.GetTopicCommand{ID: c.Param("id")}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// CreateTopic creates a topic under an existing assistant
// @Summary Create topic
// @Tags topics
// @Accept json
// @Produce json
// @Param request body createTopicRequest true "Topic fields"
// @Router /api/v1/topics [post]
func (s *TopicService) CreateTopic(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cmd := gateway.CreateTopicCommand{
		AssistantID: req.AssistantID,
		Fields:      types.TopicFields{Name: req.Name},
	}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateTopic patches a topic's fields
// @Summary Update topic
// @Tags topics
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param request body types.TopicPatch true "Fields to change"
// @Router /api/v1/topics/{id} [put]
func (s *TopicService) UpdateTopic(c *gin.Context) {
	var patch types.TopicPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cmd := gateway.UpdateTopicCommand{ID: c.Param("id"), Fields: patch}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteTopic deletes a topic and its messages
// @Summary Delete topic
// @Tags topics
// @Produce json
// @Param id path string true "Topic ID"
// @Router /api/v1/topics/{id} [delete]
func (s *TopicService) DeleteTopic(c *gin.Context) {
	cmd := gateway.DeleteTopicCommand{ID: c.Param("id")}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetTopicMessages returns a topic's messages in append order
// @Summary Get topic messages
// @Tags topics
// @Produce json
// @Param id path string true "Topic ID"
// @Router /api/v1/topics/{id}/messages [get]
func (s *TopicService) GetTopicMessages(c *gin.Context) {
	cmd := gateway.GetTopicMessagesCommand{ID: c.Param("id")}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// SendMessage appends a message to a topic
// @Summary Send message
// @Tags topics
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param request body sendMessageRequest true "Message draft"
// @Router /api/v1/topics/{id}/messages [post]
func (s *TopicService) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cmd := gateway.SendMessageCommand{
		TopicID: c.Param("id"),
		Content: req.Content,
		Role:    req.Role,
		Type:    req.Type,
	}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, result)
}

// CreateNewConversation creates a topic under the default assistant
// @Summary Create new conversation
// @Tags topics
// @Accept json
// @Produce json
// @Router /api/v1/conversations [post]
func (s *TopicService) CreateNewConversation(c *gin.Context) {
	var cmd gateway.CreateNewConversationCommand
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&cmd); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, result)
}
