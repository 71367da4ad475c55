package service

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/types"
	"github.com/lk2023060901/ai-chat-backend/internal/gateway"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/response"
)

// AssistantService handles HTTP requests for assistant operations. Handlers
// build typed commands and hand them to the gateway; they never touch the
// registries directly.
type AssistantService struct {
	gw *gateway.Gateway
}

// NewAssistantService creates a new assistant service
func NewAssistantService(gw *gateway.Gateway) *AssistantService {
	return &AssistantService{gw: gw}
}

// RegisterRoutes registers assistant routes
func (s *AssistantService) RegisterRoutes(r *gin.RouterGroup) {
	assistants := r.Group("/assistants")
	{
		assistants.GET("", s.ListAssistants)
		assistants.POST("", s.CreateAssistant)
		assistants.GET("/:id", s.GetAssistant)
		assistants.PUT("/:id", s.UpdateAssistant)
		assistants.DELETE("/:id", s.DeleteAssistant)
	}
}

// ListAssistants lists all assistants without topic bodies
// @Summary List assistants
// @Tags assistants
// @Produce json
// @Router /api/v1/assistants [get]
func (s *AssistantService) ListAssistants(c *gin.Context) {
	result, err := s.gw.Execute(c.Request.Context(), gateway.ListAssistantsCommand{})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetAssistant retrieves an assistant by ID
// @Summary Get assistant
// @Tags assistants
// @Produce json
// @Param id path string true "Assistant ID"
// @Router /api/v1/assistants/{id} [get]
func (s *AssistantService) GetAssistant(c *gin.Context) {
	cmd := gateway.GetAssistantCommand{ID: c.Param("id")}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// CreateAssistant creates a new assistant
// @Summary Create assistant
// @Tags assistants
// @Accept json
// @Produce json
// @Param request body types.AssistantFields true "Assistant fields"
// @Router /api/v1/assistants [post]
func (s *AssistantService) CreateAssistant(c *gin.Context) {
	var fields types.AssistantFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.gw.Execute(c.Request.Context(), gateway.CreateAssistantCommand{AssistantFields: fields})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateAssistant patches an assistant's fields
// @Summary Update assistant
// @Tags assistants
// @Accept json
// @Produce json
// @Param id path string true "Assistant ID"
// @Param request body types.AssistantPatch true "Fields to change"
// @Router /api/v1/assistants/{id} [put]
func (s *AssistantService) UpdateAssistant(c *gin.Context) {
	var patch types.AssistantPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cmd := gateway.UpdateAssistantCommand{ID: c.Param("id"), Fields: patch}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAssistant deletes an assistant and its topics
// @Summary Delete assistant
// @Tags assistants
// @Produce json
// @Param id path string true "Assistant ID"
// @Router /api/v1/assistants/{id} [delete]
func (s *AssistantService) DeleteAssistant(c *gin.Context) {
	cmd := gateway.DeleteAssistantCommand{ID: c.Param("id")}
	result, err := s.gw.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}
