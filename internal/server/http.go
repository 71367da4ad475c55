package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/service"
	"github.com/lk2023060901/ai-chat-backend/internal/conf"
	mcpserver "github.com/lk2023060901/ai-chat-backend/internal/mcp"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
)

type HTTPServer struct {
	server *http.Server
	log    *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	assistantService *service.AssistantService,
	topicService *service.TopicService,
	eventService *service.EventService,
	systemService *service.SystemService,
	toolServer *mcpserver.Server,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	assistantService.RegisterRoutes(api)
	topicService.RegisterRoutes(api)
	systemService.RegisterRoutes(api)

	eventService.RegisterRoutes(router)

	// Tool surface shares the process and the gateway with the REST routes
	router.Any("/mcp", gin.WrapH(toolServer.Handler()))
	router.Any("/mcp/*path", gin.WrapH(toolServer.Handler()))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		log: log,
	}
}

func (s *HTTPServer) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
