package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lk2023060901/ai-chat-backend/internal/chat/biz"
	"github.com/lk2023060901/ai-chat-backend/internal/chat/data"
	"github.com/lk2023060901/ai-chat-backend/internal/chat/service"
	"github.com/lk2023060901/ai-chat-backend/internal/conf"
	"github.com/lk2023060901/ai-chat-backend/internal/gateway"
	mcpserver "github.com/lk2023060901/ai-chat-backend/internal/mcp"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/writeback"
	"github.com/lk2023060901/ai-chat-backend/internal/server"
	"github.com/lk2023060901/ai-chat-backend/internal/sse"
	"github.com/lk2023060901/ai-chat-backend/internal/state"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	// Shared state store
	store := state.NewMemoryStore()

	// Durable message store
	durable, cleanup, err := newDurableStore(config, log)
	if err != nil {
		log.Fatal("failed to initialize durable store", zap.Error(err))
	}
	defer cleanup()

	// Write-behind queue for durable persistence
	queue, err := writeback.New(&config.Writeback, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize writeback queue", zap.Error(err))
	}
	defer queue.Shutdown()

	// Event hub
	heartbeat := config.SSE.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = sse.DefaultHeartbeatInterval
	}
	hub := sse.NewHub(heartbeat, sse.Identity{
		Name:    config.Server.Name,
		Version: config.Server.Version,
	}, log)
	defer hub.Shutdown()

	// Initialize use cases
	assistantUseCase := biz.NewAssistantUseCase(store, log)
	topicUseCase := biz.NewTopicUseCase(store, durable, queue, log)

	// Seed the default assistant on a fresh store
	if err := assistantUseCase.EnsureDefault(context.Background()); err != nil {
		log.Fatal("failed to seed default assistant", zap.Error(err))
	}

	// Operation gateway shared by both surfaces
	gw := gateway.NewGateway(assistantUseCase, topicUseCase, hub, log)

	// Initialize services
	assistantService := service.NewAssistantService(gw)
	topicService := service.NewTopicService(gw)
	eventService := service.NewEventService(hub)
	systemService := service.NewSystemService(queue, hub)
	toolServer := mcpserver.NewServer(gw, config.Server.Name, config.Server.Version, log)

	// Initialize server
	httpServer := server.NewHTTPServer(config, log, assistantService, topicService, eventService, systemService, toolServer)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	// Drain pending durable writes before the queue closes
	queue.Wait()

	log.Info("server exited")
}

// newDurableStore builds the configured durable backend. The returned cleanup
// releases any underlying connection.
func newDurableStore(config *conf.Config, log *logger.Logger) (data.DurableStore, func(), error) {
	switch config.Durable.Backend {
	case "", "memory":
		return data.NewMemoryStore(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr(),
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("redis durable store connected", zap.String("addr", config.Redis.Addr()))
		return data.NewRedisStore(client), func() { client.Close() }, nil

	case "postgres":
		db, err := gorm.Open(postgres.Open(config.Database.DSN()), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		store, err := data.NewPostgresStore(db)
		if err != nil {
			return nil, nil, err
		}
		log.Info("postgres durable store connected", zap.String("dbname", config.Database.DBName))
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return store, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown durable backend: %q", config.Durable.Backend)
	}
}
