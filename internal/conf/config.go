package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/lk2023060901/ai-chat-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-chat-backend/internal/pkg/writeback"
)

type Config struct {
	Server    ServerConfig
	Durable   DurableConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Writeback writeback.Config
	SSE       SSEConfig
	Log       logger.Config
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// DurableConfig selects the backend for the durable message store. Backend is
// one of "memory", "redis" or "postgres".
type DurableConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SSEConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.name", "ai-chat-backend")
	viper.SetDefault("server.version", "1.0.0")
	viper.SetDefault("durable.backend", "memory")
	viper.SetDefault("writeback.workers", 8)
	viper.SetDefault("writeback.task_timeout", 10*time.Second)
	viper.SetDefault("sse.heartbeat_interval", 30*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
