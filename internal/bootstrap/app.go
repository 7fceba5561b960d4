// Package bootstrap wires configuration, storage, brokers, and AI clients
// into one App handle shared by the server and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"classcare-chatbot/internal/ai"
	"classcare-chatbot/internal/app"
	"classcare-chatbot/internal/config"
	"classcare-chatbot/internal/model"
	milvusClient "classcare-chatbot/internal/platform/milvus"
	mysqlClient "classcare-chatbot/internal/platform/mysql"
	rabbitmqClient "classcare-chatbot/internal/platform/rabbitmq"
	redisClient "classcare-chatbot/internal/platform/redis"
	"classcare-chatbot/internal/repository"
	"classcare-chatbot/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Milvus        *milvusClient.Store
	Embedder      *ai.EmbeddingClient
	LLM           *ai.ChatClient
	Capabilities  app.Capabilities
	MessageWorker *worker.MessagePersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Document{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ConversationMemory{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	// The Milvus store dials lazily; a down vector database must not keep
	// the server from booting.
	store := milvusClient.NewStore(milvusClient.Config{
		Address:    cfg.Milvus.Addr(),
		Username:   cfg.Milvus.Username,
		Password:   cfg.Milvus.Password,
		Database:   cfg.Milvus.Database,
		Collection: cfg.Milvus.Collection,
		Dimension:  cfg.Embedding.Dimension,
		Timeout:    time.Duration(cfg.Milvus.TimeoutSeconds) * time.Second,
	})

	embedder := ai.NewEmbeddingClient(ai.EmbeddingConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
	})
	llm := ai.NewChatClient(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})

	caps := app.ProbeCapabilities(ctx, app.CapabilityProbeInput{
		EmbeddingEnabled: cfg.Embedding.Enabled,
		LLMAPIKey:        cfg.LLM.APIKey,
		ToolsEnabled:     cfg.Tools.Enabled,
		VectorStorePing:  store.Ping,
	})

	messageRepo := repository.NewMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := messageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start message worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		Milvus:        store,
		Embedder:      embedder,
		LLM:           llm,
		Capabilities:  caps,
		MessageWorker: messageWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Milvus != nil {
		if err := a.Milvus.Close(context.Background()); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
