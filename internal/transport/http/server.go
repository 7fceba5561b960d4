package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "classcare-chatbot/internal/app"
	"classcare-chatbot/internal/bootstrap"
	"classcare-chatbot/internal/cache"
	"classcare-chatbot/internal/platform/rabbitmq"
	"classcare-chatbot/internal/repository"
	"classcare-chatbot/internal/tools"
	"classcare-chatbot/internal/transport/http/handler"
	"classcare-chatbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	memoryRepo := repository.NewMemoryRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	ragService := appsvc.NewRAGService(
		app.Embedder,
		app.Milvus,
		app.LLM,
		app.Capabilities,
		appsvc.RAGServiceConfig{
			ChunkSize:    app.Config.RAG.ChunkSize,
			ChunkOverlap: app.Config.RAG.ChunkOverlap,
			TopK:         app.Config.RAG.TopK,
			MaxHistory:   app.Config.RAG.MaxHistory,
		},
	)
	docService := appsvc.NewDocumentService(docRepo, ragService)

	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		memoryRepo,
		ragService,
		publisher,
		historyCache,
		app.Config.RAG.MaxHistory,
	)

	var streamer handler.ChatStreamer
	if app.Capabilities.LLM {
		streamer = app.LLM
	}
	var studentClient *tools.Client
	if app.Config.Tools.StudentAPIBase != "" {
		studentClient = tools.NewClient(app.Config.Tools.StudentAPIBase)
	}

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService, streamer)
	docHandler := handler.NewDocumentHandler(docService, app.Config.Upload.Dir, app.Config.Upload.MaxFileSizeMB)
	toolsHandler := handler.NewToolsHandler(studentClient)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.GET("/sessions/:id/messages", chatHandler.GetHistory)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.POST("/stream", chatHandler.Stream)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	docGroup.POST("", docHandler.Upload)
	docGroup.GET("", docHandler.List)
	docGroup.DELETE("/:id", docHandler.Delete)

	toolsGroup := v1.Group("/tools")
	toolsGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	toolsGroup.GET("/students/requirements", toolsHandler.StudentRequirements)
	toolsGroup.POST("/students", toolsHandler.CreateStudent)

	return router
}
