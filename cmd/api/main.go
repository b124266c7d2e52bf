package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/api/handlers"
	"github.com/merchant-assistant/backend/internal/assembler"
	cacheredis "github.com/merchant-assistant/backend/internal/cache/redis"
	"github.com/merchant-assistant/backend/internal/llm"
	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/internal/middleware/ratelimit"
	"github.com/merchant-assistant/backend/internal/middleware/security"
	"github.com/merchant-assistant/backend/internal/middleware/validation"
	"github.com/merchant-assistant/backend/internal/pipeline"
	"github.com/merchant-assistant/backend/internal/prompt"
	"github.com/merchant-assistant/backend/internal/retrieval"
	"github.com/merchant-assistant/backend/internal/session"
	"github.com/merchant-assistant/backend/internal/storage/sqlite"
	"github.com/merchant-assistant/backend/internal/vector/milvus"
	"github.com/merchant-assistant/backend/pkg/config"
	appLogger "github.com/merchant-assistant/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Merchant Assistant API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *cacheredis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = cacheredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The cache is an optimization; the pipeline runs without it.
			appLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	err = milvusClient.CreateCollection(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to create collection", zap.Error(err))
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	var embedder retrieval.Embedder = llmClient
	if cacheClient != nil {
		embedder = retrieval.NewCachedEmbedder(llmClient, cacheClient, time.Duration(cfg.Redis.TTLSec)*time.Second)
	}

	retriever := retrieval.NewRetriever(embedder, milvusClient)

	tokenCounter, err := assembler.NewTokenCounter()
	if err != nil {
		appLogger.Fatal("Failed to initialize token counter", zap.Error(err))
	}
	contextAssembler := assembler.New(tokenCounter)
	promptBuilder := prompt.NewBuilder(cfg.Pipeline.HistoryWindow)
	sessionManager := session.NewManager(cfg.Pipeline.ConversationCapacity, 30*time.Minute)

	var answerCache pipeline.AnswerCache
	if cacheClient != nil {
		answerCache = cacheClient
	}

	engine := pipeline.NewEngine(
		sessionManager,
		retriever,
		contextAssembler,
		promptBuilder,
		llmClient,
		answerCache,
		sqliteClient,
		pipeline.Options{
			RelevanceThreshold: cfg.Pipeline.RelevanceThreshold,
			TopK:               cfg.Pipeline.TopK,
			ContextTokenBudget: cfg.Pipeline.ContextTokenBudget,
			HistoryWindow:      cfg.Pipeline.HistoryWindow,
			RetrievalTimeout:   time.Duration(cfg.Pipeline.RetrievalTimeoutSec) * time.Second,
			GenerationTimeout:  time.Duration(cfg.Pipeline.GenerationTimeoutSec) * time.Second,
			OnLanguageMismatch: cfg.Pipeline.OnLanguageMismatch,
			AnswerTTL:          time.Duration(cfg.Redis.TTLSec) * time.Second,
		},
	)

	// Idle sessions are swept in the background so memory stays bounded even
	// without explicit session endings.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessionManager.Sweep(time.Now())
				metrics.ActiveSessions.Set(float64(sessionManager.Count()))
			case <-sweepDone:
				return
			}
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(validation.Middleware(validation.Config{
		MaxMessageLength: 2000,
		Logger:           appLogger.GetLogger(),
	}))

	chatHandler := handlers.NewChatHandler(engine)
	sessionHandler := handlers.NewSessionHandler(sessionManager, sqliteClient)
	feedbackHandler := handlers.NewFeedbackHandler(sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/chat", limiter.Middleware(), chatHandler.HandleChat)
	api.Get("/sessions/:id/history", sessionHandler.GetHistory)
	api.Delete("/sessions/:id", sessionHandler.EndSession)
	api.Post("/feedback", feedbackHandler.HandleFeedback)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	close(sweepDone)
	app.Shutdown()
	appLogger.Info("Server stopped")
}
