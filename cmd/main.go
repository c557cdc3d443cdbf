package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-agent-platform/internal/ai"
	"voice-agent-platform/internal/config"
	"voice-agent-platform/internal/livekit"
	"voice-agent-platform/internal/logger"
	"voice-agent-platform/internal/telemetry"
	"voice-agent-platform/internal/vectorstore"
	"voice-agent-platform/middleware"
	"voice-agent-platform/routes"
	"voice-agent-platform/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing is optional for local development
	if cfg.OTELEnabled {
		shutdown, err := telemetry.InitTracer("voice-agent-platform", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer shutdown()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	ctx := context.Background()

	// Vector store: Qdrant when reachable, in-memory fallback otherwise
	store, backend := vectorstore.Select(ctx, cfg.QdrantAddr, cfg.QdrantCollection, cfg.VectorDimensions)
	logger.Info("Vector store selected", "backend", backend)

	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to create embedding client:", err)
	}
	defer embedder.Close()

	kb := services.NewKBService(store, embedder, cfg.UploadDir, cfg.MaxChunkSize, cfg.ChunkOverlap)
	sessions := services.NewSessionStore()
	agentConfig := services.NewAgentConfigStore(cfg.DefaultSystemPrompt)
	tokens := livekit.NewTokenService(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	if cfg.OTELEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"timestamp":      time.Now(),
			"vector_backend": backend,
		})
	})

	// Setup routes
	routes.SetupKBRoutes(router, cfg, kb, metrics)
	routes.SetupSessionRoutes(router, sessions)
	routes.SetupAgentConfigRoutes(router, agentConfig)
	routes.SetupLiveKitRoutes(router, tokens)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
