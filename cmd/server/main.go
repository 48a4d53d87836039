package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourorg/fmp-tool-server/internal/client"
	"github.com/yourorg/fmp-tool-server/internal/config"
	"github.com/yourorg/fmp-tool-server/internal/handler"
	"github.com/yourorg/fmp-tool-server/internal/kafka"
	"github.com/yourorg/fmp-tool-server/internal/middleware"
	"github.com/yourorg/fmp-tool-server/internal/service"
	"github.com/yourorg/fmp-tool-server/internal/tools"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Optional integrations
	redisClient, err := setupRedis(cfg, logger)
	if err != nil {
		logger.Error("Failed to set up Redis", zap.Error(err))
		// Continue with the in-memory rate limiter
	}
	kafkaProducer := setupKafka(cfg, logger)

	// Create the FMP client and the service on top of it
	fmpClient := client.NewFMPClient(cfg.FMP.APIKey, logger,
		client.WithBaseURL(cfg.FMP.BaseURL),
		client.WithTimeout(cfg.FMP.Timeout),
		client.WithRateLimit(cfg.FMP.RequestsPerSecond),
	)
	financialService := service.NewFinancialDataService(fmpClient, logger)

	// Create the MCP server
	var mcpOpts []server.ServerOption
	if kafkaProducer != nil {
		mcpOpts = append(mcpOpts, server.WithToolHandlerMiddleware(tools.Audit(kafkaProducer, logger)))
	}
	mcpServer := tools.NewServer(tools.NewRegistry(financialService, logger), mcpOpts...)
	mcpHTTP := server.NewStreamableHTTPServer(mcpServer, server.WithEndpointPath("/mcp"))

	// Set up HTTP server with Gin
	router := setupRouter(
		cfg,
		handler.NewFinancialHandler(financialService, logger),
		handler.NewStatusHandler(tools.ServerName, tools.ServerVersion, cfg.FMP.APIKey != ""),
		mcpHTTP,
		redisClient,
		logger,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting FMP MCP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := mcpHTTP.Shutdown(ctx); err != nil {
		logger.Warn("MCP transport shutdown failed", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Close Kafka producer
	if kafkaProducer != nil {
		kafkaProducer.Close()
	}

	// Close Redis client
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited properly")
}

func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}

// setupRedis connects to Redis when a URL is configured
func setupRedis(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}

	// Parse Redis URL
	redisOptions, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Failed to parse Redis URL, using it as an address", zap.Error(err))
		redisOptions = &redis.Options{
			Addr: cfg.Redis.URL,
			DB:   0,
		}
	}

	// Create Redis client
	client := redis.NewClient(redisOptions)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("Connected to Redis", zap.String("addr", redisOptions.Addr))
	return client, nil
}

// setupKafka creates the audit producer when brokers are configured
func setupKafka(cfg *config.Config, logger *zap.Logger) *kafka.Producer {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil
	}

	producer := kafka.NewProducer(kafka.Config{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		ClientID: cfg.Kafka.ClientID,
	}, logger)

	logger.Info("Initialized Kafka producer",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return producer
}

func setupRouter(
	cfg *config.Config,
	financialHandler *handler.FinancialHandler,
	statusHandler *handler.StatusHandler,
	mcpHandler http.Handler,
	redisClient *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Use standard middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	// Status endpoints are always public
	router.GET("/", statusHandler.Root)
	router.GET("/health", statusHandler.Health)

	var protected []gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		protected = append(protected, middleware.BearerAuth(cfg.Auth.JWTSecret, logger))
	}
	if cfg.RateLimit.Enabled {
		if redisClient != nil {
			protected = append(protected, middleware.RedisRateLimit(middleware.NewRedisCounter(redisClient), middleware.RedisRateLimitConfig{
				Enabled:            cfg.RateLimit.Enabled,
				RequestsPerMinute:  cfg.RateLimit.RequestsPerMinute,
				ClientIPHeaderName: cfg.RateLimit.ClientIPHeaderName,
			}, logger))
		} else {
			// Fallback to in-memory rate limiter if Redis is not available
			protected = append(protected, middleware.RateLimit(
				cfg.RateLimit.RequestsPerMinute,
				cfg.RateLimit.BurstSize,
				cfg.RateLimit.ClientIPHeaderName,
			))
		}
	}

	// MCP streamable HTTP transport
	mcpGroup := router.Group("/mcp", protected...)
	mcpGroup.Any("", gin.WrapH(mcpHandler))

	// REST routes
	api := router.Group("/api/v1", protected...)
	financialHandler.RegisterRoutes(api)

	return router
}

func createLogger(level, format string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if format != "console" {
		format = "json"
	}

	// Create logger config
	zapConfig := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
