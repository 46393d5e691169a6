package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/talentscout/talentscout-api/config"
	"github.com/talentscout/talentscout-api/internal/handlers"
	"github.com/talentscout/talentscout-api/internal/inference"
	"github.com/talentscout/talentscout-api/internal/middleware"
	"github.com/talentscout/talentscout-api/internal/repository"
	"github.com/talentscout/talentscout-api/internal/services"
	"github.com/talentscout/talentscout-api/internal/session"
	"github.com/talentscout/talentscout-api/pkg/db"
	"github.com/talentscout/talentscout-api/pkg/httpclient"
	"github.com/talentscout/talentscout-api/pkg/jwt"
	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/mailer"
	"github.com/talentscout/talentscout-api/pkg/metrics"
	"github.com/talentscout/talentscout-api/pkg/objectstore"
	"github.com/talentscout/talentscout-api/pkg/profiling"
	"github.com/talentscout/talentscout-api/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TalentScout API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Distributed tracing (no-op when no exporter endpoint is configured)
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(profiling.Config{
		Enabled:               cfg.Profiling.Enabled,
		Endpoint:              cfg.Profiling.Endpoint,
		AppName:               cfg.Profiling.AppName,
		SampleTypes:           cfg.Profiling.SampleTypes,
		UploadIntervalSeconds: cfg.Profiling.UploadIntervalSeconds,
	}, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	// Candidate archive database (optional in offline mode)
	var candidateRepo *repository.CandidateRepository
	if cfg.Database.WorkOffline {
		logger.Warn("Database disabled - finished screenings will not be archived")
	} else {
		pool, err := db.NewPool(context.Background(), db.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
		}
		defer db.Close(pool)
		candidateRepo = repository.NewCandidateRepository(pool)
	}

	// Transcript object storage (optional)
	var storageClient *objectstore.StorageClient
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, err = objectstore.NewStorageClient(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			cfg.Storage.BucketName,
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(err))
		}
	}

	gateway, err := inference.NewGeminiGateway(
		context.Background(),
		cfg.Inference.GeminiAPIKey,
		cfg.Inference.Model,
		cfg.InferenceTimeout(),
	)
	if err != nil {
		logger.Fatal("Failed to initialize inference gateway", zap.Error(err))
	}

	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	store := session.NewStore(sessionTTL)
	tokenManager := jwt.NewTokenManager(cfg.Session.TokenSecret, cfg.Session.TokenIssuer, sessionTTL)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password)
	httpClient := httpclient.NewStandardClient()

	verificationService := services.NewVerificationService(smtpMailer)
	interviewService := services.NewInterviewService(gateway)
	scoringService := services.NewScoringService(gateway, smtpMailer)

	// Interfaces hide the optional backends; a nil concrete pointer must not
	// become a non-nil interface value.
	var archiver services.CandidateArchiver
	if candidateRepo != nil {
		archiver = candidateRepo
	}
	var transcripts services.TranscriptArchiver
	if storageClient != nil {
		transcripts = storageClient
	}

	conversationService := services.NewConversationService(
		store,
		gateway,
		verificationService,
		interviewService,
		scoringService,
		archiver,
		transcripts,
		tokenManager,
		cfg,
		httpClient,
	)

	chatHandler := handlers.NewChatHandler(conversationService)
	healthHandler := handlers.NewHealthHandler(func() bool { return gateway != nil })

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Chat turns drive paid inference calls and OTP issuance drives outbound
	// email, so the conversational endpoints get much tighter limits than the
	// operational ones.
	generalRateLimiter := middleware.NewRateLimiter(100, 200)
	startRateLimiter := middleware.NewRateLimiter(1, 5)
	turnRateLimiter := middleware.NewRateLimiter(2, 5)

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/chat", startRateLimiter.Middleware(), chatHandler.StartChat)

	authorized := v1.Group("/chat", middleware.ConversationSessionMiddleware(tokenManager))
	authorized.POST("/:id/messages",
		turnRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(64*1024),
		chatHandler.SendMessage)
	authorized.GET("/:id", generalRateLimiter.Middleware(), chatHandler.GetChat)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
