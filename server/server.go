package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/NazarSenchuk/receipt-processor/api"
	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/repository"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
	"github.com/NazarSenchuk/receipt-processor/services"
	"github.com/NazarSenchuk/receipt-processor/services/queue"
)

type Server struct {
	config       *config.Config
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	logger       logger.Logger
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	// One shared AWS session for every client in the process
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSConfig.Region),
	}))

	// Initialize repositories
	repos := repository.InitRepositories(dynamodb.New(sess), cfg.AWSConfig)

	// Initialize services
	svcs := services.InitServices(cfg, sess, appLogger, repos)

	// Initialize Gin; recovery middlewares are attached with the routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		router:       router,
		services:     svcs,
		repositories: repos,
		logger:       appLogger,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

func (s *Server) Initialize(ctx context.Context) error {
	// Setup API routes
	api.RegisterRoutes(ctx, s.router, s.repositories)
	return nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		ext.Error.Set(span, true)

		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		s.logger.Errorf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	// Create root context for the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize server components
	if err := s.Initialize(ctx); err != nil {
		return err
	}

	// Mail-intake consumer: inbound notifications -> attachments + manifest
	intakeConsumer := queue.NewConsumer(
		"mail_intake",
		s.config.AWSConfig.IntakeQueueURL,
		s.services.QueueService,
		s.services.IntakeService.ProcessNotification,
		s.logger,
	)
	go s.wrapGoroutine("intake_consumer", func() {
		intakeConsumer.Start(ctx)
	})

	// Receipt-processing consumer: work descriptors -> extraction + records
	processingConsumer := queue.NewConsumer(
		"receipt_processing",
		s.config.AWSConfig.ProcessingQueueURL,
		s.services.QueueService,
		s.services.ReceiptProcessor.ProcessJob,
		s.logger,
	)
	go s.wrapGoroutine("processing_consumer", func() {
		processingConsumer.Start(ctx)
	})

	// Start HTTP server in a goroutine with panic recovery
	go s.wrapGoroutine("http_server", func() {
		s.logger.Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP server error: %v", err)
		}
	})
	s.logger.Info("Receipt processor is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown(cancel)
}

func (s *Server) waitForShutdown(cancel context.CancelFunc) error {
	defer s.recoverWithJaeger("shutdown")

	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop
	s.logger.Info("Shutting down...")

	// Stop the consumers first so in-flight deliveries finish or redrive
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("HTTP server shutdown error: %v", err)
	}

	if s.tracerCloser != nil {
		if err := s.tracerCloser.Close(); err != nil {
			s.logger.Errorf("Tracer close error: %v", err)
		}
	}

	return nil
}
