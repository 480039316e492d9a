package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reclaimr/reclaimr"
	"github.com/reclaimr/reclaimr/handler"
	"github.com/reclaimr/reclaimr/mail"
	"github.com/reclaimr/reclaimr/postgres"
	"github.com/reclaimr/reclaimr/queue"
	"github.com/riandyrn/otelchi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.1.0"

func main() {

	log, err := newLog("reclaimr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := run("reclaimr", log); err != nil {
		log.Errorw("startup", "err", err)
		os.Exit(1)
	}
}

func run(serviceName string, log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg := struct {
		Env  string `conf:"default:local"`
		Http struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			Host            string        `conf:"default:0.0.0.0:3000"`
			CorsOrigins     string        `conf:"default:*"`
		}
		DB struct {
			User         string `conf:"default:reclaimr"`
			Password     string `conf:"default:reclaimr,mask"`
			Host         string `conf:"default:localhost"`
			Name         string `conf:"default:reclaimr"`
			MaxIdleConns int    `conf:"default:0"`
			MaxOpenConns int    `conf:"default:0"`
			DisableTLS   bool   `conf:"default:true"`
		}
		AMQP struct {
			URL string `conf:"default:,mask"`
		}
		SMTP struct {
			Host     string
			Port     int    `conf:"default:587"`
			User     string
			Password string `conf:"mask"`
		}
		Jaeger struct {
			ReporterURI string  `conf:"default:http://localhost:14268/api/traces"`
			ServiceName string  `conf:"default:reclaimr-api"`
			Probability float64 `conf:"default:0.5"`
		}
	}{}

	help, err := conf.Parse("RECLAIMR", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// Database Support

	log.Infow("startup", "status", "initializing database support", "host", cfg.DB.Host)

	db, err := postgres.Open(postgres.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("opening db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping database support", "host", cfg.DB.Host)
		db.Close()
	}()

	// A database that is not up yet is not fatal: the ingest pipeline keeps
	// serving in degraded mode and answers 503/202 until the store is ready.
	migrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := postgres.Migrate(migrateCtx, db); err != nil {
		log.Warnw("startup", "status", "database not ready, serving degraded", "err", err)
	}
	cancel()

	// =========================================================================
	// Start Tracing Support

	log.Infow("startup", "status", "initializing OT/Jaeger tracing support")

	traceProvider, err := startTracing(
		cfg.Jaeger.ServiceName,
		cfg.Jaeger.ReporterURI,
	)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer traceProvider.Shutdown(context.Background())

	// =========================================================================
	// Deferred-persistence queue (optional)

	otelLog := otelzap.New(log.Desugar(), otelzap.WithStackTrace(true)).Sugar().SugaredLogger

	accountService := postgres.NewAccountService(db)
	contactService := postgres.NewContactService(db)
	leadService := postgres.NewLeadService(db)
	messageService := postgres.NewMessageService(db)

	var spooler reclaimr.EventSpooler
	var brokerCheck handler.ConnChecker

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if cfg.AMQP.URL != "" {
		rabbit, err := queue.Dial(cfg.AMQP.URL)
		if err != nil {
			// Same tolerance as the database: spooling is an extra safety
			// net, not a startup dependency.
			log.Warnw("startup", "status", "broker unavailable, spooling disabled", "err", err)
		} else {
			defer rabbit.Close()
			spooler = queue.NewProducer(rabbit)
			brokerCheck = rabbit.Conn

			worker := queue.NewWorker(rabbit, contactService, leadService, otelLog)
			go func() {
				if err := worker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Errorw("worker", "err", err)
				}
			}()
		}
	}

	// =========================================================================
	// Lead notification mail (optional)

	var notifier handler.LeadNotifier
	if cfg.SMTP.Host != "" {
		notifier = mail.NewSender(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
		}, messageService, otelLog)
	}

	// =========================================================================
	// Create router

	log.Infow("startup", "status", "initializing router")

	ingestHandler := handler.NewIngestHandler(accountService, contactService, leadService, spooler, notifier, otelLog)
	leadHandler := handler.NewLeadHandler(accountService, leadService, otelLog)
	healthHandler := handler.NewHealthHandler(serviceName, version, cfg.Env, db, brokerCheck)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.Http.CorsOrigins},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", handler.AccountKeyHeader},
	}))
	r.Use(handler.Metrics)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))

	r.Post("/ingest", ingestHandler.Ingest)
	r.Get("/leads/{id}", leadHandler.GetByID)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// =========================================================================
	// Start API Server

	log.Infow("startup", "status", "initializing http server", "host", cfg.Http.Host)

	server := &http.Server{
		Addr:         cfg.Http.Host,
		Handler:      r,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		IdleTimeout:  cfg.Http.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		stopWorker()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func newLog(serviceName string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

func startTracing(serviceName, reporterURL string) (*tracesdk.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(reporterURL)))
	if err != nil {
		return nil, fmt.Errorf("creating new exporter: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		// Always be sure to batch in production.
		tracesdk.WithBatcher(exp,
			tracesdk.WithMaxExportBatchSize(tracesdk.DefaultMaxExportBatchSize),
			tracesdk.WithBatchTimeout(tracesdk.DefaultScheduleDelay*time.Millisecond),
		),
		// Record information about this application in a Resource.
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("exporter", "jaeger"),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}
