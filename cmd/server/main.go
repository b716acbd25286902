package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/elitefinder/sentinela/config"
	alertrepo "github.com/elitefinder/sentinela/internal/repositories/alert"
	"github.com/elitefinder/sentinela/pkg/database"
	"github.com/elitefinder/sentinela/pkg/engine"
	"github.com/elitefinder/sentinela/pkg/events"
	"github.com/elitefinder/sentinela/pkg/ingest"
	"github.com/elitefinder/sentinela/pkg/kafka"
	"github.com/elitefinder/sentinela/pkg/lifecycle"
	"github.com/elitefinder/sentinela/pkg/middleware"
	"github.com/elitefinder/sentinela/pkg/redis"
	alertroutes "github.com/elitefinder/sentinela/pkg/routes/alerts"
	"github.com/elitefinder/sentinela/pkg/routes/health"
	"github.com/elitefinder/sentinela/pkg/startup"
	"github.com/elitefinder/sentinela/pkg/tracing"
	"github.com/elitefinder/sentinela/pkg/tracing/exporters"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := newZapLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)
	logger.WithFields(map[string]any{
		"app":     cfg.AppName,
		"version": cfg.Version,
	}).Info("Starting service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingOTLPEndpoint,
			Protocol: cfg.TracingOTLPProtocol,
			Insecure: true,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to create OTLP exporter")
			os.Exit(1)
		}
		provider := tracing.Init(cfg.AppName, exporter)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(shutdownCtx)
		}()
	} else {
		provider := tracing.Init(cfg.AppName, &exporters.ConsoleExporter{Logger: logger})
		defer func() { _ = provider.Shutdown(context.Background()) }()
	}

	db, err := database.Connect(ctx, database.ConnectionConfig{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *redis.Client
	var dlq *redis.DeadLetterQueue
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to connect to Redis")
			os.Exit(1)
		}
		defer redisClient.Close()
		dlq = redis.NewDeadLetterQueue(redisClient, cfg.RedisDLQStream, logger)
	}

	var producer *kafka.Producer
	var emitter *events.Emitter
	if cfg.KafkaProducerEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaEventsTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	repo := alertrepo.NewRepository(db, logger)
	ruleEngine := engine.NewEngine(repo, engineEmitter(emitter), logger)
	controller := lifecycle.NewController(repo, lifecycleEmitter(emitter), logger)

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		logger.WithError(err).Error("Failed to create DI container")
		os.Exit(1)
	}
	if err := registerDependencies(container, logger, repo, ruleEngine, controller); err != nil {
		logger.WithError(err).Error("Failed to register dependencies")
		os.Exit(1)
	}

	var redisPinger health.ContextPinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	checker := health.NewChecker(db, redisPinger, cfg.Version)

	e := buildServer(cfg, logger, checker)

	manager := startup.New(logger, cfg.StartupMaxAttempts)

	manager.AddDependency(&migrationDependency{cfg: cfg, db: db, logger: logger})

	if cfg.KafkaConsumerEnabled {
		handler := ingest.NewHandler(ruleEngine, dlqOrNil(dlq), logger)
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaAnalysisTopic,
			ConsumerGroup: cfg.KafkaConsumerGroup,
		}, logger, handler.HandleMessage)
		manager.AddDependency(&consumerDependency{consumer: consumer})
	}

	manager.AddDependency(&httpDependency{cfg: cfg, e: e, logger: logger})

	if err := manager.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	checker.SetReady(true)

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	checker.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := manager.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Shutdown failed")
	}

	logger.Info("Shutdown complete")
}

func newZapLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.PrettyLogs {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func registerDependencies(container ectocontainer.DIContainer, logger ectologger.Logger, repo *alertrepo.Repository, eng *engine.Engine, controller *lifecycle.Controller) error {
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*alertrepo.Repository](container, repo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*engine.Engine](container, eng); err != nil {
		return err
	}
	return ectoinject.RegisterInstance[*lifecycle.Controller](container, controller)
}

func buildServer(cfg config.Config, logger ectologger.Logger, checker *health.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	checker.RegisterRoutes(e)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	alertroutes.Register(e.Group("/api/alerts"))

	return e
}

// The OrNil helpers keep a nil pointer from becoming a non-nil interface.

func engineEmitter(emitter *events.Emitter) engine.EventEmitter {
	if emitter == nil {
		return nil
	}
	return emitter
}

func lifecycleEmitter(emitter *events.Emitter) lifecycle.EventEmitter {
	if emitter == nil {
		return nil
	}
	return emitter
}

func dlqOrNil(dlq *redis.DeadLetterQueue) ingest.DeadLetter {
	if dlq == nil {
		return nil
	}
	return dlq
}

type migrationDependency struct {
	cfg    config.Config
	db     database.DB
	logger ectologger.Logger
}

func (d *migrationDependency) GetName() string     { return "migrations" }
func (d *migrationDependency) DependsOn() []string { return nil }

func (d *migrationDependency) Start(ctx context.Context) error {
	driver, err := migratepg.WithInstance(d.db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	service := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	return service.Migrate(d.cfg.DatabaseName, driver)
}

func (d *migrationDependency) Stop(ctx context.Context) error { return nil }

type consumerDependency struct {
	consumer *kafka.Consumer
}

func (d *consumerDependency) GetName() string     { return "kafka-consumer" }
func (d *consumerDependency) DependsOn() []string { return []string{"migrations"} }

func (d *consumerDependency) Start(ctx context.Context) error {
	return d.consumer.Start(ctx)
}

func (d *consumerDependency) Stop(ctx context.Context) error {
	return d.consumer.Stop()
}

type httpDependency struct {
	cfg    config.Config
	e      *echo.Echo
	logger ectologger.Logger
}

func (d *httpDependency) GetName() string     { return "http-server" }
func (d *httpDependency) DependsOn() []string { return []string{"migrations"} }

func (d *httpDependency) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", d.cfg.Port),
		ReadTimeout:    time.Duration(d.cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(d.cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:    time.Duration(d.cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		MaxHeaderBytes: d.cfg.MaxHeaderBytes,
	}

	go func() {
		if err := d.e.StartServer(server); err != nil && !strings.Contains(err.Error(), "Server closed") {
			d.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	return nil
}

func (d *httpDependency) Stop(ctx context.Context) error {
	return d.e.Shutdown(ctx)
}
