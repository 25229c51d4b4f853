package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	mongoadapter "github.com/belmontfield/dispatch/internal/adapters/mongo"
	"github.com/belmontfield/dispatch/internal/adapters/postgres"
	"github.com/belmontfield/dispatch/internal/adapters/rabbit"
	redisadapter "github.com/belmontfield/dispatch/internal/adapters/redis"
	"github.com/belmontfield/dispatch/internal/availability"
	"github.com/belmontfield/dispatch/internal/booking"
	"github.com/belmontfield/dispatch/internal/calendar"
	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/hold"
	httphandler "github.com/belmontfield/dispatch/internal/http"
	"github.com/belmontfield/dispatch/internal/idempotency"
	"github.com/belmontfield/dispatch/internal/intake"
	"github.com/belmontfield/dispatch/internal/notify"
	"github.com/belmontfield/dispatch/internal/observability"
	"github.com/belmontfield/dispatch/internal/rateLimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownOtel, err := observability.SetupOTel(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	provider, err := calendar.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build calendar provider: %v", err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	intakeStore := redisadapter.NewIntakeStore(redisClient, cfg.IntakeTTL)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, time.Hour)
	rl := rateLimit.NewRateLimiter(redisCache)

	var rabbitPub *rabbit.Publisher
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer conn.Close()
		rabbitPub, err = rabbit.NewPublisher(conn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
	}

	var audit *mongoadapter.AuditLogger
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(ctx)
		audit = mongoadapter.NewAuditLogger(mongoClient.Database("dispatch"), logger)
	}

	var leads *postgres.LeadRepository
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		leads = postgres.NewLeadRepository(pool)
		if err := leads.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure leads schema: %v", err)
		}
	}

	holdSink := func(event string, h domain.Hold) {
		if audit != nil {
			audit.LogHold(ctx, event, h)
		}
		if rabbitPub != nil {
			if err := rabbitPub.PublishJSON(ctx, event, h); err != nil {
				logger.WithError(err).WithField("event", event).Warn("failed to publish hold event")
			}
		}
	}
	registry := hold.NewRegistry(cfg.HoldTTL, logger, holdSink)
	defer registry.Stop()

	engine := availability.NewEngine(provider, cfg)
	finalizer := booking.NewFinalizer(provider, engine.Bounds(), logger)

	sms := notify.NewSMSSender(cfg, logger)
	intakeSvc := intake.NewService(intakeStore, sms, cfg.IntakeBaseURL, logger)

	handlers := httphandler.NewHandlers(cfg, logger, engine, registry, finalizer, provider, intakeSvc, leads, audit, rabbitPub, idemp)
	router := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-gctx.Done():
		}
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("server exiting")
}
