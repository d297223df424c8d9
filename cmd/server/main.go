// Command server wires configuration, storage, realtime, and the HTTP
// surface, then runs until interrupted. Business logic lives in the
// internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"chirp/internal/assets"
	"chirp/internal/audit"
	"chirp/internal/auth/cookie"
	authhandler "chirp/internal/auth/handler"
	authservice "chirp/internal/auth/service"
	"chirp/internal/auth/store/user"
	"chirp/internal/auth/token"
	chathandler "chirp/internal/chat/handler"
	"chirp/internal/chat/hub"
	"chirp/internal/chat/presence"
	chatservice "chirp/internal/chat/service"
	message "chirp/internal/chat/store/message"
	"chirp/internal/platform/config"
	"chirp/internal/platform/httpserver"
	"chirp/internal/platform/logger"
	"chirp/internal/platform/metrics"
	"chirp/internal/platform/middleware"
	"chirp/internal/platform/postgres"
	platformredis "chirp/internal/platform/redis"
	httptransport "chirp/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		db       *sql.DB
		users    user.Store
		messages chatservice.MessageStore
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		users = user.NewPostgres(db)
		messages = message.NewPostgres(db)
		log.Info("using postgres storage")
	} else {
		users = user.NewInMemoryStore()
		messages = message.NewInMemoryStore()
		log.Warn("POSTGRES_DSN not set, using in-memory storage")
	}

	// Presence: Redis when configured so online state is shared across
	// instances.
	var tracker presence.Tracker = presence.NewInMemoryTracker()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		tracker = presence.NewRedisTracker(redisClient)
		log.Info("using redis presence")
	}

	// Audit: Kafka sink when brokers are configured.
	var auditStore audit.Store = audit.NewInMemoryStore()
	kafkaSink, err := audit.NewKafkaSink(cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaSink != nil {
		defer kafkaSink.Close()
		auditStore = kafkaSink
		log.Info("using kafka audit sink", "topic", cfg.Kafka.AuditTopic)
	}
	publisher := audit.NewPublisher(auditStore, audit.WithAsyncBuffer(256), audit.WithLogger(log))
	defer publisher.Close()

	// Assets: S3 when a bucket is configured.
	var assetStore assets.Store = assets.NewInMemoryStore()
	if cfg.S3.Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return err
		}
		assetStore = assets.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix)
		log.Info("using s3 asset store", "bucket", cfg.S3.Bucket)
	}

	codec := token.NewCodec(cfg.JWTSigningKey)
	cookies := cookie.New(cfg.SessionCookieName, cfg.SessionTTL, !cfg.Development())

	accounts := authservice.New(users, codec, assetStore, publisher, m, log, cfg.BcryptCost, cfg.SessionTTL)
	realtime := hub.New(tracker, log)
	chatSvc := chatservice.New(users, messages, tracker, realtime, assetStore, publisher, m, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: m,
		Auth:    authhandler.New(accounts, cookies, log),
		Chat:    chathandler.New(chatSvc, log),
		Hub:     realtime,
		Guard:   middleware.RequireAuth(cookies, codec, accounts, log),
		Health: func(r *http.Request) error {
			if db != nil {
				if err := db.PingContext(r.Context()); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(r.Context())
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
