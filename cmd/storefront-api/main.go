package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	catalogapp "github.com/CodeKhoVL/DoAn-Store/internal/catalog/application"
	cataloghttp "github.com/CodeKhoVL/DoAn-Store/internal/catalog/infrastructure/http"
	catalogpg "github.com/CodeKhoVL/DoAn-Store/internal/catalog/infrastructure/postgres"
	catalogcache "github.com/CodeKhoVL/DoAn-Store/internal/catalog/infrastructure/redis"
	"github.com/CodeKhoVL/DoAn-Store/internal/config"
	"github.com/CodeKhoVL/DoAn-Store/internal/postgres"
	resapp "github.com/CodeKhoVL/DoAn-Store/internal/reservation/application"
	reshttp "github.com/CodeKhoVL/DoAn-Store/internal/reservation/infrastructure/http"
	respg "github.com/CodeKhoVL/DoAn-Store/internal/reservation/infrastructure/postgres"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/infrastructure/webhook"
	wishapp "github.com/CodeKhoVL/DoAn-Store/internal/wishlist/application"
	wishhttp "github.com/CodeKhoVL/DoAn-Store/internal/wishlist/infrastructure/http"
	wishpg "github.com/CodeKhoVL/DoAn-Store/internal/wishlist/infrastructure/postgres"
	"github.com/CodeKhoVL/DoAn-Store/pkg/idempotency"
	"github.com/CodeKhoVL/DoAn-Store/pkg/logging"
	"github.com/CodeKhoVL/DoAn-Store/pkg/outbox"
	"github.com/CodeKhoVL/DoAn-Store/pkg/shutdown"
	"github.com/CodeKhoVL/DoAn-Store/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTLPURL, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Error("pg migrate failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaAddr),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer writer.Close()

	// Catalog: postgres reads behind a redis cache-aside decorator.
	catalogSvc := catalogapp.NewService(
		catalogcache.NewCache(log, rdb, catalogpg.NewRepository(log, pool)),
	)

	// Reservations: the webhook notifier is advisory and at-most-once; the
	// outbox relay is the durable event stream for the admin panel.
	idem := idempotency.NewStore(rdb, 24*time.Hour)
	notifier := webhook.NewNotifier(log, idem, cfg.AdminURL)
	resRepo := respg.NewRepository(log, pool)
	resSvc := resapp.NewService(resRepo, catalogSvc, notifier, cfg.ServiceName)

	wishSvc := wishapp.NewService(wishpg.NewRepository(log, pool), catalogSvc)

	dispatch := outbox.NewDispatcher(log, writer, cfg.EventTopic)
	relay := outbox.NewRelay(log, respg.NewOutboxStore(log, pool), dispatch, cfg.ServiceName+"-relay")

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/reservations", reshttp.NewHandler(log, resSvc).Routes())
	r.Mount("/users/wishlist", wishhttp.NewHandler(log, wishSvc).Routes())
	r.Mount("/", cataloghttp.NewHandler(log, catalogSvc).Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("storefront-api shutdown complete")
}
