package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/lock"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/service/payment"
	"github.com/Skotchmaster/storefront/internal/service/search"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not auto-migrate the schema on start")
}

func serve(ctx context.Context) error {
	ctx, cfg, gdb, err := boot(ctx)
	if err != nil {
		return err
	}
	l := logging.FromContext(ctx)

	if !skipMigrate {
		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
	}

	events := newPublisher(ctx, cfg)
	locker, closeLocker := newLocker(ctx, cfg)
	r := repo.New(gdb)

	catalog := &service.CatalogService{Repo: r, Events: events}
	if client, err := es.NewClient(ctx, &cfg); err == nil {
		catalog.Index = search.New(client, cfg.ESIndex)
	} else if errors.Is(err, es.ErrNotConfigured) {
		l.Info("search_index_disabled")
	} else {
		l.Warn("search_index_unavailable", "error", err)
	}

	authMW := auth.New(cfg.JWTSecret, cfg.CookieSecure)
	authSvc := &service.AuthService{
		Repo:      r,
		Events:    events,
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTTL,
		InviteTTL: cfg.InviteTTL,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(l))
	e.Use(metrics.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		DB:    gdb,
		Auth:  authMW,
		AuthH: &handlers.AuthHTTP{Svc: authSvc, Auth: authMW},
		Catalog: &handlers.CatalogHTTP{
			Svc:        catalog,
			Newsletter: &service.NewsletterService{Repo: r},
		},
		Cart: &handlers.CartHTTP{Svc: &service.CartService{Repo: r, Catalog: catalog}},
		Orders: &handlers.OrderHTTP{
			CheckoutSvc: &service.CheckoutService{
				Repo:                   r,
				Gateway:                payment.SimulatedGateway{},
				Locker:                 locker,
				Events:                 events,
				KeepFailedOrderRecords: cfg.KeepFailedOrderRecords,
				LockTTL:                cfg.CheckoutLockTTL,
			},
			Orders: &service.OrderService{Repo: r},
		},
		Users: &handlers.UserHTTP{Svc: &service.UserService{Repo: r}},
		Admin: &handlers.AdminHTTP{Svc: &service.AdminService{Repo: r, Events: events}},
		CSRF:  cfg.CSRFEnabled,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			l.Error("http_server_error", "error", err)
		}
	}

	l.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		l.Error("db_close_error", "error", err)
	}
	if err := events.Close(); err != nil {
		l.Error("kafka_close_error", "error", err)
	}
	if err := closeLocker(); err != nil {
		l.Error("redis_close_error", "error", err)
	}

	l.Info("shutdown_complete")
	return nil
}

func newPublisher(ctx context.Context, cfg config.Config) mykafka.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logging.FromContext(ctx).Info("event_publishing_disabled")
		return mykafka.NopPublisher{}
	}
	return mykafka.NewProducer(cfg.KafkaBrokers)
}

// newLocker uses redis when configured so checkouts are serialized across
// replicas; a single process falls back to an in-memory lock.
func newLocker(ctx context.Context, cfg config.Config) (lock.Locker, func() error) {
	l := logging.FromContext(ctx)
	if cfg.RedisAddr == "" {
		l.Info("checkout_lock", "backend", "local")
		return lock.NewLocal(), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		l.Warn("checkout_lock", "backend", "local", "reason", "redis unreachable", "error", err)
		_ = client.Close()
		return lock.NewLocal(), func() error { return nil }
	}

	l.Info("checkout_lock", "backend", "redis", "addr", cfg.RedisAddr)
	return lock.NewRedis(client, "storefront:"), client.Close
}
