package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/redisclient"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type stores struct {
	users service.UserStore
	tasks service.TaskStore
	ping  handlers.Pinger
	close func()
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory stores; data is lost on restart")
		return stores{
			users: memory.NewUsersRepo(),
			tasks: memory.NewTasksRepo(),
			close: func() {},
		}, nil
	}

	dbURL := cfg.DatabaseURL()

	pool, err := db.ConnectWithRetry(ctx, dbURL, cfg.DBMaxConns, 5, log)
	if err != nil {
		return stores{}, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(dbURL); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	return stores{
		users: postgres.NewUsersRepo(pool, prom),
		tasks: postgres.NewTasksRepo(pool, prom),
		ping:  pool.Ping,
		close: pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(rootCtx, cfg.OtelServiceName, cfg.OtelEndpoint, cfg.Env)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	st, err := openStores(rootCtx, cfg, prom, log)
	if err != nil {
		log.Error("storage init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)
	if err := db.EnsureAdminUser(seedCtx, st.users, cfg, log); err != nil {
		cancelSeed()
		log.Error("admin seeding failed", "err", err)
		os.Exit(1)
	}
	cancelSeed()

	loc, err := cfg.Location()
	if err != nil {
		log.Error("display timezone", "err", err)
		os.Exit(1)
	}

	var (
		revoker   auth.Revoker = auth.NewMemoryRevoker()
		redisPing handlers.Pinger
	)
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rc.Close()

		revoker = auth.NewRedisRevoker(rc)
		redisPing = rc.Ping
	}

	hasher := security.Hasher{}

	router := httpx.NewRouter(httpx.Deps{
		Log:   log,
		Env:   cfg.Env,
		Users: service.NewUsers(st.users, st.tasks, hasher, log),
		Tasks: service.NewTasks(st.tasks, st.users, log,
			service.WithLocation(loc),
			service.WithMetrics(prom),
		),
		Tokens:   auth.NewManager(cfg.JWTSecret, cfg.AccessTTL()),
		Revoker:  revoker,
		Prom:     prom,
		Gatherer: reg,
		Ready: map[string]handlers.Pinger{
			"postgres": st.ping,
			"redis":    redisPing,
		},
		ServiceName:          cfg.OtelServiceName,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		MaxBodyBytes:         cfg.MaxBodyBytes,
		AuthRateLimit:        cfg.AuthRateLimit,
		AuthRateWindow:       cfg.AuthRateWindow(),
		RequireAdminForUsers: cfg.RequireAdminForUsers,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)

		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("server shutting down")

	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
