package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/config"
	"socialhub.dev/internal/httpapi"
	"socialhub.dev/internal/obs"
	"socialhub.dev/internal/social"
	"socialhub.dev/internal/store/cache"
	"socialhub.dev/internal/store/memory"
	"socialhub.dev/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := run(); err != nil {
		obs.Logger().Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := obs.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	obs.SetLogger(logger)
	obs.Init()
	obs.InitBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		stores social.Stores
		repos  httpapi.Repositories
		ready  httpapi.ReadyProbe
	)
	if cfg.PGDSN != "" {
		pool := pg.DefaultPool
		pool.MaxOpenConns = cfg.PGMaxOpenConns
		db, err := pg.Open(ctx, cfg.PGDSN, pool)
		if err != nil {
			return err
		}
		defer db.Close()
		stores = db.Stores()
		repos = httpapi.Repositories{Users: db.Users(), Posts: db.Posts(), Comments: db.Comments(), Friendships: db.Friendships()}
		ready = httpapi.ReadyProbe{DB: db.DB()}
		logger.Info("using postgres store")
	} else {
		mem := memory.New()
		stores = mem.Stores()
		repos = httpapi.Repositories{Users: mem.Users(), Posts: mem.Posts(), Comments: mem.Comments(), Friendships: mem.Friendships()}
		logger.Warn("PG_DSN not set, using in-memory store")
	}

	var denylist auth.Denylist = auth.NewMemoryDenylist()
	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		denylist = cache.NewDenylist(client)
		logger.Info("using redis token denylist", "addr", cfg.RedisAddr)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret,
		auth.WithIssuer(cfg.JWTIssuer),
		auth.WithTTL(cfg.JWTTTL),
		auth.WithDenylist(denylist),
	)
	if err != nil {
		return err
	}

	svc, err := social.NewService(stores)
	if err != nil {
		return err
	}

	api, err := httpapi.New(httpapi.Deps{
		Service: svc,
		Tokens:  tokens,
		Repos:   repos,
		Ready:   ready,
		Version: version,
		Limits: httpapi.Limits{
			RatePerSecond:      cfg.RatePerSecond,
			RateBurst:          cfg.RateBurst,
			LoginRatePerMinute: cfg.LoginRatePerMinute,
			CORSOrigins:        cfg.CORSOrigins,
			Production:         cfg.IsProduction(),
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting socialhub-api", "version", version, "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
