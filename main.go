package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"fitshare/activity"
	"fitshare/auth"
	"fitshare/catalog"
	"fitshare/collections"
	"fitshare/config"
	"fitshare/db"
	"fitshare/feed"
	"fitshare/logger"
	"fitshare/mailer"
	"fitshare/middleware"
	"fitshare/mq"
	"fitshare/profile"
	"fitshare/ratelim"
	"fitshare/rdx"
	"fitshare/routes"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped cleanly")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("closing mongo", "error", err)
		}
	}()
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	conn, err := rdx.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	revocations := rdx.NewRevocations(conn)
	authn := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revocations, log)
	publisher := mq.NewPublisher(conn, log)

	worker := mq.NewMailWorker(conn, mailer.New(cfg.Mail, log), log)
	go func() {
		if err := worker.Run(ctx); err != nil {
			log.Error("mail worker", "error", err)
		}
	}()

	limiter := ratelim.NewRateLimiter(cfg.Limits.RPS, cfg.Limits.Burst)
	go limiter.RunSweeper(ctx, time.Minute)

	router := httprouter.New()
	routes.Register(router, routes.Deps{
		Auth:        auth.NewHandler(auth.NewService(store, authn, revocations, publisher, cfg.Server.PublicURL, log), log),
		Profile:     profile.NewHandler(profile.NewService(store, publisher, log), log),
		Feed:        feed.NewHandler(feed.NewService(store, publisher, log), log),
		Catalog:     catalog.NewHandler(store, log),
		Collections: collections.NewHandler(collections.NewService(store, log), log),
		Activity:    activity.NewStream(conn, cfg.Server.CORSOrigins, log),
		Authn:       authn,
		Limiter:     limiter,
		Log:         log,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Chain(corsHandler,
		middleware.Recoverer(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.SecurityHeaders,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}
	server.RegisterOnShutdown(func() {
		log.Info("shutting down background workers")
		stop()
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", server.Addr, "env", cfg.App.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received; shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
