// Package main wires the HTTP server for the project management service.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"project-tracker/config"
	"project-tracker/internal/auth"
	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository/backend"
	"project-tracker/internal/transport/http/middleware"
	"project-tracker/internal/transport/http/server/handlers-fiber"
	"project-tracker/internal/usecase"
	"project-tracker/internal/usecase/domain"
	"project-tracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/multierr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	repo, err := backend.New(ctx, cfg.Store.Backend, log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "error", err)
		return
	}

	var notifier notify.Notifier = notify.NewLog(log)
	if cfg.SMTP.Enabled() {
		notifier = notify.NewSMTP(cfg.SMTP, log)
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret)
	timeout := cfg.HTTP.RequestTimeout
	uc := usecase.New(log, ctx, repo, timeout,
		domain.WithHasher(auth.NewBcryptHasher(cfg.Auth.BcryptCost)),
		domain.WithTokenIssuer(issuer, cfg.Auth.TokenTTL),
		domain.WithDomainPolicy(entities.NewDomainPolicy(cfg.Auth.ManagerDomains)),
		domain.WithNotifier(notifier, cfg.SMTP.Timeout),
	)

	serv := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New())
	serv.Use(middleware.RequestLogger(log))

	serv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	h := handlers_fiber.NewHandler(log, uc)
	handlers_fiber.RegisterHandlers(serv, h, issuer)

	go func() {
		if err := serv.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		err := serv.ShutdownWithContext(shutdownCtx)
		uc.Wait()
		done <- err
	}()

	var shutdownErr error
	select {
	case shutdownErr = <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
	}
	shutdownErr = multierr.Append(shutdownErr, repo.OnStop(context.Background()))
	if shutdownErr != nil {
		log.Errorw("shutdown finished with errors", "error", shutdownErr)
		return
	}
	log.Infow("server stopped")
}
