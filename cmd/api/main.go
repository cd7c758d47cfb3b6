// Command api runs the task management API server.
//
// @title                       Task Management API
// @version                     1.0
// @description                 Authentication and account management for the multi-tenant task API.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskmanager/task-api/internal/api"
	"github.com/taskmanager/task-api/internal/api/credential"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/authz"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/config"
	"github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	"github.com/taskmanager/task-api/internal/infrastructure/token"
	"github.com/taskmanager/task-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, nil)
	if err != nil {
		l := logger.Init(logger.Options{Level: "error"})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "task-api",
	})

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "task-api",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongo.Disconnect(context.Background(), client); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	codec, err := token.NewJWTCodec(token.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token codec")
	}

	authorizer := authz.New(nil)
	e := api.NewRouter(api.Dependencies{
		Log: logger.Component("http"),
		Transport: credential.NewTransport(credential.Options{
			CookieName: cfg.Auth.CookieName,
			Production: cfg.IsProduction(),
		}),
		Authenticator: service.NewAuthenticator(codec, users, cfg.Auth.LookupTimeout, logger.Component("authn")),
		Authorizer:    authorizer,
		AuthService: service.NewAuthService(users, codec, service.TokenPolicy{
			TTL:         cfg.Auth.TokenTTL,
			RememberTTL: cfg.Auth.RememberTTL,
		}, logger.Component("auth")),
		UserService: service.NewUserService(users, authorizer, logger.Component("users")),
		Readiness:   map[string]handler.Pinger{"mongodb": users},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
