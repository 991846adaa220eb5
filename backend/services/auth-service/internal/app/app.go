package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	appconfig "smartcharge/backend/services/auth-service/internal/config"
	"smartcharge/backend/services/auth-service/internal/db"
	httpserver "smartcharge/backend/services/auth-service/internal/http"
	"smartcharge/backend/services/auth-service/internal/http/handlers"
	"smartcharge/backend/services/auth-service/internal/repository"
	"smartcharge/backend/services/auth-service/internal/service"
)

// App wires dependencies for the auth service.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	var userRepo service.UserRepository
	if cfg.Database.Driver == appconfig.DriverMemory {
		memRepo := repository.NewMemoryUserRepository()
		memRepo.SeedDemo()
		userRepo = memRepo
	} else {
		sqlDB, err := db.NewPostgres(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = sqlDB
		userRepo = repository.NewUserRepository(sqlDB)
	}

	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWTExpiration())
	authSvc := service.NewAuthService(userRepo, tokenSvc, service.DemoAccount{
		Name:  cfg.Demo.Name,
		Email: cfg.Demo.Email,
	}, logger)

	routes := httpserver.Routes{
		Login:  handlers.NewLoginHandler(authSvc, logger),
		Demo:   handlers.NewDemoHandler(authSvc, logger),
		Health: handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger)
	logger.Info("auth service configured", zap.String("store", cfg.Database.Driver))
	return a, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
