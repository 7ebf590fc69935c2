package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mmnstore/mmnstore/internal/config"
	"github.com/mmnstore/mmnstore/internal/db"
	"github.com/mmnstore/mmnstore/internal/repository"
	"github.com/mmnstore/mmnstore/internal/service"
	"github.com/mmnstore/mmnstore/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	Storage          storage.Storage
	AuthService      *service.AuthService
	AppService       *service.AppService
	LifecycleService *service.LifecycleService
	EmailService     *service.EmailService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	appRepository := repository.NewAppRepository(database)

	// Storage
	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	appService := service.NewAppService(appRepository, store)
	lifecycleService := service.NewLifecycleService(appRepository, userRepository, emailService)

	return &App{
		Cfg:              cfg,
		DB:               database,
		Storage:          store,
		AuthService:      authService,
		AppService:       appService,
		LifecycleService: lifecycleService,
		EmailService:     emailService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
