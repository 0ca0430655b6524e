package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/usedgoods/marketplace/internal/config"
	"github.com/usedgoods/marketplace/internal/db"
	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/service"
	"github.com/usedgoods/marketplace/internal/storage"
)

type App struct {
	Cfg                  *config.Config
	DB                   *sqlx.DB
	Storage              storage.Storage
	AuthService          *service.AuthService
	UserService          *service.UserService
	ListingService       *service.ListingService
	ImageService         *service.ImageService
	PaymentMethodService *service.PaymentMethodService
	SweepService         *service.SweepService
}

// New opens the database, applies pending migrations and wires the services.
func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Wire(cfg, database, fileStorage), nil
}

// Wire builds the services on top of an open database and storage.
func Wire(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	listingRepository := repository.NewListingRepository(database)
	imageRepository := repository.NewListingImageRepository(database)
	paymentMethodRepository := repository.NewPaymentMethodRepository(database)

	// Services
	authService := service.NewAuthService(userRepository, fileStorage, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepository, fileStorage)
	listingService := service.NewListingService(
		listingRepository,
		imageRepository,
		paymentMethodRepository,
		userRepository,
		fileStorage,
	)
	imageService := service.NewImageService(listingRepository, imageRepository, fileStorage)
	paymentMethodService := service.NewPaymentMethodService(paymentMethodRepository)
	sweepService := service.NewSweepService(imageRepository, userRepository, fileStorage)

	return &App{
		Cfg:                  cfg,
		DB:                   database,
		Storage:              fileStorage,
		AuthService:          authService,
		UserService:          userService,
		ListingService:       listingService,
		ImageService:         imageService,
		PaymentMethodService: paymentMethodService,
		SweepService:         sweepService,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
