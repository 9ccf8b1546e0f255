package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"autoparts-storefront/activity"
	"autoparts-storefront/app/controller"
	"autoparts-storefront/app/router"
	"autoparts-storefront/cart"
	"autoparts-storefront/config"
	"autoparts-storefront/db"
	"autoparts-storefront/logging"
	"autoparts-storefront/metrics"
	"autoparts-storefront/quickorder"
	"autoparts-storefront/repository"
	"autoparts-storefront/service"
	"autoparts-storefront/wishlist"
)

// App is the wired storefront server
type App struct {
	Handler    http.Handler
	Workspaces *quickorder.WorkspaceRegistry
	Metrics    *metrics.Registry

	closers []func() error
}

// Close releases storage and flushes activity events, in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewStateRepository opens the configured cart and wishlist storage
func NewStateRepository(ctx context.Context, cfg config.StorageConfig) (repository.StateRepositoryInterface, func() error, error) {
	switch cfg.Backend {
	case config.StoragePostgres:
		if err := db.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.CloseDB()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repository.NewPostgresStateRepository(db.DB), db.CloseDB, nil
	case config.StoragePebble:
		repo, err := repository.NewPebbleStateRepository(cfg.PebbleDir)
		if err != nil {
			return nil, nil, err
		}
		logging.S().Infof("✓ Pebble state store opened at %s", cfg.PebbleDir)
		return repo, repo.Close, nil
	default:
		logging.S().Info("✓ Using in-memory state store")
		return repository.NewMemoryStateRepository(), func() error { return nil }, nil
	}
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	// Initialize state storage
	repo, closeRepo, err := NewStateRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	// Metrics and activity events
	a.Metrics = metrics.NewRegistry()
	writer, err := activity.NewWriter(cfg.Activity)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize activity sink: %w", err)
	}
	publisher := activity.NewPublisher(writer, 0)
	a.closers = append(a.closers, publisher.Close)

	// Stores
	cartStore := cart.NewStore(repo)
	cartStore.OnAdd(a.Metrics.CartAdded)
	wishlistStore := wishlist.NewStore(repo)

	// Backend clients
	timeout := cfg.BackendTimeout()
	catalogClient := service.NewCatalogClient(cfg.Backend.APIBaseURL, timeout, a.Metrics)
	quoteClient := service.NewQuoteClient(cfg.Backend.APIBaseURL, timeout, a.Metrics)
	orderClient := service.NewOrderClient(cfg.Backend.APIBaseURL, timeout, a.Metrics)
	identity := service.NewIdentityResolver(cfg.Identity.UserIDHeader, cfg.Identity.UserEmailHeader)

	// Quick order pipeline
	a.Workspaces = quickorder.NewWorkspaceRegistry(cfg.WorkspaceTTL())
	quickOrder := quickorder.NewService(
		quickorder.NewOrchestrator(catalogClient),
		quickorder.NewMaterializer(cartStore, quoteClient),
		a.Workspaces,
		quickorder.Recorders(a.Metrics, publisher),
	)

	// Quote export and images
	exportService := service.NewQuoteExportService(cfg.Export.TemplatePath, cfg.Export.ChromePath, cfg.Server.PublicBaseURL)
	imageService := service.NewImageService(cfg.Images.CacheDir, cfg.Backend.APIBaseURL, cfg.Images.AllowedHosts...)
	if err := imageService.EnsureCacheDir(); err != nil {
		_ = a.Close()
		return nil, err
	}

	// Create controllers
	controllers := &router.Controllers{
		QuickOrder: controller.NewQuickOrderController(quickOrder, identity),
		Cart:       controller.NewCartController(cartStore),
		Wishlist:   controller.NewWishlistController(wishlistStore),
		Quote: controller.NewQuoteController(
			quoteClient,
			exportService,
			service.NewQuoteCartService(quoteClient, cartStore),
			cartStore,
			identity,
		),
		Order:   controller.NewOrderController(orderClient, identity),
		Image:   controller.NewImageController(imageService),
		Metrics: a.Metrics.Handler(),
	}

	// Setup routes using standard http router
	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)
	a.Handler = mux

	logging.S().Infof("✓ Storefront initialized (storage=%s, activity=%s, backend=%s)",
		cfg.Storage.Backend, cfg.Activity.Sink, cfg.Backend.APIBaseURL)
	return a, nil
}
