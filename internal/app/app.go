package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ammiranda/feed_service/cache"
	"github.com/ammiranda/feed_service/config"
	"github.com/ammiranda/feed_service/events"
	"github.com/ammiranda/feed_service/feeds"
	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/repository"
)

// App wires the service root to its storage, event and cache backends
type App struct {
	Config    *config.AppConfig
	Log       *logger.Logger
	Repo      repository.Repository
	Publisher events.Publisher
	Service   *feeds.ServiceRoot
}

// Bootstrap reads the configuration and opens every backend.
// The hierarchy is not loaded yet, see Load.
func Bootstrap(ctx context.Context) (*App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	provider, err := config.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create config provider: %w", err)
	}
	return BootstrapWithProvider(ctx, provider)
}

// BootstrapWithProvider is Bootstrap with an explicit configuration source
func BootstrapWithProvider(ctx context.Context, provider config.Provider) (*App, error) {
	cfg, err := config.GetAppConfig(ctx, provider)
	if err != nil {
		return nil, err
	}

	log := logger.NewFromConfig(logger.LoggerConfig{
		LogLevel: logger.ParseLevel(cfg.LogLevel),
		Output:   os.Stdout,
	})

	repo, err := repository.Open(ctx, cfg, provider)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			repo.Cleanup(ctx)
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		publisher = rabbit
	}

	service := feeds.NewServiceRoot(repo, feeds.Options{
		MaxAssemblyPasses: cfg.MaxAssemblyPasses,
		Logger:            log,
		Publisher:         publisher,
	})

	return &App{
		Config:    cfg,
		Log:       log,
		Repo:      repo,
		Publisher: publisher,
		Service:   service,
	}, nil
}

// Load builds the hierarchy from storage and seeds it from the initial
// feeds file when storage is empty. A load failure wraps feeds.ErrLoadFailed.
func (a *App) Load(ctx context.Context) error {
	if _, err := a.Service.LoadFromDatabase(ctx); err != nil {
		return err
	}
	a.Service.Start(ctx, a.Config.InitialFeedsPath)
	return nil
}

// InitCache sets up the snapshot cache with the configured lifetime
func (a *App) InitCache() error {
	if err := cache.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	cache.SetCacheTTL(a.Config.CacheTTL)
	return nil
}

// Close releases the broker connection and the repository
func (a *App) Close(ctx context.Context) {
	if err := a.Publisher.Close(); err != nil {
		a.Log.Error(err, "error closing publisher")
	}
	if err := a.Repo.Cleanup(ctx); err != nil {
		a.Log.Error(err, "error closing repository")
	}
}
