package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/threads/backend/internal/handler"
	"github.com/itchan-dev/threads/backend/internal/invalidation"
	"github.com/itchan-dev/threads/backend/internal/service"
	"github.com/itchan-dev/threads/backend/internal/storage/memory"
	"github.com/itchan-dev/threads/backend/internal/storage/pg"
	"github.com/itchan-dev/threads/backend/internal/utils"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/jwt"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/itchan-dev/threads/shared/markdown"
	mw "github.com/itchan-dev/threads/shared/middleware"
)

// Storage is everything the services need from a document store.
type Storage interface {
	service.ThreadStorage
	service.FeedStorage
	service.UserStorage
	service.RepairStorage
	Ping(ctx context.Context) error
	Cleanup() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Jwt            jwt.JwtService
	Repairer       *service.LinkRepairer
	Publisher      *invalidation.Publisher
	Config         *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := invalidation.New(cfg.Public.Nats.Url, cfg.Public.Nats.Subject)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	renderer := markdown.New()

	thread := service.NewThread(storage, storage, &utils.ThreadTextValidator{MaxLength: cfg.Public.MaxTextLength}, publisher, renderer, cfg.Public.MaxPopulateDepth)
	feed := service.NewFeed(storage, storage, renderer, cfg.Public.MaxPageSize)
	user := service.NewUser(storage, storage, &utils.UserProfileValidator{}, publisher, renderer)

	return &Dependencies{
		Storage:        storage,
		Handler:        handler.New(thread, feed, user, storage, cfg),
		AuthMiddleware: mw.NewAuth(jwtService),
		Jwt:            jwtService,
		Repairer:       service.NewLinkRepairer(storage, service.DefaultRepairBatch),
		Publisher:      publisher,
		Config:         cfg,
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Public.Storage {
	case "memory":
		logger.Log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	case "pg", "":
		storage := pg.New(cfg)
		if err := storage.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Public.Storage)
	}
}

// Close releases the publisher and the store.
func (d *Dependencies) Close() {
	if err := d.Publisher.Close(); err != nil {
		logger.Log.Error("failed to close invalidation publisher", "error", err)
	}
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
