// Package app wires configuration, storage, adapters and services into the
// HTTP handler shared by cmd/server and the serverless entrypoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/cache"
	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/favicon"
	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/handler"
	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/iconstore"
	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/token"
	"github.com/wadjakorntonsri/ctrltab/pkg/config"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/services"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Repo   *sqlite.SQLiteRepository

	Auth        *services.AuthService
	Users       *services.UserService
	Collections *services.CollectionService
	Sections    *services.SectionService
	Links       *services.LinkService

	Handler http.Handler

	faviconCache *cache.RedisFaviconCache
}

// NewLogger builds the JSON logger used by every component.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// CheckDefaults warns about secrets left at their built-in values and
// refuses them in production.
func CheckDefaults(cfg *config.Config, logger *slog.Logger) error {
	insecure := cfg.InsecureDefaults()
	for _, key := range insecure {
		logger.Warn("using insecure default, set it in the environment", "key", key)
	}
	if cfg.IsProduction() && len(insecure) > 0 {
		return fmt.Errorf("refusing to start in production with default %s", strings.Join(insecure, ", "))
	}
	return nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	icons, err := newIconStore(ctx, cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Repo: repo}

	resolverOpts := []favicon.Option{
		favicon.WithServiceURL(cfg.FaviconServiceURL),
		favicon.WithTimeout(cfg.FaviconTimeout),
		favicon.WithLogger(logger),
	}
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisFaviconCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("favicon cache disabled", "error", err)
		} else {
			a.faviconCache = c
			resolverOpts = append(resolverOpts, favicon.WithCache(c))
		}
	}
	resolver := favicon.NewResolver(resolverOpts...)

	a.Auth = services.NewAuthService(repo, token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL), logger)
	a.Users = services.NewUserService(repo, logger)
	a.Collections = services.NewCollectionService(repo, logger)
	a.Sections = services.NewSectionService(repo)
	a.Links = services.NewLinkService(repo, resolver)

	a.Handler = handler.NewRouter(cfg, handler.Services{
		Auth:        a.Auth,
		Users:       a.Users,
		Collections: a.Collections,
		Sections:    a.Sections,
		Links:       a.Links,
		Icons:       icons,
		Store:       repo,
	}, logger)

	return a, nil
}

func newIconStore(ctx context.Context, cfg *config.Config) (ports.IconStore, error) {
	switch cfg.IconStore {
	case "", "fs":
		return iconstore.NewFSStore(cfg.UploadDir)
	case "s3":
		return iconstore.NewS3Store(ctx, iconstore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown ICON_STORE %q (want fs or s3)", cfg.IconStore)
	}
}

// Bootstrap seeds or reconciles the configured admin account.
func (a *App) Bootstrap(ctx context.Context) error {
	return a.Users.Bootstrap(ctx, a.Config.AdminUsername, a.Config.AdminPassword)
}

func (a *App) Close() error {
	var errs []error
	if a.faviconCache != nil {
		errs = append(errs, a.faviconCache.Close())
	}
	errs = append(errs, a.Repo.Close())
	return errors.Join(errs...)
}
