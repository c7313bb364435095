package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-shop-api/internal/auth"
	"go-shop-api/internal/config"
	"go-shop-api/internal/database"
	"go-shop-api/internal/handler"
	"go-shop-api/internal/middleware"
	"go-shop-api/internal/repository"
	"go-shop-api/internal/router"
	"go-shop-api/internal/service"
)

type App struct {
	cfg          *config.Config
	server       *http.Server
	cleanupFuncs []func()
}

type stores struct {
	users    repository.UserRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	health   interface{ Health(context.Context) error }
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.UsingDevSecret() {
		slog.Warn("JWT_SECRET is not set; signing tokens with the public development secret")
	}

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(cfg.HashParams())
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize hasher: %w", err)
	}
	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	authService, err := service.NewAuthService(st.users, hasher, tokens, cfg.HashMaxConcurrency)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	catalogService := service.NewCatalogService(st.products)
	cartService := service.NewCartService(st.carts, st.products)

	if cfg.SeedCatalog {
		if err := seedCatalog(ctx, catalogService); err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	appRouter := router.New(
		cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewHealthHandler(cfg.StoreDriver, st.health),
		handler.NewAuthHandler(authService),
		handler.NewProductHandler(catalogService),
		handler.NewCartHandler(cartService),
	)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	slog.Info("application initialized",
		"store", cfg.StoreDriver,
		"token_ttl", cfg.TokenTTL.String(),
		"hash_memory_kib", cfg.HashMemoryKiB,
		"hash_max_concurrency", cfg.HashMaxConcurrency,
	)
	return a, nil
}

// Handler exposes the routed handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, database.Options{
			URL:      a.cfg.DatabaseURL,
			MaxConns: int32(a.cfg.DBMaxConns),
			MinConns: int32(a.cfg.DBMinConns),
		})
		if err != nil {
			return stores{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

		if err := db.Migrate(ctx); err != nil {
			a.cleanup()
			return stores{}, fmt.Errorf("failed to migrate database: %w", err)
		}

		return stores{
			users:    repository.NewPostgresUserRepository(db.Pool),
			products: repository.NewPostgresProductRepository(db.Pool),
			carts:    repository.NewPostgresCartRepository(db.Pool),
			health:   db,
		}, nil
	default:
		slog.Info("using in-memory store; data is lost on restart")
		return stores{
			users:    repository.NewMemoryUserRepository(),
			products: repository.NewMemoryProductRepository(),
			carts:    repository.NewMemoryCartRepository(),
		}, nil
	}
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// cleanup runs registered cleanup functions in reverse order, once.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
