package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MSSkowron/userregistry/internal/config"
	"github.com/MSSkowron/userregistry/internal/database"
	"github.com/MSSkowron/userregistry/internal/repository"
	grpcserver "github.com/MSSkowron/userregistry/internal/server/grpc"
	"github.com/MSSkowron/userregistry/internal/server/rest"
	"github.com/MSSkowron/userregistry/internal/service"
	"github.com/MSSkowron/userregistry/pkg/crypto"
	"github.com/MSSkowron/userregistry/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run loads the configuration, opens the identity store and serves the REST and gRPC APIs
// until ctx is canceled or one of the servers fails.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}

	userRepository, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	userService := service.NewUserService(userRepository, service.WithHasher(crypto.NewBcryptHasher(cfg.BcryptCost)))

	restOpts := []rest.ServerOption{
		rest.WithAddress(cfg.RESTAddress),
		rest.WithReadTimeout(cfg.ReadTimeout),
		rest.WithWriteTimeout(cfg.WriteTimeout),
	}
	if pinger != nil {
		restOpts = append(restOpts, rest.WithPinger(pinger))
	}
	restServer := rest.NewServer(userService, restOpts...)
	grpcServer := grpcserver.NewServer(userService, grpcserver.WithAddress(cfg.GRPCAddress))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("REST server is listening", "address", cfg.RESTAddress)
		if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to run rest server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return grpcServer.ListenAndServe()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		grpcServer.Shutdown(shutdownCtx)
		if err := restServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down rest server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (repository.UserRepository, rest.Pinger, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory identity store, registered users are lost on restart")
		return repository.NewInMemoryUserRepository(), nil, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err.Error())
		}
	}

	return repository.NewUserRepository(db), db, closeFn, nil
}
