// Package membershiptally wires the membership service together: the
// Postgres storage, the Redis preview cache, the RabbitMQ publisher,
// the business services and the HTTP API.
package membershiptally

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/clubkasse/membership-tally/internal/cache"
	"github.com/clubkasse/membership-tally/internal/config"
	"github.com/clubkasse/membership-tally/internal/lib/jwt"
	"github.com/clubkasse/membership-tally/internal/lib/rabbitmq"
	"github.com/clubkasse/membership-tally/internal/migrations"
	authservice "github.com/clubkasse/membership-tally/internal/services/auth"
	feesservice "github.com/clubkasse/membership-tally/internal/services/fees"
	maintenanceservice "github.com/clubkasse/membership-tally/internal/services/maintenance"
	relationsservice "github.com/clubkasse/membership-tally/internal/services/relations"
	tallyservice "github.com/clubkasse/membership-tally/internal/services/tally"
	"github.com/clubkasse/membership-tally/internal/storage/repository"
)

type App struct {
	server      *http.Server
	logger      *slog.Logger
	db          *repository.Storage
	rabbitConn  *amqp.Connection
	maintenance *maintenanceservice.Service

	maintenanceInterval time.Duration
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// The broker is optional: tallies are committed either way, only the
	// created events are skipped without it.
	var rabbitConn *amqp.Connection
	var publisher tallyservice.Publisher
	if cfg.RabbitConnectionString != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitConnectionString, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.TallyQueues())
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewTallyPublisher(ch)
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewService(db, jwtMaker)
	feesService := feesservice.NewService(db, cacheRedis, logger)
	relationsService := relationsservice.NewService(db, logger)
	tallyService := tallyservice.NewService(db, feesService, publisher, logger, cfg.OutputDir)
	maintenanceService := maintenanceservice.NewService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, authService, feesService, relationsService, tallyService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:              srv,
		logger:              logger,
		db:                  db,
		rabbitConn:          rabbitConn,
		maintenance:         maintenanceService,
		maintenanceInterval: cfg.MaintenanceInterval,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	go a.maintenance.Run(ctx, a.maintenanceInterval)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbitConn != nil {
			_ = a.rabbitConn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
