package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/events"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/rest"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessionRepo, closeStorage, err := openStorage(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	hub := events.NewHub()
	publishers := events.Fanout{hub}

	if conf.NATS.URL != "" {
		broker, err := events.Connect(conf.NATS.URL, "tictactoe-timetravel")
		if err != nil {
			return fmt.Errorf("could not connect to nats: %w", err)
		}
		defer broker.Close()

		publishers = append(publishers, events.NewNATSPublisher(broker, conf.NATS.SubjectPrefix))
		log.Info("Publishing history events to NATS", "url", conf.NATS.URL, "prefix", conf.NATS.SubjectPrefix)
	}

	gameService := service.NewGameService(logger, sessionRepo, publishers)

	router := rest.NewRouter(logger, gameService, hub, rest.DefaultHeartbeat)
	router.Handle("/ws", websocket.New(logger, gameService, hub, conf.Notification.Display))

	srv := &http.Server{
		Addr:         ":" + conf.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := srv.ListenAndServe(); httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	return nil
}

// openStorage - picks the session storage configured by conf.
func openStorage(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	if conf.Storage != config.StorageRedis {
		log.Info("Keeping sessions in memory", "ttl", conf.SessionTTL)
		return repository.NewMemorySessionRepository(conf.SessionTTL), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Keeping sessions in redis", "addr", redisAddrString, "ttl", conf.SessionTTL)

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage, conf.SessionTTL), closeStorage, nil
}
