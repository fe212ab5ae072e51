package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gobang-backend/internal/broadcast"
	"github.com/rocketscienceinc/gobang-backend/internal/config"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/repository"
	"github.com/rocketscienceinc/gobang-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gobang-backend/internal/usecase"
	"github.com/rocketscienceinc/gobang-backend/transport/rest"
	"github.com/rocketscienceinc/gobang-backend/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown storage")
)

type eventPublisher interface {
	Publish(ctx context.Context, ev entity.Event) error
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	roomRepo, closeStore, err := openRoomRepository(ctx, conf)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := broadcast.NewHub(logger)

	events, closeEvents, err := openEvents(conf, hub, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	rooms := usecase.NewRoomManager(logger, roomRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, rooms); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		size := websocket.BoardSize{Rows: conf.Game.Rows, Columns: conf.Game.Columns}
		wsServer := websocket.New(logger, rooms, hub, events, size)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func openRoomRepository(ctx context.Context, conf *config.Config) (repository.RoomRepository, func(), error) {
	switch conf.Storage {
	case config.StorageMemory:
		return repository.NewMemoryRoomRepository(), func() {}, nil
	case config.StorageRedis:
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorage, conf.Storage)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewRoomRepository(redisStorage, conf.Redis.RoomTTL), func() {
		_ = redisStorage.Close()
	}, nil
}

// openEvents relays events over NATS when it is configured, otherwise the hub
// delivers them directly.
func openEvents(conf *config.Config, hub *broadcast.Hub, logger *slog.Logger) (eventPublisher, func(), error) {
	if conf.NATS.URL == "" {
		return hub, func() {}, nil
	}

	nc, err := broadcast.Connect(conf.NATS.URL, logger)
	if err != nil {
		return nil, nil, err
	}

	relay := broadcast.NewRelay(nc, conf.NATS.Subject, hub, logger)
	if err = relay.Start(); err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("could not start event relay: %w", err)
	}

	return relay, func() {
		_ = relay.Close()
		_ = nc.Drain()
	}, nil
}
