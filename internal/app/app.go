package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/vovakirdan/buzzer-server/internal/config"
	"github.com/vovakirdan/buzzer-server/internal/core"
	"github.com/vovakirdan/buzzer-server/internal/log"
	transporthttp "github.com/vovakirdan/buzzer-server/internal/transport/http"
	"github.com/vovakirdan/buzzer-server/internal/transport/socketio"
	"github.com/vovakirdan/buzzer-server/internal/utils"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	socketio        *socketio.Server
	hub             *core.Hub
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	roomIDBytes := cfg.RoomIDBytes
	coord := core.NewCoordinator(core.CoordinatorOptions{
		NewRoomID:              func() string { return utils.NewRoomID(roomIDBytes) },
		AnnounceUsersOnConnect: cfg.AnnounceUsersOnConnect,
		Logger:                 log.Component(logger, "coordinator"),
	})
	hub := core.NewHub(coord, log.Component(logger, "hub"))

	a := &App{
		hub:             hub,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	var socketHandler stdhttp.Handler
	if cfg.SocketIOEnabled {
		a.socketio = socketio.NewServer(hub, cfg, log.Component(logger, "socketio"))
		socketHandler = a.socketio
	}
	a.server = transporthttp.NewServer(hub, socketHandler, cfg, log.Component(logger, "http"))

	return a
}

// Handler exposes the HTTP routes, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the hub, the socket.io loop and the HTTP server and blocks until
// context cancellation or a fatal listener error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	var wg conc.WaitGroup
	wg.Go(func() { a.hub.Run(hubCtx) })
	if a.socketio != nil {
		wg.Go(func() {
			if err := a.socketio.Serve(); err != nil {
				a.log.Debug().Err(err).Msg("socket.io loop stopped")
			}
		})
	}

	serverErr := make(chan error, 1)
	wg.Go(func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	})

	var err error
	select {
	case err = <-serverErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		err = a.server.Shutdown(shutdownCtx)
		if serveErr := <-serverErr; err == nil {
			err = serveErr
		}
	}

	a.cleanup()
	stopHub()
	wg.Wait()
	return err
}

// cleanup stops the socket.io sessions before the hub goes away.
func (a *App) cleanup() {
	if a.socketio == nil {
		return
	}
	if err := a.socketio.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close socket.io server")
	} else {
		a.log.Info().Msg("socket.io server closed")
	}
}
