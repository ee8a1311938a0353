package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"shopbot/internal/config"
	"shopbot/internal/http-server/handlers/errors"
	"shopbot/internal/http-server/handlers/status"
	"shopbot/internal/http-server/middleware/authenticate"
	"shopbot/internal/http-server/middleware/timeout"
	"shopbot/lib/sl"
	"shopbot/pkg/metrics"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// New builds the status API and serves it until the listener fails.
// /health and /metrics are open; everything under /v1 requires the
// configured bearer token.
func New(conf *config.Config, log *slog.Logger, core status.Core) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", status.Health())
	router.Handle("/metrics", metrics.Handler())

	router.Route("/v1", func(rootApi chi.Router) {
		rootApi.Use(authenticate.New(log, conf.Api.Token))
		rootApi.Get("/stats", status.Stats(log, core))
		rootApi.Get("/codes", status.Codes(log, core))
		rootApi.Get("/users/count", status.UsersCount(log, core))
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
