// Package ws is the connection protocol layer: it upgrades HTTP
// requests to WebSocket connections and runs the per-connection event
// state machine.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"messenger-lab/observability"
	"messenger-lab/runtime"
	"messenger-lab/services"
)

type Server struct {
	log          *slog.Logger
	upgrader     websocket.Upgrader
	auth         services.IAuthService
	profile      services.IAccountService
	router       *runtime.Router
	registry     *runtime.Registry
	presence     *runtime.Broadcaster
	monitor      *observability.Monitor
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger, auth services.IAuthService, profile services.IAccountService,
	router *runtime.Router, registry *runtime.Registry, presence *runtime.Broadcaster,
	monitor *observability.Monitor, writeTimeout time.Duration) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients connect from file:// shells and LAN origins; the
			// protocol carries its own authentication.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		auth:         auth,
		profile:      profile,
		router:       router,
		registry:     registry,
		presence:     presence,
		monitor:      monitor,
		writeTimeout: writeTimeout,
	}
}

// Handler mounts the WebSocket endpoint at its fixed path plus a
// liveness probe.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.monitor.ConnOpened()
	s.log.Debug("client connected", "remote", r.RemoteAddr)

	c := newConnection(s, conn)
	c.run(r.Context())
}
