// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/history"
	"github.com/mhollis/bridge/internal/middleware"
	"github.com/mhollis/bridge/internal/room"
	"github.com/mhollis/bridge/internal/session"
)

// Server bundles the shared state the HTTP and websocket handlers operate
// on: the room store, the connection-to-room registry, and the action
// recorder. Everything is injected so tests can assemble a server from
// fakes.
type Server struct {
	Rooms    *room.Store
	Sessions *session.Registry
	Recorder *history.Recorder
	Logger   *logrus.Logger
}

// NewServer wires a Server from its dependencies.
func NewServer(rooms *room.Store, sessions *session.Registry, recorder *history.Recorder, logger *logrus.Logger) *Server {
	return &Server{
		Rooms:    rooms,
		Sessions: sessions,
		Recorder: recorder,
		Logger:   logger,
	}
}

// NewRouter builds the HTTP mux: health and observability endpoints, the
// room browser, and the websocket upgrade path.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/logs", s.LogsHandler)
	mux.HandleFunc("/logs/ip/", s.LogsByIPHandler)
	mux.HandleFunc("/api/rooms", s.RoomsHandler)
	mux.HandleFunc("/ws", s.WSHandler)
	return middleware.LogMiddleware(s.Logger)(mux)
}
