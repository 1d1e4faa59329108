package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"i4.energy/across/lorawangw/modem"
)

// pingInterval keeps idle event stream connections alive.
const pingInterval = 30 * time.Second

// Server handles incoming HTTP requests for interacting with the
// gateway
type Server struct {
	Logger   *slog.Logger
	Gateway  *Gateway
	Events   *EventListener
	JoinMode modem.JoinMode

	router   *mux.Router
	upgrader websocket.Upgrader
}

// NewServer wires the HTTP routes.
func NewServer(logger *slog.Logger, gateway *Gateway, events *EventListener, joinMode modem.JoinMode) *Server {
	s := &Server{
		Logger:   logger,
		Gateway:  gateway,
		Events:   events,
		JoinMode: joinMode,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Routes stay on the root router: a subrouter answers a method mismatch
	// with 404 instead of 405.
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/join", s.handleJoin).Methods(http.MethodPost)
	r.HandleFunc("/api/uplink", s.handleUplink).Methods(http.MethodPost)
	r.HandleFunc("/api/uplinks", s.handleUplinks).Methods(http.MethodGet)

	r.HandleFunc("/ws/events", s.handleEvents)
	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// statusCode maps gateway errors to HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, modem.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, modem.ErrNotReady), errors.Is(err, modem.ErrAlreadyClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, modem.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Gateway.Status()
	if err != nil {
		s.Logger.Error("Failed to query modem status", "error", err)
		s.sendError(w, err.Error(), statusCode(err))
		return
	}
	s.sendJSON(w, status)
}

// handleJoin starts a join with the mode from the body, or the configured
// mode when the body is empty.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	type JoinRequest struct {
		Mode string `json:"mode"`
	}

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode := s.JoinMode
	if req.Mode != "" {
		m, err := modem.ParseJoinMode(req.Mode)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}

	if err := s.Gateway.Join(mode); err != nil {
		s.sendError(w, err.Error(), statusCode(err))
		return
	}
	s.sendJSON(w, map[string]any{"joined": true, "mode": mode.String()})
}

// handleUplink processes incoming HTTP POST requests to send an uplink
func (s *Server) handleUplink(w http.ResponseWriter, r *http.Request) {
	var req UplinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := s.Gateway.Uplink(req)
	if err != nil {
		s.Logger.Error("Failed to send uplink", "error", err, "port", req.Port)
		s.sendError(w, err.Error(), statusCode(err))
		return
	}
	s.sendJSON(w, u)
}

func (s *Server) handleUplinks(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	uplinks, err := s.Gateway.Uplinks(limit)
	if err != nil {
		s.Logger.Error("Failed to list uplinks", "error", err)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, uplinks)
}

// handleEvents streams gateway events to a WebSocket client.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.Events.Subscribe(0)
	defer cancel()

	// The read side only detects the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	s.Logger.Info("WebSocket client connected", "remote", r.RemoteAddr)
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
				s.Logger.Info("WebSocket client disconnected", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Logger.Info("WebSocket client disconnected", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-gone:
			s.Logger.Info("WebSocket client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}
