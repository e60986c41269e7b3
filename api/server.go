package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
	"github.com/wricardo/mcp-training/duelgame/game/service"
	"github.com/wricardo/mcp-training/duelgame/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case /ws is
// not served.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/join", s.handleJoinSession).Methods("POST")

	// Game operations
	api.HandleFunc("/sessions/{id}/grid-move", s.handleGridMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/simultaneous-move", s.handleSimultaneousMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/rematch", s.handleRematch).Methods("POST")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionFull), errors.Is(err, service.ErrAlreadyJoined):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnsupportedGameKind), errors.Is(err, service.ErrInvalidMove):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondResult writes a move or lifecycle Result. Ignored submissions are
// still 200 so clients can read the reason, except for unknown sessions.
func respondResult(w http.ResponseWriter, status int, res *service.Result) {
	if res.Status == service.StatusIgnored && errors.Is(res.Err, service.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, res.Reason)
		return
	}
	respondJSON(w, status, res)
}

// playerRequest is the body shared by every session operation
type playerRequest struct {
	PlayerID string `json:"player_id"`
}

// decodeBody reads an optional JSON body into v. An empty body is not an error.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Kind string `json:"kind"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = uuid.NewString()
	}

	res, err := s.service.CreateSession(r.Context(), req.Kind, req.PlayerID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"player_id": req.PlayerID,
		"status":    res.Status,
		"session":   res.Session,
	})
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = uuid.NewString()
	}

	res, err := s.service.JoinSession(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": req.PlayerID,
		"status":    res.Status,
		"session":   res.Session,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return
	kind := query.Get("kind")

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if kind != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if string(sess.Kind) == kind {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}
	total := len(sessions)

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	snap, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGridMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		playerRequest
		Symbol    string `json:"symbol"`
		CellIndex *int   `json:"cell_index"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CellIndex == nil {
		respondError(w, http.StatusBadRequest, "cell_index is required")
		return
	}

	res, err := s.service.SubmitGridMove(r.Context(), sessionID, req.PlayerID, req.Symbol, *req.CellIndex)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondResult(w, http.StatusOK, res)
}

func (s *Server) handleSimultaneousMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		playerRequest
		Choice string `json:"choice"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlayerID == "" {
		respondError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	res, err := s.service.SubmitSimultaneousMove(r.Context(), sessionID, req.PlayerID, req.Choice)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondResult(w, http.StatusOK, res)
}

func (s *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.service.RequestRematch(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondResult(w, http.StatusOK, res)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.service)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "healthy",
		"kinds":  []engine.Kind{engine.KindGrid, engine.KindSimultaneous},
	}
	if s.hub != nil {
		resp["connections"] = s.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, resp)
}

// logRequests is a small access log in the server's [HTTP] line format
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[HTTP] %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	})
}
