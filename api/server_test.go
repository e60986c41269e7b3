package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
	"github.com/wricardo/mcp-training/duelgame/game/service"
	"github.com/wricardo/mcp-training/duelgame/game/session"
	"github.com/wricardo/mcp-training/duelgame/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session lifecycle
	CreateSessionFunc func(ctx context.Context, kind, requester string) (*service.Result, error)
	JoinSessionFunc   func(ctx context.Context, sessionID, requester string) (*service.Result, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionSnapshot, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionSnapshot, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Moves
	SubmitGridMoveFunc         func(ctx context.Context, sessionID, requester, symbol string, cell int) (*service.Result, error)
	SubmitSimultaneousMoveFunc func(ctx context.Context, sessionID, requester, choice string) (*service.Result, error)
	RequestRematchFunc         func(ctx context.Context, sessionID, requester string) (*service.Result, error)
}

func applied(id string, kind engine.Kind, players ...string) *service.Result {
	return &service.Result{
		Status: service.StatusApplied,
		Session: &service.SessionSnapshot{
			ID:      id,
			Kind:    kind,
			Players: players,
			Outcome: service.Outcome{Status: engine.StatusPending},
		},
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, kind, requester string) (*service.Result, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, kind, requester)
	}
	return applied("sess-1", engine.Kind(kind), requester), nil
}

func (m *MockGameService) JoinSession(ctx context.Context, sessionID, requester string) (*service.Result, error) {
	if m.JoinSessionFunc != nil {
		return m.JoinSessionFunc(ctx, sessionID, requester)
	}
	return applied(sessionID, engine.KindGrid, "host", requester), nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionSnapshot, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return applied(sessionID, engine.KindGrid).Session, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionSnapshot, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionSnapshot{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) SubmitGridMove(ctx context.Context, sessionID, requester, symbol string, cell int) (*service.Result, error) {
	if m.SubmitGridMoveFunc != nil {
		return m.SubmitGridMoveFunc(ctx, sessionID, requester, symbol, cell)
	}
	return applied(sessionID, engine.KindGrid), nil
}

func (m *MockGameService) SubmitSimultaneousMove(ctx context.Context, sessionID, requester, choice string) (*service.Result, error) {
	if m.SubmitSimultaneousMoveFunc != nil {
		return m.SubmitSimultaneousMoveFunc(ctx, sessionID, requester, choice)
	}
	return applied(sessionID, engine.KindSimultaneous), nil
}

func (m *MockGameService) RequestRematch(ctx context.Context, sessionID, requester string) (*service.Result, error) {
	if m.RequestRematchFunc != nil {
		return m.RequestRematchFunc(ctx, sessionID, requester)
	}
	return applied(sessionID, engine.KindGrid), nil
}

// Test helpers
func setupTestServer(mockService service.GameService) *Server {
	return NewServer(mockService, websocket.NewHub())
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "Create grid session",
			requestBody:    map[string]string{"kind": "grid", "player_id": "alice"},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp struct {
					PlayerID string                   `json:"player_id"`
					Session  *service.SessionSnapshot `json:"session"`
				}
				parseResponse(t, w, &resp)
				if resp.PlayerID != "alice" {
					t.Errorf("Expected player alice, got %s", resp.PlayerID)
				}
				if resp.Session.Kind != engine.KindGrid {
					t.Errorf("Expected grid session, got %s", resp.Session.Kind)
				}
			},
		},
		{
			name:           "Player ID is generated when missing",
			requestBody:    map[string]string{"kind": "simultaneous"},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if id, _ := resp["player_id"].(string); len(id) != 36 {
					t.Errorf("Expected a generated UUID, got %v", resp["player_id"])
				}
			},
		},
		{
			name:        "Unsupported kind",
			requestBody: map[string]string{"kind": "chess"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, kind, requester string) (*service.Result, error) {
					return nil, fmt.Errorf("%w: %q", service.ErrUnsupportedGameKind, kind)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Store failure",
			requestBody: map[string]string{"kind": "grid"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, kind, requester string) (*service.Result, error) {
					return nil, fmt.Errorf("out of IDs")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestJoinSession(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Join open session", nil, http.StatusOK},
		{"Session not found", fmt.Errorf("%w: nope", service.ErrSessionNotFound), http.StatusNotFound},
		{"Session full", fmt.Errorf("%w: sess-1", service.ErrSessionFull), http.StatusConflict},
		{"Already joined", fmt.Errorf("%w: sess-1", service.ErrAlreadyJoined), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSession, gotPlayer string
			mockService := &MockGameService{
				JoinSessionFunc: func(ctx context.Context, sessionID, requester string) (*service.Result, error) {
					gotSession, gotPlayer = sessionID, requester
					if tt.err != nil {
						return nil, tt.err
					}
					return applied(sessionID, engine.KindGrid, "alice", requester), nil
				},
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/join", map[string]string{"player_id": "bob"}))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if gotSession != "sess-1" || gotPlayer != "bob" {
				t.Errorf("Expected join of sess-1 by bob, got %s by %s", gotSession, gotPlayer)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionSnapshot {
		return []*service.SessionSnapshot{
			{ID: "old", Kind: engine.KindGrid, CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
			{ID: "new", Kind: engine.KindSimultaneous, CreatedAt: now, LastAccessedAt: now},
			{ID: "mid", Kind: engine.KindGrid, CreatedAt: now.Add(-time.Minute), LastAccessedAt: now.Add(-time.Minute)},
		}
	}

	tests := []struct {
		name        string
		query       string
		expectedIDs []string
		total       int
	}{
		{"Default sorts by last access, newest first", "", []string{"new", "mid", "old"}, 3},
		{"Ascending creation order", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"Limit", "?limit=1", []string{"new"}, 3},
		{"Filter by kind", "?kind=grid", []string{"mid", "old"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionSnapshot, error) {
					return sessions(), nil
				},
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                        `json:"count"`
				Total    int                        `json:"total"`
				Sessions []*service.SessionSnapshot `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != len(tt.expectedIDs) || resp.Total != tt.total {
				t.Errorf("Expected count %d total %d, got %d/%d", len(tt.expectedIDs), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.expectedIDs {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %+v", i, id, resp.Sessions)
					break
				}
			}
		})
	}

	t.Run("Handle service error", func(t *testing.T) {
		mockService := &MockGameService{
			ListSessionsFunc: func(ctx context.Context) ([]*service.SessionSnapshot, error) {
				return nil, fmt.Errorf("store unavailable")
			},
		}
		w := httptest.NewRecorder()
		setupTestServer(mockService).ServeHTTP(w, makeRequest("GET", "/api/sessions", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionSnapshot, error) {
			if sessionID != "sess-1" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return applied(sessionID, engine.KindGrid, "alice").Session, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "sess-1" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method, path   string
		expectedStatus int
	}{
		{"GET", "/api/sessions/sess-1", http.StatusOK},
		{"GET", "/api/sessions/missing", http.StatusNotFound},
		{"DELETE", "/api/sessions/sess-1", http.StatusOK},
		{"DELETE", "/api/sessions/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestGridMove(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		result         *service.Result
		expectedStatus int
		expectedCell   int
	}{
		{
			name:           "Applied move",
			body:           map[string]interface{}{"player_id": "alice", "symbol": "X", "cell_index": 4},
			result:         applied("sess-1", engine.KindGrid),
			expectedStatus: http.StatusOK,
			expectedCell:   4,
		},
		{
			name: "Ignored move still reports the reason",
			body: map[string]interface{}{"player_id": "alice", "symbol": "X", "cell_index": 0},
			result: &service.Result{
				Status: service.StatusIgnored,
				Reason: "invalid move in session sess-1: cell already marked",
				Err:    service.ErrInvalidMove,
			},
			expectedStatus: http.StatusOK,
			expectedCell:   0,
		},
		{
			name: "Unknown session",
			body: map[string]interface{}{"symbol": "X", "cell_index": 0},
			result: &service.Result{
				Status: service.StatusIgnored,
				Reason: "session not found: sess-1",
				Err:    fmt.Errorf("%w: sess-1", service.ErrSessionNotFound),
			},
			expectedStatus: http.StatusNotFound,
			expectedCell:   0,
		},
		{
			name:           "Missing cell",
			body:           map[string]interface{}{"symbol": "X"},
			expectedStatus: http.StatusBadRequest,
			expectedCell:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCell := -1
			mockService := &MockGameService{
				SubmitGridMoveFunc: func(ctx context.Context, sessionID, requester, symbol string, cell int) (*service.Result, error) {
					gotCell = cell
					return tt.result, nil
				},
			}

			w := httptest.NewRecorder()
			setupTestServer(mockService).ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/grid-move", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if gotCell != tt.expectedCell {
				t.Errorf("Expected cell %d, got %d", tt.expectedCell, gotCell)
			}
			if tt.expectedStatus == http.StatusOK {
				var resp service.Result
				parseResponse(t, w, &resp)
				if resp.Status != tt.result.Status || resp.Reason != tt.result.Reason {
					t.Errorf("Expected %s %q, got %s %q", tt.result.Status, tt.result.Reason, resp.Status, resp.Reason)
				}
			}
		})
	}
}

func TestSimultaneousMove(t *testing.T) {
	t.Run("Requires a player", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupTestServer(&MockGameService{}).ServeHTTP(w,
			makeRequest("POST", "/api/sessions/sess-1/simultaneous-move", map[string]string{"choice": "rock"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("Forwards choice", func(t *testing.T) {
		var got string
		mockService := &MockGameService{
			SubmitSimultaneousMoveFunc: func(ctx context.Context, sessionID, requester, choice string) (*service.Result, error) {
				got = requester + ":" + choice
				return applied(sessionID, engine.KindSimultaneous), nil
			},
		}
		w := httptest.NewRecorder()
		setupTestServer(mockService).ServeHTTP(w,
			makeRequest("POST", "/api/sessions/sess-1/simultaneous-move", map[string]string{"player_id": "bob", "choice": "paper"}))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if got != "bob:paper" {
			t.Errorf("Expected bob:paper, got %s", got)
		}
	})

	t.Run("Malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions/sess-1/simultaneous-move", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		setupTestServer(&MockGameService{}).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestRematch(t *testing.T) {
	mockService := &MockGameService{
		RequestRematchFunc: func(ctx context.Context, sessionID, requester string) (*service.Result, error) {
			return &service.Result{
				Status: service.StatusIgnored,
				Reason: service.ErrRematchDisabled.Error(),
				Err:    service.ErrRematchDisabled,
			}, nil
		},
	}

	w := httptest.NewRecorder()
	setupTestServer(mockService).ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/rematch", map[string]string{"player_id": "alice"}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.Result
	parseResponse(t, w, &resp)
	if resp.Status != service.StatusIgnored {
		t.Errorf("Expected ignored, got %s", resp.Status)
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	setupTestServer(&MockGameService{}).ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp["status"])
	}
}

func TestWebSocketRoute(t *testing.T) {
	t.Run("Served when a hub is configured", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ws", nil)
		w := httptest.NewRecorder()
		setupTestServer(&MockGameService{}).ServeHTTP(w, req)

		// Not an upgrade request, so the upgrader refuses it
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("Absent without a hub", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ws", nil)
		w := httptest.NewRecorder()
		NewServer(&MockGameService{}, nil).ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

// TestGridGameOverREST plays a full grid game against the real coordinator
func TestGridGameOverREST(t *testing.T) {
	coord := service.NewCoordinator(session.NewManager(), nil, service.Options{})
	server := setupTestServer(coord)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest(method, path, body))
		return w
	}

	w := do("POST", "/api/sessions", map[string]string{"kind": "tictactoe", "player_id": "alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create failed: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Session *service.SessionSnapshot `json:"session"`
	}
	parseResponse(t, w, &created)
	base := "/api/sessions/" + created.Session.ID

	if w := do("POST", base+"/join", map[string]string{"player_id": "bob"}); w.Code != http.StatusOK {
		t.Fatalf("Join failed: %d %s", w.Code, w.Body.String())
	}
	if w := do("POST", base+"/join", map[string]string{"player_id": "carol"}); w.Code != http.StatusConflict {
		t.Errorf("Expected third player to get 409, got %d", w.Code)
	}

	moves := []struct {
		player, symbol string
		cell           int
	}{
		{"alice", "X", 0}, {"bob", "O", 3}, {"alice", "X", 1}, {"bob", "O", 4}, {"alice", "X", 2},
	}
	var last service.Result
	for _, m := range moves {
		w := do("POST", base+"/grid-move", map[string]interface{}{"player_id": m.player, "symbol": m.symbol, "cell_index": m.cell})
		if w.Code != http.StatusOK {
			t.Fatalf("Move %+v failed: %d", m, w.Code)
		}
		parseResponse(t, w, &last)
		if last.Status != service.StatusApplied {
			t.Fatalf("Move %+v was %s: %s", m, last.Status, last.Reason)
		}
	}

	if last.Session.Outcome.Status != engine.StatusWinner || last.Session.Outcome.Winner != "alice" {
		t.Errorf("Expected alice to win, got %+v", last.Session.Outcome)
	}

	if w := do("GET", "/api/sessions/"+created.Session.ID, nil); w.Code != http.StatusOK {
		t.Errorf("Get failed: %d", w.Code)
	}
	if w := do("DELETE", base, nil); w.Code != http.StatusOK {
		t.Errorf("Delete failed: %d", w.Code)
	}
	if w := do("POST", base+"/grid-move", map[string]interface{}{"symbol": "O", "cell_index": 5}); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}
