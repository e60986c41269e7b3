package service

import (
	"time"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
)

// Event names exchanged with clients
const (
	EventConnected      = "connected"
	EventSessionCreated = "session-created"
	EventGameStarted    = "game-started"
	EventGameUpdated    = "game-updated"
	EventRoundResult    = "round-result"
	EventRoundReset     = "round-reset"
	EventError          = "error"
)

// Event is one outbound message
type Event struct {
	Name      string `json:"event"`
	SessionID string `json:"session_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Delivery pairs an event with its recipients. Directed deliveries have a
// single recipient; broadcasts go to every participant of the session.
type Delivery struct {
	To        []string `json:"to"`
	Broadcast bool     `json:"broadcast,omitempty"`
	Event     Event    `json:"event"`
}

// ResultStatus tells whether a request changed session state
type ResultStatus string

const (
	StatusApplied  ResultStatus = "applied"
	StatusIgnored  ResultStatus = "ignored"
	StatusRejected ResultStatus = "rejected"
)

// Result is returned by every coordinator operation
type Result struct {
	Status  ResultStatus     `json:"status"`
	Reason  string           `json:"reason,omitempty"`
	Err     error            `json:"-"`
	Session *SessionSnapshot `json:"session,omitempty"`
	Events  []Delivery       `json:"events,omitempty"`
}

// Applied reports whether the request mutated the session
func (r *Result) Applied() bool {
	return r != nil && r.Status == StatusApplied
}

// Outcome is the classification of a session or of its current round
type Outcome struct {
	Status engine.Status `json:"status"`
	Winner string        `json:"winner,omitempty"` // player ID
	Mark   engine.Mark   `json:"mark,omitempty"`   // winning symbol, grid only
}

// SessionSnapshot is the client-facing view of a session. For simultaneous
// sessions it lists who has moved but never what they chose.
type SessionSnapshot struct {
	ID             string                 `json:"id"`
	Kind           engine.Kind            `json:"kind"`
	Players        []string               `json:"players"`
	Outcome        Outcome                `json:"outcome"`
	Board          *engine.Board          `json:"board,omitempty"`
	Turn           engine.Mark            `json:"turn,omitempty"`
	Symbols        map[string]engine.Mark `json:"symbols,omitempty"`
	Submitted      []string               `json:"submitted,omitempty"`
	Round          int                    `json:"round,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
}

// SessionCreatedData is sent to the creator of a session
type SessionCreatedData struct {
	ID       string      `json:"id"`
	PlayerID string      `json:"playerId"`
	Kind     engine.Kind `json:"kind"`
}

// GameStartedData is sent to each player once the second one joins.
// Role is the grid symbol, or the player's own ID in simultaneous games.
type GameStartedData struct {
	Role    string           `json:"role"`
	Session *SessionSnapshot `json:"session"`
}

// GameUpdatedData carries the board after an accepted grid move
type GameUpdatedData struct {
	Session *SessionSnapshot `json:"session"`
}

// RoundResultData is the personalised result of a simultaneous round.
// Winner is nil on a draw.
type RoundResultData struct {
	YourMove     engine.Choice `json:"yourMove"`
	OpponentMove engine.Choice `json:"opponentMove"`
	Winner       *string       `json:"winner"`
	Round        int           `json:"round"`
}

// RoundResetData announces that players may submit again
type RoundResetData struct {
	SessionID string `json:"sessionId"`
	Round     int    `json:"round"`
}

// ConnectedData tells a new connection the identity it plays under
type ConnectedData struct {
	PlayerID string `json:"playerId"`
}

// ErrorData is the payload of a directed error event
type ErrorData struct {
	Message string `json:"message"`
}
