package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
)

// GameService defines all operations clients can request
type GameService interface {
	// Session lifecycle
	CreateSession(ctx context.Context, kind, requester string) (*Result, error)
	JoinSession(ctx context.Context, sessionID, requester string) (*Result, error)
	GetSession(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	ListSessions(ctx context.Context) ([]*SessionSnapshot, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Moves
	SubmitGridMove(ctx context.Context, sessionID, requester, symbol string, cell int) (*Result, error)
	SubmitSimultaneousMove(ctx context.Context, sessionID, requester, choice string) (*Result, error)
	RequestRematch(ctx context.Context, sessionID, requester string) (*Result, error)
}

// SessionStore owns the active sessions keyed by ID
type SessionStore interface {
	Create(id string, kind engine.Kind) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) []*Session
}

// Broadcaster delivers events to connections. Both calls are fire-and-forget.
type Broadcaster interface {
	Send(connID string, ev Event)
	Broadcast(connIDs []string, ev Event)
}

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Session represents one match between up to two players
type Session struct {
	ID             string
	Kind           engine.Kind
	Players        []string
	Outcome        Outcome
	Grid           *engine.GridState
	Round          *engine.RoundState
	RoundNumber    int
	Generation     uint64
	CreatedAt      time.Time
	LastAccessedAt time.Time

	resetTimer Timer
}

// MaxPlayers is the number of players a session admits
const MaxPlayers = 2

// NewSession builds an empty session payload for kind
func NewSession(id string, kind engine.Kind) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:             id,
		Kind:           kind,
		Players:        make([]string, 0, MaxPlayers),
		Outcome:        Outcome{Status: engine.StatusPending},
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	switch kind {
	case engine.KindGrid:
		s.Grid = engine.NewGridState()
	case engine.KindSimultaneous:
		s.Round = engine.NewRoundState()
		s.RoundNumber = 1
	default:
		return nil, ErrUnsupportedGameKind
	}
	return s, nil
}

// HasPlayer reports whether id was admitted to the session
func (s *Session) HasPlayer(id string) bool {
	for _, p := range s.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Full reports whether no more players can join
func (s *Session) Full() bool {
	return len(s.Players) >= MaxPlayers
}

// SymbolOf returns the grid symbol assigned by join order
func (s *Session) SymbolOf(player string) engine.Mark {
	for i, p := range s.Players {
		if p == player {
			if i == 0 {
				return engine.MarkX
			}
			return engine.MarkO
		}
	}
	return engine.MarkEmpty
}

// PlayerWithSymbol is the inverse of SymbolOf
func (s *Session) PlayerWithSymbol(m engine.Mark) string {
	for _, p := range s.Players {
		if s.SymbolOf(p) == m {
			return p
		}
	}
	return ""
}

// Opponent returns the other player's ID
func (s *Session) Opponent(player string) string {
	for _, p := range s.Players {
		if p != player {
			return p
		}
	}
	return ""
}

// Snapshot copies the client-facing view of the session
func (s *Session) Snapshot() *SessionSnapshot {
	snap := &SessionSnapshot{
		ID:             s.ID,
		Kind:           s.Kind,
		Players:        append([]string(nil), s.Players...),
		Outcome:        s.Outcome,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}

	switch s.Kind {
	case engine.KindGrid:
		board := s.Grid.Board
		snap.Board = &board
		snap.Turn = s.Grid.Turn
		snap.Symbols = make(map[string]engine.Mark, len(s.Players))
		for _, p := range s.Players {
			snap.Symbols[p] = s.SymbolOf(p)
		}
	case engine.KindSimultaneous:
		snap.Submitted = s.Round.Submitted(s.Players)
		snap.Round = s.RoundNumber
	}
	return snap
}

// cancelReset stops a pending round reset and invalidates its callback
func (s *Session) cancelReset() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.Generation++
}
