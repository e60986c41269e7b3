package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedGameKind = errors.New("unsupported game kind")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionFull         = errors.New("session is full")
	ErrAlreadyJoined       = errors.New("player already in session")
	ErrInvalidMove         = errors.New("invalid move")
	ErrRematchDisabled     = errors.New("rematch not allowed")
)

// InvalidMoveError explains why a move submission was discarded.
// It matches ErrInvalidMove with errors.Is and unwraps to the engine reason.
type InvalidMoveError struct {
	SessionID string
	Reason    error
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move in session %s: %v", e.SessionID, e.Reason)
}

func (e *InvalidMoveError) Unwrap() error { return e.Reason }

func (e *InvalidMoveError) Is(target error) bool { return target == ErrInvalidMove }

func invalidMove(sessionID string, reason error) error {
	return &InvalidMoveError{SessionID: sessionID, Reason: reason}
}

var (
	errWrongKind        = errors.New("session plays a different game")
	errNotStarted       = errors.New("waiting for second player")
	errNotParticipant   = errors.New("requester is not a player in this session")
	errSymbolNotOwned   = errors.New("symbol belongs to the other player")
	errNothingToRematch = errors.New("session is still in play")
)
