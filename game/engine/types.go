package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which game a session plays
type Kind string

const (
	KindGrid         Kind = "grid"
	KindSimultaneous Kind = "simultaneous"
)

// Mark is the content of a grid cell and the symbol a grid player holds
type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"

	// BoardSize is the number of cells on the 3x3 board
	BoardSize = 9
)

// Board is the 3x3 grid, indexed row-major from 0 to 8
type Board [BoardSize]Mark

// Choice is a rock-paper-scissors hand
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// Status classifies a game or round outcome
type Status string

const (
	StatusPending Status = "pending"
	StatusWinner  Status = "winner"
	StatusDraw    Status = "draw"
)

var (
	ErrUnknownKind    = errors.New("unknown game kind")
	ErrUnknownChoice  = errors.New("unknown choice")
	ErrInvalidMark    = errors.New("invalid mark")
	ErrCellOutOfRange = errors.New("cell index out of range")
	ErrCellOccupied   = errors.New("cell already marked")
	ErrNotYourTurn    = errors.New("not this symbol's turn")
	ErrGameFinished   = errors.New("game already finished")
)

var kindAliases = map[string]Kind{
	"grid":         KindGrid,
	"tictactoe":    KindGrid,
	"tic-tac-toe":  KindGrid,
	"triqui":       KindGrid,
	"simultaneous": KindSimultaneous,
	"rps":          KindSimultaneous,
	"ppt":          KindSimultaneous,
}

// ParseKind maps a client supplied game type to a Kind
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

var choiceAliases = map[string]Choice{
	"rock":     Rock,
	"paper":    Paper,
	"scissors": Scissors,
	"piedra":   Rock,
	"papel":    Paper,
	"tijera":   Scissors,
}

// ParseChoice maps a client supplied hand to a Choice (case-insensitive)
func ParseChoice(s string) (Choice, error) {
	if c, ok := choiceAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChoice, s)
}

// ParseMark accepts "X" or "O" in either case
func ParseMark(s string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return MarkX, nil
	case "O":
		return MarkO, nil
	}
	return MarkEmpty, fmt.Errorf("%w: %q", ErrInvalidMark, s)
}

// Opponent returns the other grid symbol
func (m Mark) Opponent() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	}
	return MarkEmpty
}

// Full reports whether every cell is marked
func (b Board) Full() bool {
	for _, c := range b {
		if c == MarkEmpty {
			return false
		}
	}
	return true
}
