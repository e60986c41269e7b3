// Package engine provides the game rules for the duel game server.
//
// The engine package implements two pure state machines:
//   - Grid game (tic-tac-toe): move legality, line detection, turn alternation
//   - Simultaneous game (rock-paper-scissors): hidden move collection and resolution
//
// Core Types:
//
// GridState holds a 3x3 Board and the symbol whose turn it is. EvaluateGrid
// classifies any board as pending, won by a symbol, or drawn. RoundState holds
// the choices submitted in the current simultaneous round and Resolve decides
// a pair of choices.
//
// Usage:
//
//	g := engine.NewGridState()
//	if _, err := g.Apply(engine.MarkX, 4); err != nil {
//		// ErrCellOccupied, ErrNotYourTurn, ErrGameFinished, ErrCellOutOfRange
//	}
//
//	switch engine.Resolve(engine.Rock, engine.Scissors) {
//	case engine.WinnerIsA:
//		// rock beats scissors
//	}
//
// Nothing in this package is safe for concurrent use; callers serialize
// access to a session's state.
package engine
