package main

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
)

var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// preference is the fallback order: center, corners, then edges
var preference = [engine.BoardSize]int{4, 0, 2, 6, 8, 1, 3, 5, 7}

// NextCell picks a cell for mark: complete a line, block the opponent's line,
// otherwise take the best free cell. Returns -1 on a full board.
func NextCell(b engine.Board, mark engine.Mark) int {
	if cell := completingCell(b, mark); cell >= 0 {
		return cell
	}
	if cell := completingCell(b, mark.Opponent()); cell >= 0 {
		return cell
	}
	for _, cell := range preference {
		if b[cell] == engine.MarkEmpty {
			return cell
		}
	}
	return -1
}

// completingCell finds the empty cell of a line where mark already holds two
func completingCell(b engine.Board, mark engine.Mark) int {
	for _, line := range winningLines {
		held, empty := 0, -1
		for _, cell := range line {
			switch b[cell] {
			case mark:
				held++
			case engine.MarkEmpty:
				empty = cell
			}
		}
		if held == 2 && empty >= 0 {
			return empty
		}
	}
	return -1
}

var hands = []engine.Choice{engine.Rock, engine.Paper, engine.Scissors}

// RandomChoice draws a hand uniformly
func RandomChoice() engine.Choice {
	return hands[rand.IntN(len(hands))]
}
