package engine

// lines lists the winning triples in evaluation order: rows, columns, diagonals
var lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// GridResult is the evaluation of a board
type GridResult struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
}

// EvaluateGrid classifies a board as won, drawn or still pending.
// The first complete line in evaluation order decides the winner.
func EvaluateGrid(b Board) GridResult {
	for _, l := range lines {
		m := b[l[0]]
		if m != MarkEmpty && m == b[l[1]] && m == b[l[2]] {
			return GridResult{Status: StatusWinner, Winner: m}
		}
	}
	if b.Full() {
		return GridResult{Status: StatusDraw}
	}
	return GridResult{Status: StatusPending}
}

// GridState is the mutable payload of a grid session
type GridState struct {
	Board  Board      `json:"board"`
	Turn   Mark       `json:"turn"`
	Result GridResult `json:"result"`
}

// NewGridState returns an empty board with X to move
func NewGridState() *GridState {
	return &GridState{
		Turn:   MarkX,
		Result: GridResult{Status: StatusPending},
	}
}

// Check reports why mark may not be played at cell, or nil if the move is legal
func (g *GridState) Check(mark Mark, cell int) error {
	if g.Result.Status != StatusPending {
		return ErrGameFinished
	}
	if cell < 0 || cell >= BoardSize {
		return ErrCellOutOfRange
	}
	if g.Board[cell] != MarkEmpty {
		return ErrCellOccupied
	}
	if mark != g.Turn {
		return ErrNotYourTurn
	}
	return nil
}

// Apply plays mark at cell, re-evaluates the board and passes the turn
// while the game is still pending. The state is untouched on error.
func (g *GridState) Apply(mark Mark, cell int) (GridResult, error) {
	if err := g.Check(mark, cell); err != nil {
		return g.Result, err
	}

	g.Board[cell] = mark
	g.Result = EvaluateGrid(g.Board)
	if g.Result.Status == StatusPending {
		g.Turn = g.Turn.Opponent()
	}
	return g.Result, nil
}

// Reset clears the board for a rematch
func (g *GridState) Reset() {
	*g = *NewGridState()
}
