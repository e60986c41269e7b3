package engine

// Resolution is the outcome of one simultaneous round from A's point of view
type Resolution int

const (
	Draw Resolution = iota
	WinnerIsA
	WinnerIsB
)

func (r Resolution) String() string {
	switch r {
	case Draw:
		return "draw"
	case WinnerIsA:
		return "a"
	case WinnerIsB:
		return "b"
	}
	return "unknown"
}

// beats maps each choice to the one it dominates
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// Resolve decides a round between two hands
func Resolve(a, b Choice) Resolution {
	if a == b {
		return Draw
	}
	if beats[a] == b {
		return WinnerIsA
	}
	return WinnerIsB
}

// RoundState collects the hidden choices of one round
type RoundState struct {
	Moves map[string]Choice `json:"-"`
}

// NewRoundState returns an empty round
func NewRoundState() *RoundState {
	return &RoundState{Moves: make(map[string]Choice)}
}

// Submit records player's choice, replacing an earlier one from the same player
func (r *RoundState) Submit(player string, c Choice) {
	r.Moves[player] = c
}

// Complete reports whether every one of n players has submitted
func (r *RoundState) Complete(n int) bool {
	return n > 0 && len(r.Moves) == n
}

// Submitted returns the players, among the given ones, who already moved
func (r *RoundState) Submitted(players []string) []string {
	out := make([]string, 0, len(r.Moves))
	for _, p := range players {
		if _, ok := r.Moves[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Clear starts a new round
func (r *RoundState) Clear() {
	r.Moves = make(map[string]Choice)
}
