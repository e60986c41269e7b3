package engine

import (
	"errors"
	"testing"
)

var allChoices = []Choice{Rock, Paper, Scissors}

func TestResolve(t *testing.T) {
	tests := []struct {
		a, b Choice
		want Resolution
	}{
		{Rock, Scissors, WinnerIsA},
		{Scissors, Paper, WinnerIsA},
		{Paper, Rock, WinnerIsA},
		{Scissors, Rock, WinnerIsB},
		{Paper, Scissors, WinnerIsB},
		{Rock, Paper, WinnerIsB},
		{Rock, Rock, Draw},
		{Paper, Paper, Draw},
		{Scissors, Scissors, Draw},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"_vs_"+string(tt.b), func(t *testing.T) {
			if got := Resolve(tt.a, tt.b); got != tt.want {
				t.Errorf("Resolve(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestResolve_SymmetricUnderSwap(t *testing.T) {
	for _, a := range allChoices {
		for _, b := range allChoices {
			ab, ba := Resolve(a, b), Resolve(b, a)
			switch ab {
			case Draw:
				if ba != Draw {
					t.Errorf("Resolve(%s,%s)=draw but Resolve(%s,%s)=%s", a, b, b, a, ba)
				}
			case WinnerIsA:
				if ba != WinnerIsB {
					t.Errorf("Resolve(%s,%s)=a but Resolve(%s,%s)=%s", a, b, b, a, ba)
				}
			case WinnerIsB:
				if ba != WinnerIsA {
					t.Errorf("Resolve(%s,%s)=b but Resolve(%s,%s)=%s", a, b, b, a, ba)
				}
			}
		}
	}
}

func TestRoundState(t *testing.T) {
	r := NewRoundState()
	players := []string{"p1", "p2"}

	if r.Complete(2) {
		t.Fatal("Empty round must not be complete")
	}

	r.Submit("p1", Rock)
	r.Submit("p1", Paper) // replaces
	if r.Complete(2) {
		t.Error("Round with one player must not be complete")
	}
	if r.Moves["p1"] != Paper {
		t.Errorf("Expected resubmission to replace choice, got %s", r.Moves["p1"])
	}
	if got := r.Submitted(players); len(got) != 1 || got[0] != "p1" {
		t.Errorf("Expected [p1] submitted, got %v", got)
	}

	r.Submit("p2", Rock)
	if !r.Complete(2) {
		t.Error("Expected round to be complete")
	}

	r.Clear()
	if len(r.Moves) != 0 {
		t.Errorf("Expected no moves after clear, got %d", len(r.Moves))
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in   string
		want Choice
	}{
		{"rock", Rock},
		{"PAPER", Paper},
		{" scissors ", Scissors},
		{"piedra", Rock},
		{"papel", Paper},
		{"tijera", Scissors},
	}
	for _, tt := range tests {
		got, err := ParseChoice(tt.in)
		if err != nil {
			t.Errorf("ParseChoice(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChoice(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseChoice("lizard"); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("Expected ErrUnknownChoice, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"grid":         KindGrid,
		"triqui":       KindGrid,
		"TicTacToe":    KindGrid,
		"simultaneous": KindSimultaneous,
		"ppt":          KindSimultaneous,
		"rps":          KindSimultaneous,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %s, %v; want %s", in, got, err, want)
		}
	}

	if _, err := ParseKind("chess"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

func TestParseMark(t *testing.T) {
	if m, err := ParseMark("x"); err != nil || m != MarkX {
		t.Errorf("ParseMark(x) = %s, %v", m, err)
	}
	if m, err := ParseMark("O"); err != nil || m != MarkO {
		t.Errorf("ParseMark(O) = %s, %v", m, err)
	}
	if _, err := ParseMark("Z"); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("Expected ErrInvalidMark, got %v", err)
	}
}
