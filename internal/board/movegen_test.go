package board

import (
	"testing"
)

func TestMateDetection(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		inCheck  bool
		hasMoves bool
	}{
		// Back rank mate: pawns on g7 and h7 box the king in.
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", true, false},
		// The king takes the unprotected rook.
		{"king captures checker", "6Rk/8/8/8/8/8/8/K7 b - - 0 1", true, true},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, false},
		{"interpose", "R6k/6pp/8/8/8/8/5r2/K7 b - - 0 1", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatal("Error parsing FEN:", err)
			}
			if got := pos.InCheck(); got != tt.inCheck {
				t.Errorf("InCheck() = %v, want %v", got, tt.inCheck)
			}
			if got := pos.HasLegalMoves(); got != tt.hasMoves {
				t.Errorf("HasLegalMoves() = %v, want %v (legal: %d)", got, tt.hasMoves, pos.LegalMoves().Len())
			}
			if got, want := pos.IsCheckmate(), tt.inCheck && !tt.hasMoves; got != want {
				t.Errorf("IsCheckmate() = %v, want %v", got, want)
			}
		})
	}
}

func TestLegalMovesNeverExposeKing(t *testing.T) {
	// The e-file bishop is pinned against the king by the rook on e8.
	pos, err := ParseFEN("4r2k/8/8/8/8/8/4B3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range pos.LegalMoves().Slice() {
		if m.Piece.Type() == Bishop {
			t.Errorf("pinned bishop moved: %v", m)
		}
	}
}
