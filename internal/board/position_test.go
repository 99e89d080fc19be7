package board

import (
	"errors"
	"strings"
	"testing"
)

func TestApplyDoesNotModifyReceiver(t *testing.T) {
	pos := NewPosition()
	before := pos
	m, err := pos.Resolve("e4")
	if err != nil {
		t.Fatal(err)
	}
	next, err := pos.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if pos != before {
		t.Error("Apply modified the receiver")
	}
	if got, want := next.ToFEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; got != want {
		t.Errorf("after e4: %s, want %s", got, want)
	}
}

func TestApplyRejects(t *testing.T) {
	start := NewPosition()
	tests := []struct {
		name string
		pos  Position
		m    Move
	}{
		{"empty source", start, Move{From: E4, To: E5, Piece: WhitePawn, Captured: NoPiece, Promotion: NoPieceType}},
		{"wrong piece", start, Move{From: E2, To: E4, Piece: WhiteKnight, Captured: NoPiece, Promotion: NoPieceType}},
		{"wrong colour", start, Move{From: E7, To: E5, Piece: BlackPawn, Captured: NoPiece, Promotion: NoPieceType}},
		{"own piece on target", start, Move{From: D1, To: D2, Piece: WhiteQueen, Captured: NoPiece, Promotion: NoPieceType}},
		{"off board", start, Move{From: E2, To: NoSquare, Piece: WhitePawn, Captured: NoPiece, Promotion: NoPieceType}},
		{"castle without rook", mustParseFEN(t, "4k3/8/8/8/8/8/8/4K3 w K - 0 1"),
			Move{From: E1, To: G1, Piece: WhiteKing, Captured: NoPiece, Promotion: NoPieceType, Flags: FlagCastleKingSide}},
		{"en passant without pawn", mustParseFEN(t, "4k3/8/8/4P3/8/8/8/4K3 w - d6 0 1"),
			Move{From: E5, To: D6, Piece: WhitePawn, Captured: BlackPawn, Promotion: NoPieceType, Flags: FlagEnPassant}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.pos.Apply(tc.m); !errors.Is(err, ErrIllegalMove) {
				t.Errorf("Apply(%v) error = %v, want ErrIllegalMove", tc.m, err)
			}
		})
	}
}

func TestApplyCastlingRights(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		token string
		want  CastlingRights
	}{
		{"king move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "Kf1", BlackKingSideCastle | BlackQueenSideCastle},
		{"rook move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "Rb1", WhiteKingSideCastle | BlackKingSideCastle | BlackQueenSideCastle},
		{"rook captured", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "Rxa8+", WhiteKingSideCastle | BlackKingSideCastle},
		{"castling", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "O-O", WhiteKingSideCastle | WhiteQueenSideCastle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := play(t, mustParseFEN(t, tc.fen), tc.token)
			if pos.CastlingRights != tc.want {
				t.Errorf("rights = %v, want %v", pos.CastlingRights, tc.want)
			}
		})
	}
}

func TestApplyCastlingMovesRook(t *testing.T) {
	pos := play(t, mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1"), "O-O-O")
	if got, want := pos.ToFEN(), "2kr3r/8/8/8/8/8/8/R3K2R w KQ - 1 2"; got != want {
		t.Errorf("after O-O-O: %s, want %s", got, want)
	}
}

func TestApplyEnPassantCapture(t *testing.T) {
	pos := play(t, NewPosition(), "e4", "a6", "e5", "f5")
	if pos.EnPassant != F6 {
		t.Fatalf("en passant target = %v, want f6", pos.EnPassant)
	}
	pos = play(t, pos, "exf6")
	if got := pos.PieceAt(F5); got != NoPiece {
		t.Errorf("f5 holds %v after en passant, want empty", got)
	}
	if got := pos.PieceAt(F6); got != WhitePawn {
		t.Errorf("f6 holds %v, want white pawn", got)
	}
	if pos.HalfMoveClock != 0 {
		t.Errorf("halfmove clock = %d, want 0", pos.HalfMoveClock)
	}
}

func TestApplyCounters(t *testing.T) {
	pos := play(t, NewPosition(), "Nf3", "Nf6", "Ng1")
	if pos.HalfMoveClock != 3 || pos.FullMoveNumber != 2 {
		t.Errorf("counters = %d %d, want 3 2", pos.HalfMoveClock, pos.FullMoveNumber)
	}
	pos = play(t, pos, "e5")
	if pos.HalfMoveClock != 0 || pos.FullMoveNumber != 3 {
		t.Errorf("counters = %d %d, want 0 3", pos.HalfMoveClock, pos.FullMoveNumber)
	}
}

func TestReplayKeepsInvariants(t *testing.T) {
	// Morphy's Opera Game.
	tokens := []string{
		"e4", "e5", "Nf3", "d6", "d4", "Bg4", "dxe5", "Bxf3", "Qxf3", "dxe5",
		"Bc4", "Nf6", "Qb3", "Qe7", "Nc3", "c6", "Bg5", "b5", "Nxb5", "cxb5",
		"Bxb5+", "Nbd7", "O-O-O", "Rd8", "Rxd7", "Rxd7", "Rd1", "Qe6", "Bxd7+", "Nxd7",
		"Qb8+", "Nxb8", "Rd8#",
	}
	pos := NewPosition()
	for i, tok := range tokens {
		m, err := pos.ResolveWith(tok, ResolveOptions{Strict: true})
		if err != nil {
			t.Fatalf("ply %d %q: %v", i+1, tok, err)
		}
		if pos, err = pos.Apply(m); err != nil {
			t.Fatalf("ply %d %q: %v", i+1, tok, err)
		}
		if err := pos.Validate(); err != nil {
			t.Fatalf("ply %d %q: %v", i+1, tok, err)
		}
		var seen Bitboard
		for c := White; c <= Black; c++ {
			for pt := Pawn; pt <= King; pt++ {
				if seen&pos.Pieces[c][pt] != 0 {
					t.Fatalf("ply %d: two pieces share a square", i+1)
				}
				seen |= pos.Pieces[c][pt]
			}
		}
		if seen != pos.AllOccupied {
			t.Fatalf("ply %d: occupancy out of sync", i+1)
		}
	}
	if !pos.IsCheckmate() {
		t.Error("the game ends in mate")
	}
	if got, want := pos.Canonical(), "1n1Rkb1r/p4ppp/4q3/4p1B1/4P3/8/PPP2PPP/2K5 b k -"; got != want {
		t.Errorf("final position %s, want %s", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		fen string
		ok  bool
	}{
		{StartFEN, true},
		{"rnbqkbnr/pppppppp/8/8/8/8/8/RNBQKBNR w KQkq - 0 1", true},
		{"8/8/8/8/8/8/8/8 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/8 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/3KK3 w - - 0 1", false},
		{"4k2P/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/p3K3 w - - 0 1", false},
		{"4k3/4R3/8/8/8/8/8/4K3 w - - 0 1", false},
		{"4k3/4R3/8/8/8/8/8/4K3 b - - 0 1", true},
	}
	for _, tc := range tests {
		pos := mustParseFEN(t, tc.fen)
		err := pos.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("Validate(%s) = %v, want ok=%v", tc.fen, err, tc.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidBoard) {
			t.Errorf("Validate(%s) error %v does not wrap ErrInvalidBoard", tc.fen, err)
		}
	}
}

func TestPositionString(t *testing.T) {
	pos := NewPosition()
	s := pos.String()
	if want := "FEN: " + StartFEN; !strings.Contains(s, want) {
		t.Errorf("String() missing %q:\n%s", want, s)
	}
}
