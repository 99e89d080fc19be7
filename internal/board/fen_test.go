package board

import (
	"errors"
	"testing"
)

func TestParseFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbqkbnr/pppppppp/8/8/8/8/8/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 2 3",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w Kq - 99 120",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := pos.ToFEN(); got != fen {
				t.Errorf("ToFEN() = %q, want %q", got, fen)
			}
			again, err := ParseFEN(pos.ToFEN())
			if err != nil {
				t.Fatalf("reparse: %v", err)
			}
			if again != pos {
				t.Errorf("reparsed position differs from the original")
			}
		})
	}
}

func TestParseFENDefaultsCounters(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if pos.HalfMoveClock != 0 || pos.FullMoveNumber != 1 {
		t.Errorf("counters = %d %d, want 0 1", pos.HalfMoveClock, pos.FullMoveNumber)
	}

	pos, err = ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR   w  KQkq  -  7")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if got, want := pos.ToFEN(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 7 1"; got != want {
		t.Errorf("ToFEN() = %q, want %q", got, want)
	}
}

func TestParseFENReasons(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		reason Reason
	}{
		{"empty", "", ReasonRankCount},
		{"not a fen", "bad-fen", ReasonRankCount},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonRankCount},
		{"nine ranks", "rnbqkbnr/pppppppp/8/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonRankCount},
		{"bad letter", "rnbqkbnr/pppppppp/8/8/4X3/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonPieceLetter},
		{"digit nine", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonPieceLetter},
		{"wildcard", "rnbqkbnr/pppppppp/????????/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonPieceLetter},
		{"short rank", "rnbqkbnr/pppppppp/7/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonRankWidth},
		{"long rank", "rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ReasonRankWidth},
		{"placement only", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", ReasonFieldCount},
		{"three fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq", ReasonFieldCount},
		{"seven fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 x", ReasonFieldCount},
		{"side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", ReasonSideToMove},
		{"side upper", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR W KQkq - 0 1", ReasonSideToMove},
		{"castling letter", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1", ReasonCastling},
		{"castling repeat", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KKq - 0 1", ReasonCastling},
		{"en passant", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1", ReasonEnPassant},
		{"en passant word", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq none 0 1", ReasonEnPassant},
		{"halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1", ReasonCounters},
		{"negative", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1", ReasonCounters},
		{"fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 one", ReasonCounters},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if err == nil {
				t.Fatalf("ParseFEN(%q) succeeded, want %v", tc.fen, tc.reason)
			}
			if !errors.Is(err, ErrMalformedFEN) {
				t.Errorf("error %v does not match ErrMalformedFEN", err)
			}
			if got := ReasonOf(err); got != tc.reason {
				t.Errorf("reason = %v, want %v (%v)", got, tc.reason, err)
			}
		})
	}
}

func TestParseFENMissingPawnsIsValidSyntax(t *testing.T) {
	if _, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/8/RNBQKBNR w KQkq - 0 1"); err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
}

func TestCanonicalIgnoresCounters(t *testing.T) {
	a, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 40 77")
	if err != nil {
		t.Fatal(err)
	}
	if !a.SameCanonical(&b) {
		t.Error("positions differing only in counters should compare equal")
	}
	if a.Key != b.Key {
		t.Error("positions differing only in counters should share a key")
	}
	if a.Canonical() != b.Canonical() {
		t.Errorf("Canonical() differs: %q vs %q", a.Canonical(), b.Canonical())
	}

	c, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 2 3")
	if err != nil {
		t.Fatal(err)
	}
	if a.SameCanonical(&c) {
		t.Error("side to move must take part in the canonical comparison")
	}
	if !a.SamePlacement(&c) {
		t.Error("placement should be equal")
	}
}
