package board

import (
	"fmt"
	"strings"
)

// CastlingRights is the set of castling options still available.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// castleRight returns the single right for colour c on the given wing.
func castleRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case kingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

// castlingLoss maps a square to the rights lost when a piece leaves or
// lands on it.
var castlingLoss = [64]CastlingRights{
	A1: WhiteQueenSideCastle,
	E1: WhiteKingSideCastle | WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A8: BlackQueenSideCastle,
	E8: BlackKingSideCastle | BlackQueenSideCastle,
	H8: BlackKingSideCastle,
}

// Position is a chess position. It is a value: Apply returns a new Position
// and leaves the receiver untouched, so earlier positions of a replay stay
// valid.
type Position struct {
	Pieces      [2][6]Bitboard // [Color][PieceType]
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare when absent
	HalfMoveClock  int
	FullMoveNumber int

	// Key hashes the canonical fields only; move counters do not affect it.
	Key uint64

	Checkers Bitboard
}

// emptyPosition returns a board with no pieces and default state.
func emptyPosition() Position {
	return Position{EnPassant: NoSquare, FullMoveNumber: 1}
}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// KingSquare returns the square of c's king, or NoSquare if absent.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

func (p *Position) setPiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Key ^= zobristPiece[c][pt][sq]
}

func (p *Position) removePiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Key ^= zobristPiece[c][pt][sq]
}

// Apply plays m and returns the resulting position. The receiver is not
// modified. Apply checks that the stated piece stands on the source square,
// belongs to the side to move and does not land on a friendly piece; it
// does not re-check king safety, which the resolver has already done.
func (p *Position) Apply(m Move) (Position, error) {
	us := p.SideToMove
	them := us.Other()

	if !m.From.IsValid() || !m.To.IsValid() {
		return Position{}, fmt.Errorf("%w: %s: square off the board", ErrIllegalMove, m)
	}
	if m.Piece.Color() != us {
		return Position{}, fmt.Errorf("%w: %s: %s piece moved on %s's turn", ErrIllegalMove, m, m.Piece.Color(), us)
	}
	if got := p.PieceAt(m.From); got != m.Piece {
		return Position{}, fmt.Errorf("%w: %s: expected %s on %s, found %s", ErrIllegalMove, m, m.Piece, m.From, got)
	}
	if p.Occupied[us].Has(m.To) {
		return Position{}, fmt.Errorf("%w: %s: %s is occupied by own piece", ErrIllegalMove, m, m.To)
	}

	next := *p
	pt := m.Piece.Type()

	next.Key ^= zobristCastling[next.CastlingRights]
	if next.EnPassant != NoSquare {
		next.Key ^= zobristEnPassant[next.EnPassant.File()]
	}
	next.EnPassant = NoSquare

	captured := NoPiece
	switch {
	case m.IsEnPassant():
		capSq := m.To - 8
		if us == Black {
			capSq = m.To + 8
		}
		captured = p.PieceAt(capSq)
		if captured != NewPiece(Pawn, them) {
			return Position{}, fmt.Errorf("%w: %s: no pawn to take en passant on %s", ErrIllegalMove, m, capSq)
		}
		next.removePiece(captured, capSq)
	default:
		captured = p.PieceAt(m.To)
		if captured != NoPiece {
			next.removePiece(captured, m.To)
		}
	}

	next.removePiece(m.Piece, m.From)
	if m.IsPromotion() {
		next.setPiece(NewPiece(m.Promotion, us), m.To)
	} else {
		next.setPiece(m.Piece, m.To)
	}

	if m.IsCastling() {
		rank := m.From.Rank()
		rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
		if m.Flags&FlagCastleQueenSide != 0 {
			rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
		}
		rook := NewPiece(Rook, us)
		if p.PieceAt(rookFrom) != rook {
			return Position{}, fmt.Errorf("%w: %s: no rook on %s to castle with", ErrIllegalMove, m, rookFrom)
		}
		if p.AllOccupied&Between(m.From, rookFrom) != 0 {
			return Position{}, fmt.Errorf("%w: %s: castling path is blocked", ErrIllegalMove, m)
		}
		next.removePiece(rook, rookFrom)
		next.setPiece(rook, rookTo)
	}

	next.CastlingRights &^= castlingLoss[m.From] | castlingLoss[m.To]
	next.Key ^= zobristCastling[next.CastlingRights]

	if pt == Pawn && (m.To-m.From == 16 || m.From-m.To == 16) {
		next.EnPassant = Square((int(m.From) + int(m.To)) / 2)
		next.Key ^= zobristEnPassant[next.EnPassant.File()]
	}

	if pt == Pawn || captured != NoPiece {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if us == Black {
		next.FullMoveNumber++
	}

	next.SideToMove = them
	next.Key ^= zobristSideToMove
	next.updateCheckers()

	return next, nil
}

// Validate checks the structural invariants of a playable position: one
// king per side and no pawns on the first or last rank.
func (p *Position) Validate() error {
	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].Count(); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidBoard, c, n)
		}
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on first or last rank", ErrInvalidBoard)
	}
	if p.IsSquareAttacked(p.KingSquare(p.SideToMove.Other()), p.SideToMove) {
		return fmt.Errorf("%w: side not to move is in check", ErrInvalidBoard)
	}
	return nil
}

// SamePlacement reports whether both positions have identical pieces on
// identical squares.
func (p *Position) SamePlacement(o *Position) bool {
	return p.Pieces == o.Pieces
}

// SameCanonical compares placement, side to move, castling rights and the
// en passant target. Move counters are ignored.
func (p *Position) SameCanonical(o *Position) bool {
	return p.Key == o.Key &&
		p.Pieces == o.Pieces &&
		p.SideToMove == o.SideToMove &&
		p.CastlingRights == o.CastlingRights &&
		p.EnPassant == o.EnPassant
}

// String draws the board with rank 8 on top.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "FEN: %s\n", p.ToFEN())
	return sb.String()
}
