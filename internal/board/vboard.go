package board

// VBoard is the piece layout of a position without any game state. The
// legality filter plays candidate moves on it to see whether they leave the
// mover's king attacked, which is cheaper than building a full Position.
type VBoard struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
}

// NewVBoard copies the layout of p.
func NewVBoard(p *Position) VBoard {
	return VBoard{
		Pieces:      p.Pieces,
		Occupied:    p.Occupied,
		AllOccupied: p.AllOccupied,
	}
}

// ApplyMove plays m for colour us without any validation.
func (v *VBoard) ApplyMove(m Move, us Color) {
	them := us.Other()
	fromBB, toBB := SquareBB(m.From), SquareBB(m.To)

	if m.IsCapture() {
		capBB := toBB
		if m.IsEnPassant() {
			capBB = toBB.south()
			if us == Black {
				capBB = toBB.north()
			}
		}
		v.Pieces[them][m.Captured.Type()] &^= capBB
		v.Occupied[them] &^= capBB
	}

	pt := m.Piece.Type()
	v.Pieces[us][pt] &^= fromBB
	if m.IsPromotion() {
		v.Pieces[us][m.Promotion] |= toBB
	} else {
		v.Pieces[us][pt] |= toBB
	}
	v.Occupied[us] = v.Occupied[us]&^fromBB | toBB

	if m.IsCastling() {
		rank := m.From.Rank()
		rookBB := SquareBB(NewSquare(7, rank)) | SquareBB(NewSquare(5, rank))
		if m.Flags&FlagCastleQueenSide != 0 {
			rookBB = SquareBB(NewSquare(0, rank)) | SquareBB(NewSquare(3, rank))
		}
		v.Pieces[us][Rook] ^= rookBB
		v.Occupied[us] ^= rookBB
	}

	v.AllOccupied = v.Occupied[White] | v.Occupied[Black]
}

// IsKingAttacked reports whether c's king is attacked by the other side.
func (v *VBoard) IsKingAttacked(c Color) bool {
	ksq := v.Pieces[c][King].LSB()
	if ksq == NoSquare {
		return false
	}
	return attackersOf(&v.Pieces, ksq, c.Other(), v.AllOccupied) != 0
}
