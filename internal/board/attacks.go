package board

// Ray directions. The first four grow square indices, the last four shrink them.
const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthWest
	dirSouthEast
	numDirs
)

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	// rays[dir][sq] holds every square from sq to the edge in dir, excluding sq.
	rays [numDirs][64]Bitboard

	// betweenBB[a][b] holds the squares strictly between two aligned squares.
	betweenBB [64][64]Bitboard
)

var dirSteps = [numDirs][2]int{
	dirNorth:     {0, 1},
	dirEast:      {1, 0},
	dirNorthEast: {1, 1},
	dirNorthWest: {-1, 1},
	dirSouth:     {0, -1},
	dirWest:      {-1, 0},
	dirSouthWest: {-1, -1},
	dirSouthEast: {1, -1},
}

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&notFileA | (bb<<15)&notFileH |
			(bb>>17)&notFileH | (bb>>15)&notFileA |
			(bb<<10)&notFileAB | (bb<<6)&notFileGH |
			(bb>>10)&notFileGH | (bb>>6)&notFileAB

		kingAttacks[sq] = bb.north() | bb.south() | bb.east() | bb.west() |
			bb.northEast() | bb.northWest() | bb.southEast() | bb.southWest()

		pawnAttacks[White][sq] = bb.northEast() | bb.northWest()
		pawnAttacks[Black][sq] = bb.southEast() | bb.southWest()

		for dir := 0; dir < numDirs; dir++ {
			f, r := sq.File()+dirSteps[dir][0], sq.Rank()+dirSteps[dir][1]
			for f >= 0 && f < 8 && r >= 0 && r < 8 {
				rays[dir][sq] |= SquareBB(NewSquare(f, r))
				f += dirSteps[dir][0]
				r += dirSteps[dir][1]
			}
		}
	}

	for a := A1; a <= H8; a++ {
		for dir := 0; dir < numDirs; dir++ {
			ray := rays[dir][a]
			for ray != 0 {
				b := ray.PopLSB()
				betweenBB[a][b] = rays[dir][a] &^ rays[dir][b] &^ SquareBB(b)
			}
		}
	}
}

// rayAttacks returns the squares reached from sq in dir, stopping at the
// first occupied square (which is included).
func rayAttacks(sq Square, dir int, occupied Bitboard) Bitboard {
	attacks := rays[dir][sq]
	blockers := attacks & occupied
	if blockers == 0 {
		return attacks
	}
	var first Square
	if dir < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return attacks &^ rays[dir][first]
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of colour c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns diagonal attacks from sq given the occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, dirNorthEast, occupied) | rayAttacks(sq, dirNorthWest, occupied) |
		rayAttacks(sq, dirSouthEast, occupied) | rayAttacks(sq, dirSouthWest, occupied)
}

// RookAttacks returns orthogonal attacks from sq given the occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, dirNorth, occupied) | rayAttacks(sq, dirSouth, occupied) |
		rayAttacks(sq, dirEast, occupied) | rayAttacks(sq, dirWest, occupied)
}

// QueenAttacks returns the union of bishop and rook attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Between returns the squares strictly between two squares on a shared
// line, or Empty when they are not aligned.
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// attackersOf returns pieces of colour by that attack sq under the occupancy.
func attackersOf(pieces *[2][6]Bitboard, sq Square, by Color, occupied Bitboard) Bitboard {
	return pawnAttacks[by.Other()][sq]&pieces[by][Pawn] |
		knightAttacks[sq]&pieces[by][Knight] |
		kingAttacks[sq]&pieces[by][King] |
		BishopAttacks(sq, occupied)&(pieces[by][Bishop]|pieces[by][Queen]) |
		RookAttacks(sq, occupied)&(pieces[by][Rook]|pieces[by][Queen])
}

// IsSquareAttacked reports whether any piece of colour by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return attackersOf(&p.Pieces, sq, by, p.AllOccupied) != 0
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// updateCheckers recomputes the pieces giving check to the side to move.
func (p *Position) updateCheckers() {
	ksq := p.Pieces[p.SideToMove][King].LSB()
	if ksq == NoSquare {
		p.Checkers = 0
		return
	}
	p.Checkers = attackersOf(&p.Pieces, ksq, p.SideToMove.Other(), p.AllOccupied)
}
