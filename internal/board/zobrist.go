package board

// Zobrist keys over the canonical fields of a position. Move counters are
// not hashed: positions that differ only in counters share a key.
var (
	zobristPiece      [2][6][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	// xorshift64* with a fixed seed keeps keys stable across runs.
	state := uint64(0x98F107A2BEEF1234)
	next := func() uint64 {
		state ^= state >> 12
		state ^= state << 25
		state ^= state >> 27
		return state * 0x2545F4914F6CDD1D
	}

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = next()
			}
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = next()
	}
	for cr := range zobristCastling {
		zobristCastling[cr] = next()
	}
	zobristSideToMove = next()
}

// computeKey hashes p from scratch.
func (p *Position) computeKey() uint64 {
	var key uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				key ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.SideToMove == Black {
		key ^= zobristSideToMove
	}
	key ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		key ^= zobristEnPassant[p.EnPassant.File()]
	}
	return key
}
