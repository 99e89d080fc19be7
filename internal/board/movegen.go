package board

// GeneratePseudoLegalMoves returns every move for the side to move that obeys
// piece movement rules, including ones that leave the own king attacked.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := &MoveList{}
	us := p.SideToMove

	p.generatePawnMoves(ml, us)
	for _, pt := range [...]PieceType{Knight, Bishop, Rook, Queen, King} {
		p.generatePieceMoves(ml, us, pt)
	}
	p.generateCastlingMoves(ml, us)
	return ml
}

// LegalMoves returns the moves that do not leave the mover's king attacked.
func (p *Position) LegalMoves() *MoveList {
	return p.filterLegal(p.GeneratePseudoLegalMoves())
}

func (p *Position) filterLegal(ml *MoveList) *MoveList {
	us := p.SideToMove
	legal := &MoveList{}
	for _, m := range ml.Slice() {
		if p.leavesKingSafe(m, us) {
			legal.Add(m)
		}
	}
	return legal
}

// leavesKingSafe plays m on a scratch board and checks the mover's king.
func (p *Position) leavesKingSafe(m Move, us Color) bool {
	v := NewVBoard(p)
	v.ApplyMove(m, us)
	return !v.IsKingAttacked(us)
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	us := p.SideToMove
	for _, m := range p.GeneratePseudoLegalMoves().Slice() {
		if p.leavesKingSafe(m, us) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

func (p *Position) generatePieceMoves(ml *MoveList, us Color, pt PieceType) {
	piece := NewPiece(pt, us)
	pieces := p.Pieces[us][pt]
	for pieces != 0 {
		from := pieces.PopLSB()
		var targets Bitboard
		switch pt {
		case Knight:
			targets = KnightAttacks(from)
		case Bishop:
			targets = BishopAttacks(from, p.AllOccupied)
		case Rook:
			targets = RookAttacks(from, p.AllOccupied)
		case Queen:
			targets = QueenAttacks(from, p.AllOccupied)
		case King:
			targets = KingAttacks(from)
		}
		targets &^= p.Occupied[us]
		for targets != 0 {
			to := targets.PopLSB()
			ml.Add(Move{From: from, To: to, Piece: piece, Captured: p.PieceAt(to), Promotion: NoPieceType})
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color) {
	pawn := NewPiece(Pawn, us)
	enemies := p.Occupied[us.Other()]
	empty := ^p.AllOccupied

	forward, startRank := 8, Rank3
	if us == Black {
		forward, startRank = -8, Rank6
	}

	pawns := p.Pieces[us][Pawn]
	for pawns != 0 {
		from := pawns.PopLSB()
		one := Square(int(from) + forward)
		if !one.IsValid() {
			continue
		}

		if empty.Has(one) {
			addPawnMove(ml, Move{From: from, To: one, Piece: pawn, Captured: NoPiece})
			two := Square(int(one) + forward)
			if startRank.Has(one) && empty.Has(two) {
				ml.Add(Move{From: from, To: two, Piece: pawn, Captured: NoPiece, Promotion: NoPieceType, Flags: FlagDoublePush})
			}
		}

		captures := PawnAttacks(from, us) & enemies
		for captures != 0 {
			to := captures.PopLSB()
			addPawnMove(ml, Move{From: from, To: to, Piece: pawn, Captured: p.PieceAt(to)})
		}

		if p.EnPassant != NoSquare && PawnAttacks(from, us).Has(p.EnPassant) {
			ml.Add(Move{
				From:      from,
				To:        p.EnPassant,
				Piece:     pawn,
				Captured:  NewPiece(Pawn, us.Other()),
				Promotion: NoPieceType,
				Flags:     FlagEnPassant,
			})
		}
	}
}

// addPawnMove adds m, expanded into four promotions when it reaches the
// last rank.
func addPawnMove(ml *MoveList, m Move) {
	if m.To.RelativeRank(m.Piece.Color()) != 7 {
		m.Promotion = NoPieceType
		ml.Add(m)
		return
	}
	for _, promo := range [...]PieceType{Queen, Rook, Bishop, Knight} {
		m.Promotion = promo
		ml.Add(m)
	}
}

// castlingMove builds the king move for castling on one wing, or reports
// false when the rights, pieces or path do not allow it. With checkAttacks
// the king may not start on, cross or land on an attacked square.
func (p *Position) castlingMove(us Color, kingSide, checkAttacks bool) (Move, bool) {
	if p.CastlingRights&castleRight(us, kingSide) == 0 {
		return NoMove, false
	}
	rank := 0
	if us == Black {
		rank = 7
	}
	king := NewPiece(King, us)
	from := NewSquare(4, rank)
	to, rookFrom, flag := NewSquare(6, rank), NewSquare(7, rank), FlagCastleKingSide
	if !kingSide {
		to, rookFrom, flag = NewSquare(2, rank), NewSquare(0, rank), FlagCastleQueenSide
	}

	if p.PieceAt(from) != king || p.PieceAt(rookFrom) != NewPiece(Rook, us) {
		return NoMove, false
	}
	if p.AllOccupied&Between(from, rookFrom) != 0 {
		return NoMove, false
	}
	if checkAttacks {
		them := us.Other()
		for _, sq := range [...]Square{from, Square((int(from) + int(to)) / 2), to} {
			if p.IsSquareAttacked(sq, them) {
				return NoMove, false
			}
		}
	}
	return Move{From: from, To: to, Piece: king, Captured: NoPiece, Promotion: NoPieceType, Flags: flag}, true
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	for _, kingSide := range [...]bool{true, false} {
		if m, ok := p.castlingMove(us, kingSide, true); ok {
			ml.Add(m)
		}
	}
}
