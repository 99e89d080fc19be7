package board

// MoveFlags marks the special kinds of move. Zero means a normal move.
type MoveFlags uint8

const (
	FlagDoublePush MoveFlags = 1 << iota
	FlagEnPassant
	FlagCastleKingSide
	FlagCastleQueenSide

	FlagNormal  MoveFlags = 0
	flagCastles           = FlagCastleKingSide | FlagCastleQueenSide
)

// Move is a fully resolved move: where from, where to, what moved, what it
// took and what it became.
type Move struct {
	From      Square
	To        Square
	Piece     Piece
	Captured  Piece     // NoPiece when nothing is taken
	Promotion PieceType // NoPieceType unless a pawn promotes
	Flags     MoveFlags
}

// NoMove is the zero-information move.
var NoMove = Move{From: NoSquare, To: NoSquare, Piece: NoPiece, Captured: NoPiece, Promotion: NoPieceType}

// IsCapture reports whether the move removes an enemy piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece
}

// IsPromotion reports whether a pawn promotes.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoPieceType
}

// IsCastling reports whether the move castles on either side.
func (m Move) IsCastling() bool {
	return m.Flags&flagCastles != 0
}

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flags&FlagEnPassant != 0
}

// String returns the move in coordinate notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m.From == NoSquare {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += NewPiece(m.Promotion, Black).String()
	}
	return s
}

// MoveList is a fixed-capacity move buffer; no position has more than 218
// legal moves.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves held.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the i-th move.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Slice returns the held moves. The slice aliases the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
