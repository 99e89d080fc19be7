package board

import (
	"strings"
)

// ResolveOptions controls how strictly a SAN token is checked against the
// position.
type ResolveOptions struct {
	// Strict requires the capture marker and the check or mate suffix to
	// agree with the move, requires an explicit promotion piece, and keeps a
	// castling king off attacked squares.
	Strict bool
}

// sanToken is the parsed structure of a SAN move.
type sanToken struct {
	piece     PieceType
	fromFile  int // -1 when not given
	fromRank  int // -1 when not given
	capture   bool
	to        Square
	promotion PieceType
	check     bool
	mate      bool
	castle    MoveFlags // FlagCastleKingSide or FlagCastleQueenSide when castling
}

// Resolve turns a SAN token such as "Nbd7", "exd6", "e8=Q+" or "O-O" into
// the move it denotes in p, trusting the recorded game.
func (p *Position) Resolve(token string) (Move, error) {
	return p.ResolveWith(token, ResolveOptions{})
}

// ResolveWith is Resolve with explicit options. Errors are *MoveError
// wrapping ErrIllegalToken or ErrAmbiguousMove.
func (p *Position) ResolveWith(token string, opts ResolveOptions) (Move, error) {
	tok, ok := parseSAN(token)
	if !ok {
		return NoMove, &MoveError{Token: token, Err: ErrIllegalToken, Detail: "not a SAN move"}
	}

	if tok.castle != 0 {
		return p.resolveCastling(token, tok, opts)
	}

	promo := tok.promotion
	lastRank := tok.to.RelativeRank(p.SideToMove) == 7
	if tok.piece == Pawn && lastRank && promo == NoPieceType {
		if opts.Strict {
			return NoMove, &MoveError{Token: token, Err: ErrIllegalToken, Detail: "promotion piece missing"}
		}
		promo = Queen
	}

	var candidates []Move
	for _, m := range p.LegalMoves().Slice() {
		if m.To != tok.to || m.Piece.Type() != tok.piece || m.IsCastling() {
			continue
		}
		if tok.fromFile >= 0 && m.From.File() != tok.fromFile {
			continue
		}
		if tok.fromRank >= 0 && m.From.Rank() != tok.fromRank {
			continue
		}
		if m.Promotion != promo {
			continue
		}
		if opts.Strict && m.IsCapture() != tok.capture {
			continue
		}
		candidates = append(candidates, m)
	}

	switch len(candidates) {
	case 0:
		return NoMove, &MoveError{Token: token, Err: ErrIllegalToken}
	case 1:
	default:
		return NoMove, &MoveError{Token: token, Err: ErrAmbiguousMove, Candidates: candidates}
	}

	m := candidates[0]
	if opts.Strict {
		if err := p.checkSuffix(token, tok, m); err != nil {
			return NoMove, err
		}
	}
	return m, nil
}

func (p *Position) resolveCastling(token string, tok sanToken, opts ResolveOptions) (Move, error) {
	kingSide := tok.castle == FlagCastleKingSide
	m, ok := p.castlingMove(p.SideToMove, kingSide, opts.Strict)
	if !ok {
		return NoMove, &MoveError{Token: token, Err: ErrIllegalToken, Detail: "castling not possible"}
	}
	if opts.Strict {
		if err := p.checkSuffix(token, tok, m); err != nil {
			return NoMove, err
		}
	}
	return m, nil
}

// checkSuffix verifies that '+' and '#' describe the position after m.
func (p *Position) checkSuffix(token string, tok sanToken, m Move) error {
	next, err := p.Apply(m)
	if err != nil {
		return &MoveError{Token: token, Err: ErrIllegalMove, Detail: err.Error()}
	}
	inCheck := next.InCheck()
	mated := inCheck && !next.HasLegalMoves()
	switch {
	case tok.mate && !mated:
		return &MoveError{Token: token, Err: ErrIllegalToken, Detail: "move does not mate"}
	case tok.check && !inCheck:
		return &MoveError{Token: token, Err: ErrIllegalToken, Detail: "move does not give check"}
	case !tok.check && !tok.mate && inCheck:
		return &MoveError{Token: token, Err: ErrIllegalToken, Detail: "check not marked"}
	}
	return nil
}

// parseSAN splits a token into its parts. It accepts the usual variants:
// "0-0" for "O-O", a promotion piece with or without '=', long forms such
// as "Ng1f3", and trailing annotation glyphs.
func parseSAN(s string) (sanToken, bool) {
	tok := sanToken{piece: Pawn, fromFile: -1, fromRank: -1, to: NoSquare, promotion: NoPieceType}

	s = strings.TrimRight(s, "!?")
	switch {
	case strings.HasSuffix(s, "#"):
		tok.mate = true
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "++"):
		tok.mate = true
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "+"):
		tok.check = true
		s = s[:len(s)-1]
	}

	switch s {
	case "O-O", "0-0":
		tok.castle = FlagCastleKingSide
		return tok, true
	case "O-O-O", "0-0-0":
		tok.castle = FlagCastleQueenSide
		return tok, true
	}

	if n := len(s); n >= 3 {
		if pt := pieceTypeFromLetter(upper(s[n-1])); pt != NoPieceType && pt != Pawn && pt != King {
			switch {
			case s[n-2] == '=':
				tok.promotion, s = pt, s[:n-2]
			case s[n-2] >= '1' && s[n-2] <= '8' && s[n-1] >= 'A' && s[n-1] <= 'Z':
				tok.promotion, s = pt, s[:n-1]
			}
		}
	}

	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		pt := pieceTypeFromLetter(s[0])
		if pt == NoPieceType {
			return tok, false
		}
		tok.piece = pt
		s = s[1:]
	}

	if len(s) < 2 {
		return tok, false
	}
	to, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return tok, false
	}
	tok.to = to
	s = s[:len(s)-2]

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'x' || c == ':':
			tok.capture = true
		case c == '-':
		case c >= 'a' && c <= 'h' && tok.fromFile < 0:
			tok.fromFile = int(c - 'a')
		case c >= '1' && c <= '8' && tok.fromRank < 0:
			tok.fromRank = int(c - '1')
		default:
			return tok, false
		}
	}

	if tok.promotion != NoPieceType && tok.piece != Pawn {
		return tok, false
	}
	return tok, true
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// SAN returns m in Standard Algebraic Notation, including disambiguation
// and the check or mate suffix. m must be legal in p.
func (p *Position) SAN(m Move) string {
	if m.From == NoSquare {
		return "-"
	}

	var sb strings.Builder
	switch {
	case m.Flags&FlagCastleKingSide != 0:
		sb.WriteString("O-O")
	case m.Flags&FlagCastleQueenSide != 0:
		sb.WriteString("O-O-O")
	default:
		pt := m.Piece.Type()
		if pt != Pawn {
			sb.WriteByte(pt.Letter())
			sb.WriteString(p.disambiguation(m))
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte(byte('a' + m.From.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion.Letter())
		}
	}

	if next, err := p.Apply(m); err == nil && next.InCheck() {
		if next.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// disambiguation returns the file, rank or square needed to tell m apart
// from other legal moves of the same piece kind to the same square.
func (p *Position) disambiguation(m Move) string {
	var others []Square
	for _, o := range p.LegalMoves().Slice() {
		if o.To == m.To && o.From != m.From && o.Piece == m.Piece && !o.IsCastling() {
			others = append(others, o.From)
		}
	}
	if len(others) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range others {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// SANLine converts a sequence of moves played from p into SAN.
func (p *Position) SANLine(moves []Move) []string {
	out := make([]string, 0, len(moves))
	pos := *p
	for _, m := range moves {
		out = append(out, pos.SAN(m))
		next, err := pos.Apply(m)
		if err != nil {
			break
		}
		pos = next
	}
	return out
}
