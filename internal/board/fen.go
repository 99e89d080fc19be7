package board

import (
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string. The placement, side to move, castling and en
// passant fields are required; the two move counters are optional and
// default to 0 and 1. Every failure is a *FENError.
//
// ParseFEN checks syntax only. A position with no kings is well-formed FEN;
// use Position.Validate for playability.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return Position{}, fenErrorf(ReasonRankCount, 0, "", "empty FEN")
	}

	pos := emptyPosition()
	cells, err := parsePlacement(fields[0], false)
	if err != nil {
		return Position{}, err
	}
	for sq, piece := range cells {
		if piece != NoPiece {
			pos.setPiece(piece, Square(sq))
		}
	}

	if len(fields) < 4 || len(fields) > 6 {
		return Position{}, fenErrorf(ReasonFieldCount, len(fields), fen,
			"need 4 to 6 fields, got %d", len(fields))
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fenErrorf(ReasonSideToMove, 1, fields[1], "side to move must be w or b, got %q", fields[1])
	}

	if pos.CastlingRights, err = parseCastling(fields[2]); err != nil {
		return Position{}, err
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return Position{}, fenErrorf(ReasonEnPassant, 3, fields[3], "en passant target must be - or a square, got %q", fields[3])
		}
		pos.EnPassant = sq
	}

	if len(fields) > 4 {
		if pos.HalfMoveClock, err = parseCounter(fields[4], 4); err != nil {
			return Position{}, err
		}
	}
	if len(fields) > 5 {
		if pos.FullMoveNumber, err = parseCounter(fields[5], 5); err != nil {
			return Position{}, err
		}
	}

	pos.Key = pos.computeKey()
	pos.updateCheckers()
	return pos, nil
}

// wildcard marks a pattern square that matches anything.
const wildcard Piece = NoPiece + 1

// parsePlacement decodes the placement field into 64 cells indexed by
// square. With allowWildcards, '?' yields a wildcard cell.
func parsePlacement(placement string, allowWildcards bool) ([64]Piece, error) {
	var cells [64]Piece
	for i := range cells {
		cells[i] = NoPiece
	}

	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return cells, fenErrorf(ReasonRankCount, 0, placement, "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			case c == '?' && allowWildcards:
				if file < 8 {
					cells[NewSquare(file, rank)] = wildcard
				}
				file++
			default:
				piece := PieceFromChar(c)
				if piece == NoPiece {
					return cells, fenErrorf(ReasonPieceLetter, 0, string(c), "invalid piece letter %q in rank %d", c, rank+1)
				}
				if file < 8 {
					cells[NewSquare(file, rank)] = piece
				}
				file++
			}
			if file > 8 {
				return cells, fenErrorf(ReasonRankWidth, 0, rankStr, "rank %d describes more than 8 squares", rank+1)
			}
		}
		if file != 8 {
			return cells, fenErrorf(ReasonRankWidth, 0, rankStr, "rank %d describes %d squares", rank+1, file)
		}
	}
	return cells, nil
}

func parseCastling(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	var cr CastlingRights
	for i := 0; i < len(field); i++ {
		idx := strings.IndexByte("KQkq", field[i])
		if idx < 0 {
			return 0, fenErrorf(ReasonCastling, 2, field, "unexpected %q in castling field", field[i])
		}
		right := CastlingRights(1) << idx
		if cr&right != 0 {
			return 0, fenErrorf(ReasonCastling, 2, field, "repeated %q in castling field", field[i])
		}
		cr |= right
	}
	if cr == NoCastling {
		return 0, fenErrorf(ReasonCastling, 2, field, "empty castling field")
	}
	return cr, nil
}

func parseCounter(field string, index int) (int, error) {
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return 0, fenErrorf(ReasonCounters, index, field, "move counter must be a non-negative integer, got %q", field)
		}
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fenErrorf(ReasonCounters, index, field, "move counter out of range: %v", err)
	}
	return n, nil
}

// ToFEN returns the canonical FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	sb.WriteString(p.Canonical())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}

// Placement returns the FEN piece placement field.
func (p *Position) Placement() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// Canonical returns the first four FEN fields: placement, side to move,
// castling rights and en passant target.
func (p *Position) Canonical() string {
	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	return strings.Join([]string{p.Placement(), side, p.CastlingRights.String(), p.EnPassant.String()}, " ")
}
