package board

import "strings"

// Pattern is a placement-only board description in which '?' stands for
// any square content, empty or not. "????R?r?/?????kq?/????Q???/8/8/8/8/8"
// asks for those five pieces on those squares and nothing on the remaining
// squares of ranks 1 to 5.
type Pattern struct {
	cells [64]Piece
	// mask has a bit for every square the pattern constrains, occ for
	// every square it requires to hold a piece.
	mask Bitboard
	occ  Bitboard
}

// IsPattern reports whether s looks like a board pattern rather than a full
// FEN: a single field holding a '?' wildcard or nothing but placement.
func IsPattern(s string) bool {
	fields := strings.Fields(s)
	return len(fields) == 1 && strings.Count(fields[0], "/") > 0
}

// ParsePattern parses a placement field that may contain '?' wildcards.
// Errors are *FENError with the same reasons ParseFEN uses for the
// placement field.
func ParsePattern(s string) (Pattern, error) {
	fields := strings.Fields(s)
	if len(fields) != 1 {
		return Pattern{}, fenErrorf(ReasonFieldCount, len(fields), s, "a board pattern has exactly one field, got %d", len(fields))
	}
	cells, err := parsePlacement(fields[0], true)
	if err != nil {
		return Pattern{}, err
	}
	pat := Pattern{cells: cells}
	for sq, c := range cells {
		if c != wildcard {
			pat.mask |= SquareBB(Square(sq))
		}
		if c != wildcard && c != NoPiece {
			pat.occ |= SquareBB(Square(sq))
		}
	}
	return pat, nil
}

// Matches reports whether pos agrees with every constrained square.
func (pat *Pattern) Matches(pos *Position) bool {
	if pos.AllOccupied&pat.mask != pat.occ {
		return false
	}
	mask := pat.occ
	for mask != 0 {
		sq := mask.PopLSB()
		if pos.PieceAt(sq) != pat.cells[sq] {
			return false
		}
	}
	return true
}

// String returns the pattern in placement notation.
func (pat *Pattern) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			c := pat.cells[NewSquare(file, rank)]
			if c == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			if c == wildcard {
				sb.WriteByte('?')
			} else {
				sb.WriteString(c.String())
			}
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

// PatternOf returns the pattern that matches exactly the placement of pos.
func PatternOf(pos *Position) Pattern {
	pat := Pattern{mask: ^Bitboard(0), occ: pos.AllOccupied}
	for sq := A1; sq <= H8; sq++ {
		pat.cells[sq] = pos.PieceAt(sq)
	}
	return pat
}
