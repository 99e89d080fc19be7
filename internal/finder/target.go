package finder

import (
	"github.com/hailam/chessfinder/internal/board"
)

// Target is a compiled search target: a full position or a board pattern.
type Target struct {
	pattern *board.Pattern
	pos     board.Position
	mode    MatchMode
}

// Compile parses target as a board pattern when it is a lone placement
// field and as FEN otherwise. Errors are *board.FENError.
func Compile(target string, mode MatchMode) (*Target, error) {
	if board.IsPattern(target) {
		pat, err := board.ParsePattern(target)
		if err != nil {
			return nil, err
		}
		return &Target{pattern: &pat, mode: MatchPlacement}, nil
	}

	pos, err := board.ParseFEN(target)
	if err != nil {
		return nil, err
	}
	return &Target{pos: pos, mode: mode}, nil
}

// IsPattern reports whether the target was given as a board pattern.
func (t *Target) IsPattern() bool {
	return t.pattern != nil
}

// Matches reports whether pos satisfies the target.
func (t *Target) Matches(pos *board.Position) bool {
	switch {
	case t.pattern != nil:
		return t.pattern.Matches(pos)
	case t.mode == MatchCanonical:
		return t.pos.SameCanonical(pos)
	default:
		return t.pos.SamePlacement(pos)
	}
}

// String returns the target in the notation it was given in.
func (t *Target) String() string {
	if t.pattern != nil {
		return t.pattern.String()
	}
	return t.pos.ToFEN()
}
