// Package core is the integer boundary of the engine: validate a FEN and
// find a position in a game, with every outcome reported as a small code.
package core

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/chessfinder/internal/board"
	"github.com/hailam/chessfinder/internal/finder"
)

// Find codes. A positive Find result is the ply of the first match.
const (
	CodeFound         = 1
	CodeNotFound      = 0
	CodeMalformedFEN  = -1
	CodeMalformedPGN  = -2
	CodeIllegalMove   = -3
	CodeAmbiguousMove = -4
)

// Handle identifies the caller's execution context. The engine passes it
// through to logs and never looks inside.
type Handle struct {
	id uuid.UUID
}

// NewHandle returns a handle with a fresh random id.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

// String returns the handle id.
func (h Handle) String() string {
	return h.id.String()
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

// Gate answers boundary calls with a configured searcher.
type Gate struct {
	searcher finder.Searcher
	logger   *zap.Logger
}

// NewGate returns a gate over s. A nil searcher means a default Finder.
func NewGate(s finder.Searcher, logger *zap.Logger) *Gate {
	if s == nil {
		s = finder.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{searcher: s, logger: logger}
}

// Validate returns 0 when fen is a well-formed FEN or board pattern and the
// board.Reason code of the first problem otherwise.
func (g *Gate) Validate(h Handle, fen string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("recovered in validate",
				zap.Stringer("handle", h),
				zap.String("board", fen),
				zap.Any("panic", r))
			code = int(board.ReasonRankCount)
		}
	}()

	var err error
	if board.IsPattern(fen) {
		_, err = board.ParsePattern(fen)
	} else {
		_, err = board.ParseFEN(fen)
	}
	return int(board.ReasonOf(err))
}

// Find returns the ply at which fen first occurs in the game, or one of the
// non-positive codes.
func (g *Gate) Find(h Handle, fen, pgnText string) int {
	code, ply := g.FindPly(h, fen, pgnText)
	if code == CodeFound {
		return ply
	}
	return code
}

// FindPly is Find with the code and the ply kept apart. ply is zero unless
// code is CodeFound.
func (g *Gate) FindPly(h Handle, fen, pgnText string) (code, ply int) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("recovered in find",
				zap.Stringer("handle", h),
				zap.String("board", fen),
				zap.Any("panic", r))
			code, ply = CodeMalformedPGN, 0
		}
	}()

	res := g.searcher.Find(fen, pgnText)
	return CodeOf(res.Status), res.Ply
}

// CodeOf maps a search status to its boundary code.
func CodeOf(s finder.Status) int {
	switch s {
	case finder.StatusFound:
		return CodeFound
	case finder.StatusNotFound:
		return CodeNotFound
	case finder.StatusMalformedFEN:
		return CodeMalformedFEN
	case finder.StatusMalformedPGN:
		return CodeMalformedPGN
	case finder.StatusIllegalMove:
		return CodeIllegalMove
	case finder.StatusAmbiguousMove:
		return CodeAmbiguousMove
	}
	panic(fmt.Sprintf("core: unknown status %v", s))
}

var defaultGate = NewGate(nil, nil)

// Validate checks fen with the default gate.
func Validate(h Handle, fen string) int {
	return defaultGate.Validate(h, fen)
}

// Find searches with the default gate: trusted replay, placement matching.
func Find(h Handle, fen, pgnText string) int {
	return defaultGate.Find(h, fen, pgnText)
}

// FindPly is Find with the code and the ply kept apart.
func FindPly(h Handle, fen, pgnText string) (code, ply int) {
	return defaultGate.FindPly(h, fen, pgnText)
}
