// Package finder replays recorded games and reports the first ply at which
// a target position appears.
package finder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/chessfinder/internal/board"
	"github.com/hailam/chessfinder/internal/pgn"
)

// Status is the outcome class of a search.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusMalformedFEN
	StatusMalformedPGN
	StatusIllegalMove
	StatusAmbiguousMove
)

var statusNames = [...]string{
	StatusFound:         "found",
	StatusNotFound:      "notfound",
	StatusMalformedFEN:  "malformed-fen",
	StatusMalformedPGN:  "malformed-pgn",
	StatusIllegalMove:   "illegal-move",
	StatusAmbiguousMove: "ambiguous-move",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Cacheable reports whether the status describes the game rather than a
// problem with the inputs.
func (s Status) Cacheable() bool {
	return s == StatusFound || s == StatusNotFound
}

// MatchMode selects which fields of a position must agree with the target.
type MatchMode int

const (
	// MatchPlacement compares piece placement only.
	MatchPlacement MatchMode = iota
	// MatchCanonical also compares side to move, castling rights and the
	// en passant target. Move counters never take part.
	MatchCanonical
)

func (m MatchMode) String() string {
	switch m {
	case MatchPlacement:
		return "placement"
	case MatchCanonical:
		return "canonical"
	default:
		return fmt.Sprintf("matchmode(%d)", int(m))
	}
}

// ParseMatchMode parses "placement" or "canonical".
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "placement", "":
		return MatchPlacement, nil
	case "canonical":
		return MatchCanonical, nil
	}
	return 0, fmt.Errorf("unknown match mode %q", s)
}

// Result is the outcome of one search.
type Result struct {
	Status Status
	// Ply is the 1-based half-move after which the target first appears.
	// Zero unless Status is StatusFound.
	Ply int
	// Position is the FEN of the matching position.
	Position string
	// Err carries the detail for malformed and illegal statuses.
	Err error
}

// ReplayError locates the move at which a replay stopped.
type ReplayError struct {
	Ply    int // 1-based ply of the offending move
	Token  string
	Offset int // byte offset of the move in the PGN text
	Err    error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("ply %d %q: %v", e.Ply, e.Token, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Searcher looks for a target position in a game.
type Searcher interface {
	Find(target, pgnText string) Result
}

// Option configures a Finder.
type Option func(*Finder)

// WithStrict turns on verification of the recorded moves: capture markers,
// check suffixes, castling through check and a playable start position.
func WithStrict(strict bool) Option {
	return func(f *Finder) {
		f.strict = strict
	}
}

// WithMatchMode selects how positions are compared with a FEN target.
// Pattern targets always compare placement.
func WithMatchMode(mode MatchMode) Option {
	return func(f *Finder) {
		f.mode = mode
	}
}

// Finder searches games for positions. A Finder holds configuration only
// and is safe for concurrent use.
type Finder struct {
	strict bool
	mode   MatchMode
}

// New returns a Finder with trusted replay and placement matching unless
// options say otherwise.
func New(opts ...Option) *Finder {
	f := &Finder{mode: MatchPlacement}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Strict reports whether recorded moves are verified.
func (f *Finder) Strict() bool {
	return f.strict
}

// Mode returns the comparison mode for FEN targets.
func (f *Finder) Mode() MatchMode {
	return f.mode
}

// Fingerprint identifies the settings that influence a result, for use in
// cache keys.
func (f *Finder) Fingerprint() string {
	if f.strict {
		return f.mode.String() + "/strict"
	}
	return f.mode.String() + "/trusted"
}

// Find reports the first ply of the game's main line after which the
// position matches target. target is a FEN or a board pattern.
func (f *Finder) Find(target, pgnText string) Result {
	t, err := Compile(target, f.mode)
	if err != nil {
		return Result{Status: StatusMalformedFEN, Err: err}
	}
	g, err := pgn.Parse(pgnText)
	if err != nil {
		return Result{Status: StatusMalformedPGN, Err: err}
	}
	return f.FindInGame(t, g)
}

// FindInGame is Find for an already compiled target and parsed game.
func (f *Finder) FindInGame(t *Target, g *pgn.Game) Result {
	res := Result{Status: StatusNotFound}
	err := f.Replay(g, func(ply int, pos *board.Position) bool {
		if t.Matches(pos) {
			res = Result{Status: StatusFound, Ply: ply, Position: pos.ToFEN()}
			return false
		}
		return true
	})
	if err != nil {
		return Result{Status: statusOf(err), Err: err}
	}
	return res
}

// Replay plays the main line of g and calls visit with the position after
// each ply, stopping early when visit returns false. Resolution failures
// are returned as *ReplayError.
func (f *Finder) Replay(g *pgn.Game, visit func(ply int, pos *board.Position) bool) error {
	pos, err := pgn.StartPosition(g)
	if err != nil {
		return err
	}
	if f.strict {
		if err := pos.Validate(); err != nil {
			return fmt.Errorf("%w: start position: %w", pgn.ErrMalformedPGN, err)
		}
	}

	opts := board.ResolveOptions{Strict: f.strict}
	for i, tok := range g.Moves {
		ply := i + 1
		m, err := pos.ResolveWith(tok.Text, opts)
		if err != nil {
			return &ReplayError{Ply: ply, Token: tok.Text, Offset: tok.Offset, Err: err}
		}
		next, err := pos.Apply(m)
		if err != nil {
			return &ReplayError{Ply: ply, Token: tok.Text, Offset: tok.Offset, Err: err}
		}
		pos = next
		if !visit(ply, &pos) {
			return nil
		}
	}
	return nil
}

// statusOf classifies an error from Replay.
func statusOf(err error) Status {
	switch {
	case errors.Is(err, pgn.ErrMalformedPGN):
		return StatusMalformedPGN
	case errors.Is(err, board.ErrAmbiguousMove):
		return StatusAmbiguousMove
	default:
		return StatusIllegalMove
	}
}
