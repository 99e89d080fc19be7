// Package pgn reads Portable Game Notation: tag pairs and the main line of
// the move text. Comments, NAGs, annotations and variations are recognised
// and dropped; moves stay as SAN tokens for the board package to resolve.
package pgn

import (
	"fmt"

	"github.com/hailam/chessfinder/internal/board"
)

// Token is one main-line move as written in the game.
type Token struct {
	Text   string // SAN with annotation glyphs removed
	Offset int    // byte offset in the parsed text
	Number int    // move number written just before the move, or 0
}

// Game is a parsed PGN game.
type Game struct {
	Tags     map[string]string
	TagOrder []string
	Moves    []Token
	Result   string // "1-0", "0-1", "1/2-1/2", "*" or "" when absent
}

// Tag returns the value of the named tag, or "".
func (g *Game) Tag(name string) string {
	return g.Tags[name]
}

// SANs returns the move texts in game order.
func (g *Game) SANs() []string {
	out := make([]string, len(g.Moves))
	for i, t := range g.Moves {
		out[i] = t.Text
	}
	return out
}

// Parse reads one game. Text after the result marker is ignored. Empty move
// text yields a game without moves. Errors are *SyntaxError.
func Parse(text string) (*Game, error) {
	g := &Game{Tags: make(map[string]string)}
	lex := newLexer(text)

	depth := 0
	lastVariation := 0
	pendingNumber := 0
	inMoves := false

	for {
		it, err := lex.next()
		if err != nil {
			return nil, err
		}

		switch it.kind {
		case itemEOF:
			if depth > 0 {
				return nil, syntaxError(lastVariation, "(", "unterminated variation")
			}
			return g, nil

		case itemTag:
			if inMoves {
				return nil, syntaxError(it.offset, "["+it.text, "tag pair inside move text")
			}
			if _, dup := g.Tags[it.text]; !dup {
				g.TagOrder = append(g.TagOrder, it.text)
			}
			g.Tags[it.text] = it.value

		case itemVariationStart:
			inMoves = true
			if depth == 0 && len(g.Moves) == 0 {
				return nil, syntaxError(it.offset, "(", "variation before the first move")
			}
			if depth == 0 {
				lastVariation = it.offset
			}
			depth++

		case itemVariationEnd:
			if depth == 0 {
				return nil, syntaxError(it.offset, ")", "unbalanced closing parenthesis")
			}
			depth--

		case itemMoveNumber:
			inMoves = true
			if depth == 0 {
				pendingNumber = it.number
			}

		case itemMove:
			inMoves = true
			if depth == 0 {
				g.Moves = append(g.Moves, Token{Text: it.text, Offset: it.offset, Number: pendingNumber})
				pendingNumber = 0
			}

		case itemNAG, itemAnnotation:
			inMoves = true

		case itemResult:
			if depth > 0 {
				// Some exporters close variations with a result; skip it.
				continue
			}
			g.Result = it.text
			return g, nil
		}
	}
}

// StartPosition returns the position a game starts from: the FEN tag when
// present, otherwise the standard initial position. A bad FEN tag is
// reported as both ErrMalformedPGN and board.ErrMalformedFEN.
func StartPosition(g *Game) (board.Position, error) {
	fen, ok := g.Tags["FEN"]
	if !ok {
		return board.NewPosition(), nil
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return board.Position{}, fmt.Errorf("%w: FEN tag: %w", ErrMalformedPGN, err)
	}
	return pos, nil
}
