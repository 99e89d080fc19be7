package pgn

import (
	"errors"
	"fmt"
)

// ErrMalformedPGN is matched by every error Parse returns.
var ErrMalformedPGN = errors.New("malformed PGN")

// SyntaxError locates a problem in PGN text.
type SyntaxError struct {
	Offset int    // byte offset of the offending token
	Token  string // the offending token, possibly truncated
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed PGN at offset %d near %q: %s", e.Offset, e.Token, e.Msg)
}

// Is makes errors.Is(err, ErrMalformedPGN) hold for every SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformedPGN
}

func syntaxError(offset int, token, msg string) *SyntaxError {
	const maxToken = 32
	if len(token) > maxToken {
		token = token[:maxToken] + "..."
	}
	return &SyntaxError{Offset: offset, Token: token, Msg: msg}
}
