package board

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedFEN  = errors.New("malformed FEN")
	ErrIllegalMove   = errors.New("illegal move")
	ErrIllegalToken  = errors.New("no legal move matches token")
	ErrAmbiguousMove = errors.New("ambiguous move")
	ErrInvalidBoard  = errors.New("invalid board")
)

// Reason classifies why a FEN string was rejected. The numeric values are
// part of the validation gate's integer contract and must not be reordered.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonRankCount
	ReasonPieceLetter
	ReasonRankWidth
	ReasonFieldCount
	ReasonSideToMove
	ReasonCastling
	ReasonEnPassant
	ReasonCounters
)

var reasonNames = [...]string{
	ReasonNone:        "none",
	ReasonRankCount:   "wrong rank count",
	ReasonPieceLetter: "invalid piece letter",
	ReasonRankWidth:   "wrong number of squares in rank",
	ReasonFieldCount:  "wrong number of fields",
	ReasonSideToMove:  "bad side to move",
	ReasonCastling:    "bad castling field",
	ReasonEnPassant:   "bad en passant field",
	ReasonCounters:    "non-numeric move counters",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("reason(%d)", int(r))
	}
	return reasonNames[r]
}

// FENError describes a rejected FEN or board pattern.
type FENError struct {
	Reason Reason
	Field  int    // 0-based FEN field index
	Value  string // offending field or character
	Msg    string
}

func (e *FENError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("malformed FEN: %s: %s", e.Reason, e.Msg)
	}
	return fmt.Sprintf("malformed FEN: %s: %q", e.Reason, e.Value)
}

// Is makes errors.Is(err, ErrMalformedFEN) hold for every FENError.
func (e *FENError) Is(target error) bool {
	return target == ErrMalformedFEN
}

func fenErrorf(reason Reason, field int, value, format string, args ...any) *FENError {
	return &FENError{Reason: reason, Field: field, Value: value, Msg: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the FEN rejection reason from err, or ReasonNone.
func ReasonOf(err error) Reason {
	var fe *FENError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonNone
}

// MoveError reports a SAN token that could not be turned into a move.
// Err is one of ErrIllegalToken, ErrAmbiguousMove or ErrIllegalMove.
type MoveError struct {
	Token      string
	Candidates []Move // set for ambiguous tokens
	Err        error
	Detail     string
}

func (e *MoveError) Error() string {
	s := fmt.Sprintf("%s: %q", e.Err, e.Token)
	if len(e.Candidates) > 0 {
		s += " matches"
		for _, m := range e.Candidates {
			s += " " + m.String()
		}
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
