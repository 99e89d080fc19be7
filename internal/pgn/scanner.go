package pgn

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Scanner splits a stream of concatenated PGN games into one text per
// game. A game ends where the next tag section begins. Games that are not
// valid UTF-8 are decoded as ISO-8859-1, the encoding of most older PGN
// databases.
type Scanner struct {
	r    *bufio.Reader
	text string
	err  error

	pending  []byte // first line of the next game
	eof      bool
	offset   int64 // bytes consumed so far
	gameFrom int64 // offset of the current game
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Scan advances to the next game. It returns false at the end of input or
// on a read error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	var buf bytes.Buffer
	start := s.offset - int64(len(s.pending))
	if s.pending != nil {
		buf.Write(s.pending)
		s.pending = nil
	}

	inMoves := false
	inComment := false
	for !s.eof {
		line, err := s.r.ReadBytes('\n')
		s.offset += int64(len(line))
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
				return false
			}
			s.eof = true
		}

		trimmed := bytes.TrimSpace(line)
		if !inComment && len(trimmed) > 0 && trimmed[0] == '[' && inMoves {
			s.pending = line
			break
		}
		if !inComment && len(trimmed) > 0 && trimmed[0] != '[' && trimmed[0] != '%' {
			inMoves = true
		}
		inComment = commentOpenAfter(line, inComment)
		buf.Write(line)
	}

	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return false
	}

	b := buf.Bytes()
	if !utf8.Valid(b) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		if err != nil {
			s.err = err
			return false
		}
		b = decoded
	}
	s.text = string(b)
	s.gameFrom = start
	return true
}

// Text returns the game read by the last successful Scan.
func (s *Scanner) Text() string {
	return s.text
}

// Offset returns the byte offset in the input of the game returned by Text.
func (s *Scanner) Offset() int64 {
	return s.gameFrom
}

// Err returns the first read error, or nil at a clean end of input.
func (s *Scanner) Err() error {
	return s.err
}

// commentOpenAfter reports whether a brace comment is still open at the end
// of line, given whether one was open at its start.
func commentOpenAfter(line []byte, open bool) bool {
	for _, c := range line {
		switch {
		case open && c == '}':
			open = false
		case !open && c == '{':
			open = true
		case !open && c == ';':
			return false
		}
	}
	return open
}
