// Package protocol runs a line-oriented command loop over the search engine,
// in the manner of a UCI engine: one command per line, one reply per
// command.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/hailam/chessfinder/internal/board"
	"github.com/hailam/chessfinder/internal/core"
	"github.com/hailam/chessfinder/internal/finder"
	"github.com/hailam/chessfinder/internal/pgn"
)

// Protocol holds the session state of one command loop.
type Protocol struct {
	out    io.Writer
	logger *zap.Logger
	handle core.Handle

	strict bool
	mode   finder.MatchMode
	store  finder.ResultStore

	searcher finder.Searcher
	gate     *core.Gate

	// Current game: its start position and main line as SAN.
	startFEN string
	moves    []string
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithStore caches search results in store.
func WithStore(store finder.ResultStore) Option {
	return func(p *Protocol) {
		p.store = store
	}
}

// WithFinderOptions sets the initial search settings.
func WithFinderOptions(opts ...finder.Option) Option {
	return func(p *Protocol) {
		f := finder.New(opts...)
		p.strict, p.mode = f.Strict(), f.Mode()
	}
}

// New creates a protocol handler replying on out.
func New(out io.Writer, logger *zap.Logger, opts ...Option) *Protocol {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Protocol{
		out:      out,
		handle:   core.NewHandle(),
		startFEN: board.StartFEN,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.With(zap.Stringer("handle", p.handle))
	p.rebuild()
	return p
}

// rebuild recreates the searcher after a settings change.
func (p *Protocol) rebuild() {
	var s finder.Searcher = finder.New(finder.WithStrict(p.strict), finder.WithMatchMode(p.mode))
	if p.store != nil {
		s = finder.NewCachedSearcher(s, p.store, p.logger)
	}
	p.searcher = s
	p.gate = core.NewGate(s, p.logger)
}

// Run reads commands from in until "quit" or end of input.
func (p *Protocol) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !p.Execute(line) {
			return nil
		}
	}
	return scanner.Err()
}

// Execute runs one command line and reports whether the loop should go on.
func (p *Protocol) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]
	p.logger.Debug("command", zap.String("line", line))

	switch cmd {
	case "uci", "hello":
		p.handleHello()
	case "isready":
		p.println("readyok")
	case "newgame":
		p.startFEN, p.moves = board.StartFEN, nil
	case "position":
		p.handlePosition(args)
	case "validate":
		p.handleValidate(args)
	case "find":
		p.handleFind(args)
	case "setoption":
		p.handleSetOption(args)
	case "d":
		p.handleDisplay()
	case "quit":
		return false
	default:
		p.printf("info string unknown command %s\n", cmd)
	}
	return true
}

func (p *Protocol) println(s string) {
	fmt.Fprintln(p.out, s)
}

func (p *Protocol) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// handleHello announces the engine and its options.
func (p *Protocol) handleHello() {
	p.println("id name chessfinder")
	p.println("option name Strict type check default false")
	p.println("option name Match type combo default placement var placement var canonical")
	p.println("ok")
}

// handlePosition sets the current game.
// Formats:
//   - position startpos
//   - position startpos moves e4 e5 Nf3
//   - position fen <fen>
//   - position fen <fen> moves e4
func (p *Protocol) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	switch args[0] {
	case "startpos":
		p.startFEN = board.StartFEN
	case "fen":
		fen := strings.Join(args[1:movesAt], " ")
		if _, err := board.ParseFEN(fen); err != nil {
			p.printf("info string invalid FEN: %v\n", err)
			return
		}
		p.startFEN = fen
	default:
		p.printf("info string unknown position kind %s\n", args[0])
		return
	}

	p.moves = nil
	if movesAt < len(args) {
		p.moves = append(p.moves, args[movesAt+1:]...)
	}
}

// gamePGN renders the current game as PGN text for the searcher.
func (p *Protocol) gamePGN() string {
	var sb strings.Builder
	if p.startFEN != board.StartFEN {
		sb.WriteString(`[SetUp "1"]` + "\n")
		sb.WriteString(`[FEN "` + p.startFEN + `"]` + "\n\n")
	}
	sb.WriteString(strings.Join(p.moves, " "))
	return sb.String()
}

// handleValidate answers "validate <fen>" with the boundary code.
func (p *Protocol) handleValidate(args []string) {
	fen := strings.Join(args, " ")
	code := p.gate.Validate(p.handle, fen)
	if code == 0 {
		p.println("validate 0")
		return
	}
	p.printf("validate %d %s\n", code, board.Reason(code))
}

// handleFind answers "find <fen or pattern>" against the current game.
func (p *Protocol) handleFind(args []string) {
	target := strings.Join(args, " ")
	res := p.searcher.Find(target, p.gamePGN())

	switch res.Status {
	case finder.StatusFound:
		p.printf("found %d\n", res.Ply)
	case finder.StatusNotFound:
		p.println("notfound")
	default:
		p.logger.Info("impossible to search the game",
			zap.String("board", target),
			zap.Stringer("status", res.Status),
			zap.Error(res.Err))
		p.printf("error %s %v\n", res.Status, res.Err)
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (p *Protocol) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "strict":
		p.strict = strings.ToLower(value) == "true"
	case "match":
		mode, err := finder.ParseMatchMode(value)
		if err != nil {
			p.printf("info string %v\n", err)
			return
		}
		p.mode = mode
	default:
		p.printf("info string unknown option %s\n", name)
		return
	}
	p.rebuild()
}

// handleDisplay prints the position at the end of the current game.
func (p *Protocol) handleDisplay() {
	g, err := pgn.Parse(p.gamePGN())
	if err != nil {
		p.printf("info string %v\n", err)
		return
	}

	f := finder.New(finder.WithStrict(p.strict))
	pos, err := pgn.StartPosition(g)
	if err != nil {
		p.printf("info string %v\n", err)
		return
	}
	err = f.Replay(g, func(_ int, next *board.Position) bool {
		pos = *next
		return true
	})
	if err != nil {
		p.printf("info string %v\n", err)
	}
	fmt.Fprint(p.out, pos.String())
}
