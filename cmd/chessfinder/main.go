package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hailam/chessfinder/internal/board"
	"github.com/hailam/chessfinder/internal/config"
	"github.com/hailam/chessfinder/internal/core"
	"github.com/hailam/chessfinder/internal/finder"
	"github.com/hailam/chessfinder/internal/logging"
	"github.com/hailam/chessfinder/internal/pgn"
	"github.com/hailam/chessfinder/internal/protocol"
	"github.com/hailam/chessfinder/internal/storage"
)

const usage = `usage:
  chessfinder validate [flags] <fen>
  chessfinder find -fen <fen> [-pgn file|-] [flags]
  chessfinder match -fen <fen> -pgn file [flags]
  chessfinder serve [flags]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env bundles what a subcommand needs from the process.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	cfg            config.Config
	logger         *zap.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, args := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "chessfinder: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.RegisterFlags(fs)
	fen := fs.String("fen", "", "target position: FEN or board pattern")
	pgnPath := fs.String("pgn", "-", "PGN file, - for standard input")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "chessfinder: %v\n", err)
		return 2
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "chessfinder: %v\n", err)
		return 2
	}
	defer logger.Sync()

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			logger.Error("could not create CPU profile", zap.Error(err))
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error("could not start CPU profile", zap.Error(err))
			return 1
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", zap.String("path", cfg.CPUProfile))
	}

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, cfg: cfg, logger: logger}
	switch cmd {
	case "validate":
		return e.validate(strings.Join(fs.Args(), " "))
	case "find":
		return e.find(*fen, *pgnPath)
	case "match":
		return e.match(ctx, *fen, *pgnPath)
	case "serve":
		return e.serve()
	default:
		fmt.Fprintf(stderr, "chessfinder: unknown command %q\n%s", cmd, usage)
		return 2
	}
}

func (e *env) validate(fen string) int {
	code := core.Validate(core.NewHandle(), fen)
	if code == 0 {
		fmt.Fprintln(e.stdout, "0 valid")
		return 0
	}
	fmt.Fprintf(e.stdout, "%d %s\n", code, board.Reason(code))
	return 1
}

// openCache opens the configured result cache, or returns nil when caching
// is off.
func (e *env) openCache() (*storage.ResultCache, error) {
	if e.cfg.NoCache {
		return nil, nil
	}
	opts, err := e.cfg.CacheOptions()
	if err != nil {
		return nil, err
	}
	return storage.Open(opts)
}

// searcher builds the configured searcher. The returned cleanup closes the
// cache.
func (e *env) searcher() (finder.Searcher, *storage.ResultCache, func(), error) {
	opts, err := e.cfg.FinderOptions()
	if err != nil {
		return nil, nil, nil, err
	}
	var s finder.Searcher = finder.New(opts...)

	cache, err := e.openCache()
	if err != nil {
		return nil, nil, nil, err
	}
	if cache == nil {
		return s, nil, func() {}, nil
	}
	cleanup := func() {
		if err := cache.Close(); err != nil {
			e.logger.Warn("impossible to close the result cache", zap.Error(err))
		}
	}
	return finder.NewCachedSearcher(s, cache, e.logger), cache, cleanup, nil
}

func (e *env) readInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(e.stdin), nil
	}
	return os.Open(path)
}

func (e *env) find(fen, pgnPath string) int {
	if fen == "" {
		fmt.Fprintln(e.stderr, "chessfinder: find needs -fen")
		return 2
	}
	in, err := e.readInput(pgnPath)
	if err != nil {
		e.logger.Error("impossible to read the game", zap.Error(err))
		return 1
	}
	text, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		e.logger.Error("impossible to read the game", zap.Error(err))
		return 1
	}

	s, _, cleanup, err := e.searcher()
	if err != nil {
		e.logger.Error("impossible to prepare the search", zap.Error(err))
		return 1
	}
	defer cleanup()

	res := s.Find(fen, string(text))
	switch res.Status {
	case finder.StatusFound:
		fmt.Fprintf(e.stdout, "found %d %s\n", res.Ply, res.Position)
		return 0
	case finder.StatusNotFound:
		fmt.Fprintln(e.stdout, "notfound")
		return 0
	default:
		fmt.Fprintf(e.stdout, "%s %v\n", res.Status, res.Err)
		return 1
	}
}

func (e *env) match(ctx context.Context, fen, pgnPath string) int {
	if fen == "" {
		fmt.Fprintln(e.stderr, "chessfinder: match needs -fen")
		return 2
	}
	in, err := e.readInput(pgnPath)
	if err != nil {
		e.logger.Error("impossible to read the games", zap.Error(err))
		return 1
	}
	defer in.Close()

	var games []finder.GameRecord
	sc := pgn.NewScanner(in)
	for sc.Scan() {
		games = append(games, finder.GameRecord{ID: strconv.Itoa(len(games) + 1), PGN: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		e.logger.Error("impossible to read the games", zap.Error(err))
		return 1
	}

	s, cache, cleanup, err := e.searcher()
	if err != nil {
		e.logger.Error("impossible to prepare the search", zap.Error(err))
		return 1
	}
	defer cleanup()

	report, err := finder.Match(ctx, s, fen, games, finder.MatchOptions{
		Limit:   e.cfg.Limit,
		Workers: e.cfg.Workers,
		Logger:  e.logger,
	})
	if err != nil {
		if errors.Is(err, board.ErrMalformedFEN) {
			fmt.Fprintf(e.stdout, "%s %v\n", finder.StatusMalformedFEN, err)
		}
		return 1
	}

	for i, id := range report.Matched {
		fmt.Fprintf(e.stdout, "game %s ply %d\n", id, report.Plies[i])
	}
	fmt.Fprintf(e.stdout, "%s examined %d matched %d failed %d\n",
		report.Status, report.Examined, len(report.Matched), report.Failed)
	if cache != nil {
		e.logger.Debug("result cache", zap.Float64("hitRate", cache.HitRate()))
	}
	return 0
}

func (e *env) serve() int {
	var opts []protocol.Option
	fopts, err := e.cfg.FinderOptions()
	if err != nil {
		e.logger.Error("impossible to configure the finder", zap.Error(err))
		return 1
	}
	opts = append(opts, protocol.WithFinderOptions(fopts...))

	cache, err := e.openCache()
	if err != nil {
		e.logger.Error("impossible to open the result cache", zap.Error(err))
		return 1
	}
	if cache != nil {
		defer cache.Close()
		opts = append(opts, protocol.WithStore(cache))
	}

	p := protocol.New(e.stdout, e.logger, opts...)
	if err := p.Run(e.stdin); err != nil {
		e.logger.Error("command loop stopped", zap.Error(err))
		return 1
	}
	return 0
}
