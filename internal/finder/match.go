package finder

import (
	"context"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StopSearchIfFound is the default number of matching games after which a
// batch search stops.
const StopSearchIfFound = 10

// GameRecord is one game of a batch.
type GameRecord struct {
	ID  string
	PGN string
}

// SearchStatus tells whether a batch looked at every game.
type SearchStatus int

const (
	SearchedAll SearchStatus = iota
	SearchedPartially
)

func (s SearchStatus) String() string {
	if s == SearchedPartially {
		return "SEARCHED_PARTIALLY"
	}
	return "SEARCHED_ALL"
}

// MatchOptions configures Match.
type MatchOptions struct {
	// Limit stops the batch once this many games matched. Zero means
	// StopSearchIfFound; negative means no limit.
	Limit int
	// Workers bounds concurrent searches. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// MatchReport summarises a batch.
type MatchReport struct {
	Matched  []string // IDs of matching games in input order
	Plies    []int    // matching ply for each entry of Matched
	Examined int
	Failed   int
	Status   SearchStatus
}

// Match searches games concurrently for target. Games are reported in
// input order: the report covers the shortest prefix of games holding Limit
// matches, or all of them. A malformed target fails the whole batch; a
// malformed or illegal game only counts as failed.
func Match(ctx context.Context, s Searcher, target string, games []GameRecord, opts MatchOptions) (MatchReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("board", target))

	if _, err := Compile(target, MatchPlacement); err != nil {
		logger.Error("impossible to compile the board", zap.Error(err))
		return MatchReport{}, err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = StopSearchIfFound
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(games))
	var found atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	launched := 0
	for i := range games {
		if limit > 0 && found.Load() >= int64(limit) {
			break
		}
		if gctx.Err() != nil {
			break
		}
		launched++
		i := i // per-iteration copy; go.mod targets go1.21 (pre-1.22 loopvar semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Find(target, games[i].PGN)
			if results[i].Status == StatusFound {
				found.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("batch interrupted", zap.Error(err))
		return MatchReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return MatchReport{}, err
	}

	report := MatchReport{Status: SearchedAll}
	for i := 0; i < launched; i++ {
		res := results[i]
		report.Examined++
		switch res.Status {
		case StatusFound:
			report.Matched = append(report.Matched, games[i].ID)
			report.Plies = append(report.Plies, res.Ply)
		case StatusNotFound:
		default:
			report.Failed++
			logger.Warn("impossible to search the game",
				zap.String("gameId", games[i].ID),
				zap.Stringer("status", res.Status),
				zap.Error(res.Err))
		}
		if limit > 0 && len(report.Matched) >= limit {
			break
		}
	}
	if report.Examined < len(games) {
		report.Status = SearchedPartially
	}

	logger.Info("batch searched",
		zap.Int("games", len(games)),
		zap.Int("examined", report.Examined),
		zap.Int("matched", len(report.Matched)),
		zap.Int("failed", report.Failed),
		zap.Stringer("status", report.Status))
	return report, nil
}
