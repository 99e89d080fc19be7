package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessfinder/internal/finder"
	"github.com/hailam/chessfinder/internal/storage"
)

func run(t *testing.T, script string, opts ...Option) []string {
	t.Helper()
	var out bytes.Buffer
	p := New(&out, nil, opts...)
	require.NoError(t, p.Run(strings.NewReader(script)))
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestIsReady(t *testing.T) {
	assert.Equal(t, []string{"readyok"}, run(t, "isready\n"))
}

func TestHello(t *testing.T) {
	lines := run(t, "uci\n")
	assert.Equal(t, "id name chessfinder", lines[0])
	assert.Equal(t, "ok", lines[len(lines)-1])
}

func TestValidate(t *testing.T) {
	lines := run(t, strings.Join([]string{
		"validate rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"validate rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR z KQkq - 0 1",
		"validate ????????/8/8/8/8/8/8/8",
	}, "\n"))
	assert.Equal(t, []string{
		"validate 0",
		"validate 5 bad side to move",
		"validate 0",
	}, lines)
}

func TestFind(t *testing.T) {
	lines := run(t, strings.Join([]string{
		"position startpos moves e4 e5 Nf3 Nc6",
		"find r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 2 3",
		"find 8/8/8/8/8/8/8/8 w - - 0 1",
		"find ????????/????????/????????/????????/????P???/????????/????????/????????",
		"find not a fen",
	}, "\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "found 4", lines[0])
	assert.Equal(t, "notfound", lines[1])
	assert.Equal(t, "found 1", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "error malformed-fen "), lines[3])
}

func TestFindFromFEN(t *testing.T) {
	lines := run(t, strings.Join([]string{
		"position fen 4k3/8/8/8/8/8/4P3/4K3 w - - 0 1 moves e4 Kd7 e5",
		"find 8/3k4/8/4P3/8/8/8/4K3",
	}, "\n"))
	assert.Equal(t, []string{"found 3"}, lines)
}

func TestFindReportsBadMoves(t *testing.T) {
	lines := run(t, strings.Join([]string{
		"position startpos moves d4 d5 Nf3 Nf6 Nd2",
		"find 8/8/8/8/8/8/8/8",
		"position startpos moves e4 e5 Ke3",
		"find 8/8/8/8/8/8/8/8",
	}, "\n"))
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "error ambiguous-move "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "error illegal-move "), lines[1])
}

func TestSetOption(t *testing.T) {
	script := strings.Join([]string{
		"position startpos moves e4+ e5",
		"find 8/8/8/8/8/8/8/8",
		"setoption name Strict value true",
		"find 8/8/8/8/8/8/8/8",
		"setoption name Strict value false",
		"setoption name Match value canonical",
		"position startpos moves Nf3 Nf6",
		"find rnbqkb1r/pppppppp/5n2/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 0 1",
		"setoption name Match value zobrist",
		"setoption name Hash value 64",
	}, "\n")
	lines := run(t, script)
	require.Len(t, lines, 5)
	assert.Equal(t, "notfound", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "error illegal-move "), lines[1])
	assert.Equal(t, "notfound", lines[2])
	assert.Equal(t, `info string unknown match mode "zobrist"`, lines[3])
	assert.Equal(t, "info string unknown option Hash", lines[4])
}

func TestInitialOptions(t *testing.T) {
	lines := run(t, "position startpos moves e4+\nfind 8/8/8/8/8/8/8/8\n",
		WithFinderOptions(finder.WithStrict(true)))
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "error illegal-move "), lines[0])
}

func TestDisplay(t *testing.T) {
	lines := run(t, "position startpos moves e4 e5\nd\n")
	assert.Equal(t, "FEN: rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2", lines[len(lines)-1])
}

func TestInvalidPositionKeepsGame(t *testing.T) {
	lines := run(t, strings.Join([]string{
		"position startpos moves e4",
		"position fen 8/8 w - - 0 1",
		"find ????????/????????/????????/????????/????P???/????????/????????/????????",
	}, "\n"))
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "info string invalid FEN: "), lines[0])
	assert.Equal(t, "found 1", lines[1])
}

func TestQuitStopsLoop(t *testing.T) {
	lines := run(t, "isready\nquit\nisready\n")
	assert.Equal(t, []string{"readyok"}, lines)
}

func TestUnknownCommand(t *testing.T) {
	assert.Equal(t, []string{"info string unknown command go"}, run(t, "go depth 5\n"))
}

func TestStoreBackedSearch(t *testing.T) {
	cache, err := storage.Open(storage.Options{})
	require.NoError(t, err)
	defer cache.Close()

	script := "position startpos moves e4 e5\nfind ????????/????????/????????/????p???/????????/????????/????????/????????\n"
	lines := run(t, script+script, WithStore(cache))
	assert.Equal(t, []string{"found 2", "found 2"}, lines)

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 50.0, cache.HitRate(), 0.001)
}
