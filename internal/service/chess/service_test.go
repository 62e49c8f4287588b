package chess

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/render"
	"github.com/park285/cheese-chess/internal/repository"
	"github.com/park285/cheese-chess/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type failingArchive struct{ repository.Archive }

func (failingArchive) SaveResult(context.Context, *domain.ChessGame) (int64, error) {
	return 0, errors.New("database down")
}

type fixture struct {
	svc     *Service
	store   store.Store
	archive *repository.Memory
	events  *recordingPublisher
}

func newFixture(t *testing.T, st store.Store, cfg Config) *fixture {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f := &fixture{store: st, archive: repository.NewMemory(), events: &recordingPublisher{}}
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc, err := NewService(st, f.archive, cat, render.NewRenderer(render.WithSquareSize(24)), cfg, nil,
		WithPublisher(f.events),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func memoryFixture(t *testing.T) *fixture {
	return newFixture(t, store.NewMemoryStore(), Config{AutoDraws: true})
}

func play(t *testing.T, svc *Service, id string, moves ...string) *MoveSummary {
	t.Helper()
	var last *MoveSummary
	for _, mv := range moves {
		res, err := svc.Move(context.Background(), id, mv[:2], mv[2:4], mv[4:])
		if err != nil {
			t.Fatalf("move %s: %v", mv, err)
		}
		last = res
	}
	return last
}

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(nil, nil, nil, nil, Config{}, nil); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestNewGameSnapshot(t *testing.T) {
	f := memoryFixture(t)
	state, err := f.svc.NewGame(context.Background(), "")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if state.ID == "" || state.ID == DefaultGameID {
		t.Fatalf("unexpected id %q", state.ID)
	}
	if state.Position.FEN() != corechess.StartingFEN {
		t.Fatalf("fen = %s", state.Position.FEN())
	}
	if state.Message != "White to move." {
		t.Fatalf("message = %q", state.Message)
	}
	if state.MoveCount() != 0 || state.LastMove != nil {
		t.Fatalf("fresh game has moves: %+v", state)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != EventCreated {
		t.Fatalf("events = %v", got)
	}

	if _, err := f.svc.NewGame(context.Background(), "not a fen"); !errors.Is(err, corechess.ErrInvalidFEN) {
		t.Fatalf("expected ErrInvalidFEN, got %v", err)
	}
}

func TestDefaultGameIsCreatedOnDemand(t *testing.T) {
	f := memoryFixture(t)
	state, err := f.svc.State(context.Background(), "")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.ID != DefaultGameID {
		t.Fatalf("id = %q", state.ID)
	}
	res := play(t, f.svc, "", "e2e4")
	if res.SAN != "e4" || res.State.Message != "Black to move." {
		t.Fatalf("unexpected move result: %s %q", res.SAN, res.State.Message)
	}
	if _, err := f.svc.State(context.Background(), "nope"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestMoveCheckmateArchivesGame(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	game, _ := f.svc.NewGame(ctx, "")

	res := play(t, f.svc, game.ID, "f2f3", "e7e5", "g2g4", "d8h4")
	if !res.State.Status.Checkmate || res.State.Message != "Checkmate - Game over." {
		t.Fatalf("expected checkmate, got %+v %q", res.State.Status, res.State.Message)
	}
	if !res.Archived || res.GameID == 0 {
		t.Fatalf("expected archived result, got %+v", res)
	}
	archived, err := f.svc.ArchivedGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("archived game: %v", err)
	}
	if archived.Result != "0-1" || archived.ResultMethod != "checkmate" {
		t.Fatalf("archived result %s %s", archived.Result, archived.ResultMethod)
	}
	if !strings.Contains(archived.PGN, "1. f3 e5 2. g4 Qh4# 0-1") {
		t.Fatalf("pgn:\n%s", archived.PGN)
	}
	list, err := f.svc.Archive(ctx, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("archive list %v %v", list, err)
	}

	moves, err := f.svc.LegalMoves(ctx, game.ID, "")
	if err != nil || len(moves) != 0 {
		t.Fatalf("finished game should have no moves: %v %v", moves, err)
	}
	if _, err := f.svc.Move(ctx, game.ID, "e2", "e4", ""); !errors.Is(err, corechess.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove after mate, got %v", err)
	}
	rec, _ := f.store.Load(ctx, game.ID)
	if !rec.Archived {
		t.Fatalf("record should be marked archived")
	}
}

func TestArchiveFailureDoesNotFailMove(t *testing.T) {
	cat, _ := msgcat.New("")
	svc, err := NewService(store.NewMemoryStore(), failingArchive{}, cat, nil, Config{AutoDraws: true}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	res := play(t, svc, "", "f2f3", "e7e5", "g2g4", "d8h4")
	if res.Archived || !res.State.Status.Checkmate {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRejectedMovesLeaveGameUnchanged(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	play(t, f.svc, "", "e2e4")
	before, _ := f.store.Load(ctx, DefaultGameID)

	cases := []struct {
		from, to, promo string
		want            error
	}{
		{"e9", "e5", "", corechess.ErrInvalidSquare},
		{"e7", "e5", "x", corechess.ErrInvalidPromotionChoice},
		{"e7", "e5", "q", corechess.ErrInvalidPromotionChoice},
		{"e7", "e4", "", corechess.ErrIllegalMove},
		{"d2", "d4", "", corechess.ErrIllegalMove},
	}
	for _, tc := range cases {
		if _, err := f.svc.Move(ctx, "", tc.from, tc.to, tc.promo); !errors.Is(err, tc.want) {
			t.Fatalf("%s%s%s: expected %v, got %v", tc.from, tc.to, tc.promo, tc.want, err)
		}
	}
	after, _ := f.store.Load(ctx, DefaultGameID)
	if len(after.Moves) != len(before.Moves) || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("record changed: %+v -> %+v", before, after)
	}
}

func TestLegalMovesFilter(t *testing.T) {
	f := memoryFixture(t)
	moves, err := f.svc.LegalMoves(context.Background(), "", "g1")
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if len(moves) != 2 || moves[0].SAN != "Nf3" || moves[1].SAN != "Nh3" {
		t.Fatalf("unexpected knight moves %+v", moves)
	}
	if _, err := f.svc.LegalMoves(context.Background(), "", "z1"); !errors.Is(err, corechess.ErrInvalidSquare) {
		t.Fatalf("expected ErrInvalidSquare, got %v", err)
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	game, err := f.svc.NewGame(ctx, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	res, err := f.svc.Move(ctx, game.ID, "a7", "a8", "")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if res.SAN != "a8=Q" || res.Move.Promotion != corechess.Queen {
		t.Fatalf("unexpected promotion %s", res.SAN)
	}
	if res.State.Material.White != 9 {
		t.Fatalf("material = %+v", res.State.Material)
	}
}

func TestClaimDrawByRepetition(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()

	if _, err := f.svc.ClaimDraw(ctx, "", ""); !errors.Is(err, corechess.ErrDrawNotClaimable) {
		t.Fatalf("expected ErrDrawNotClaimable, got %v", err)
	}
	if _, err := f.svc.ClaimDraw(ctx, "", "boredom"); !errors.Is(err, ErrUnknownDrawReason) {
		t.Fatalf("expected ErrUnknownDrawReason, got %v", err)
	}

	res := play(t, f.svc, "", "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8")
	if res.State.Message != "White may claim a draw (Threefold repetition)." {
		t.Fatalf("message = %q", res.State.Message)
	}
	if _, err := f.svc.ClaimDraw(ctx, "", "fifty_move_rule"); !errors.Is(err, corechess.ErrDrawNotClaimable) {
		t.Fatalf("fifty-move claim should fail, got %v", err)
	}
	state, err := f.svc.ClaimDraw(ctx, "", "threefold_repetition")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if state.Status.Outcome != corechess.Draw || state.Message != "Draw - Threefold repetition" {
		t.Fatalf("unexpected state %+v %q", state.Status, state.Message)
	}
	reloaded, err := f.svc.State(ctx, "")
	if err != nil || !reloaded.Status.DrawClaimed {
		t.Fatalf("claim not persisted: %+v %v", reloaded, err)
	}
	if g, err := f.archive.GameByID(ctx, DefaultGameID); err != nil || g.ResultMethod != "threefold_repetition" {
		t.Fatalf("archive: %+v %v", g, err)
	}
}

func TestUndoAndReset(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Undo(ctx, ""); !errors.Is(err, corechess.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	play(t, f.svc, "", "e2e4", "e7e5")
	undo, err := f.svc.Undo(ctx, "")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undo.Undone.SAN != "e5" || undo.State.MoveCount() != 1 {
		t.Fatalf("unexpected undo %+v", undo)
	}

	custom := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	state, err := f.svc.Reset(ctx, "", custom)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if state.Position.FEN() != custom || state.MoveCount() != 0 {
		t.Fatalf("reset state %s %d", state.Position.FEN(), state.MoveCount())
	}
	state, err = f.svc.Reset(ctx, "", "")
	if err != nil || state.Position.FEN() != corechess.StartingFEN {
		t.Fatalf("reset to start: %v", err)
	}

	want := []string{EventMove, EventMove, EventUndo, EventReset, EventReset}
	if got := f.events.types(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestResetKeepsEarlierArchivedGames(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()

	first := play(t, f.svc, "", "f2f3", "e7e5", "g2g4", "d8h4")
	if !first.Archived {
		t.Fatalf("fool's mate not archived")
	}
	if _, err := f.svc.Reset(ctx, "", ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	second := play(t, f.svc, "", "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7")
	if !second.Archived || second.State.Status.Outcome != corechess.WhiteWon {
		t.Fatalf("scholar's mate not archived: %+v", second)
	}

	games, err := f.svc.Archive(ctx, 0)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("archived games = %d, want 2", len(games))
	}
	if games[0].GameID == games[1].GameID {
		t.Fatalf("both games archived under %q", games[0].GameID)
	}
	results := map[string]bool{}
	for _, g := range games {
		results[g.Result] = true
	}
	if !results["0-1"] || !results["1-0"] {
		t.Fatalf("results = %v, want both 0-1 and 1-0", results)
	}
	if g, err := f.archive.GameByID(ctx, DefaultGameID); err != nil || g.Result != "0-1" {
		t.Fatalf("first game should keep the board id: %+v %v", g, err)
	}
}

func TestHistory(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	play(t, f.svc, "", "e2e4", "d7d5", "e4d5")

	plain, err := f.svc.History(ctx, "", false)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(plain.Entries) != 3 || plain.Entries[2].SAN != "exd5" || plain.Entries[2].FEN != "" {
		t.Fatalf("unexpected plain history %+v", plain.Entries)
	}
	verbose, _ := f.svc.History(ctx, "", true)
	last := verbose.Entries[2]
	if last.Captured != corechess.Pawn || last.Piece != corechess.Pawn || last.FEN == "" {
		t.Fatalf("unexpected verbose entry %+v", last)
	}
	state, _ := f.svc.State(ctx, "")
	if len(state.Captured.ByWhite) != 1 {
		t.Fatalf("captured = %+v", state.Captured)
	}
}

func TestBoardPNG(t *testing.T) {
	f := memoryFixture(t)
	play(t, f.svc, "", "e2e4")
	png, err := f.svc.BoardPNG(context.Background(), "", true)
	if err != nil {
		t.Fatalf("board png: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("not a png")
	}

	bare, _ := NewService(store.NewMemoryStore(), nil, nil, nil, Config{}, nil)
	if _, err := bare.BoardPNG(context.Background(), "", false); !errors.Is(err, ErrRendererUnavailable) {
		t.Fatalf("expected ErrRendererUnavailable, got %v", err)
	}
	if games, err := bare.Archive(context.Background(), 5); err != nil || len(games) != 0 {
		t.Fatalf("archive without backend: %v %v", games, err)
	}
}

func TestListGames(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	a, _ := f.svc.NewGame(ctx, "")
	b, _ := f.svc.NewGame(ctx, "")
	play(t, f.svc, a.ID, "d2d4")

	games, err := f.svc.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 2 || games[0].ID != a.ID || games[1].ID != b.ID {
		t.Fatalf("unexpected listing order")
	}
}

func TestServiceWithRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	rs, err := store.NewRedisStore(ctx, "redis://"+mr.Addr()+"/0", time.Hour)
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}
	defer rs.Close()

	f := newFixture(t, rs, Config{AutoDraws: true})
	game, err := f.svc.NewGame(ctx, "")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	play(t, f.svc, game.ID, "e2e4", "c7c5", "g1f3")

	state, err := f.svc.State(ctx, game.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if strings.Join(state.MovesSAN, " ") != "e4 c5 Nf3" {
		t.Fatalf("moves = %v", state.MovesSAN)
	}
	if state.Message != "Black to move." {
		t.Fatalf("message = %q", state.Message)
	}
}
