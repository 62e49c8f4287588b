package chessbuilder

import (
	"context"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/repository"
	"github.com/park285/cheese-chess/internal/store"
)

func TestNewInMemory(t *testing.T) {
	d, err := New(&config.AppConfig{StreamAddr: ":0", HistoryLimit: 5, AutoDraws: true}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if _, ok := d.Store.(*store.MemoryStore); !ok {
		t.Fatalf("store = %T, want memory", d.Store)
	}
	if _, ok := d.Archive.(*repository.Memory); !ok {
		t.Fatalf("archive = %T, want memory", d.Archive)
	}
	if d.HTTP == nil || d.Stream == nil {
		t.Fatalf("servers not built: %+v", d)
	}

	ctx := context.Background()
	events, cancel := d.Hub.Subscribe("default")
	defer cancel()
	if _, err := d.Service.Move(ctx, "default", "e2", "e4", ""); err != nil {
		t.Fatalf("move: %v", err)
	}
	ev := <-events
	if ev.Type != "move" || ev.SAN != "e4" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	d, err := New(&config.AppConfig{RedisURL: "redis://" + mr.Addr() + "/0", GameTTLSec: 60}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	if _, ok := d.Store.(*store.RedisStore); !ok {
		t.Fatalf("store = %T, want redis", d.Store)
	}
	if d.Stream != nil {
		t.Fatalf("stream server should be disabled without STREAM_ADDR")
	}
	state, err := d.Service.NewGame(context.Background(), "")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("game %s was not written to redis", state.ID)
	}
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	if _, err := New(&config.AppConfig{RedisURL: "redis://127.0.0.1:1/0"}, nil); err == nil {
		t.Fatalf("expected an error for an unreachable redis")
	}
}

func TestOriginHosts(t *testing.T) {
	got := originHosts([]string{"https://board.example/", "localhost:3000", " ", "*"})
	want := []string{"board.example", "localhost:3000", "*"}
	if !slices.Equal(got, want) {
		t.Fatalf("originHosts = %v, want %v", got, want)
	}
}
