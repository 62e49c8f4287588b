package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/apiclient"
	"github.com/park285/cheese-chess/internal/stream"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const usage = `usage: chessctl [flags] <command> [args]

commands:
  new [fen]                  start a game
  show ID                    print the board
  moves ID [from]            list legal moves
  move ID from to [promo]    play a move
  draw ID [reason]           claim threefold_repetition or fifty_move_rule
  undo ID                    take back the last move
  reset ID [fen]             restart the game
  history ID [-v]            list the moves played
  games [limit]              list active games
  archive [limit]            list finished games
  pgn GAME_ID                print an archived game as PGN
  board ID FILE              save the board as PNG
  watch ID                   follow a game live

flags:
`

type cli struct {
	client    *apiclient.Client
	formatter *chesspresenter.Formatter
	presenter *chesspresenter.Presenter
	streamURL string
	pngPath   string
	flip      bool
}

func main() {
	fs := flag.NewFlagSet("chessctl", flag.ExitOnError)
	addr := fs.String("addr", envDefault("CHESS_API_URL", "http://localhost:5000"), "chess API base URL")
	streamURL := fs.String("stream", envDefault("CHESS_STREAM_URL", "ws://localhost:5001"), "event stream base URL")
	unicode := fs.Bool("unicode", false, "draw pieces as chess glyphs")
	flip := fs.Bool("flip", false, "draw the board from Black's side")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	fopts := []chesspresenter.FormatterOption{}
	if *unicode {
		fopts = append(fopts, chesspresenter.WithUnicode())
	}
	if *flip {
		fopts = append(fopts, chesspresenter.WithFlip())
	}
	c := &cli{
		client:    apiclient.NewClient(*addr, apiclient.WithTimeout(*timeout)),
		formatter: chesspresenter.NewFormatter(fopts...),
		streamURL: *streamURL,
		flip:      *flip,
	}
	c.presenter = chesspresenter.NewPresenter(
		func(message string) error {
			_, err := fmt.Fprintln(os.Stdout, message)
			return err
		},
		func(png []byte) error {
			if c.pngPath == "" {
				return errors.New("no output file")
			}
			return os.WriteFile(c.pngPath, png, 0o644)
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := c.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, c.formatter.Error(err))
		os.Exit(1)
	}
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch strings.ToLower(cmd) {
	case "new":
		state, err := c.client.NewGame(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return c.say("Game " + state.ID + "\n" + c.formatter.Board(state))
	case "show":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		state, err := c.client.State(ctx, id)
		if err != nil {
			return err
		}
		return c.say(c.formatter.Board(state))
	case "moves":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		resp, err := c.client.LegalMoves(ctx, id, optional(args, 1))
		if err != nil {
			return err
		}
		return c.say(c.formatter.LegalMoves(resp))
	case "move":
		if len(args) < 3 {
			return errors.New("usage: move ID from to [promo]")
		}
		resp, err := c.client.Move(ctx, args[0], args[1], args[2], optional(args, 3))
		if err != nil {
			return err
		}
		return c.say(c.formatter.Move(resp))
	case "draw":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		state, err := c.client.ClaimDraw(ctx, id, optional(args, 1))
		if err != nil {
			return err
		}
		return c.say(c.formatter.Status(state))
	case "undo":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		resp, err := c.client.Undo(ctx, id)
		if err != nil {
			return err
		}
		return c.say(c.formatter.Undo(resp))
	case "reset":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		state, err := c.client.Reset(ctx, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return c.say(c.formatter.Board(state))
	case "history":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		verbose := optional(args, 1) == "-v"
		resp, err := c.client.History(ctx, id, verbose)
		if err != nil {
			return err
		}
		return c.say(c.formatter.History(resp))
	case "games":
		resp, err := c.client.Games(ctx, atoiOrZero(optional(args, 0)))
		if err != nil {
			return err
		}
		return c.say(c.formatter.Games(resp))
	case "archive":
		resp, err := c.client.Archive(ctx, atoiOrZero(optional(args, 0)))
		if err != nil {
			return err
		}
		return c.say(c.formatter.Archive(resp))
	case "pgn":
		id, err := arg(args, 0, "GAME_ID")
		if err != nil {
			return err
		}
		pgn, err := c.client.PGN(ctx, id)
		if err != nil {
			return err
		}
		return c.say(pgn)
	case "board":
		if len(args) < 2 {
			return errors.New("usage: board ID FILE")
		}
		png, err := c.client.BoardPNG(ctx, args[0], c.flip)
		if err != nil {
			return err
		}
		c.pngPath = args[1]
		return c.presenter.Board("Board written to "+args[1], png)
	case "watch":
		id, err := arg(args, 0, "ID")
		if err != nil {
			return err
		}
		return c.watch(ctx, id)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) watch(ctx context.Context, id string) error {
	w := stream.NewWatcher(c.streamURL, id, 5, time.Second,
		stream.WithStateCallback(func(s stream.WatchState) {
			fmt.Fprintf(os.Stderr, "stream %s\n", s)
		}),
	)
	err := w.Watch(ctx, func(ev chessdto.GameEvent) error {
		if ev.Type == chessdto.EventSnapshot && ev.State != nil {
			return c.say(c.formatter.Board(ev.State))
		}
		return c.say(c.formatter.Event(ev))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *cli) say(message string) error {
	return c.presenter.Board(message, nil)
}

func arg(args []string, i int, name string) (string, error) {
	if v := optional(args, i); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("missing %s", name)
}

func optional(args []string, i int) string {
	if i < len(args) {
		return strings.TrimSpace(args[i])
	}
	return ""
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
