package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/cheese-chess/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS chess_games (
	id            BIGSERIAL PRIMARY KEY,
	game_id       TEXT NOT NULL UNIQUE,
	start_fen     TEXT NOT NULL,
	final_fen     TEXT NOT NULL,
	result        TEXT NOT NULL,
	result_method TEXT NOT NULL,
	moves_uci     JSONB NOT NULL,
	moves_san     JSONB NOT NULL,
	pgn           TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS chess_games_ended_at_idx ON chess_games (ended_at DESC);`

type Postgres struct {
	db *sql.DB
}

// Open connects to databaseURL, pings it and creates the table if needed.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := NewPostgres(db)
	if err := p.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create chess_games: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// SaveResult upserts the game keyed by GameID and returns its row id. The
// PGN is built from the record when empty.
func (p *Postgres) SaveResult(ctx context.Context, g *domain.ChessGame) (int64, error) {
	if g == nil {
		return 0, errors.New("nil chess game")
	}
	if g.PGN == "" {
		g.PGN = BuildPGN(g)
	}
	movesUCI, err := json.Marshal(nonNil(g.MovesUCI))
	if err != nil {
		return 0, fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(nonNil(g.MovesSAN))
	if err != nil {
		return 0, fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO chess_games (
			game_id, start_fen, final_fen, result, result_method,
			moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO UPDATE SET
			final_fen=EXCLUDED.final_fen,
			result=EXCLUDED.result,
			result_method=EXCLUDED.result_method,
			moves_uci=EXCLUDED.moves_uci,
			moves_san=EXCLUDED.moves_san,
			pgn=EXCLUDED.pgn,
			ended_at=EXCLUDED.ended_at,
			duration_ms=EXCLUDED.duration_ms
		RETURNING id`

	var id int64
	err = p.db.QueryRowContext(ctx, query,
		g.GameID, g.StartFEN, g.FinalFEN, g.Result, g.ResultMethod,
		string(movesUCI), string(movesSAN), g.PGN,
		g.StartedAt, g.EndedAt, g.Duration.Milliseconds(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert chess game: %w", err)
	}
	g.ID = id
	return id, nil
}

const selectColumns = `
	id, game_id, start_fen, final_fen, result, result_method,
	moves_uci, moves_san, pgn, started_at, ended_at, duration_ms`

func (p *Postgres) RecentGames(ctx context.Context, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT`+selectColumns+` FROM chess_games ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select chess games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.ChessGame, 0, limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chess games: %w", err)
	}
	return games, nil
}

func (p *Postgres) GameByID(ctx context.Context, gameID string) (*domain.ChessGame, error) {
	row := p.db.QueryRowContext(ctx, `SELECT`+selectColumns+` FROM chess_games WHERE game_id = $1`, gameID)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	return g, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*domain.ChessGame, error) {
	var (
		g          domain.ChessGame
		movesUCI   []byte
		movesSAN   []byte
		durationMS int64
	)
	if err := s.Scan(
		&g.ID, &g.GameID, &g.StartFEN, &g.FinalFEN, &g.Result, &g.ResultMethod,
		&movesUCI, &movesSAN, &g.PGN, &g.StartedAt, &g.EndedAt, &durationMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan chess game: %w", err)
	}
	if err := json.Unmarshal(movesUCI, &g.MovesUCI); err != nil {
		return nil, fmt.Errorf("decode moves_uci: %w", err)
	}
	if err := json.Unmarshal(movesSAN, &g.MovesSAN); err != nil {
		return nil, fmt.Errorf("decode moves_san: %w", err)
	}
	g.Duration = time.Duration(durationMS) * time.Millisecond
	return &g, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
