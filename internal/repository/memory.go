package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/cheese-chess/internal/domain"
)

// Memory is the archive used when no database is configured.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	byGame map[string]*domain.ChessGame
}

func NewMemory() *Memory {
	return &Memory{byGame: make(map[string]*domain.ChessGame)}
}

func (m *Memory) SaveResult(_ context.Context, g *domain.ChessGame) (int64, error) {
	if g.PGN == "" {
		g.PGN = BuildPGN(g)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.byGame[g.GameID]; ok {
		g.ID = prev.ID
	} else {
		m.nextID++
		g.ID = m.nextID
	}
	m.byGame[g.GameID] = copyGame(g)
	return g.ID, nil
}

func (m *Memory) RecentGames(_ context.Context, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	m.mu.RLock()
	games := make([]*domain.ChessGame, 0, len(m.byGame))
	for _, g := range m.byGame {
		games = append(games, copyGame(g))
	}
	m.mu.RUnlock()
	sort.Slice(games, func(i, j int) bool {
		if games[i].EndedAt.Equal(games[j].EndedAt) {
			return games[i].ID > games[j].ID
		}
		return games[i].EndedAt.After(games[j].EndedAt)
	})
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (m *Memory) GameByID(_ context.Context, gameID string) (*domain.ChessGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.byGame[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return copyGame(g), nil
}

func (m *Memory) Close() error { return nil }

func copyGame(g *domain.ChessGame) *domain.ChessGame {
	c := *g
	c.MovesUCI = append([]string(nil), g.MovesUCI...)
	c.MovesSAN = append([]string(nil), g.MovesSAN...)
	return &c
}
