package repository

import (
	"context"
	"errors"

	"github.com/park285/cheese-chess/internal/domain"
)

var ErrGameNotFound = errors.New("archived game not found")

// Archive stores finished games. SaveResult is idempotent per GameID.
type Archive interface {
	SaveResult(ctx context.Context, game *domain.ChessGame) (int64, error)
	RecentGames(ctx context.Context, limit int) ([]*domain.ChessGame, error)
	GameByID(ctx context.Context, gameID string) (*domain.ChessGame, error)
	Close() error
}

const defaultRecentLimit = 10
