package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("game not found")
	ErrExists           = errors.New("game already exists")
	ErrConcurrentUpdate = errors.New("game was modified concurrently")
)

// Store keeps game records. Update serialises read-modify-write cycles per
// game: fn sees the latest record and its changes are saved only if no other
// writer got there first. An error from fn aborts without saving.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Update(ctx context.Context, id string, fn func(*Record) error) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}
