package chessbuilder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/httpapi"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/render"
	"github.com/park285/cheese-chess/internal/repository"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/internal/stream"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
)

const (
	connectTimeout = 5 * time.Second
	hubBuffer      = 16
)

// Deps holds everything a running server needs. Close releases the
// backends in reverse order of construction.
type Deps struct {
	Service *svcchess.Service
	Store   store.Store
	Archive repository.Archive
	Catalog *msgcat.Catalog
	Hub     *stream.Hub

	HTTP   *httpapi.Server
	Stream *stream.Server
}

// New wires the game service from cfg. Without REDIS_URL games are kept in
// memory; without DATABASE_URL finished games go to an in-memory archive.
func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// Game store (Redis optional)
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL, time.Duration(cfg.GameTTLSec)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		d.Store = rs
		logger.Info("game store: redis", zap.Int("ttl_sec", cfg.GameTTLSec))
	} else {
		d.Store = store.NewMemoryStore()
		logger.Warn("REDIS_URL not set, games are kept in memory")
	}

	// Archive (Postgres optional)
	if cfg.DatabaseURL != "" {
		pg, err := repository.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("init postgres archive: %w", err)
		}
		d.Archive = pg
		logger.Info("game archive: postgres")
	} else {
		d.Archive = repository.NewMemory()
		logger.Warn("DATABASE_URL not set, finished games are archived in memory")
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("load messages: %w", err)
	}
	d.Catalog = cat

	d.Hub = stream.NewHub(hubBuffer, logger)
	svcCfg := svcchess.Config{
		AutoDraws:    cfg.AutoDraws,
		HistoryLimit: cfg.HistoryLimit,
	}
	service, err := svcchess.NewService(d.Store, d.Archive, cat, render.NewRenderer(), svcCfg, logger,
		svcchess.WithPublisher(d.Hub),
	)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Service = service

	d.HTTP = httpapi.NewServer(service, cat, logger, httpapi.WithAllowedOrigins(cfg.AllowedOrigins))
	if cfg.StreamAddr != "" {
		d.Stream = stream.NewServer(d.Hub, logger,
			stream.WithOrigins(originHosts(cfg.AllowedOrigins)),
			stream.WithSnapshot(func(ctx context.Context, gameID string) (*chessdto.SessionState, error) {
				state, err := service.State(ctx, gameID)
				if err != nil {
					return nil, err
				}
				return chesspresenter.ToDTOState(state), nil
			}),
		)
	}
	return d, nil
}

// Close shuts the hub and closes the store and archive.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Hub != nil {
		d.Hub.Close()
	}
	if d.Archive != nil {
		if err := d.Archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// originHosts turns CORS origins such as "https://board.example" into the
// host patterns the websocket handshake matches against.
func originHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		out = append(out, strings.TrimRight(o, "/"))
	}
	return out
}
