package httpapi

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/msgcat"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	defaultMaxBody = 64 << 10
	serverName     = "cheese-chess"
)

// Server exposes the game service over HTTP.
type Server struct {
	svc     *svc.Service
	catalog *msgcat.Catalog
	logger  *zap.Logger

	allowAnyOrigin bool
	origins        map[string]struct{}

	srv *fasthttp.Server
}

type Option func(*Server)

// WithAllowedOrigins enables CORS for the given origins; "*" allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		for _, o := range origins {
			o = strings.TrimRight(strings.TrimSpace(o), "/")
			switch o {
			case "":
			case "*":
				s.allowAnyOrigin = true
			default:
				s.origins[strings.ToLower(o)] = struct{}{}
			}
		}
	}
}

func NewServer(service *svc.Service, catalog *msgcat.Catalog, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:     service,
		catalog: catalog,
		logger:  logger,
		origins: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               serverName,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: defaultMaxBody,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http api listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Handler wraps routing with recovery, CORS and access logging.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("http handler panic",
					zap.Any("panic", rec),
					zap.ByteString("path", ctx.Path()),
				)
				s.writeError(ctx, fmt.Errorf("panic: %v", rec))
			}
			s.logger.Debug("http request",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
			)
		}()

		s.applyCORS(ctx)
		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		s.route(ctx)
	}
}

func (s *Server) applyCORS(ctx *fasthttp.RequestCtx) {
	origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
	if origin == "" {
		return
	}
	_, ok := s.origins[strings.ToLower(strings.TrimRight(origin, "/"))]
	if !ok && !s.allowAnyOrigin {
		return
	}
	h := &ctx.Response.Header
	h.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
	h.Set(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
	h.Set(fasthttp.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
	h.Set(fasthttp.HeaderAccessControlAllowHeaders, "Content-Type")
}
