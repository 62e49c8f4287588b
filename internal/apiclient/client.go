package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-chess/pkg/chessdto"
	"github.com/valyala/fasthttp"
)

// Client talks to the chess HTTP API.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the connection dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) NewGame(ctx context.Context, fen string) (*chessdto.SessionState, error) {
	var out chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games", chessdto.NewGameRequest{FEN: fen}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) State(ctx context.Context, id string) (*chessdto.SessionState, error) {
	var out chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id, ""), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Games(ctx context.Context, limit int) (*chessdto.GameListResponse, error) {
	var out chessdto.GameListResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/games"+limitQuery(limit), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// LegalMoves lists legal moves, only those leaving from when it is set.
func (c *Client) LegalMoves(ctx context.Context, id, from string) (*chessdto.LegalMovesResponse, error) {
	path := gamePath(id, "moves")
	if from != "" {
		path += "?from=" + url.QueryEscape(from)
	}
	var out chessdto.LegalMovesResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Move(ctx context.Context, id, from, to, promotion string) (*chessdto.MoveResponse, error) {
	req := chessdto.MoveRequest{StartPos: from, EndPos: to, Promotion: promotion}
	var out chessdto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "moves"), req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reset(ctx context.Context, id, fen string) (*chessdto.SessionState, error) {
	var out chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "reset"), chessdto.ResetRequest{FEN: fen}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClaimDraw(ctx context.Context, id, reason string) (*chessdto.SessionState, error) {
	var out chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "draw"), chessdto.DrawRequest{Reason: reason}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Undo(ctx context.Context, id string) (*chessdto.UndoResponse, error) {
	var out chessdto.UndoResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "undo"), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, id string, verbose bool) (*chessdto.HistoryResponse, error) {
	path := gamePath(id, "history")
	if verbose {
		path += "?verbose=1"
	}
	var out chessdto.HistoryResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BoardPNG(ctx context.Context, id string, flip bool) ([]byte, error) {
	path := gamePath(id, "board.png")
	if flip {
		path += "?flip=1"
	}
	return c.doRaw(ctx, path)
}

func (c *Client) Archive(ctx context.Context, limit int) (*chessdto.ArchiveResponse, error) {
	var out chessdto.ArchiveResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/archive"+limitQuery(limit), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ArchivedGame(ctx context.Context, gameID string) (*chessdto.ArchivedGame, error) {
	var out chessdto.ArchivedGame
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/archive/"+url.PathEscape(gameID), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PGN(ctx context.Context, gameID string) (string, error) {
	body, err := c.doRaw(ctx, "/archive/"+url.PathEscape(gameID)+"?format=pgn")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	body, err := c.do(ctx, method, path, payload, retry)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, fasthttp.MethodGet, path, nil, true)
}

// do sends one request, retrying transport failures and 5xx replies when
// retry is set. Non-2xx replies are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if payload != nil {
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := decodeError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return nil, apiErr
			}
			lastErr = apiErr
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		return append([]byte(nil), resp.Body()...), nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func gamePath(id, action string) string {
	p := "/games/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func limitQuery(limit int) string {
	if limit <= 0 {
		return ""
	}
	return "?limit=" + strconv.Itoa(limit)
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
