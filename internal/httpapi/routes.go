package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var (
	errRouteNotFound    = errors.New("route not found")
	errMethodNotAllowed = errors.New("method not allowed")
	errBadRequest       = errors.New("bad request")
)

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	parts := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
	method := string(ctx.Method())

	switch {
	case len(parts) == 1 && parts[0] == "healthz":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"}) })

	// Single-board routes used by the legacy web client.
	case len(parts) == 1 && parts[0] == "board":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.getState(ctx, svc.DefaultGameID) })
	case len(parts) == 1 && parts[0] == "move":
		s.only(ctx, method, fasthttp.MethodPost, func() { s.postMove(ctx, svc.DefaultGameID) })
	case len(parts) == 1 && parts[0] == "reset":
		s.only(ctx, method, fasthttp.MethodPost, func() { s.postReset(ctx, svc.DefaultGameID) })

	case len(parts) == 1 && parts[0] == "games":
		switch method {
		case fasthttp.MethodGet:
			s.listGames(ctx)
		case fasthttp.MethodPost:
			s.postGame(ctx)
		default:
			s.writeError(ctx, errMethodNotAllowed)
		}
	case len(parts) == 2 && parts[0] == "games":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.getState(ctx, parts[1]) })
	case len(parts) == 3 && parts[0] == "games":
		s.routeGame(ctx, method, parts[1], parts[2])

	case len(parts) == 1 && parts[0] == "archive":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.getArchive(ctx) })
	case len(parts) == 2 && parts[0] == "archive":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.getArchivedGame(ctx, parts[1]) })

	default:
		s.writeError(ctx, errRouteNotFound)
	}
}

func (s *Server) routeGame(ctx *fasthttp.RequestCtx, method, id, action string) {
	switch action {
	case "moves":
		switch method {
		case fasthttp.MethodGet:
			s.getMoves(ctx, id)
		case fasthttp.MethodPost:
			s.postMove(ctx, id)
		default:
			s.writeError(ctx, errMethodNotAllowed)
		}
	case "reset":
		s.only(ctx, method, fasthttp.MethodPost, func() { s.postReset(ctx, id) })
	case "draw":
		s.only(ctx, method, fasthttp.MethodPost, func() { s.postDraw(ctx, id) })
	case "undo":
		s.only(ctx, method, fasthttp.MethodPost, func() { s.postUndo(ctx, id) })
	case "history":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.getHistory(ctx, id) })
	case "board.png":
		s.only(ctx, method, fasthttp.MethodGet, func() { s.getBoardPNG(ctx, id) })
	default:
		s.writeError(ctx, errRouteNotFound)
	}
}

func (s *Server) only(ctx *fasthttp.RequestCtx, method, want string, fn func()) {
	if method != want && !(want == fasthttp.MethodGet && method == fasthttp.MethodHead) {
		s.writeError(ctx, errMethodNotAllowed)
		return
	}
	fn()
}

func (s *Server) getState(ctx *fasthttp.RequestCtx, id string) {
	state, err := s.svc.State(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) postGame(ctx *fasthttp.RequestCtx) {
	var req chessdto.NewGameRequest
	if !s.decode(ctx, &req) {
		return
	}
	state, err := s.svc.NewGame(ctx, req.FEN)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.Response.Header.Set(fasthttp.HeaderLocation, "/games/"+state.ID)
	s.writeJSON(ctx, fasthttp.StatusCreated, chesspresenter.ToDTOState(state))
}

func (s *Server) listGames(ctx *fasthttp.RequestCtx) {
	states, err := s.svc.List(ctx, ctx.QueryArgs().GetUintOrZero("limit"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOGameList(states))
}

func (s *Server) getMoves(ctx *fasthttp.RequestCtx, id string) {
	from := string(ctx.QueryArgs().Peek("from"))
	moves, err := s.svc.LegalMoves(ctx, id, from)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOLegalMoves(id, from, moves))
}

func (s *Server) postMove(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.MoveRequest
	if !s.decode(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.StartPos) == "" || strings.TrimSpace(req.EndPos) == "" {
		s.writeError(ctx, fmt.Errorf("%w: start_pos and end_pos are required", errBadRequest))
		return
	}
	res, err := s.svc.Move(ctx, id, req.StartPos, req.EndPos, req.Promotion)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOMoveResponse(res))
}

func (s *Server) postReset(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.ResetRequest
	if !s.decode(ctx, &req) {
		return
	}
	state, err := s.svc.Reset(ctx, id, req.FEN)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) postDraw(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.DrawRequest
	if !s.decode(ctx, &req) {
		return
	}
	state, err := s.svc.ClaimDraw(ctx, id, req.Reason)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) postUndo(ctx *fasthttp.RequestCtx, id string) {
	res, err := s.svc.Undo(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOUndo(res))
}

func (s *Server) getHistory(ctx *fasthttp.RequestCtx, id string) {
	h, err := s.svc.History(ctx, id, queryBool(ctx, "verbose"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOHistory(h))
}

func (s *Server) getBoardPNG(ctx *fasthttp.RequestCtx, id string) {
	png, err := s.svc.BoardPNG(ctx, id, queryBool(ctx, "flip"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, "no-store")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(png)
}

func (s *Server) getArchive(ctx *fasthttp.RequestCtx) {
	games, err := s.svc.Archive(ctx, ctx.QueryArgs().GetUintOrZero("limit"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOGames(games))
}

// getArchivedGame answers with JSON, or with the PGN text for ?format=pgn.
func (s *Server) getArchivedGame(ctx *fasthttp.RequestCtx, id string) {
	game, err := s.svc.ArchivedGame(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	if string(ctx.QueryArgs().Peek("format")) == "pgn" {
		ctx.SetContentType("application/x-chess-pgn")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString(game.PGN)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOGame(game))
}

// decode reads an optional JSON body into v. It writes a 400 and returns
// false when the body is malformed.
func (s *Server) decode(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(strings.TrimSpace(string(body))) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeError(ctx, fmt.Errorf("%w: invalid JSON body", errBadRequest))
		return false
	}
	return true
}

func queryBool(ctx *fasthttp.RequestCtx, key string) bool {
	switch strings.ToLower(string(ctx.QueryArgs().Peek(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error) {
	var de chessdto.DomainError
	switch {
	case errors.Is(err, errRouteNotFound):
		de = s.domainError(chessdto.CodeNotFound, "")
	case errors.Is(err, errMethodNotAllowed):
		de = s.domainError(chessdto.CodeMethodNotAllowed, "")
	case errors.Is(err, errBadRequest):
		de = s.domainError(chessdto.CodeBadRequest, strings.TrimPrefix(err.Error(), errBadRequest.Error()+": "))
	default:
		de = chesspresenter.ToDomainError(err, s.catalog)
	}
	status := statusFor(de.Code)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("http request failed",
			zap.ByteString("path", ctx.Path()),
			zap.String("code", de.Code),
			zap.Error(err),
		)
	}
	s.writeJSON(ctx, status, chessdto.ErrorResponse{Error: de})
}

func (s *Server) domainError(code, detail string) chessdto.DomainError {
	fallback := strings.ReplaceAll(code, "_", " ")
	return chessdto.DomainError{
		Code:    code,
		Message: s.catalog.Text("error."+code, map[string]any{"Detail": detail}, fallback),
	}
}

func statusFor(code string) int {
	switch code {
	case chessdto.CodeInvalidSquare, chessdto.CodeInvalidPromotionChoice, chessdto.CodeInvalidFEN, chessdto.CodeBadRequest:
		return fasthttp.StatusBadRequest
	case chessdto.CodeGameNotFound, chessdto.CodeNotFound:
		return fasthttp.StatusNotFound
	case chessdto.CodeMethodNotAllowed:
		return fasthttp.StatusMethodNotAllowed
	case chessdto.CodeDrawNotClaimable, chessdto.CodeNothingToUndo, chessdto.CodeConcurrentUpdate:
		return fasthttp.StatusConflict
	case chessdto.CodeIllegalMove:
		return fasthttp.StatusUnprocessableEntity
	case chessdto.CodeUnavailable:
		return fasthttp.StatusServiceUnavailable
	default:
		return fasthttp.StatusInternalServerError
	}
}
