package chesspresenter

import (
	"errors"
	"strings"

	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/msgcat"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// ToDomainError classifies err into a coded DomainError with a message from
// cat. Unknown errors become CodeInternal without leaking their text.
func ToDomainError(err error, cat *msgcat.Catalog) chessdto.DomainError {
	var de chessdto.DomainError
	if errors.As(err, &de) {
		return de
	}

	code, detail, retryable := classify(err)
	fallback := strings.ReplaceAll(code, "_", " ")
	if detail != "" {
		fallback += ": " + detail
	}
	return chessdto.DomainError{
		Code:      code,
		Message:   cat.Text("error."+code, map[string]any{"Detail": detail}, fallback),
		Retryable: retryable,
	}
}

func classify(err error) (code, detail string, retryable bool) {
	var illegal *corechess.IllegalMoveError
	switch {
	case errors.As(err, &illegal):
		detail = illegal.From.String() + illegal.To.String() + illegal.Promotion.Letter()
		if illegal.Reason != "" {
			detail += " (" + illegal.Reason + ")"
		}
		return chessdto.CodeIllegalMove, detail, false
	case errors.Is(err, corechess.ErrIllegalMove):
		return chessdto.CodeIllegalMove, detailOf(err, corechess.ErrIllegalMove), false
	case errors.Is(err, corechess.ErrInvalidSquare):
		return chessdto.CodeInvalidSquare, detailOf(err, corechess.ErrInvalidSquare), false
	case errors.Is(err, corechess.ErrInvalidPromotionChoice):
		return chessdto.CodeInvalidPromotionChoice, detailOf(err, corechess.ErrInvalidPromotionChoice), false
	case errors.Is(err, corechess.ErrInvalidFEN):
		return chessdto.CodeInvalidFEN, detailOf(err, corechess.ErrInvalidFEN), false
	case errors.Is(err, corechess.ErrDrawNotClaimable):
		return chessdto.CodeDrawNotClaimable, "", false
	case errors.Is(err, corechess.ErrNothingToUndo):
		return chessdto.CodeNothingToUndo, "", false
	case errors.Is(err, svc.ErrGameNotFound), errors.Is(err, store.ErrNotFound):
		return chessdto.CodeGameNotFound, "", false
	case errors.Is(err, store.ErrConcurrentUpdate):
		return chessdto.CodeConcurrentUpdate, "", true
	case errors.Is(err, svc.ErrRendererUnavailable):
		return chessdto.CodeUnavailable, "board rendering is disabled", false
	case errors.Is(err, svc.ErrUnknownDrawReason):
		return chessdto.CodeBadRequest, detailOf(err, svc.ErrUnknownDrawReason), false
	default:
		return chessdto.CodeInternal, "", false
	}
}

// detailOf strips the sentinel prefix that fmt.Errorf("%w: ...") adds.
func detailOf(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return strings.TrimSpace(msg[i+len(sentinel.Error())+2:])
	}
	return ""
}
