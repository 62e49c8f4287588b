package chessdto

// Error codes carried by DomainError.
const (
	CodeIllegalMove            = "illegal_move"
	CodeInvalidSquare          = "invalid_square"
	CodeInvalidPromotionChoice = "invalid_promotion_choice"
	CodeInvalidFEN             = "invalid_fen"
	CodeDrawNotClaimable       = "draw_not_claimable"
	CodeNothingToUndo          = "nothing_to_undo"
	CodeGameNotFound           = "game_not_found"
	CodeConcurrentUpdate       = "concurrent_update"
	CodeBadRequest             = "bad_request"
	CodeNotFound               = "not_found"
	CodeMethodNotAllowed       = "method_not_allowed"
	CodeUnavailable            = "unavailable"
	CodeInternal               = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}
