package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// APIError is a non-2xx reply. Domain carries the decoded error body; when
// the body was not an ErrorResponse its Code is empty.
type APIError struct {
	Status int
	Domain chessdto.DomainError
	Body   string
}

func (e *APIError) Error() string {
	if e.Domain.Code != "" {
		return fmt.Sprintf("chess api: status=%d code=%s: %s", e.Status, e.Domain.Code, e.Domain.Error())
	}
	return fmt.Sprintf("chess api: status=%d body=%s", e.Status, e.Body)
}

// Unwrap exposes the DomainError to errors.As.
func (e *APIError) Unwrap() error { return e.Domain }

// Code returns the DomainError code of err, or "" when err is not an
// APIError.
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Domain.Code
	}
	return ""
}

func decodeError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: truncate(string(body), 512)}
	var resp chessdto.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		e.Domain = resp.Error
	}
	return e
}
