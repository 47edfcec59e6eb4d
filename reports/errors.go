package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned for non-2xx responses. Body is the raw response
// body, shown verbatim to users on submit failures.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reports backend returned status %d: %s", e.Code, e.Body)
}

// ResponseBody extracts the raw backend body from err, if err carries one.
func ResponseBody(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Body, true
	}
	return "", false
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}
