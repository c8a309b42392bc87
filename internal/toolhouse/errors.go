// ABOUTME: RequestError reports failed calls to a Toolhouse endpoint
// ABOUTME: Covers non-2xx statuses and transport failures alike

package toolhouse

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RequestError is returned when a request fails at the transport level or the
// endpoint answers with a non-success status.
type RequestError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Status is the status text, e.g. "Internal Server Error".
	Status string
	// Err is the underlying transport error, if any.
	Err error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("API error: %d %s: %v", e.StatusCode, e.Status, e.Err)
		}
		return fmt.Sprintf("API error: %v", e.Err)
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// statusError builds a RequestError from a completed response.
func statusError(resp *http.Response) *RequestError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &RequestError{StatusCode: resp.StatusCode, Status: text}
}
