package restyutil

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// the amount of response body kept in a StatusError
const maxErrorBody = 512

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	Method string
	Url    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Url, e.Status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Url, e.Status, e.Body)
}

// CheckStatus turns 4xx and 5xx responses into a *StatusError.
func CheckStatus(res *resty.Response) error {
	if !res.IsError() {
		return nil
	}
	body := res.String()
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &StatusError{
		Method: res.Request.Method,
		Url:    res.Request.URL,
		Status: res.StatusCode(),
		Body:   body,
	}
}
