package api

import "fmt"

// RequestError describes a failed backend request.
type RequestError struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
}

// Warning is a non-fatal message attached to a backend response.
type Warning struct {
	Message string `json:"message"`
}

// Result is the uniform outcome of every backend operation. It is
// always emitted, success or failure, so scripts can inspect it.
// Tokens never appear in a Result.
type Result struct {
	StatusCode int           `json:"status_code"`
	Error      *RequestError `json:"error,omitempty"`
	Warnings   []Warning     `json:"warnings"`
	Text       string        `json:"text"`
}

// OK reports whether the backend accepted the request.
func (r Result) OK() bool {
	return r.Error == nil && r.StatusCode < 400
}

func resultFromResponse(status int, body string) Result {
	if status >= 400 {
		return Result{
			StatusCode: status,
			Error: &RequestError{
				Code:        fmt.Sprintf("HTTP Error %d", status),
				Description: body,
				Params:      map[string]string{},
			},
			Warnings: []Warning{},
			Text:     body,
		}
	}
	return Result{StatusCode: status, Warnings: []Warning{}, Text: body}
}
