package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies every failure surfaced by the client.
type Kind string

const (
	KindValidation   Kind = "validation-error"
	KindTimeout      Kind = "timeout"
	KindUnavailable  Kind = "service-unavailable"
	KindUnauthorized Kind = "unauthorized"
	KindServer       Kind = "server-error"
	KindNetwork      Kind = "network-error"
)

// Error is the only error type returned by Client methods.
type Error struct {
	Kind       Kind
	Op         string // "METHOD /path"
	StatusCode int    // 0 when no response was received
	Detail     string // human-readable message from the response body, if any
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// DetailOf returns the extracted detail message of err, if any.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// Classify maps the outcome of one round trip onto an *Error. resp is nil
// when no response was received. It returns nil for a 2xx response with no
// transport error.
func Classify(op string, resp *http.Response, body []byte, err error) *Error {
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return &Error{Kind: kind, Op: op, StatusCode: status, Err: err}
	}
	if resp == nil {
		return &Error{Kind: KindNetwork, Op: op, Err: errors.New("no response")}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	e := &Error{Op: op, StatusCode: resp.StatusCode, Detail: extractDetail(body)}
	switch resp.StatusCode {
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		e.Kind = KindTimeout
	case http.StatusServiceUnavailable:
		e.Kind = KindUnavailable
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindUnauthorized
	default:
		e.Kind = KindServer
	}
	return e
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// extractDetail understands the error bodies the backend produces:
// {"detail": "..."}, {"detail": [{"msg": "..."}]} and {"message": "..."}.
func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(payload.Message)
}
