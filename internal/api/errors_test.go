package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func resp(status int) *http.Response {
	return &http.Response{StatusCode: status}
}

// TestClassify_StatusCodes covers every backend error shape.
func TestClassify_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantDetail string
	}{
		{"gateway timeout", 504, `{"detail":"Generation timeout"}`, KindTimeout, "Generation timeout"},
		{"request timeout", 408, ``, KindTimeout, ""},
		{"service unavailable", 503, `{"detail":"Llama 3 service not available"}`, KindUnavailable, "Llama 3 service not available"},
		{"unauthorized", 401, `{"detail":"Invalid token"}`, KindUnauthorized, "Invalid token"},
		{"forbidden", 403, `{"detail":"Forbidden"}`, KindUnauthorized, "Forbidden"},
		{"server error with detail", 500, `{"detail":"Error generating code: boom"}`, KindServer, "Error generating code: boom"},
		{"validation detail list", 422, `{"detail":[{"loc":["body"],"msg":"field required"},{"msg":"too long"}]}`, KindServer, "field required; too long"},
		{"message field", 400, `{"message":"bad input"}`, KindServer, "bad input"},
		{"html body", 502, `<html>Bad Gateway</html>`, KindServer, ""},
		{"empty body", 404, ``, KindServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("GET /x", resp(tt.status), []byte(tt.body), nil)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantDetail, err.Detail)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestClassify_Success(t *testing.T) {
	for _, status := range []int{200, 201, 204} {
		assert.Nil(t, Classify("GET /x", resp(status), nil, nil), "status %d", status)
	}
}

func TestClassify_TransportErrors(t *testing.T) {
	t.Run("deadline exceeded is timeout", func(t *testing.T) {
		err := Classify("POST /gen", nil, nil, fmt.Errorf("do: %w", context.DeadlineExceeded))
		assert.Equal(t, KindTimeout, err.Kind)
		assert.Zero(t, err.StatusCode)
	})

	t.Run("net timeout is timeout", func(t *testing.T) {
		err := Classify("POST /gen", nil, nil, timeoutErr{})
		assert.Equal(t, KindTimeout, err.Kind)
	})

	t.Run("connection refused is network", func(t *testing.T) {
		err := Classify("GET /api/health", nil, nil, errors.New("dial tcp: connection refused"))
		assert.Equal(t, KindNetwork, err.Kind)
	})

	t.Run("missing response is network", func(t *testing.T) {
		err := Classify("GET /api/health", nil, nil, nil)
		assert.Equal(t, KindNetwork, err.Kind)
	})
}

// ----------------------------------------------------------------------------
// Error helpers
// ----------------------------------------------------------------------------

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindServer, Op: "GET /x", StatusCode: 500, Detail: "boom"}
	assert.Equal(t, "GET /x: server-error (HTTP 500): boom", err.Error())

	err = &Error{Kind: KindNetwork, Op: "GET /x", Err: errors.New("refused")}
	assert.Equal(t, "GET /x: network-error: refused", err.Error())
}

func TestKindOfAndDetailOf(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", &Error{Kind: KindUnavailable, Detail: "down"})
	assert.Equal(t, KindUnavailable, KindOf(wrapped))
	assert.Equal(t, "down", DetailOf(wrapped))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Empty(t, DetailOf(errors.New("plain")))
}

func TestError_UnwrapsCause(t *testing.T) {
	err := &Error{Kind: KindTimeout, Err: context.DeadlineExceeded}
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
