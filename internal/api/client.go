// Package api is the typed HTTP client for the testmate backend.
//
// Every endpoint is one method. Each call runs under one of two timeout
// classes, attaches the current session token at send time, and fails only
// with *Error, classified once by Classify.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/CodexForgeBR/testmate/internal/logging"
)

// Default timeout budgets.
const (
	DefaultShortTimeout    = 10 * time.Second
	DefaultExtendedTimeout = 150 * time.Second
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// TokenSource yields the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

type timeoutClass int

const (
	short timeoutClass = iota
	extended
)

// Options configures a Client.
type Options struct {
	BaseURL         string
	ShortTimeout    time.Duration
	ExtendedTimeout time.Duration
	Tokens          TokenSource
	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client talks to the backend. It is safe for concurrent use and never
// retries, queues or coalesces calls.
type Client struct {
	baseURL         *url.URL
	http            *http.Client
	tokens          TokenSource
	shortTimeout    time.Duration
	extendedTimeout time.Duration
	validate        *validator.Validate
}

// New builds a Client. The base URL must be absolute.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute, got: %q", opts.BaseURL)
	}

	c := &Client{
		baseURL:         u,
		tokens:          opts.Tokens,
		shortTimeout:    opts.ShortTimeout,
		extendedTimeout: opts.ExtendedTimeout,
		validate:        validator.New(),
	}
	if c.tokens == nil {
		c.tokens = noTokens{}
	}
	if c.shortTimeout <= 0 {
		c.shortTimeout = DefaultShortTimeout
	}
	if c.extendedTimeout <= 0 {
		c.extendedTimeout = DefaultExtendedTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	// No client-wide Timeout: each call carries its own deadline.
	c.http = &http.Client{Transport: &bearerTransport{base: base, tokens: c.tokens}}
	return c, nil
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type noTokens struct{}

func (noTokens) Token() string { return "" }

// bearerTransport reads the token on every request so a token stored after
// the client was built is used by the very next call.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.tokens.Token()
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(r)
	return t.base.RoundTrip(r)
}

// call describes one request.
type call struct {
	class  timeoutClass
	method string
	path   string // already escaped
	query  url.Values
	body   any
	out    any
}

func (c *Client) timeout(class timeoutClass) time.Duration {
	if class == extended {
		return c.extendedTimeout
	}
	return c.shortTimeout
}

func (c *Client) do(ctx context.Context, cl call) error {
	op := cl.method + " " + cl.path

	ctx, cancel := context.WithTimeout(ctx, c.timeout(cl.class))
	defer cancel()

	target := c.baseURL.String() + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var reqBody io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, reqBody)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	logging.Debug(fmt.Sprintf("%s (request %s, timeout %s)", op, requestID, c.timeout(cl.class)))

	resp, err := c.http.Do(req)
	var body []byte
	if err == nil {
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
	}
	if apiErr := Classify(op, resp, body, err); apiErr != nil {
		logging.Request(requestID, cl.method, cl.path, apiErr.StatusCode, time.Since(started), string(apiErr.Kind))
		return apiErr
	}
	logging.Request(requestID, cl.method, cl.path, resp.StatusCode, time.Since(started), "")

	if cl.out == nil {
		return nil
	}
	if err := json.Unmarshal(body, cl.out); err != nil {
		return &Error{Kind: KindServer, Op: op, StatusCode: resp.StatusCode, Detail: "malformed response", Err: err}
	}
	if err := c.validate.Struct(cl.out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return &Error{Kind: KindServer, Op: op, StatusCode: resp.StatusCode, Detail: "invalid response", Err: err}
	}
	return nil
}

// requireToken returns the current token or an unauthorized error without
// touching the network.
func (c *Client) requireToken(op string) (string, error) {
	tok := c.tokens.Token()
	if tok == "" {
		return "", &Error{Kind: KindUnauthorized, Op: op, Detail: "not signed in"}
	}
	return tok, nil
}
