// Package auth runs the GitHub OAuth sign-in from the terminal and keeps the
// session store consistent with the backend's view of the token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/logging"
)

const (
	shutdownTimeout   = 2 * time.Second
	defaultAuthFailed = "An error occurred during authentication"
)

// callback is what the backend redirected the browser with.
type callback struct {
	token   string
	message string
}

// Listener serves the pages the backend redirects to after OAuth:
// /auth/success?token=... and /auth/error?message=....
type Listener struct {
	ln      net.Listener
	srv     *http.Server
	results chan callback
}

// Listen binds addr and starts serving.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback on %s: %w", addr, err)
	}

	l := &Listener{ln: ln, results: make(chan callback, 1)}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/success", l.handleSuccess)
	mux.HandleFunc("/auth/error", l.handleError)
	mux.HandleFunc("/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusOK, "Processing GitHub authentication...")
	})
	l.srv = &http.Server{
		Handler:           mux,
		ErrorLog:          logging.StdLogger(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Debug(fmt.Sprintf("oauth callback server stopped: %v", err))
		}
	}()
	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Wait blocks until the browser lands on a callback page. A redirect to the
// error page is returned as an unauthorized *api.Error.
func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case cb := <-l.results:
		if cb.message != "" {
			return "", &api.Error{Kind: api.KindUnauthorized, Op: "oauth callback", Detail: cb.message}
		}
		return cb.token, nil
	}
}

// Close stops the server.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return l.srv.Shutdown(ctx)
}

// deliver keeps the first callback; later ones are dropped.
func (l *Listener) deliver(cb callback) {
	select {
	case l.results <- cb:
	default:
	}
}

func (l *Listener) handleSuccess(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writePage(w, http.StatusBadRequest, "The sign-in response carried no token.")
		return
	}
	l.deliver(callback{token: token})
	writePage(w, http.StatusOK, "Signed in. You can close this tab and return to the terminal.")
}

func (l *Listener) handleError(w http.ResponseWriter, r *http.Request) {
	msg := r.URL.Query().Get("message")
	if msg == "" {
		msg = defaultAuthFailed
	}
	l.deliver(callback{message: msg})
	writePage(w, http.StatusOK, msg)
}

func writePage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!doctype html><html><head><title>TestMate</title></head><body><p>%s</p></body></html>\n", html.EscapeString(msg))
}
