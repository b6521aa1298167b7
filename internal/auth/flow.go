package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/session"
)

// Backend is the part of the API client the sign-in flow needs.
type Backend interface {
	LoginURL(ctx context.Context) (*api.LoginURL, error)
	VerifyToken(ctx context.Context, token string) (*api.User, error)
	Logout(ctx context.Context) (*api.Message, error)
}

// Flow signs the user in and out.
type Flow struct {
	Backend      Backend
	Store        *session.Store
	Navigator    *nav.Navigator // optional; reset on logout
	CallbackAddr string
	// Open shows the authorization URL. Nil only prints it.
	Open Opener
	// Now is the clock used for token expiry; time.Now when nil.
	Now func() time.Time
}

func (f *Flow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Login runs the browser round trip: it starts the callback listener, hands
// the authorization URL to the user and waits for the backend's redirect.
func (f *Flow) Login(ctx context.Context) (*api.User, error) {
	l, err := Listen(f.CallbackAddr)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	login, err := f.Backend.LoginURL(ctx)
	if err != nil {
		return nil, err
	}

	logging.Info("Open this URL to sign in with GitHub:")
	logging.Info(login.AuthURL)
	if f.Open != nil {
		if err := f.Open(login.AuthURL); err != nil {
			logging.Warn(fmt.Sprintf("Could not open a browser: %v", err))
		}
	}
	logging.Info(fmt.Sprintf("Waiting for the sign-in redirect on http://%s ...", l.Addr()))

	token, err := l.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return f.Complete(ctx, token)
}

// Complete stores token, verifies it and caches the profile. Any failure
// leaves the session cleared.
func (f *Flow) Complete(ctx context.Context, token string) (*api.User, error) {
	if token == "" {
		return nil, &api.Error{Kind: api.KindUnauthorized, Op: "sign in", Detail: "no token received"}
	}
	f.Store.SetToken(token)
	user, err := f.Backend.VerifyToken(ctx, token)
	if err != nil {
		f.Store.Clear()
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	f.Store.SetUser(user)
	return user, nil
}

// Bootstrap revalidates a stored token at startup. It never fails: a token
// that is locally expired or rejected by the backend clears the session,
// returns navigation to the landing state and yields nil.
func (f *Flow) Bootstrap(ctx context.Context) *api.User {
	token := f.Store.Token()
	if token == "" {
		return nil
	}
	if exp, ok := f.Store.TokenExpiry(); ok && !f.now().Before(exp) {
		logging.Debug("stored token expired, signing out")
		f.signOut()
		return nil
	}

	user, err := f.Backend.VerifyToken(ctx, token)
	if err != nil {
		logging.Debug(fmt.Sprintf("stored token rejected: %v", err))
		f.signOut()
		return nil
	}
	f.Store.SetUser(user)
	return user
}

// Logout tells the backend (best effort), clears the session and resets
// navigation to the landing state with an empty fragment.
func (f *Flow) Logout(ctx context.Context) {
	if _, err := f.Backend.Logout(ctx); err != nil {
		logging.Debug(fmt.Sprintf("backend logout failed: %v", err))
	}
	f.signOut()
}

func (f *Flow) signOut() {
	f.Store.Clear()
	if f.Navigator != nil {
		f.Navigator.Logout()
	}
}
