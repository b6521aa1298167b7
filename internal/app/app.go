// Package app wires the testmate components from a resolved configuration.
package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/auth"
	"github.com/CodexForgeBR/testmate/internal/config"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/session"
	"github.com/CodexForgeBR/testmate/internal/view"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

// NotSignedIn is the detail of the error returned by RequireAuth.
const NotSignedIn = "not signed in; run 'testmate login' first"

// App holds one process worth of components.
type App struct {
	Config     *config.Config
	Store      *session.Store
	Client     *api.Client
	Navigator  *nav.Navigator
	Auth       *auth.Flow
	Generator  *workflow.Generator
	Production *workflow.Production
	Printer    *view.Printer

	closers []func() error
}

// Options tunes New. The zero value is the production setup.
type Options struct {
	// Store replaces the session opened from Config.StateDir.
	Store *session.Store
	// Opener replaces the system browser during login.
	Opener auth.Opener
}

// New builds the components for cfg, writing user output to out.
func New(cfg *config.Config, out io.Writer, opts Options) (*App, error) {
	logging.SetVerbose(cfg.Verbose)
	a := &App{Config: cfg, Printer: view.NewPrinter(out, cfg.Output)}

	if cfg.LogFile != "" {
		closeLog, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeLog)
	}

	a.Store = opts.Store
	if a.Store == nil {
		a.Store = session.Open(cfg.StateDir)
	}

	client, err := api.New(api.Options{
		BaseURL:         cfg.APIURL,
		ShortTimeout:    time.Duration(cfg.Timeout) * time.Second,
		ExtendedTimeout: time.Duration(cfg.GenerationTimeout) * time.Second,
		Tokens:          a.Store,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	a.Client = client

	a.Navigator = nav.New(restoreLocation(a.Store))

	opener := opts.Opener
	if opener == nil && cfg.OpenBrowser {
		opener = auth.OpenBrowser
	}
	a.Auth = &auth.Flow{
		Backend:      client,
		Store:        a.Store,
		Navigator:    a.Navigator,
		CallbackAddr: cfg.CallbackAddr,
		Open:         opener,
	}
	a.Generator = workflow.NewGenerator(client)
	a.Production = workflow.NewProduction(client, a.Navigator.Selection())
	return a, nil
}

// restoreLocation rebuilds the address bar from the session and persists
// every later change back to it.
func restoreLocation(store *session.Store) *nav.Location {
	saved := store.Navigation()
	loc := nav.RestoreLocation(nav.Snapshot{
		Fragment: saved.Fragment,
		Back:     saved.Back,
		Forward:  saved.Forward,
	})
	loc.Subscribe(func(s nav.Snapshot) {
		store.SetNavigation(session.Navigation{Fragment: s.Fragment, Back: s.Back, Forward: s.Forward})
	})
	return loc
}

// RequireAuth fails with an unauthorized error when no token is stored.
func (a *App) RequireAuth() error {
	if a.Store.IsAuthenticated() {
		return nil
	}
	return &api.Error{Kind: api.KindUnauthorized, Detail: NotSignedIn}
}

// Close releases the log file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
