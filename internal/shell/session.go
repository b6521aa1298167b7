package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodexForgeBR/testmate/internal/banner"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/view"
)

// ----------------------------------------------------------------------------
// Account
// ----------------------------------------------------------------------------

func (s *Shell) login(ctx context.Context, _ string) error {
	if s.app.Store.IsAuthenticated() {
		name := "this account"
		if u := s.app.Store.User(); u != nil {
			name = u.Username
		}
		fmt.Fprintf(s.out, "Already signed in as %s. Type 'logout' first to switch accounts.\n", name)
		return nil
	}
	user, err := s.app.Auth.Login(ctx)
	if err != nil {
		return err
	}
	banner.PrintSignedInBanner(s.out, user)
	return nil
}

func (s *Shell) logout(ctx context.Context, _ string) error {
	if !s.app.Store.IsAuthenticated() {
		fmt.Fprintln(s.out, "Not signed in.")
		return nil
	}
	s.app.Auth.Logout(ctx)
	if err := s.app.Generator.Reset(); err != nil {
		logging.Debug(fmt.Sprintf("generator not reset on logout: %v", err))
	}
	s.app.Production.Clear()
	s.examples, s.repos, s.tree, s.treeRepo = nil, nil, nil, ""
	fmt.Fprintln(s.out, "Signed out.")
	return nil
}

// whoami refreshes the profile when signed in, falling back to the cached
// copy when the backend cannot be reached.
func (s *Shell) whoami(ctx context.Context, _ string) error {
	if !s.app.Store.IsAuthenticated() {
		view.User(s.out, nil)
		return nil
	}
	user, err := s.app.Client.CurrentUser(ctx)
	if err != nil {
		cached := s.app.Store.User()
		if cached == nil {
			return err
		}
		logging.Warn(fmt.Sprintf("Showing cached profile: %s", view.ErrorMessage(err)))
		user = cached
	} else {
		s.app.Store.SetUser(user)
	}
	view.User(s.out, user)
	return nil
}

func (s *Shell) status(context.Context, string) error {
	banner.PrintStatusBanner(s.out, s.app.Store.User(), s.app.Navigator.Location().Fragment(), s.app.Store.Path())
	return nil
}

func (s *Shell) health(ctx context.Context, _ string) error {
	h, err := s.app.Client.Health(ctx)
	if err != nil {
		return err
	}
	view.Health(s.out, h)

	gen, err := s.app.Client.GenerationHealth(ctx)
	if err != nil {
		logging.Warn(fmt.Sprintf("Generator status unknown: %s", view.ErrorMessage(err)))
		return nil
	}
	view.GenerationHealth(s.out, gen)
	return nil
}

// ----------------------------------------------------------------------------
// Navigation
// ----------------------------------------------------------------------------

func (s *Shell) mode(_ context.Context, arg string) error {
	m := nav.Mode(strings.ToLower(arg))
	if err := s.app.Navigator.SelectMode(m); err != nil {
		return fmt.Errorf("choose 'guided' or 'production': %w", err)
	}
	if m == nav.ModeProduction {
		s.tree, s.treeRepo = nil, ""
		s.app.Production.Clear()
	}
	return nil
}

func (s *Shell) level(_ context.Context, arg string) error {
	l, err := nav.ParseLevel(arg)
	if err != nil {
		return fmt.Errorf("choose level 0 or 1: %w", err)
	}
	return s.app.Navigator.SelectLevel(l)
}

func (s *Shell) back(context.Context, string) error {
	if !s.app.Navigator.Back() {
		fmt.Fprintln(s.out, "Already at the start.")
	}
	return nil
}

// history walks the address history the way browser buttons do. The screen
// follows the fragment; no new history entry is written.
func (s *Shell) history(_ context.Context, arg string) error {
	loc := s.app.Navigator.Location()
	switch strings.ToLower(arg) {
	case "":
		snap := loc.Snapshot()
		fmt.Fprintf(s.out, "  back:    %s\n", joinFragments(snap.Back))
		fmt.Fprintf(s.out, "  current: %s\n", fragmentName(snap.Fragment))
		fmt.Fprintf(s.out, "  forward: %s\n", joinFragments(snap.Forward))
	case "back":
		if !loc.Back() {
			fmt.Fprintln(s.out, "Nothing to go back to.")
		}
	case "forward":
		if !loc.Forward() {
			fmt.Fprintln(s.out, "Nothing to go forward to.")
		}
	default:
		return fmt.Errorf("usage: history [back|forward]")
	}
	return nil
}

// goTo opens a screen by its fragment, like following a bookmark.
func (s *Shell) goTo(_ context.Context, arg string) error {
	fragment := strings.TrimPrefix(arg, "#")
	if fragment == "landing" {
		fragment = ""
	}
	if _, err := nav.Decode(fragment); err != nil {
		known := make([]string, 0, len(nav.Fragments()))
		for _, f := range nav.Fragments() {
			known = append(known, fragmentName(f))
		}
		return fmt.Errorf("unknown screen %q, try one of: %s", arg, strings.Join(known, ", "))
	}
	s.app.Navigator.Location().Visit(fragment)
	return nil
}

func fragmentName(f string) string {
	if f == "" {
		return "landing"
	}
	return f
}

func joinFragments(fs []string) string {
	if len(fs) == 0 {
		return "-"
	}
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = fragmentName(f)
	}
	return strings.Join(names, " → ")
}
