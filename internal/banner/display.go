// Package banner prints the colored banners the testmate shell shows on
// startup, on every screen change and when a session ends.
package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/nav"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const double = "═══════════════════════════════════════════════════"

// PrintStartupBanner displays the startup banner.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  testmate - AI software testing tutor
//	═══════════════════════════════════════════════════
//	  Backend:    http://localhost:8000
//	  User:       octo
//	  Version:    dev
//	═══════════════════════════════════════════════════
func PrintStartupBanner(w io.Writer, version, apiURL string, user *api.User) {
	sep := headerColor(double)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, headerColor("  testmate - AI software testing tutor"))
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "  Backend:    %s\n", apiURL)
	if user != nil {
		fmt.Fprintf(w, "  User:       %s\n", user.Username)
	} else {
		fmt.Fprintln(w, "  User:       not signed in (type 'login')")
	}
	fmt.Fprintf(w, "  Version:    %s\n", version)
	fmt.Fprintln(w, sep)
}

// PrintScreenBanner introduces the screen for state s and lists what can be
// done there.
func PrintScreenBanner(w io.Writer, s nav.State) {
	var title string
	var hints []string
	switch {
	case s.Mode == nav.ModeGuided && s.Level == nav.Level0:
		title = "Level 0: Software Testing Fundamentals"
		hints = []string{"sections", "read <section>", "done <section>", "tutor", "back"}
	case s.Mode == nav.ModeGuided && s.Level == nav.Level1:
		title = "Level 1: Generate Test Code"
		hints = []string{"describe <text>", "attach <file>", "examples", "example <n>", "generate", "reset", "back"}
	case s.Mode == nav.ModeGuided:
		title = "Guided Learning: choose a level"
		hints = []string{"level 0", "level 1", "back"}
	case s.Mode == nav.ModeProduction:
		title = "Production Mode: work on your repositories"
		hints = []string{"repos", "repo <owner/name>", "scope whole|files", "tree", "select <path>", "analyze", "improve", "ask <question>", "test <request>", "back"}
	default:
		title = "Choose your path"
		hints = []string{"mode guided", "mode production"}
	}
	fmt.Fprintln(w, headerColor("▶ "+title))
	fmt.Fprintf(w, "  %s\n", strings.Join(hints, " · "))
}

// PrintSignedInBanner confirms a completed login.
func PrintSignedInBanner(w io.Writer, user *api.User) {
	sep := successColor(double)
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "%s\n", successColor(fmt.Sprintf("  ✓ Signed in as %s", user.Username)))
	fmt.Fprintln(w, sep)
}

// PrintInterruptedBanner displays when the shell is interrupted.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ⚠ Interrupted
//	  Your session is saved; run testmate to continue
//	═══════════════════════════════════════════════════
func PrintInterruptedBanner(w io.Writer) {
	sep := warnColor(double)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, warnColor("  ⚠ Interrupted"))
	fmt.Fprintln(w, "  Your session is saved; run testmate to continue")
	fmt.Fprintln(w, sep)
}

// PrintStatusBanner displays where the user is.
//
// Example output:
//
//	──────────────────────────────────────────────────
//	  User:     octo
//	  Screen:   guided/level1
//	  Session:  /home/octo/.testmate/session.json
//	──────────────────────────────────────────────────
func PrintStatusBanner(w io.Writer, user *api.User, fragment, sessionPath string) {
	sep := strings.Repeat("─", 50)
	name := "not signed in"
	if user != nil {
		name = user.Username
	}
	if fragment == "" {
		fragment = "(landing)"
	}
	if sessionPath == "" {
		sessionPath = "in memory"
	}
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "  User:     %s\n", name)
	fmt.Fprintf(w, "  Screen:   %s\n", fragment)
	fmt.Fprintf(w, "  Session:  %s\n", sessionPath)
	fmt.Fprintln(w, sep)
}
