// Package shell is the interactive testmate session: a bubbletea program
// over the navigation state machine, with one command set per screen. Piped
// input is read one command per line.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/app"
	"github.com/CodexForgeBR/testmate/internal/banner"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/view"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

// maxLineBytes bounds one input line; descriptions are far shorter.
const maxLineBytes = 1 << 20

// Shell reads commands from in and writes screens to out. On a terminal it
// runs as a bubbletea program; otherwise it reads one command per line.
type Shell struct {
	app     *app.App
	in      io.Reader
	out     io.Writer
	version string

	commands    map[string]*command
	shown       nav.State
	drawn       bool
	quit        bool
	interactive bool
	// send delivers messages to the running program; nil in line mode.
	send func(tea.Msg)

	// Backend listings, cached until the selection they belong to changes.
	examples []api.Example
	repos    []api.Repository
	tree     []api.TreeNode
	treeRepo string
}

// New returns a shell over a. It does not touch the network until Run.
func New(a *app.App, in io.Reader, out io.Writer, version string) *Shell {
	s := &Shell{app: a, in: in, out: out, version: version, interactive: isTerminal(in, out)}
	s.commands = s.buildCommands()
	a.Generator.OnPhase(s.onPhase)
	return s
}

func (s *Shell) onPhase(p workflow.Phase) {
	if s.send != nil {
		s.send(phaseMsg(p))
		return
	}
	if msg := phaseStatus(p); msg != "" {
		fmt.Fprintln(s.out, msg)
	}
}

func phaseStatus(p workflow.Phase) string {
	switch p {
	case workflow.PhaseProbing:
		return "Checking that the code generator is running..."
	case workflow.PhaseSubmitting:
		return "Generating test code, this can take a couple of minutes..."
	}
	return ""
}

// Run revalidates the stored session, then executes commands until EOF, quit
// or ctx is done. It returns ctx.Err() when interrupted and the reader's
// error, if any, otherwise nil.
func (s *Shell) Run(ctx context.Context) error {
	hadToken := s.app.Store.Token() != ""
	user := s.app.Auth.Bootstrap(ctx)
	banner.PrintStartupBanner(s.out, s.version, s.app.Client.BaseURL(), user)
	if hadToken && user == nil {
		logging.Warn("Your session expired. Type 'login' to sign in again.")
	}
	s.redraw()

	if s.interactive {
		return s.runProgram(ctx)
	}
	return s.runLines(ctx)
}

// runLines serves piped or scripted input.
func (s *Shell) runLines(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(s.out, s.prompt())
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				return <-readErr
			}
			if err := s.Exec(ctx, line); err != nil && ctx.Err() == nil {
				view.Failure(s.out, view.ErrorMessage(err))
			}
			if s.quit {
				return nil
			}
			s.redraw()
		}
	}
}

func (s *Shell) prompt() string {
	if frag := s.app.Navigator.Location().Fragment(); frag != "" {
		return "testmate:" + frag + "> "
	}
	return "testmate> "
}

// redraw prints the screen banner when the state moved since the last one.
func (s *Shell) redraw() {
	if !s.app.Store.IsAuthenticated() {
		s.drawn = false
		return
	}
	st := s.app.Navigator.State()
	if s.drawn && st == s.shown {
		return
	}
	banner.PrintScreenBanner(s.out, st)
	s.shown, s.drawn = st, true
}

// Exec runs one input line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	cmd, arg, err := s.resolve(line)
	if err != nil || cmd == nil {
		return err
	}
	return cmd.run(ctx, arg)
}

// resolve finds the command for line and applies its guards. A blank line
// yields a nil command.
func (s *Shell) resolve(line string) (*command, string, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	if name == "" {
		return nil, "", nil
	}
	cmd, ok := s.commands[strings.ToLower(name)]
	if !ok {
		return nil, "", fmt.Errorf("unknown command %q, type 'help' for the list", name)
	}
	if cmd.auth {
		if err := s.app.RequireAuth(); err != nil {
			return nil, "", errSignInFirst
		}
	}
	if cmd.screen != nil && !cmd.screen.match(s.app.Navigator.State()) {
		return nil, "", fmt.Errorf("'%s' is available in %s", cmd.name, cmd.screen.name)
	}
	if cmd.needsArg && arg == "" {
		return nil, "", fmt.Errorf("usage: %s %s", cmd.name, cmd.args)
	}
	return cmd, arg, nil
}

var errSignInFirst = &api.Error{Kind: api.KindUnauthorized, Detail: "Sign in first: type 'login'"}

// ----------------------------------------------------------------------------
// Commands
// ----------------------------------------------------------------------------

// screen restricts a command to part of the navigation graph.
type screen struct {
	name  string
	match func(nav.State) bool
}

var (
	onGuided     = &screen{"guided mode (type 'mode guided')", func(st nav.State) bool { return st.Mode == nav.ModeGuided }}
	onLevel0     = &screen{"Level 0 (type 'mode guided', then 'level 0')", func(st nav.State) bool { return st.Level == nav.Level0 }}
	onLevel1     = &screen{"Level 1 (type 'mode guided', then 'level 1')", func(st nav.State) bool { return st.Level == nav.Level1 }}
	onProduction = &screen{"production mode (type 'mode production')", func(st nav.State) bool { return st.Mode == nav.ModeProduction }}
)

type command struct {
	name     string
	args     string
	summary  string
	auth     bool
	needsArg bool
	screen   *screen
	run      func(ctx context.Context, arg string) error
}

func (s *Shell) buildCommands() map[string]*command {
	list := []*command{
		// Session
		{name: "help", args: "[command]", summary: "Show the commands for this screen", run: s.help},
		{name: "status", summary: "Show user, screen and session file", run: s.status},
		{name: "whoami", summary: "Show the signed-in user", run: s.whoami},
		{name: "login", summary: "Sign in with GitHub", run: s.login},
		{name: "logout", summary: "Sign out", run: s.logout},
		{name: "health", summary: "Check the backend and the code generator", run: s.health},
		{name: "quit", summary: "Leave the shell", run: s.exit},
		{name: "exit", summary: "Leave the shell", run: s.exit},

		// Navigation
		{name: "mode", args: "guided|production", summary: "Choose your path", auth: true, needsArg: true, run: s.mode},
		{name: "level", args: "0|1", summary: "Choose a guided level", auth: true, needsArg: true, screen: onGuided, run: s.level},
		{name: "back", summary: "Go up one screen", auth: true, run: s.back},
		{name: "history", args: "[back|forward]", summary: "Show or walk the screen history", auth: true, run: s.history},
		{name: "go", args: "<screen>", summary: "Jump to a screen, e.g. 'go guided/level1'", auth: true, needsArg: true, run: s.goTo},

		// Level 0
		{name: "sections", summary: "List the lessons", auth: true, screen: onLevel0, run: s.sections},
		{name: "read", args: "<section>", summary: "Read a lesson by number or id", auth: true, needsArg: true, screen: onLevel0, run: s.read},
		{name: "done", args: "<section>", summary: "Mark a lesson as completed", auth: true, needsArg: true, screen: onLevel0, run: s.done},
		{name: "tutor", summary: "Ask the AI tutor for an overview", auth: true, screen: onLevel0, run: s.tutor},

		// Level 1
		{name: "describe", args: "[text]", summary: "Set or show the test description", auth: true, screen: onLevel1, run: s.describe},
		{name: "edit", summary: "Write the description in an editor", auth: true, screen: onLevel1, run: s.edit},
		{name: "attach", args: "<file>", summary: "Use a scenario file instead of the description", auth: true, needsArg: true, screen: onLevel1, run: s.attach},
		{name: "detach", summary: "Remove the scenario file", auth: true, screen: onLevel1, run: s.detach},
		{name: "examples", summary: "List ready-made descriptions", auth: true, screen: onLevel1, run: s.listExamples},
		{name: "example", args: "<n>", summary: "Use example n as the description", auth: true, needsArg: true, screen: onLevel1, run: s.useExample},
		{name: "generate", summary: "Generate test code", auth: true, screen: onLevel1, run: s.generate},
		{name: "reset", summary: "Clear the description, file and result", auth: true, screen: onLevel1, run: s.reset},
		{name: "check", summary: "Check whether the code generator is running", auth: true, screen: onLevel1, run: s.check},

		// Production
		{name: "repos", summary: "List your repositories", auth: true, screen: onProduction, run: s.listRepos},
		{name: "repo", args: "<owner/name>", summary: "Select a repository", auth: true, needsArg: true, screen: onProduction, run: s.selectRepo},
		{name: "scope", args: "whole|files", summary: "Work on the whole project or specific files", auth: true, needsArg: true, screen: onProduction, run: s.scope},
		{name: "tree", summary: "Show the repository files", auth: true, screen: onProduction, run: s.showTree},
		{name: "select", args: "<path>", summary: "Toggle a file in the selection", auth: true, needsArg: true, screen: onProduction, run: s.toggleFile},
		{name: "selection", summary: "Show the current selection", auth: true, screen: onProduction, run: s.selection},
		{name: "analyze", summary: "Analyze the testing practice", auth: true, screen: onProduction, run: s.analyze},
		{name: "improve", summary: "Get improvement recommendations", auth: true, screen: onProduction, run: s.improve},
		{name: "ask", args: "<question>", summary: "Ask about the repository", auth: true, needsArg: true, screen: onProduction, run: s.ask},
		{name: "test", args: "<request>", summary: "Generate a test for the selection", auth: true, needsArg: true, screen: onProduction, run: s.generateTest},
		{name: "clear", summary: "Dismiss the last result", auth: true, screen: onProduction, run: s.clearResult},
	}
	m := make(map[string]*command, len(list))
	for _, c := range list {
		m[c.name] = c
	}
	return m
}

func (s *Shell) help(_ context.Context, arg string) error {
	if arg != "" {
		c, ok := s.commands[strings.ToLower(arg)]
		if !ok {
			return fmt.Errorf("unknown command %q", arg)
		}
		fmt.Fprintf(s.out, "%s %s\n  %s\n", c.name, c.args, c.summary)
		if c.screen != nil {
			fmt.Fprintf(s.out, "  Available in %s\n", c.screen.name)
		}
		return nil
	}

	st := s.app.Navigator.State()
	signedIn := s.app.Store.IsAuthenticated()
	var names []string
	for name, c := range s.commands {
		if c.auth && !signedIn {
			continue
		}
		if c.screen != nil && !c.screen.match(st) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(s.out, "  %-28s %s\n", strings.TrimSpace(c.name+" "+c.args), c.summary)
	}
	if !signedIn {
		fmt.Fprintln(s.out, "\nSign in with 'login' to unlock the learning paths.")
	}
	return nil
}

func (s *Shell) exit(context.Context, string) error {
	s.quit = true
	return nil
}
