package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/testmate/internal/app"
	"github.com/CodexForgeBR/testmate/internal/banner"
	"github.com/CodexForgeBR/testmate/internal/cli"
	"github.com/CodexForgeBR/testmate/internal/config"
	"github.com/CodexForgeBR/testmate/internal/exitcode"
	"github.com/CodexForgeBR/testmate/internal/logging"
	sighandler "github.com/CodexForgeBR/testmate/internal/signal"
	"github.com/CodexForgeBR/testmate/internal/view"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, app.Options{}))
}

// env is what every command needs besides its own flags.
type env struct {
	flagged *config.Config
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	opts    app.Options
}

// run executes one invocation and returns its exit code.
func run(args []string, in io.Reader, out, errOut io.Writer, opts app.Options) int {
	logging.SetOutput(out, errOut)
	defer logging.SetOutput(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var interrupted atomic.Bool
	stop := sighandler.SetupSignalHandler(ctx, cancel, func() {
		interrupted.Store(true)
	})
	defer stop()

	e := &env{flagged: config.NewDefaultConfig(), in: in, out: out, errOut: errOut, opts: opts}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if interrupted.Load() {
		banner.PrintInterruptedBanner(errOut)
		return exitcode.Interrupted
	}
	if err != nil {
		view.Failure(errOut, view.ErrorMessage(err))
		return exitcode.FromError(err)
	}
	return exitcode.Success
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "testmate",
		Short:   "AI software testing tutor",
		Long:    "testmate teaches software testing: guided lessons, AI generated test code and reviews of your own GitHub repositories.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runShell(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Bind all CLI flags to the config
	cli.BindFlags(rootCmd, e.flagged)

	rootCmd.AddCommand(
		e.shellCmd(),
		e.loginCmd(),
		e.logoutCmd(),
		e.whoamiCmd(),
		e.healthCmd(),
		e.generateCmd(),
		e.reposCmd(),
		e.treeCmd(),
		e.analyzeCmd(),
		versionCmd(),
	)

	// Set custom help template
	cli.SetCustomHelp(rootCmd)
	return rootCmd
}

// withApp resolves the configuration of cmd and runs fn with the components
// built from it.
func (e *env) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := cli.Resolve(cmd, e.flagged)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, e.out, e.opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Debug(fmt.Sprintf("close: %v", err))
		}
	}()
	if a.Printer.Structured() {
		// Keep stdout machine readable.
		logging.SetOutput(e.errOut, e.errOut)
	}
	return fn(cmd.Context(), a)
}
