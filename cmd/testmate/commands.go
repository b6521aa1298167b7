package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/app"
	"github.com/CodexForgeBR/testmate/internal/banner"
	"github.com/CodexForgeBR/testmate/internal/github"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/schedule"
	"github.com/CodexForgeBR/testmate/internal/shell"
	"github.com/CodexForgeBR/testmate/internal/view"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

// ----------------------------------------------------------------------------
// Shell
// ----------------------------------------------------------------------------

func (e *env) shellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runShell(cmd)
		},
	}
	cmd.Flags().StringVar(&e.flagged.At, "at", "", "Open this screen, e.g. guided/level1")
	return cmd
}

func (e *env) runShell(cmd *cobra.Command) error {
	return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
		if at := a.Config.At; at != "" {
			fragment := strings.TrimPrefix(at, "#")
			if _, err := nav.Decode(fragment); err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			a.Navigator.Location().Visit(fragment)
		}
		return shell.New(a, e.in, e.out, version).Run(ctx)
	})
}

// ----------------------------------------------------------------------------
// Account
// ----------------------------------------------------------------------------

func (e *env) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				user, err := a.Auth.Login(ctx)
				if err != nil {
					return err
				}
				return a.Printer.Print(user, func(w io.Writer) { banner.PrintSignedInBanner(w, user) })
			})
		},
	}
}

func (e *env) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if !a.Store.IsAuthenticated() {
					logging.Info("Not signed in.")
					return nil
				}
				a.Auth.Logout(ctx)
				logging.Success("Signed out.")
				return nil
			})
		},
	}
}

func (e *env) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.RequireAuth(); err != nil {
					return err
				}
				user, err := a.Client.CurrentUser(ctx)
				if err != nil {
					return err
				}
				a.Store.SetUser(user)
				return a.Printer.Print(user, func(w io.Writer) { view.User(w, user) })
			})
		},
	}
}

// healthReport is the structured output of the health command.
type healthReport struct {
	Backend    *api.Health           `json:"backend" yaml:"backend"`
	Generation *api.GenerationHealth `json:"generation,omitempty" yaml:"generation,omitempty"`
}

func (e *env) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend and the code generator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				h, err := a.Client.Health(ctx)
				if err != nil {
					return err
				}
				report := healthReport{Backend: h}
				if gen, err := a.Client.GenerationHealth(ctx); err != nil {
					logging.Warn(fmt.Sprintf("Generator status unknown: %s", view.ErrorMessage(err)))
				} else {
					report.Generation = gen
				}
				return a.Printer.Print(report, func(w io.Writer) {
					view.Health(w, report.Backend)
					if report.Generation != nil {
						view.GenerationHealth(w, report.Generation)
					}
				})
			})
		},
	}
}

// ----------------------------------------------------------------------------
// Level 1
// ----------------------------------------------------------------------------

func (e *env) generateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Generate test code for a description (Level 1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.RequireAuth(); err != nil {
					return err
				}
				g := a.Generator
				if err := g.SetDescription(strings.Join(args, " ")); err != nil {
					return err
				}
				if file != "" {
					att, err := workflow.LoadAttachment(file)
					if err != nil {
						return err
					}
					if err := g.Attach(att); err != nil {
						return err
					}
				}

				if a.Config.At != "" {
					target, err := schedule.Parse(a.Config.At, time.Now())
					if err != nil {
						return fmt.Errorf("--at: %w", err)
					}
					if err := schedule.WaitUntil(ctx, target); err != nil {
						return err
					}
				}

				g.OnPhase(func(p workflow.Phase) {
					switch p {
					case workflow.PhaseProbing:
						logging.Info("Checking that the code generator is running...")
					case workflow.PhaseSubmitting:
						logging.Info("Generating test code, this can take a couple of minutes...")
					}
				})
				out, err := g.Submit(ctx)
				if err != nil {
					return err
				}
				return a.Printer.Print(out, func(w io.Writer) { view.GeneratedCode(w, out) })
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Scenario file used instead of the description (.txt, .md, .py, .java, .json, .xml)")
	cmd.Flags().StringVar(&e.flagged.At, "at", "", "Wait until this time before generating (15:04, 2006-01-02 15:04 or +30m)")
	return cmd
}

// ----------------------------------------------------------------------------
// Production
// ----------------------------------------------------------------------------

func (e *env) reposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List your GitHub repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.RequireAuth(); err != nil {
					return err
				}
				res, err := a.Client.Repositories(ctx)
				if err != nil {
					return err
				}
				return a.Printer.Print(res.Repositories, func(w io.Writer) { view.Repositories(w, res.Repositories, "") })
			})
		},
	}
}

func (e *env) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <owner/repo>",
		Short: "Show a repository's file tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := github.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.RequireAuth(); err != nil {
					return err
				}
				res, err := a.Client.RepositoryTree(ctx, owner, repo)
				if err != nil {
					return err
				}
				return a.Printer.Print(res.Tree, func(w io.Writer) { view.Tree(w, res.Tree, nil) })
			})
		},
	}
}

func (e *env) analyzeCmd() *cobra.Command {
	var (
		files   []string
		improve bool
		ask     string
		test    string
	)
	cmd := &cobra.Command{
		Use:   "analyze <owner/repo>",
		Short: "Analyze a repository's testing practice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if countSet(improve, ask != "", test != "") > 1 {
				return fmt.Errorf("use only one of --improve, --ask and --test")
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.RequireAuth(); err != nil {
					return err
				}
				if err := selectForAnalysis(ctx, a, args[0], files); err != nil {
					return err
				}

				var o *workflow.Outcome
				var err error
				switch {
				case improve:
					o, err = a.Production.Improve(ctx)
				case ask != "":
					o, err = a.Production.Ask(ctx, ask)
				case test != "":
					o, err = a.Production.GenerateTest(ctx, test)
				default:
					o, err = a.Production.Analyze(ctx)
				}
				if err != nil {
					return err
				}
				return a.Printer.Print(view.OutcomeValue(o), func(w io.Writer) { view.Outcome(w, o) })
			})
		},
	}
	cmd.Flags().StringSliceVar(&files, "file", nil, "Limit the work to these files (repeatable)")
	cmd.Flags().BoolVar(&improve, "improve", false, "Ask for improvement recommendations instead")
	cmd.Flags().StringVar(&ask, "ask", "", "Ask a question about the repository instead")
	cmd.Flags().StringVar(&test, "test", "", "Generate a test for this request instead")
	return cmd
}

// selectForAnalysis points the selection at ref, restricted to files when
// any are given.
func selectForAnalysis(ctx context.Context, a *app.App, ref string, files []string) error {
	res, err := a.Client.Repositories(ctx)
	if err != nil {
		return err
	}
	repo, err := github.FindRepo(res.Repositories, ref)
	if err != nil {
		return err
	}
	sel := a.Navigator.Selection()
	sel.SelectRepo(repo)
	if len(files) == 0 {
		return sel.SetScope(nav.ScopeWholeProject)
	}

	owner, name, err := github.SplitFullName(repo)
	if err != nil {
		return err
	}
	tree, err := a.Client.RepositoryTree(ctx, owner, name)
	if err != nil {
		return err
	}
	if err := sel.SetScope(nav.ScopeSpecificFiles); err != nil {
		return err
	}
	for _, f := range files {
		path, err := github.ResolveFile(tree.Tree, f)
		if err != nil {
			return err
		}
		if err := sel.AddFile(path); err != nil {
			return err
		}
	}
	return nil
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// ----------------------------------------------------------------------------
// Version
// ----------------------------------------------------------------------------

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version, commit, build date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "testmate %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		},
	}
}
