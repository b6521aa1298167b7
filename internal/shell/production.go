package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/github"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/view"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

var errNoRepo = errors.New("select a repository first: type 'repo <owner/name>'")

func (s *Shell) loadRepos(ctx context.Context) ([]api.Repository, error) {
	if s.repos != nil {
		return s.repos, nil
	}
	res, err := s.app.Client.Repositories(ctx)
	if err != nil {
		return nil, err
	}
	s.repos = append([]api.Repository{}, res.Repositories...)
	return s.repos, nil
}

// loadTree fetches the tree of repo once per selected repository.
func (s *Shell) loadTree(ctx context.Context, repo *api.Repository) ([]api.TreeNode, error) {
	if s.tree != nil && s.treeRepo == repo.FullName {
		return s.tree, nil
	}
	owner, name, err := github.SplitFullName(repo)
	if err != nil {
		return nil, err
	}
	res, err := s.app.Client.RepositoryTree(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	s.tree = append([]api.TreeNode{}, res.Tree...)
	s.treeRepo = repo.FullName
	return s.tree, nil
}

// ----------------------------------------------------------------------------
// Selection
// ----------------------------------------------------------------------------

func (s *Shell) listRepos(ctx context.Context, _ string) error {
	repos, err := s.loadRepos(ctx)
	if err != nil {
		return err
	}
	selected := ""
	if r := s.app.Navigator.Selection().Repo(); r != nil {
		selected = r.FullName
	}
	view.Repositories(s.out, repos, selected)
	return nil
}

func (s *Shell) selectRepo(ctx context.Context, arg string) error {
	repos, err := s.loadRepos(ctx)
	if err != nil {
		return err
	}
	r, err := github.FindRepo(repos, arg)
	if err != nil {
		return err
	}
	s.app.Navigator.Selection().SelectRepo(r)
	s.tree, s.treeRepo = nil, ""
	s.app.Production.Clear()
	fmt.Fprintf(s.out, "Selected %s. Choose a scope: 'scope whole' or 'scope files'.\n", r.FullName)
	return nil
}

func (s *Shell) scope(_ context.Context, arg string) error {
	sc, err := nav.ParseScope(strings.ToLower(arg))
	if err != nil {
		return fmt.Errorf("choose 'whole' or 'files': %w", err)
	}
	if err := s.app.Navigator.Selection().SetScope(sc); err != nil {
		if errors.Is(err, nav.ErrNoRepo) {
			return errNoRepo
		}
		return err
	}
	switch sc {
	case nav.ScopeWholeProject:
		fmt.Fprintln(s.out, "Working on the whole project.")
	case nav.ScopeSpecificFiles:
		fmt.Fprintln(s.out, "Working on specific files. Type 'tree' to browse and 'select <path>' to pick files.")
	}
	return nil
}

func (s *Shell) showTree(ctx context.Context, _ string) error {
	sel := s.app.Navigator.Selection()
	repo := sel.Repo()
	if repo == nil {
		return errNoRepo
	}
	tree, err := s.loadTree(ctx, repo)
	if err != nil {
		return err
	}
	view.Tree(s.out, tree, sel.Files())
	fmt.Fprintf(s.out, "\n%d files, %d selected\n", github.CountFiles(tree), len(sel.Files()))
	return nil
}

func (s *Shell) toggleFile(ctx context.Context, arg string) error {
	sel := s.app.Navigator.Selection()
	repo := sel.Repo()
	if repo == nil {
		return errNoRepo
	}
	if sel.Scope() != nav.ScopeSpecificFiles {
		return fmt.Errorf("switch to specific files first: type 'scope files'")
	}
	tree, err := s.loadTree(ctx, repo)
	if err != nil {
		return err
	}
	path, err := github.ResolveFile(tree, arg)
	if err != nil {
		return err
	}
	added, err := sel.ToggleFile(path)
	if err != nil {
		return err
	}
	mark := "-"
	if added {
		mark = "+"
	}
	fmt.Fprintf(s.out, "%s %s (%d selected)\n", mark, path, len(sel.Files()))
	return nil
}

func (s *Shell) selection(context.Context, string) error {
	view.Selection(s.out, s.app.Navigator.Selection())
	return nil
}

// ----------------------------------------------------------------------------
// Actions
// ----------------------------------------------------------------------------

func (s *Shell) show(o *workflow.Outcome, err error) error {
	if errors.Is(err, workflow.ErrResultShown) {
		return fmt.Errorf("a result is already shown, type 'clear' to go back to actions")
	}
	if err != nil {
		return err
	}
	view.Outcome(s.out, o)
	return nil
}

func (s *Shell) analyze(ctx context.Context, _ string) error {
	return s.show(s.app.Production.Analyze(ctx))
}

func (s *Shell) improve(ctx context.Context, _ string) error {
	return s.show(s.app.Production.Improve(ctx))
}

func (s *Shell) ask(ctx context.Context, arg string) error {
	return s.show(s.app.Production.Ask(ctx, arg))
}

func (s *Shell) generateTest(ctx context.Context, arg string) error {
	return s.show(s.app.Production.GenerateTest(ctx, arg))
}

func (s *Shell) clearResult(context.Context, string) error {
	s.app.Production.Clear()
	fmt.Fprintln(s.out, "Back to actions.")
	return nil
}
