package view

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/curriculum"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	muted   = color.New(color.Faint)
	code    = color.New(color.FgYellow)
)

const rule = "──────────────────────────────────────────────────"

func title(w io.Writer, s string) {
	heading.Fprintln(w, s)
	fmt.Fprintln(w, rule)
}

func status(ok bool, yes, no string) string {
	if ok {
		return good.Sprint(yes)
	}
	return bad.Sprint(no)
}

// ----------------------------------------------------------------------------
// Account and health
// ----------------------------------------------------------------------------

// User prints the signed-in profile.
func User(w io.Writer, u *api.User) {
	if u == nil {
		fmt.Fprintln(w, "Not signed in. Run 'login' to sign in with GitHub.")
		return
	}
	fmt.Fprintf(w, "Signed in as %s\n", heading.Sprint(u.Username))
	if u.Email != "" {
		fmt.Fprintf(w, "  Email:    %s\n", u.Email)
	}
	fmt.Fprintf(w, "  Level 0:  %s\n", status(u.Level0Completed, "completed", "in progress"))
	fmt.Fprintf(w, "  Level 1:  %s\n", status(u.Level1Completed, "completed", "in progress"))
}

// Health prints the gateway health payload.
func Health(w io.Writer, h *api.Health) {
	fmt.Fprintf(w, "Backend:  %s\n", status(h.Status == "healthy", h.Status, h.Status))
	names := make([]string, 0, len(h.Services))
	for name := range h.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := h.Services[name]
		fmt.Fprintf(w, "  %-8s %s\n", name+":", status(v == "available", v, v))
	}
}

// GenerationHealth prints the Level 1 generator status.
func GenerationHealth(w io.Writer, h *api.GenerationHealth) {
	fmt.Fprintf(w, "Generator: %s\n", status(h.Available, "available", "unavailable"))
	if h.Message != "" {
		fmt.Fprintf(w, "  %s\n", h.Message)
	}
}

// Failure prints a user-facing failure line.
func Failure(w io.Writer, msg string) {
	bad.Fprintf(w, "✗ %s\n", msg)
}

// ----------------------------------------------------------------------------
// Guided mode
// ----------------------------------------------------------------------------

// Sections prints the Level 0 outline with completion marks.
func Sections(w io.Writer, sections []curriculum.Section, completed []string) {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	title(w, "Level 0: Software Testing Fundamentals")
	n := 0
	for i, s := range sections {
		mark := muted.Sprint("○")
		if done[s.ID] {
			mark = good.Sprint("✓")
			n++
		}
		fmt.Fprintf(w, "%s %d. %s %s\n", mark, i+1, s.Title, muted.Sprintf("(%s)", s.ID))
	}
	fmt.Fprintf(w, "\n%d/%d sections completed\n", n, len(sections))
}

// Section prints one lesson.
func Section(w io.Writer, s curriculum.Section, done bool) {
	title(w, s.Title)
	fmt.Fprintln(w, s.Body)
	if done {
		good.Fprintln(w, "✓ Completed")
	}
}

// Content prints the backend's educational text.
func Content(w io.Writer, c *api.EducationalContent) {
	title(w, "From the tutor")
	fmt.Fprintln(w, c.Content)
	if c.Model != "" {
		muted.Fprintf(w, "(%s)\n", c.Model)
	}
}

// Examples prints numbered ready-made descriptions.
func Examples(w io.Writer, ex []api.Example) {
	if len(ex) == 0 {
		fmt.Fprintln(w, "No examples available.")
		return
	}
	for i, e := range ex {
		fmt.Fprintf(w, "%d. %s", i+1, heading.Sprint(e.Title))
		if e.Category != "" {
			muted.Fprintf(w, " [%s]", e.Category)
		}
		fmt.Fprintf(w, "\n   %s\n", e.Description)
	}
}

// GeneratedCode prints a Level 1 result.
func GeneratedCode(w io.Writer, r *api.GeneratedCode) {
	lang := r.Language
	if lang == "" {
		lang = "code"
	}
	title(w, "Generated "+lang)
	code.Fprintln(w, r.Code)
	if r.Explanation != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", heading.Sprint("Explanation"), r.Explanation)
	}
	if len(r.Steps) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Sprint("Steps"))
		for i, s := range r.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
	if r.Model != "" {
		muted.Fprintf(w, "\nGenerated by %s\n", r.Model)
	}
}

// ----------------------------------------------------------------------------
// Production mode
// ----------------------------------------------------------------------------

// Repositories prints the user's repositories, marking the selected one.
func Repositories(w io.Writer, repos []api.Repository, selected string) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found.")
		return
	}
	for _, r := range repos {
		mark := " "
		if strings.EqualFold(r.FullName, selected) {
			mark = good.Sprint("●")
		}
		vis := ""
		if r.Private {
			vis = muted.Sprint(" (private)")
		}
		fmt.Fprintf(w, "%s %s%s", mark, r.FullName, vis)
		if r.Language != "" {
			muted.Fprintf(w, "  %s", r.Language)
		}
		fmt.Fprintln(w)
		if r.Description != "" {
			fmt.Fprintf(w, "    %s\n", r.Description)
		}
	}
}

// Tree prints a repository tree; selected files are checked.
func Tree(w io.Writer, nodes []api.TreeNode, selected []string) {
	set := make(map[string]bool, len(selected))
	for _, p := range selected {
		set[p] = true
	}
	if len(nodes) == 0 {
		fmt.Fprintln(w, "Repository is empty.")
		return
	}
	tree(w, nodes, set, 0)
}

func tree(w io.Writer, nodes []api.TreeNode, selected map[string]bool, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Type == api.NodeDir {
			fmt.Fprintf(w, "%s%s/\n", indent, heading.Sprint(n.Name))
			tree(w, n.Children, selected, depth+1)
			continue
		}
		box := "[ ]"
		if selected[n.Path] {
			box = good.Sprint("[x]")
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, box, n.Name)
	}
}

// Selection summarizes the production selection.
func Selection(w io.Writer, sel *nav.Selection) {
	repo := sel.Repo()
	if repo == nil {
		fmt.Fprintln(w, "Repository: none (use 'repo <owner/name>')")
		return
	}
	fmt.Fprintf(w, "Repository: %s\n", repo.FullName)
	switch sel.Scope() {
	case nav.ScopeWholeProject:
		fmt.Fprintln(w, "Scope:      whole project")
	case nav.ScopeSpecificFiles:
		files := sel.Files()
		fmt.Fprintf(w, "Scope:      %d specific files\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	default:
		fmt.Fprintln(w, "Scope:      none (use 'scope whole' or 'scope files')")
	}
}

// Outcome prints the result of a production action.
func Outcome(w io.Writer, o *workflow.Outcome) {
	title(w, o.Action.Title())
	switch {
	case o.Analysis != nil:
		fmt.Fprintln(w, o.Analysis.Analysis)
		if len(o.Analysis.Suggestions) > 0 {
			fmt.Fprintf(w, "\n%s\n", heading.Sprint("Suggestions"))
			for _, s := range o.Analysis.Suggestions {
				fmt.Fprintf(w, "  • %s\n", s)
			}
		}
	case o.Test != nil:
		code.Fprintln(w, o.Test.Code)
		if o.Test.Explanation != "" {
			fmt.Fprintf(w, "\n%s\n", o.Test.Explanation)
		}
	}
}

// OutcomeValue is the structured form of an outcome.
func OutcomeValue(o *workflow.Outcome) any {
	if o.Test != nil {
		return o.Test
	}
	return o.Analysis
}
