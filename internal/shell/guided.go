package shell

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/curriculum"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/view"
	"github.com/CodexForgeBR/testmate/internal/workflow"
)

// ----------------------------------------------------------------------------
// Level 0
// ----------------------------------------------------------------------------

func (s *Shell) sections(context.Context, string) error {
	all, err := curriculum.Sections()
	if err != nil {
		return err
	}
	view.Sections(s.out, all, s.app.Store.CompletedSections())
	return nil
}

func (s *Shell) read(_ context.Context, arg string) error {
	sec, err := curriculum.Find(arg)
	if err != nil {
		return err
	}
	view.Section(s.out, sec, slices.Contains(s.app.Store.CompletedSections(), sec.ID))
	return nil
}

func (s *Shell) done(_ context.Context, arg string) error {
	sec, err := curriculum.Find(arg)
	if err != nil {
		return err
	}
	if !s.app.Store.MarkSectionComplete(sec.ID) {
		fmt.Fprintf(s.out, "'%s' was already completed.\n", sec.Title)
		return nil
	}
	n, total := curriculum.Progress(s.app.Store.CompletedSections())
	logging.Success(fmt.Sprintf("Completed '%s' (%d/%d)", sec.Title, n, total))
	if n == total {
		fmt.Fprintln(s.out, "Level 0 complete! Type 'back', then 'level 1' to start generating tests.")
	}
	return nil
}

func (s *Shell) tutor(ctx context.Context, _ string) error {
	c, err := s.app.Client.Level0Content(ctx)
	if err != nil {
		return err
	}
	view.Content(s.out, c)
	return nil
}

// ----------------------------------------------------------------------------
// Level 1
// ----------------------------------------------------------------------------

func (s *Shell) describe(_ context.Context, arg string) error {
	g := s.app.Generator
	if arg == "" {
		d := g.Description()
		if d == "" {
			fmt.Fprintln(s.out, "No description yet. Type 'describe <text>' or pick one with 'example <n>'.")
			return nil
		}
		fmt.Fprintln(s.out, d)
		fmt.Fprintf(s.out, "(%d/%d characters)\n", utf8.RuneCountInString(d), workflow.MaxInputChars)
		return nil
	}
	return s.setDescription(arg)
}

func (s *Shell) setDescription(text string) error {
	if err := s.app.Generator.SetDescription(text); err != nil {
		return err
	}
	n := utf8.RuneCountInString(text)
	fmt.Fprintf(s.out, "Description set (%d/%d characters).\n", n, workflow.MaxInputChars)
	if n > workflow.MaxInputChars {
		logging.Warn("This description is too long and will be rejected.")
	}
	return nil
}

// edit is served by the program's editor; piped input has no terminal to
// draw it on.
func (s *Shell) edit(context.Context, string) error {
	return errors.New("the editor needs a terminal, use 'describe <text>' instead")
}

func (s *Shell) attach(_ context.Context, arg string) error {
	a, err := workflow.LoadAttachment(arg)
	if err != nil {
		return err
	}
	if err := s.app.Generator.Attach(a); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Attached %s (%d bytes). Its content is used instead of the description.\n", a.Name, a.Size())
	return nil
}

func (s *Shell) detach(context.Context, string) error {
	if s.app.Generator.Attachment() == nil {
		fmt.Fprintln(s.out, "No file attached.")
		return nil
	}
	if err := s.app.Generator.Detach(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "File removed.")
	return nil
}

func (s *Shell) loadExamples(ctx context.Context) ([]api.Example, error) {
	if s.examples != nil {
		return s.examples, nil
	}
	res, err := s.app.Client.Examples(ctx)
	if err != nil {
		return nil, err
	}
	s.examples = append([]api.Example{}, res.Examples...)
	return s.examples, nil
}

func (s *Shell) listExamples(ctx context.Context, _ string) error {
	ex, err := s.loadExamples(ctx)
	if err != nil {
		return err
	}
	view.Examples(s.out, ex)
	return nil
}

func (s *Shell) useExample(ctx context.Context, arg string) error {
	ex, err := s.loadExamples(ctx)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(ex) {
		return fmt.Errorf("choose an example between 1 and %d", len(ex))
	}
	chosen := ex[n-1]
	if err := s.app.Generator.SetDescription(chosen.Description); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Using example '%s'. Type 'generate' when ready.\n", chosen.Title)
	return nil
}

func (s *Shell) generate(ctx context.Context, _ string) error {
	out, err := s.app.Generator.Submit(ctx)
	if errors.Is(err, workflow.ErrResultShown) {
		return fmt.Errorf("a result is already shown, type 'reset' to start over")
	}
	if err != nil {
		return err
	}
	view.GeneratedCode(s.out, out)
	return nil
}

func (s *Shell) reset(context.Context, string) error {
	if err := s.app.Generator.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Cleared. Describe a new test to start over.")
	return nil
}

func (s *Shell) check(ctx context.Context, _ string) error {
	if s.app.Generator.CheckAvailability(ctx) != workflow.AvailabilityAvailable {
		if f := s.app.Generator.Failure(); f != nil {
			return f
		}
		return fmt.Errorf("the code generator is not available")
	}
	logging.Success("The code generator is running.")
	return nil
}
