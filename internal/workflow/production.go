package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/prompt"
)

// ProductionBackend is the part of the API client the production actions
// need.
type ProductionBackend interface {
	AnalyzeCode(ctx context.Context, req api.AnalyzeRequest) (*api.Analysis, error)
	GenerateTest(ctx context.Context, req api.GenerateTestRequest) (*api.GeneratedTest, error)
}

// Action names a production action.
type Action string

const (
	ActionAnalyze  Action = "analyze"
	ActionImprove  Action = "improve"
	ActionAsk      Action = "custom"
	ActionGenerate Action = "generate"
)

// Title is the heading shown above an action's result.
func (a Action) Title() string {
	switch a {
	case ActionAnalyze:
		return "Analysis Report"
	case ActionImprove:
		return "Improvement Recommendations"
	case ActionGenerate:
		return "Generated Test Code"
	default:
		return "AI Response"
	}
}

// Outcome is the result of one production action. Exactly one of Analysis
// and Test is set.
type Outcome struct {
	Action   Action
	Analysis *api.Analysis
	Test     *api.GeneratedTest
}

const (
	msgNoRepo     = "Select a repository to get started"
	msgNoScope    = "Choose a work scope (whole project or specific files) to enable AI actions"
	msgNoFiles    = "Select at least one file to work on"
	msgNoQuestion = "Please enter a question"
	msgNoTestAsk  = "Please describe the test you want generated"
	msgTooLongAsk = "Request is too long. Please keep it under 2000 characters."
)

// Production runs the repository actions against the current selection. One
// action is in flight at a time.
type Production struct {
	backend ProductionBackend
	sel     *nav.Selection

	mu      sync.Mutex
	busy    bool
	last    *Outcome
	failure *Failure
}

// NewProduction binds the actions to a selection.
func NewProduction(backend ProductionBackend, sel *nav.Selection) *Production {
	return &Production{backend: backend, sel: sel}
}

// Busy reports whether an action is in flight.
func (p *Production) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Last returns the last successful outcome, or nil.
func (p *Production) Last() *Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Failure returns the failure of the last action, or nil.
func (p *Production) Failure() *Failure {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failure
}

// Clear drops the shown outcome and failure ("back to actions"). Another
// action is accepted only after it.
func (p *Production) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = nil
	p.failure = nil
}

// Analyze reviews the selected scope.
func (p *Production) Analyze(ctx context.Context) (*Outcome, error) {
	return p.scoped(ctx, ActionAnalyze)
}

// Improve asks for improvement recommendations on the selected scope.
func (p *Production) Improve(ctx context.Context) (*Outcome, error) {
	return p.scoped(ctx, ActionImprove)
}

func (p *Production) scoped(ctx context.Context, action Action) (*Outcome, error) {
	return p.run(ctx, "", func(repo *api.Repository) (*Outcome, error) {
		whole := p.sel.Scope() == nav.ScopeWholeProject
		req := api.AnalyzeRequest{RepoContext: prompt.BuildRepoScope(repo.FullName, whole, len(p.sel.Files()))}
		out, err := p.backend.AnalyzeCode(ctx, req)
		if err != nil {
			return nil, describe(err, msgProcessFallback)
		}
		return &Outcome{Action: action, Analysis: out}, nil
	})
}

// Ask sends a free-form question about the repository.
func (p *Production) Ask(ctx context.Context, question string) (*Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return nil, p.reject(msgNoQuestion)
	}
	return p.run(ctx, question, func(repo *api.Repository) (*Outcome, error) {
		req := api.AnalyzeRequest{RepoContext: prompt.BuildRepoQuestion(repo.FullName, question)}
		out, err := p.backend.AnalyzeCode(ctx, req)
		if err != nil {
			return nil, describe(err, msgProcessFallback)
		}
		return &Outcome{Action: ActionAsk, Analysis: out}, nil
	})
}

// GenerateTest writes a test for the file picked first, or for the
// repository as a whole.
func (p *Production) GenerateTest(ctx context.Context, request string) (*Outcome, error) {
	if strings.TrimSpace(request) == "" {
		return nil, p.reject(msgNoTestAsk)
	}
	return p.run(ctx, request, func(repo *api.Repository) (*Outcome, error) {
		req := api.GenerateTestRequest{RepoName: repo.FullName, UserRequest: request}
		if files := p.sel.Picked(); len(files) > 0 {
			req.FilePath = files[0]
		}
		out, err := p.backend.GenerateTest(ctx, req)
		if err != nil {
			return nil, describe(err, msgTestFallback)
		}
		return &Outcome{Action: ActionGenerate, Test: out}, nil
	})
}

// run checks the prerequisites, claims the single in-flight slot and records
// the outcome.
func (p *Production) run(ctx context.Context, text string, fn func(*api.Repository) (*Outcome, error)) (*Outcome, error) {
	if len([]rune(text)) > MaxInputChars {
		return nil, p.reject(msgTooLongAsk)
	}
	repo := p.sel.Repo()
	switch {
	case repo == nil:
		return nil, p.reject(msgNoRepo)
	case p.sel.Scope() == nav.ScopeNone:
		return nil, p.reject(msgNoScope)
	case p.sel.Scope() == nav.ScopeSpecificFiles && len(p.sel.Files()) == 0:
		return nil, p.reject(msgNoFiles)
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	if p.last != nil {
		p.mu.Unlock()
		return nil, ErrResultShown
	}
	p.busy = true
	p.last = nil
	p.failure = nil
	p.mu.Unlock()

	out, err := fn(repo)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if err != nil {
		f, _ := err.(*Failure)
		p.failure = f
		return nil, err
	}
	p.last = out
	return out, nil
}

func (p *Production) reject(msg string) *Failure {
	f := validationFailure(msg)
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.busy {
		p.failure = f
	}
	return f
}
