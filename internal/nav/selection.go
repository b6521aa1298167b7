package nav

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/CodexForgeBR/testmate/internal/api"
)

// WorkScope says what production actions apply to.
type WorkScope string

const (
	ScopeNone          WorkScope = ""
	ScopeWholeProject  WorkScope = "whole-project"
	ScopeSpecificFiles WorkScope = "specific-files"
)

// ParseScope accepts the scope names and the short forms "whole" and "files".
func ParseScope(s string) (WorkScope, error) {
	switch s {
	case "whole", string(ScopeWholeProject):
		return ScopeWholeProject, nil
	case "files", string(ScopeSpecificFiles):
		return ScopeSpecificFiles, nil
	case "none":
		return ScopeNone, nil
	default:
		return ScopeNone, fmt.Errorf("unknown scope: %q", s)
	}
}

var (
	ErrNoRepo          = errors.New("no repository selected")
	ErrNotFileScope    = errors.New("work scope is not specific-files")
	ErrFileNotSelected = errors.New("file is not selected")
)

// Selection is the production sub-state. Files are only meaningful in the
// specific-files scope.
type Selection struct {
	mu    sync.Mutex
	repo  *api.Repository
	scope WorkScope
	files []string // in the order they were picked
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// SelectRepo switches repository and always resets scope and files.
func (s *Selection) SelectRepo(r *api.Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r != nil {
		cp := *r
		r = &cp
	}
	s.repo = r
	s.scope = ScopeNone
	s.files = nil
}

// Repo returns a copy of the selected repository, or nil.
func (s *Selection) Repo() *api.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return nil
	}
	cp := *s.repo
	return &cp
}

// SetScope changes the work scope. Leaving specific-files drops the files.
func (s *Selection) SetScope(scope WorkScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ErrNoRepo
	}
	if scope != ScopeSpecificFiles {
		s.files = nil
	}
	s.scope = scope
	return nil
}

// Scope returns the current work scope.
func (s *Selection) Scope() WorkScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// AddFile selects path. Adding a selected path again changes nothing.
func (s *Selection) AddFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != ScopeSpecificFiles {
		return ErrNotFileScope
	}
	if !slices.Contains(s.files, path) {
		s.files = append(s.files, path)
	}
	return nil
}

// RemoveFile unselects path.
func (s *Selection) RemoveFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != ScopeSpecificFiles {
		return ErrNotFileScope
	}
	i := slices.Index(s.files, path)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotSelected, path)
	}
	s.files = slices.Delete(s.files, i, i+1)
	return nil
}

// ToggleFile flips the selection of path and reports whether it is now
// selected.
func (s *Selection) ToggleFile(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != ScopeSpecificFiles {
		return false, ErrNotFileScope
	}
	if i := slices.Index(s.files, path); i >= 0 {
		s.files = slices.Delete(s.files, i, i+1)
		return false, nil
	}
	s.files = append(s.files, path)
	return true, nil
}

// Files returns the selected paths, sorted.
func (s *Selection) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.files)
	slices.Sort(out)
	return out
}

// Picked returns the selected paths in the order they were picked.
func (s *Selection) Picked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.files)
}

// Reset empties the selection.
func (s *Selection) Reset() {
	s.SelectRepo(nil)
}
