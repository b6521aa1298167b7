// Package github provides helpers for the GitHub repositories the backend
// exposes: parsing repository references and walking file trees.
package github

import (
	"fmt"
	"strings"

	"github.com/CodexForgeBR/testmate/internal/api"
)

// ParseRepoRef parses a repository reference.
// Accepts "owner/repo" or a GitHub URL.
//
// Examples:
//   - "CodexForgeBR/testmate" → ("CodexForgeBR", "testmate", nil)
//   - "https://github.com/octo/app.git" → ("octo", "app", nil)
//   - "app" → ("", "", error)
func ParseRepoRef(ref string) (owner, repo string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", fmt.Errorf("empty repository reference")
	}

	path := ref
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		if strings.HasPrefix(path, prefix) {
			path = strings.TrimPrefix(path, prefix)
			break
		}
	}
	path = strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git")

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository reference: expected 'owner/repo', got %q", ref)
	}
	return parts[0], parts[1], nil
}

// SplitFullName splits a repository's full name into owner and repo.
func SplitFullName(r *api.Repository) (owner, repo string, err error) {
	if r == nil {
		return "", "", fmt.Errorf("no repository")
	}
	return ParseRepoRef(r.FullName)
}

// FindRepo looks up ref in repos. ref may be a full name ("owner/repo") or a
// bare name when that name is unique. Matching ignores case.
func FindRepo(repos []api.Repository, ref string) (*api.Repository, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty repository reference")
	}

	if strings.Contains(ref, "/") {
		owner, name, err := ParseRepoRef(ref)
		if err != nil {
			return nil, err
		}
		full := owner + "/" + name
		for i := range repos {
			if strings.EqualFold(repos[i].FullName, full) {
				return &repos[i], nil
			}
		}
		return nil, fmt.Errorf("repository %q not found", ref)
	}

	var match *api.Repository
	for i := range repos {
		if !strings.EqualFold(repos[i].Name, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("repository name %q is ambiguous: %s and %s", ref, match.FullName, repos[i].FullName)
		}
		match = &repos[i]
	}
	if match == nil {
		return nil, fmt.Errorf("repository %q not found", ref)
	}
	return match, nil
}
