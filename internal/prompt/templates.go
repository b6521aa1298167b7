// Package prompt builds the free-text payloads sent to the generation
// backend from embedded templates.
package prompt

import _ "embed"

// Template files embedded at compile time
var (
	//go:embed templates/attached-scenario.txt
	AttachedScenarioTemplate string

	//go:embed templates/repo-scope.txt
	RepoScopeTemplate string

	//go:embed templates/repo-question.txt
	RepoQuestionTemplate string
)
