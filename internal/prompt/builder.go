package prompt

import (
	"strconv"
	"strings"
)

// AttachedScenarioPrefix precedes the content of an attached scenario file.
const AttachedScenarioPrefix = "Based on this test scenario:\n\n"

// BuildAttachedScenario wraps the content of an attached file so the model
// reads it as a test scenario.
func BuildAttachedScenario(content string) string {
	return strings.ReplaceAll(AttachedScenarioTemplate, "{{SCENARIO}}", content)
}

// BuildRepoScope describes the repository and work scope for analyze and
// improve actions. fileCount is ignored for the whole project.
func BuildRepoScope(repo string, wholeProject bool, fileCount int) string {
	scope := "Whole Project"
	if !wholeProject {
		scope = strconv.Itoa(fileCount) + " specific files"
	}
	out := strings.ReplaceAll(RepoScopeTemplate, "{{REPO}}", repo)
	return strings.ReplaceAll(out, "{{SCOPE}}", scope)
}

// BuildRepoQuestion carries a free-form user question about a repository.
func BuildRepoQuestion(repo, question string) string {
	out := strings.ReplaceAll(RepoQuestionTemplate, "{{REPO}}", repo)
	return strings.ReplaceAll(out, "{{QUESTION}}", question)
}
