package api

// Response and request payloads of the backend, one type per endpoint.
// Struct tags drive both JSON decoding and response validation.

// Health is returned by GET /api/health.
type Health struct {
	Status   string            `json:"status" yaml:"status" validate:"required"`
	Services map[string]string `json:"services" yaml:"services"`
}

// GenerationReady reports whether the health payload lists the generation
// model as available.
func (h *Health) GenerationReady() bool {
	return h.Services["llama3"] == "available"
}

// LoginURL is returned by GET /api/auth/github/login.
type LoginURL struct {
	AuthURL string `json:"auth_url" validate:"required,url"`
}

// User is the profile returned by token verification. Display only.
type User struct {
	ID              int64  `json:"id" yaml:"id" validate:"required"`
	Username        string `json:"username" yaml:"username" validate:"required"`
	Email           string `json:"email,omitempty" yaml:"email,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	Level0Completed bool   `json:"level0_completed" yaml:"level0_completed"`
	Level1Completed bool   `json:"level1_completed" yaml:"level1_completed"`
}

// Message is a plain acknowledgement body.
type Message struct {
	Message string `json:"message" yaml:"message"`
}

// EducationalContent is returned by GET /api/level0/content.
type EducationalContent struct {
	Type    string `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content" validate:"required"`
	Model   string `json:"model" yaml:"model"`
}

// GeneratedCode is the result of POST /api/level1/generate-code.
type GeneratedCode struct {
	Type        string   `json:"type" yaml:"type"`
	Code        string   `json:"code" yaml:"code" validate:"required"`
	Explanation string   `json:"explanation" yaml:"explanation"`
	Steps       []string `json:"steps" yaml:"steps"`
	Language    string   `json:"language" yaml:"language"`
	Model       string   `json:"model" yaml:"model"`
}

// Example is a ready-made Level 1 test description.
type Example struct {
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description" yaml:"description" validate:"required"`
	Category    string `json:"category" yaml:"category"`
}

// Examples is returned by GET /api/level1/examples.
type Examples struct {
	Examples []Example `json:"examples" yaml:"examples" validate:"dive"`
}

// GenerationHealth is returned by GET /api/level1/health.
type GenerationHealth struct {
	Available bool   `json:"llama3_available" yaml:"llama3_available"`
	Status    string `json:"status" yaml:"status"`
	Message   string `json:"message" yaml:"message"`
}

// Repository is one entry of the user's repository listing.
type Repository struct {
	ID            int64  `json:"id" yaml:"id" validate:"required"`
	Name          string `json:"name" yaml:"name" validate:"required"`
	FullName      string `json:"full_name" yaml:"full_name" validate:"required"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Private       bool   `json:"private" yaml:"private"`
	HTMLURL       string `json:"html_url,omitempty" yaml:"html_url,omitempty"`
	Language      string `json:"language,omitempty" yaml:"language,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
}

// Repositories is returned by GET /api/production/repositories.
type Repositories struct {
	Repositories []Repository `json:"repositories" yaml:"repositories" validate:"dive"`
}

// Node types of a repository tree.
const (
	NodeFile = "file"
	NodeDir  = "dir"
)

// TreeNode is one file or directory of a repository tree.
type TreeNode struct {
	Name     string     `json:"name" yaml:"name" validate:"required"`
	Path     string     `json:"path" yaml:"path" validate:"required"`
	Type     string     `json:"type" yaml:"type" validate:"oneof=file dir"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
}

// Tree is returned by GET /api/production/repository/{owner}/{repo}/tree.
type Tree struct {
	Tree []TreeNode `json:"tree" yaml:"tree" validate:"dive"`
}

// AnalyzeRequest is the body of POST /api/production/analyze-code.
type AnalyzeRequest struct {
	Code        string `json:"code"`
	RepoContext string `json:"repo_context"`
}

// Analysis is the result of POST /api/production/analyze-code.
type Analysis struct {
	Analysis    string   `json:"analysis" yaml:"analysis" validate:"required"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// GenerateTestRequest is the body of POST /api/production/generate-test.
type GenerateTestRequest struct {
	RepoName    string `json:"repo_name"`
	FilePath    string `json:"file_path"`
	CodeSnippet string `json:"code_snippet"`
	UserRequest string `json:"user_request"`
}

// GeneratedTest is the result of POST /api/production/generate-test.
type GeneratedTest struct {
	Code        string `json:"code" yaml:"code" validate:"required"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

type generateCodeRequest struct {
	TestDescription string `json:"test_description"`
}
