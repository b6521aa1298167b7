package api

import (
	"context"
	"net/http"
	"net/url"
)

// Health probes GET /api/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, call{class: short, method: http.MethodGet, path: "/api/health", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginURL fetches the OAuth authorization URL.
func (c *Client) LoginURL(ctx context.Context) (*LoginURL, error) {
	var out LoginURL
	if err := c.do(ctx, call{class: short, method: http.MethodGet, path: "/api/auth/github/login", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken checks token with the backend and returns its owner. The token
// is passed explicitly because it is verified before being trusted.
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	var out User
	err := c.do(ctx, call{
		class:  short,
		method: http.MethodPost,
		path:   "/api/auth/verify",
		query:  url.Values{"token": {token}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the profile of the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	tok, err := c.requireToken("GET /api/auth/me")
	if err != nil {
		return nil, err
	}
	var out User
	err = c.do(ctx, call{
		class:  short,
		method: http.MethodGet,
		path:   "/api/auth/me",
		query:  url.Values{"token": {tok}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend the session is over.
func (c *Client) Logout(ctx context.Context) (*Message, error) {
	var out Message
	if err := c.do(ctx, call{class: short, method: http.MethodPost, path: "/api/auth/logout", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Level0Content fetches the fundamentals text.
func (c *Client) Level0Content(ctx context.Context) (*EducationalContent, error) {
	var out EducationalContent
	if err := c.do(ctx, call{class: short, method: http.MethodGet, path: "/api/level0/content", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateCode turns a test description into Selenium code. Runs under the
// extended timeout.
func (c *Client) GenerateCode(ctx context.Context, description string) (*GeneratedCode, error) {
	var out GeneratedCode
	err := c.do(ctx, call{
		class:  extended,
		method: http.MethodPost,
		path:   "/api/level1/generate-code",
		body:   generateCodeRequest{TestDescription: description},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Examples lists ready-made test descriptions.
func (c *Client) Examples(ctx context.Context) (*Examples, error) {
	var out Examples
	if err := c.do(ctx, call{class: short, method: http.MethodGet, path: "/api/level1/examples", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerationHealth probes the generation backend.
func (c *Client) GenerationHealth(ctx context.Context) (*GenerationHealth, error) {
	var out GenerationHealth
	if err := c.do(ctx, call{class: short, method: http.MethodGet, path: "/api/level1/health", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Repositories lists the signed-in user's repositories.
func (c *Client) Repositories(ctx context.Context) (*Repositories, error) {
	tok, err := c.requireToken("GET /api/production/repositories")
	if err != nil {
		return nil, err
	}
	var out Repositories
	err = c.do(ctx, call{
		class:  short,
		method: http.MethodGet,
		path:   "/api/production/repositories",
		query:  url.Values{"token": {tok}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RepositoryTree fetches the file tree of owner/repo.
func (c *Client) RepositoryTree(ctx context.Context, owner, repo string) (*Tree, error) {
	path := "/api/production/repository/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/tree"
	tok, err := c.requireToken("GET " + path)
	if err != nil {
		return nil, err
	}
	var out Tree
	err = c.do(ctx, call{
		class:  short,
		method: http.MethodGet,
		path:   path,
		query:  url.Values{"token": {tok}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeCode asks the model to review code or a repository. Runs under the
// extended timeout.
func (c *Client) AnalyzeCode(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	var out Analysis
	err := c.do(ctx, call{
		class:  extended,
		method: http.MethodPost,
		path:   "/api/production/analyze-code",
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateTest writes a test for a repository file. Runs under the extended
// timeout.
func (c *Client) GenerateTest(ctx context.Context, req GenerateTestRequest) (*GeneratedTest, error) {
	var out GeneratedTest
	err := c.do(ctx, call{
		class:  extended,
		method: http.MethodPost,
		path:   "/api/production/generate-test",
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
