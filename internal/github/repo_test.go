package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/testmate/internal/api"
)

// TestParseRepoRef_ValidReferences tests parsing valid repository references.
func TestParseRepoRef_ValidReferences(t *testing.T) {
	tests := []struct {
		name          string
		ref           string
		expectedOwner string
		expectedRepo  string
	}{
		{
			name:          "standard reference",
			ref:           "CodexForgeBR/testmate",
			expectedOwner: "CodexForgeBR",
			expectedRepo:  "testmate",
		},
		{
			name:          "owner with dash",
			ref:           "my-org/my-repo",
			expectedOwner: "my-org",
			expectedRepo:  "my-repo",
		},
		{
			name:          "https url",
			ref:           "https://github.com/octo/app",
			expectedOwner: "octo",
			expectedRepo:  "app",
		},
		{
			name:          "clone url",
			ref:           "https://github.com/octo/app.git",
			expectedOwner: "octo",
			expectedRepo:  "app",
		},
		{
			name:          "surrounding whitespace and trailing slash",
			ref:           "  github.com/octo/app/ ",
			expectedOwner: "octo",
			expectedRepo:  "app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoRef(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOwner, owner)
			assert.Equal(t, tt.expectedRepo, repo)
		})
	}
}

// TestParseRepoRef_InvalidReferences tests that malformed references fail.
func TestParseRepoRef_InvalidReferences(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"bare name", "app"},
		{"too many segments", "a/b/c"},
		{"missing owner", "/app"},
		{"missing repo", "octo/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRepoRef(tt.ref)
			assert.Error(t, err)
		})
	}
}

func TestSplitFullName(t *testing.T) {
	owner, repo, err := SplitFullName(&api.Repository{FullName: "octo/app"})
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "app", repo)

	_, _, err = SplitFullName(nil)
	assert.Error(t, err)
}

// ----------------------------------------------------------------------------
// FindRepo
// ----------------------------------------------------------------------------

func TestFindRepo(t *testing.T) {
	repos := []api.Repository{
		{ID: 1, Name: "app", FullName: "octo/app"},
		{ID: 2, Name: "site", FullName: "octo/site"},
		{ID: 3, Name: "site", FullName: "acme/site"},
	}

	t.Run("full name", func(t *testing.T) {
		r, err := FindRepo(repos, "acme/site")
		require.NoError(t, err)
		assert.Equal(t, int64(3), r.ID)
	})

	t.Run("case insensitive", func(t *testing.T) {
		r, err := FindRepo(repos, "OCTO/App")
		require.NoError(t, err)
		assert.Equal(t, int64(1), r.ID)
	})

	t.Run("unique bare name", func(t *testing.T) {
		r, err := FindRepo(repos, "app")
		require.NoError(t, err)
		assert.Equal(t, "octo/app", r.FullName)
	})

	t.Run("ambiguous bare name", func(t *testing.T) {
		_, err := FindRepo(repos, "site")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := FindRepo(repos, "octo/missing")
		assert.Error(t, err)
		_, err = FindRepo(repos, "missing")
		assert.Error(t, err)
		_, err = FindRepo(repos, " ")
		assert.Error(t, err)
	})
}
