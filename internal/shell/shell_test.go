package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/app"
	"github.com/CodexForgeBR/testmate/internal/config"
	"github.com/CodexForgeBR/testmate/internal/curriculum"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/nav"
	"github.com/CodexForgeBR/testmate/internal/session"
	"github.com/CodexForgeBR/testmate/internal/view"
)

func init() {
	color.NoColor = true
}

// backend is a scripted testmate API.
type backend struct {
	mu       sync.Mutex
	analyze  []api.AnalyzeRequest
	tests    []api.GenerateTestRequest
	generate []string
	reposErr bool
	// stall holds generate-code until closed or the request is abandoned.
	stall chan struct{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handler() http.Handler {
	user := api.User{ID: 7, Username: "octo"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.Message{Message: "Logged out successfully"})
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.Health{Status: "healthy", Services: map[string]string{"llama3": "available"}})
	})
	mux.HandleFunc("GET /api/level0/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.EducationalContent{Type: "educational", Content: "Tests give feedback.", Model: "claude"})
	})
	mux.HandleFunc("GET /api/level1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.GenerationHealth{Available: true, Status: "ok"})
	})
	mux.HandleFunc("GET /api/level1/examples", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.Examples{Examples: []api.Example{
			{Title: "Login", Description: "Test login with valid credentials", Category: "auth"},
		}})
	})
	mux.HandleFunc("POST /api/level1/generate-code", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TestDescription string `json:"test_description"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.generate = append(b.generate, body.TestDescription)
		stall := b.stall
		b.mu.Unlock()
		if stall != nil {
			select {
			case <-stall:
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, http.StatusOK, api.GeneratedCode{Code: "def test_login(): pass", Language: "python", Model: "llama3"})
	})
	mux.HandleFunc("GET /api/production/repositories", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.reposErr
		b.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "GitHub token expired"})
			return
		}
		writeJSON(w, http.StatusOK, api.Repositories{Repositories: []api.Repository{
			{ID: 1, Name: "app", FullName: "octo/app", Language: "Python"},
			{ID: 2, Name: "site", FullName: "octo/site"},
		}})
	})
	mux.HandleFunc("GET /api/production/repository/octo/app/tree", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.Tree{Tree: []api.TreeNode{
			{Name: "src", Path: "src", Type: api.NodeDir, Children: []api.TreeNode{
				{Name: "main.py", Path: "src/main.py", Type: api.NodeFile},
			}},
			{Name: "README.md", Path: "README.md", Type: api.NodeFile},
		}})
	})
	mux.HandleFunc("POST /api/production/analyze-code", func(w http.ResponseWriter, r *http.Request) {
		var req api.AnalyzeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.analyze = append(b.analyze, req)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, api.Analysis{Analysis: "Coverage is thin.", Suggestions: []string{"test main.py"}})
	})
	mux.HandleFunc("POST /api/production/generate-test", func(w http.ResponseWriter, r *http.Request) {
		var req api.GenerateTestRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.tests = append(b.tests, req)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, api.GeneratedTest{Code: "def test_main(): assert True"})
	})
	return mux
}

type harness struct {
	sh  *Shell
	app *app.App
	be  *backend
	out *bytes.Buffer
}

// newHarness builds a shell against a scripted backend. signedIn stores a
// token the backend accepts.
func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()
	be := &backend{}
	srv := httptest.NewServer(be.handler())
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	logging.SetOutput(out, out)
	t.Cleanup(func() { logging.SetOutput(nil, nil) })

	cfg := config.NewDefaultConfig()
	cfg.APIURL = srv.URL
	cfg.OpenBrowser = false
	store := session.NewMemory()
	if signedIn {
		store.SetToken("tok")
		store.SetUser(&api.User{ID: 7, Username: "octo"})
	}
	a, err := app.New(cfg, out, app.Options{Store: store})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &harness{sh: New(a, strings.NewReader(""), out, "test"), app: a, be: be, out: out}
}

// exec runs lines in order, failing the test on the first error.
func (h *harness) exec(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, h.sh.Exec(context.Background(), line), line)
	}
}

func (h *harness) fail(t *testing.T, line string) string {
	t.Helper()
	err := h.sh.Exec(context.Background(), line)
	require.Error(t, err, line)
	return view.ErrorMessage(err)
}

// ----------------------------------------------------------------------------
// Dispatch
// ----------------------------------------------------------------------------

func TestExec_Guards(t *testing.T) {
	tests := []struct {
		name     string
		signedIn bool
		setup    []string
		line     string
		want     string
	}{
		{"unknown command", true, nil, "frobnicate", `unknown command "frobnicate"`},
		{"signed out", false, nil, "mode guided", "Sign in first"},
		{"wrong screen", true, nil, "sections", "'sections' is available in Level 0"},
		{"level outside guided", true, []string{"mode production"}, "level 0", "available in guided mode"},
		{"missing argument", true, []string{"mode guided", "level 0"}, "read", "usage: read <section>"},
		{"bad mode", true, nil, "mode expert", "choose 'guided' or 'production'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.signedIn)
			h.exec(t, tt.setup...)
			assert.Contains(t, h.fail(t, tt.line), tt.want)
		})
	}
}

func TestExec_BlankLineIsIgnored(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "", "   ")
	assert.Empty(t, h.out.String())
}

func TestHelp_ListsCommandsForScreen(t *testing.T) {
	h := newHarness(t, false)
	h.exec(t, "help")
	assert.Contains(t, h.out.String(), "login")
	assert.NotContains(t, h.out.String(), "mode guided|production")
	assert.Contains(t, h.out.String(), "Sign in with 'login'")

	h = newHarness(t, true)
	h.exec(t, "mode guided", "level 1")
	h.out.Reset()
	h.exec(t, "help")
	assert.Contains(t, h.out.String(), "generate")
	assert.NotContains(t, h.out.String(), "sections")

	h.out.Reset()
	h.exec(t, "help tree")
	assert.Contains(t, h.out.String(), "Available in production mode")
}

// ----------------------------------------------------------------------------
// Navigation
// ----------------------------------------------------------------------------

func TestNavigation_WritesFragmentsAndWalksHistory(t *testing.T) {
	h := newHarness(t, true)
	loc := h.app.Navigator.Location()

	h.exec(t, "mode guided", "level 1")
	assert.Equal(t, "guided/level1", loc.Fragment())

	h.exec(t, "back")
	assert.Equal(t, "guided", loc.Fragment())
	assert.Equal(t, nav.State{Mode: nav.ModeGuided}, h.app.Navigator.State())

	writes := loc.Writes()
	h.exec(t, "history back")
	assert.Equal(t, "guided/level1", loc.Fragment())
	assert.Equal(t, nav.Level1, h.app.Navigator.State().Level)
	assert.Equal(t, writes, loc.Writes(), "history traversal never writes")

	h.exec(t, "history forward")
	assert.Equal(t, "guided", loc.Fragment())

	h.exec(t, "back")
	h.out.Reset()
	h.exec(t, "back")
	assert.Contains(t, h.out.String(), "Already at the start.")
}

func TestNavigation_PersistsToSession(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "mode production")
	saved := h.app.Store.Navigation()
	assert.Equal(t, "production", saved.Fragment)
	assert.Equal(t, []string{""}, saved.Back)
}

func TestGo_DeepLinks(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "go #guided/level0")
	assert.Equal(t, nav.State{Mode: nav.ModeGuided, Level: nav.Level0}, h.app.Navigator.State())

	h.exec(t, "go landing")
	assert.Equal(t, nav.Landing, h.app.Navigator.State())

	msg := h.fail(t, "go guided/level9")
	assert.Contains(t, msg, "unknown screen")
	assert.Contains(t, msg, "guided/level1")
}

// ----------------------------------------------------------------------------
// Account
// ----------------------------------------------------------------------------

func TestLogout_ClearsSessionAndNavigation(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "mode production", "repos", "logout")

	assert.False(t, h.app.Store.IsAuthenticated())
	assert.Equal(t, "", h.app.Navigator.Location().Fragment())
	assert.Nil(t, h.sh.repos)
	assert.Contains(t, h.out.String(), "Signed out.")
}

func TestLogin_WhenSignedIn(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "login")
	assert.Contains(t, h.out.String(), "Already signed in as octo")
}

func TestWhoamiStatusAndHealth(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "whoami", "status", "health")
	out := h.out.String()
	assert.Contains(t, out, "octo")
	assert.Contains(t, out, "in memory")
	assert.Contains(t, out, "healthy")
}

// ----------------------------------------------------------------------------
// Guided mode
// ----------------------------------------------------------------------------

func TestLevel0_ReadAndComplete(t *testing.T) {
	all, err := curriculum.Sections()
	require.NoError(t, err)

	h := newHarness(t, true)
	h.exec(t, "mode guided", "level 0", "sections", "read 1", "done 1")
	assert.Equal(t, []string{all[0].ID}, h.app.Store.CompletedSections())
	assert.Contains(t, h.out.String(), all[0].Title)

	h.out.Reset()
	h.exec(t, "done "+all[0].ID)
	assert.Contains(t, h.out.String(), "already completed")

	assert.Contains(t, h.fail(t, "read 99"), "unknown section")

	h.out.Reset()
	h.exec(t, "tutor")
	assert.Contains(t, h.out.String(), "Tests give feedback.")
}

func TestLevel0_FinishingAllSections(t *testing.T) {
	all, err := curriculum.Sections()
	require.NoError(t, err)

	h := newHarness(t, true)
	h.exec(t, "mode guided", "level 0")
	for _, s := range all {
		h.exec(t, "done "+s.ID)
	}
	assert.Contains(t, h.out.String(), "Level 0 complete!")
}

func TestLevel1_GenerateFromExample(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "mode guided", "level 1")

	assert.Contains(t, h.fail(t, "generate"), "Please provide a test description")

	h.exec(t, "examples", "example 1", "generate")
	out := h.out.String()
	assert.Contains(t, out, "1. Login [auth]")
	assert.Contains(t, out, "Checking that the code generator is running...")
	assert.Contains(t, out, "def test_login(): pass")
	assert.Equal(t, []string{"Test login with valid credentials"}, h.be.generate)

	assert.Contains(t, h.fail(t, "generate"), "type 'reset'")
	assert.Contains(t, h.fail(t, "example 5"), "between 1 and 1")

	h.exec(t, "reset")
	assert.Empty(t, h.app.Generator.Description())
}

func TestLevel1_DescribeLimits(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "mode guided", "level 1", "describe")
	assert.Contains(t, h.out.String(), "No description yet.")

	h.out.Reset()
	h.exec(t, "describe "+strings.Repeat("a", 2001))
	assert.Contains(t, h.out.String(), "(2001/2000 characters)")
	assert.Contains(t, h.out.String(), "too long")

	assert.Contains(t, h.fail(t, "generate"), "under 2000 characters")
	assert.Empty(t, h.be.generate)
}

func TestLevel1_Attachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.txt")
	require.NoError(t, os.WriteFile(path, []byte("Given a user\nWhen they log in\nThen they see the dashboard"), 0o644))

	h := newHarness(t, true)
	h.exec(t, "mode guided", "level 1", "attach "+path)
	assert.Contains(t, h.out.String(), "Attached scenario.txt")

	h.exec(t, "generate")
	require.Len(t, h.be.generate, 1)
	assert.Contains(t, h.be.generate[0], "When they log in")

	h.exec(t, "reset", "detach")
	assert.Contains(t, h.out.String(), "No file attached.")

	assert.Contains(t, h.fail(t, "attach notes.exe"), "unsupported file type")
}

// ----------------------------------------------------------------------------
// Production mode
// ----------------------------------------------------------------------------

func TestProduction_SelectAndAct(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "mode production")

	assert.Contains(t, h.fail(t, "tree"), "select a repository first")
	assert.Contains(t, h.fail(t, "analyze"), "Select a repository")

	h.exec(t, "repos", "repo app")
	assert.Contains(t, h.out.String(), "Selected octo/app.")

	assert.Contains(t, h.fail(t, "select src/main.py"), "scope files")

	h.exec(t, "scope files", "tree", "select src/main.py", "selection")
	out := h.out.String()
	assert.Contains(t, out, "[ ] main.py")
	assert.Contains(t, out, "+ src/main.py (1 selected)")
	assert.Contains(t, out, "  - src/main.py")

	assert.Contains(t, h.fail(t, "select src"), "is a directory")

	h.exec(t, "analyze")
	assert.Contains(t, h.fail(t, "test cover the happy path"), "type 'clear'")
	assert.Empty(t, h.be.tests)
	h.exec(t, "clear", "test cover the happy path")
	require.Len(t, h.be.analyze, 1)
	assert.Contains(t, h.be.analyze[0].RepoContext, "octo/app")
	require.Len(t, h.be.tests, 1)
	assert.Equal(t, "src/main.py", h.be.tests[0].FilePath)
	assert.Equal(t, "cover the happy path", h.be.tests[0].UserRequest)
	assert.Contains(t, h.out.String(), "def test_main(): assert True")

	h.exec(t, "clear")
	assert.Nil(t, h.app.Production.Last())
}

func TestProduction_ReselectClearsFiles(t *testing.T) {
	h := newHarness(t, true)
	h.exec(t, "mode production", "repo octo/app", "scope files", "select README.md", "repo octo/site")

	sel := h.app.Navigator.Selection()
	assert.Equal(t, "octo/site", sel.Repo().FullName)
	assert.Equal(t, nav.ScopeNone, sel.Scope())
	assert.Empty(t, sel.Files())
	assert.Empty(t, h.sh.treeRepo)
}

func TestProduction_BackendUnauthorized(t *testing.T) {
	h := newHarness(t, true)
	h.be.reposErr = true
	h.exec(t, "mode production")
	assert.Equal(t, "GitHub token expired", h.fail(t, "repos"))
	assert.True(t, h.app.Store.IsAuthenticated())
}

// ----------------------------------------------------------------------------
// Run loop
// ----------------------------------------------------------------------------

func TestRun_ScriptedSession(t *testing.T) {
	h := newHarness(t, true)
	h.sh.in = strings.NewReader("mode guided\nlevel 0\nbogus\nquit\nstatus\n")

	require.NoError(t, h.sh.Run(context.Background()))
	out := h.out.String()
	assert.Contains(t, out, "User:       octo")
	assert.Contains(t, out, "▶ Choose your path")
	assert.Contains(t, out, "▶ Level 0: Software Testing Fundamentals")
	assert.Contains(t, out, "testmate:guided/level0> ")
	assert.Contains(t, out, `✗ unknown command "bogus"`)
	assert.NotContains(t, out, "Screen:", "commands after quit are not run")
}

func TestRun_RejectedTokenSignsOut(t *testing.T) {
	h := newHarness(t, false)
	h.app.Store.SetToken("stale")
	h.app.Navigator.Location().Visit("guided/level1")
	require.NoError(t, h.sh.Run(context.Background()))
	assert.False(t, h.app.Store.IsAuthenticated())
	assert.Contains(t, h.out.String(), "Your session expired")
	assert.Equal(t, nav.Landing, h.app.Navigator.State())
	assert.NotContains(t, h.out.String(), "testmate:guided/level1>")
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	h := newHarness(t, true)
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	h.sh.in = pr

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.sh.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
