// ABOUTME: End-to-end tests for the toolhouse-hub commands
// ABOUTME: Runs the cobra tree against the fake Toolhouse server with file-backed history

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/toolhouse-hub/internal/config"
	"github.com/2389/toolhouse-hub/internal/fakeserver"
)

type testEnv struct {
	t          *testing.T
	configPath string
	serverURL  string
	dataDir    string
}

// newTestEnv writes a catalog and config pointing at a fake server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := httptest.NewServer(fakeserver.New(fakeserver.Config{ChunkSize: 5}, nil).Handler())
	t.Cleanup(srv.Close)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "agents.yaml")
	catalogYAML := fmt.Sprintf(`categories: [Productivity, Career]
agents:
  - id: echo
    name: Echo
    description: Repeats what you say.
    category: Productivity
    color: "#00f0ff"
    icon: Mail
    endpoint: %[1]s/agents/echo
    featured: true
    suggestions:
      - Say something nice
  - id: coach
    name: Interview Coach
    description: Runs mock interviews.
    category: Career
    color: "#ffb800"
    icon: GraduationCap
    endpoint: %[1]s/agents/coach
  - id: broken
    name: Broken
    description: Always fails.
    category: Career
    endpoint: %[2]s/agents/broken
`, srv.URL, failing.URL)
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogYAML), 0644))

	configPath := filepath.Join(dir, "config.toml")
	dataDir := filepath.Join(dir, "data")
	configTOML := fmt.Sprintf(`[catalog]
path = %q

[storage]
backend = "file"
path = %q

[logging]
level = "error"

[ui]
color = "never"
`, catalogPath, dataDir)
	require.NoError(t, os.WriteFile(configPath, []byte(configTOML), 0644))

	return &testEnv{t: t, configPath: configPath, serverURL: srv.URL, dataDir: dataDir}
}

// run executes the CLI with stdin and returns stdout.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	c := newCLI(strings.NewReader(stdin), &out, &errOut)
	err := c.execute(context.Background(), append([]string{"--config", e.configPath}, args...))
	return out.String(), err
}

func (e *testEnv) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, err := e.run(stdin, args...)
	require.NoError(e.t, err, out)
	return out
}

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func (e *testEnv) historyIDs() []string {
	e.t.Helper()
	return uuidRe.FindAllString(e.mustRun("", "history", "list"), -1)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	err := newCLI(strings.NewReader(""), &out, &out).execute(context.Background(), []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "toolhouse-hub dev\n", out.String())
}

func TestAgents(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("", "agents")
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "Interview Coach")

	out = env.mustRun("", "agents", "--category", "Career")
	assert.NotContains(t, out, "Repeats what you say")
	assert.Contains(t, out, "Interview Coach")

	out = env.mustRun("", "agents", "--search", "MOCK")
	assert.Contains(t, out, "Interview Coach")
	assert.NotContains(t, out, "Echo")

	out = env.mustRun("", "agents", "--featured")
	assert.Contains(t, out, "Echo")
	assert.NotContains(t, out, "Interview Coach")

	out = env.mustRun("", "agents", "--search", "nothing-like-this")
	assert.Contains(t, out, "No agents match.")

	_, err := env.run("", "agents", "--category", "Cooking")
	assert.ErrorContains(t, err, "unknown category")
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("", "categories")
	assert.Regexp(t, `All\s+3`, out)
	assert.Regexp(t, `Career\s+2`, out)
	assert.Regexp(t, `Productivity\s+1`, out)
}

func TestChat_OneShotSavesHistory(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("", "chat", "echo", "--message", "hello there")
	assert.Contains(t, out, "turn 1")
	assert.Contains(t, out, "hello there")
	assert.NotContains(t, out, "**", "reply is rendered, not raw markdown")

	ids := env.historyIDs()
	require.Len(t, ids, 1)

	out = env.mustRun("", "history", "show", ids[0])
	assert.Contains(t, out, "you> hello there")
	assert.Contains(t, out, "turn 1")
}

func TestChat_ResumeContinuesRun(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("", "chat", "echo", "--message", "first")
	ids := env.historyIDs()
	require.Len(t, ids, 1)

	out := env.mustRun("", "chat", "echo", "--resume", ids[0], "--message", "second")
	assert.Contains(t, out, "Resumed conversation")
	assert.Contains(t, out, "turn 2")

	assert.Equal(t, ids, env.historyIDs(), "same run updates the same entry")
}

func TestChat_ResumeUnknownStartsFresh(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("", "chat", "echo", "--resume", "missing", "--message", "hi")
	assert.Contains(t, out, "Conversation not found")
	assert.Contains(t, out, "turn 1")
}

func TestChat_UnknownAgent(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("", "chat", "nobody", "--message", "hi")
	assert.Contains(t, out, "Agent not found: nobody")
}

func TestChat_ErrorIsShownAndNotSaved(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("", "chat", "broken", "--message", "hi")
	require.Error(t, err)
	assert.Contains(t, out, "⚠️ Error: API error: 500 Internal Server Error. Please try again.")
	assert.Empty(t, env.historyIDs())
}

func TestChat_Interactive(t *testing.T) {
	env := newTestEnv(t)

	stdin := strings.Join([]string{
		"hello",
		"/suggest",
		"/suggest 1",
		"/suggest 9",
		"/bogus",
		"/history",
		"/quit",
	}, "\n") + "\n"

	out := env.mustRun(stdin, "chat", "echo")
	assert.Contains(t, out, "Try asking:")
	assert.Contains(t, out, "turn 1")
	assert.Contains(t, out, "turn 2")
	assert.Contains(t, out, "Say something nice")
	assert.Contains(t, out, `No suggestion "9"`)
	assert.Contains(t, out, "Unknown command /bogus")

	ids := env.historyIDs()
	require.Len(t, ids, 1)
	assert.Contains(t, out, ids[0], "/history lists the saved conversation")
}

func TestChat_InteractiveClearStartsNewEntry(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("one\n/clear\ntwo\n", "chat", "echo")

	assert.Len(t, env.historyIDs(), 2)
}

func TestHistory_RemoveAndClear(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("", "chat", "echo", "--message", "a")
	env.mustRun("", "chat", "coach", "--message", "b")
	ids := env.historyIDs()
	require.Len(t, ids, 2)

	out := env.mustRun("", "history", "list", "--agent", "coach")
	assert.Contains(t, out, "Interview Coach")
	assert.NotContains(t, out, "Echo")

	out = env.mustRun("", "history", "rm", "missing")
	assert.Contains(t, out, "Conversation not found")

	out = env.mustRun("", "history", "rm", ids[0])
	assert.Contains(t, out, "1 left")

	out = env.mustRun("n\n", "history", "clear")
	assert.Contains(t, out, "Cancelled.")
	assert.Len(t, env.historyIDs(), 1)

	out = env.mustRun("", "history", "clear", "--yes")
	assert.Contains(t, out, "History cleared.")
	assert.Contains(t, env.mustRun("", "history", "list"), "No saved conversations.")
}

func TestHistory_ClearRemovesUnreadableDocument(t *testing.T) {
	env := newTestEnv(t)

	docPath := filepath.Join(env.dataDir, "toolhouse-chat-history.json")
	require.NoError(t, os.MkdirAll(env.dataDir, 0755))
	require.NoError(t, os.WriteFile(docPath, []byte("{not json"), 0644))

	assert.Contains(t, env.mustRun("", "history", "list"), "No saved conversations.")

	out := env.mustRun("", "history", "clear", "--yes")
	assert.Contains(t, out, "No saved conversations.")

	_, err := os.Stat(docPath)
	assert.True(t, os.IsNotExist(err), "clear should delete the unreadable document")
}

func TestEphemeralKeepsNothing(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("", "--ephemeral", "chat", "echo", "--message", "hi")
	assert.Empty(t, env.historyIDs())
}

func TestInit_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	var out bytes.Buffer

	err := newCLI(strings.NewReader(""), &out, &out).execute(context.Background(),
		[]string{"--config", path, "init", "--defaults"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Config written to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)

	err = newCLI(strings.NewReader(""), &out, &out).execute(context.Background(),
		[]string{"--config", path, "init", "--defaults"})
	assert.ErrorContains(t, err, "already exists")
}

func TestInit_Prompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	var out bytes.Buffer

	answers := "memory\n\n30s\ndebug\n\n"
	err := newCLI(strings.NewReader(answers), &out, &out).execute(context.Background(),
		[]string{"--config", path, "init"})
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "30s", cfg.HTTP.TimeoutRaw)
}

func TestStreamPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &streamPrinter{w: &buf}

	p.write("Hel")
	p.write("Hello")
	p.write("Hello")
	assert.True(t, p.finish("Hello, world"))
	assert.Equal(t, "Hello, world\n", buf.String())

	buf.Reset()
	p = &streamPrinter{w: &buf}
	p.write("partial")
	assert.False(t, p.finish("⚠️ Error: boom. Please try again."))
	assert.Equal(t, "partial\n", buf.String())
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := parseHex("#ff8000")
	require.True(t, ok)
	assert.Equal(t, []int{255, 128, 0}, []int{r, g, b})

	r, g, b, ok = parseHex("0af")
	require.True(t, ok)
	assert.Equal(t, []int{0, 170, 255}, []int{r, g, b})

	_, _, _, ok = parseHex("teal")
	assert.False(t, ok)
}
