package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quotebox/internal/devremote"
)

type cliEnv struct {
	dir    string
	config string
}

func newCLIEnv(t *testing.T, extra string) cliEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	body := `data_dir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"` + "\n" + extra
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return cliEnv{dir: dir, config: cfg}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_AddShowCategories(t *testing.T) {
	env := newCLIEnv(t, "sync_enabled = false")

	out, err := env.run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Inspiration (1)")
	assert.Contains(t, out, "Motivation (1)")
	assert.Contains(t, out, "Wisdom (1)")

	out, err = env.run(t, "add", "--text", "Stay curious.", "--category", "Learning")
	require.NoError(t, err)
	assert.Contains(t, out, "(Learning)")

	_, err = env.run(t, "add", "--text", " ", "--category", "Learning")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid quote")

	out, err = env.run(t, "show", "--category", "Learning")
	require.NoError(t, err)
	assert.Contains(t, out, `"Stay curious."`)

	out, err = env.run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "* Learning (1)", "show --category is remembered")
}

func TestCLI_ExportImport(t *testing.T) {
	env := newCLIEnv(t, "sync_enabled = false")
	exported := filepath.Join(env.dir, "out.json")

	out, err := env.run(t, "export", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 3 quotes")

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "pretty printed with two spaces")

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o600))
	_, err = env.run(t, "import", bad)
	require.Error(t, err)

	one := filepath.Join(env.dir, "one.json")
	require.NoError(t, os.WriteFile(one, []byte(`[{"text":"Only one","category":"Solo"}]`), 0o600))
	out, err = env.run(t, "import", one)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 quotes")

	out, err = env.run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Only one")
}

func TestCLI_SyncDisabled(t *testing.T) {
	env := newCLIEnv(t, "")
	_, err := env.run(t, "--offline", "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync is disabled")
}

func TestCLI_SyncAgainstStandIn(t *testing.T) {
	server := devremote.NewServer(nil, func() time.Time { return time.UnixMilli(2_000_000_000_000) },
		devremote.Post{Title: "From the server", Body: "x", Category: "Remote", UpdatedAt: 1_000},
	)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	env := newCLIEnv(t, `remote_url = "`+ts.URL+`/posts"`)

	_, err := env.run(t, "add", "--text", "Pushed from the CLI", "--category", "Local")
	require.NoError(t, err)

	out, err := env.run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "pushed 1")

	texts := map[string]bool{}
	for _, p := range server.Posts() {
		texts[p.Title] = true
	}
	assert.True(t, texts["Pushed from the CLI"], "dirty quote pushed to the remote")

	out, err = env.run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Remote (1)")
	assert.Contains(t, out, "Local (1)")
}
