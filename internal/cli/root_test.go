package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/hostdeck/internal/app"
	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/tui/views"
)

// runCLI executes the root command against dataDir and returns stdout.
func runCLI(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--data-dir", dataDir,
		"--config", filepath.Join(dataDir, "missing.yaml"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dataDir, "", args...)
	require.NoError(t, err, "hostdeck %s", strings.Join(args, " "))
	return out
}

type nopRepo struct{}

func (nopRepo) AddOrUpdate(context.Context, core.Host) error { return nil }

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd)
		assert.Equal(t, "hostdeck", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has global flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		flag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, flag)
		assert.Equal(t, "c", flag.Shorthand)
		assert.NotNil(t, cmd.PersistentFlags().Lookup("data-dir"))
		assert.NotNil(t, cmd.PersistentFlags().Lookup("storage"))
		assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	})

	t.Run("has subcommands", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"ls", "add", "mkdir", "rename", "mv", "cp", "rm", "targets", "export", "import", "purge"} {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, name)
			assert.True(t, strings.HasPrefix(sub.Use, name), name)
		}
	})
}

func TestOpenApp(t *testing.T) {
	t.Run("flags override config", func(t *testing.T) {
		dir := t.TempDir()
		cmd := NewRootCommand("test")
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetContext(context.Background())
		opts := &GlobalOptions{
			ConfigPath: filepath.Join(dir, "missing.yaml"),
			DataDir:    dir,
			Storage:    app.StorageYAML,
			Verbose:    true,
		}

		a, err := openApp(cmd, opts)
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, dir, a.Config().DataDir)
		assert.Equal(t, app.StorageYAML, a.Config().Storage)
		assert.Equal(t, "debug", a.Config().LogLevel)
	})

	t.Run("rejects unknown storage", func(t *testing.T) {
		dir := t.TempDir()
		_, err := runCLI(t, dir, "", "--storage", "etcd", "ls")
		assert.Error(t, err)
	})
}

func TestTUIModel(t *testing.T) {
	tree, _ := hosttree.Build([]core.Host{
		{ID: "h", Name: "web", Protocol: core.ProtocolSSH, ParentID: core.RootID, Sort: 1},
	})
	d := hosttree.NewDispatcher(tree, hosttree.Options{Repository: nopRepo{}})
	view := views.NewMainView(context.Background(), d)
	defer view.Close()

	var m tea.Model = tuiModel{view: view}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Contains(t, m.View(), "web")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestListJSON(t *testing.T) {
	dir := t.TempDir()
	folderID := strings.TrimSpace(mustRun(t, dir, "mkdir", "prod"))
	mustRun(t, dir, "add", "web", "--parent", "prod", "--address", "10.0.0.1", "--user", "root")

	var result struct {
		Tree hostJSON `json:"tree"`
	}
	out := mustRun(t, dir, "ls", "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, core.RootID, result.Tree.ID)
	require.Len(t, result.Tree.Children, 1)
	prod := result.Tree.Children[0]
	assert.Equal(t, folderID, prod.ID)
	assert.Equal(t, "Folder", prod.Protocol)
	require.Len(t, prod.Children, 1)
	assert.Equal(t, "web", prod.Children[0].Name)
	assert.Equal(t, "root@10.0.0.1:22", prod.Children[0].Target)
}
