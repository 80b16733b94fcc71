package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podexhq/podex/internal/components/content/diff"
	"github.com/podexhq/podex/internal/components/content/viewer"
	"github.com/podexhq/podex/internal/git"
)

type stubProvider struct {
	diff       string
	stagedDiff string
}

func (s *stubProvider) GetStatus(ctx context.Context) (*git.Status, error) {
	return git.NewStatus(), nil
}

func (s *stubProvider) GetDiff(ctx context.Context, path string) (string, error) {
	return s.diff, nil
}

func (s *stubProvider) GetStagedDiff(ctx context.Context, path string) (string, error) {
	return s.stagedDiff, nil
}

func (s *stubProvider) Stage(ctx context.Context, path string) error { return nil }

func (s *stubProvider) Unstage(ctx context.Context, path string) error { return nil }

func (s *stubProvider) Commit(ctx context.Context, message string) error { return nil }

func (s *stubProvider) IsRepo() bool { return true }

func TestNew(t *testing.T) {
	m := New(nil)

	assert.Equal(t, ModeViewer, m.Mode())
	assert.NotNil(t, m.Viewer())
	assert.NotNil(t, m.Diff())
	assert.Nil(t, m.Init())
}

func TestMode(t *testing.T) {
	t.Run("String returns correct values", func(t *testing.T) {
		assert.Equal(t, "VIEWER", ModeViewer.String())
		assert.Equal(t, "DIFF", ModeDiff.String())
		assert.Equal(t, "UNKNOWN", Mode(99).String())
	})

	t.Run("SetMode changes the mode", func(t *testing.T) {
		m := New(nil)
		m.SetMode(ModeDiff)
		assert.Equal(t, ModeDiff, m.Mode())
	})

	t.Run("SetMode moves focus to the active view", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)
		m.Focus()
		assert.True(t, m.Viewer().Focused())

		m.SetMode(ModeDiff)

		assert.False(t, m.Viewer().Focused())
		assert.True(t, m.Diff().Focused())
	})
}

func TestSetSize(t *testing.T) {
	m := New(nil)
	m.SetSize(100, 50)

	w, h := m.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	vw, vh := m.Viewer().Size()
	assert.Equal(t, 100, vw)
	assert.Equal(t, 50, vh)
}

func TestFocusBlur(t *testing.T) {
	m := New(nil)
	m.SetSize(80, 24)

	assert.False(t, m.Focused())

	m.Focus()
	assert.True(t, m.Focused())
	assert.True(t, m.Viewer().Focused())

	m.Blur()
	assert.False(t, m.Focused())
	assert.False(t, m.Viewer().Focused())
}

func TestView(t *testing.T) {
	t.Run("returns empty for zero dimensions", func(t *testing.T) {
		m := New(nil)
		assert.Empty(t, m.View())
	})

	t.Run("renders viewer placeholder", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)

		assert.Contains(t, m.View(), "Select a file to view its contents")
	})

	t.Run("renders diff placeholder", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)
		m.SetMode(ModeDiff)

		assert.Contains(t, m.View(), "No changes to display")
	})
}

func TestTitle(t *testing.T) {
	m := New(nil)
	m.SetSize(80, 24)

	assert.Equal(t, "EDITOR", m.Title())

	m.Update(OpenFileMsg{Path: "/test/file.txt"})
	assert.Equal(t, "file.txt", m.Title())

	m.SetMode(ModeDiff)
	assert.Equal(t, "DIFF", m.Title())

	m.Diff().SetContent("diff", "/test/file.txt")
	assert.Equal(t, "DIFF file.txt", m.Title())
}

func TestHints(t *testing.T) {
	m := New(nil)
	m.SetSize(80, 24)

	assert.Contains(t, m.Hints(), "search")

	m.SetMode(ModeDiff)
	assert.Contains(t, m.Hints(), "close diff")
}

func TestUpdate(t *testing.T) {
	t.Run("handles SetModeMsg", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)

		m.Update(SetModeMsg{Mode: ModeDiff})

		assert.Equal(t, ModeDiff, m.Mode())
	})

	t.Run("handles OpenFileMsg", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)
		m.SetMode(ModeDiff)

		cmd := m.Update(OpenFileMsg{Path: "/test/file.txt"})

		assert.Equal(t, ModeViewer, m.Mode())
		assert.Equal(t, "/test/file.txt", m.CurrentPath())
		assert.NotNil(t, cmd)
	})

	t.Run("handles OpenDiffMsg", func(t *testing.T) {
		m := New(&stubProvider{stagedDiff: "+staged change"})
		m.SetSize(80, 24)

		cmd := m.Update(OpenDiffMsg{Path: "file.txt", Staged: true})
		require.NotNil(t, cmd)
		assert.Equal(t, ModeDiff, m.Mode())

		loaded, ok := cmd().(diff.DiffLoadedMsg)
		require.True(t, ok)
		assert.Equal(t, "+staged change", loaded.Diff)
	})

	t.Run("ignores OpenDiffMsg without a provider", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)

		cmd := m.Update(OpenDiffMsg{Path: "file.txt"})

		assert.Nil(t, cmd)
		assert.Equal(t, ModeViewer, m.Mode())
	})

	t.Run("routes FileLoadedMsg to the viewer", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)

		m.Update(viewer.FileLoadedMsg{Path: "/test/file.txt", Content: "Test content"})

		assert.Equal(t, "Test content", m.Viewer().Content())
	})

	t.Run("routes DiffLoadedMsg to the diff view", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)

		m.Update(diff.DiffLoadedMsg{Path: "file.txt", Diff: "+change"})

		assert.True(t, m.Diff().HasContent())
	})

	t.Run("escape closes the diff view", func(t *testing.T) {
		m := New(nil)
		m.SetSize(80, 24)
		m.Focus()
		m.SetMode(ModeDiff)

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		assert.Equal(t, ModeViewer, m.Mode())
	})
}

func TestClear(t *testing.T) {
	m := New(nil)
	m.SetSize(80, 24)
	m.Update(viewer.FileLoadedMsg{Path: "/test/file.txt", Content: "content"})
	m.Update(diff.DiffLoadedMsg{Path: "file.txt", Diff: "+change"})
	m.SetMode(ModeDiff)

	m.Clear()

	assert.Equal(t, ModeViewer, m.Mode())
	assert.Empty(t, m.CurrentPath())
	assert.Empty(t, m.Viewer().Content())
	assert.False(t, m.Diff().HasContent())
}

func TestScrollPercent(t *testing.T) {
	m := New(nil)
	m.SetSize(80, 24)

	percent := m.ScrollPercent()
	assert.GreaterOrEqual(t, percent, 0.0)
	assert.LessOrEqual(t, percent, 100.0)
}

func TestIntegration(t *testing.T) {
	t.Run("full file open flow", func(t *testing.T) {
		tmpDir := t.TempDir()
		testFile := filepath.Join(tmpDir, "test.go")
		testContent := "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}"
		require.NoError(t, os.WriteFile(testFile, []byte(testContent), 0644))

		m := New(nil)
		m.SetSize(80, 24)

		cmd := m.Update(OpenFileMsg{Path: testFile})
		require.NotNil(t, cmd)
		assert.Equal(t, testFile, m.CurrentPath())

		msg := cmd()
		fileMsg, ok := msg.(viewer.FileLoadedMsg)
		require.True(t, ok)
		assert.Equal(t, testFile, fileMsg.Path)
		assert.Equal(t, testContent, fileMsg.Content)

		m.Update(fileMsg)

		assert.Equal(t, testContent, m.Viewer().Content())
	})
}
