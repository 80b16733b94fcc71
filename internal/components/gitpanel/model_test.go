package gitpanel

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podexhq/podex/internal/git"
	"github.com/podexhq/podex/internal/layout"
)

func testStatus() *git.Status {
	return &git.Status{
		Branch:  "main",
		IsDirty: true,
		Files: map[string]git.FileStatus{
			"staged.go":    {Path: "staged.go", Staging: git.StatusModified, Worktree: git.StatusUnmodified},
			"changed.go":   {Path: "changed.go", Staging: git.StatusUnmodified, Worktree: git.StatusModified},
			"untracked.go": {Path: "untracked.go", Staging: git.StatusUntracked, Worktree: git.StatusUntracked},
		},
	}
}

func TestNew(t *testing.T) {
	m := New()

	assert.Equal(t, layout.PanelGit, m.ID())
	assert.Equal(t, "GIT", m.Title())
	assert.NotEmpty(t, m.Hints())
	assert.Nil(t, m.Init())
	assert.Empty(t, m.entries)
}

func TestSetGitStatus(t *testing.T) {
	m := New()
	m.SetSize(40, 20)

	m.SetGitStatus(testStatus())

	require.Len(t, m.entries, 3)

	// Staged entries sort before unstaged ones
	assert.Equal(t, "staged.go", m.entries[0].Path)
	assert.True(t, m.entries[0].IsStaged)
	assert.Equal(t, "changed.go", m.entries[1].Path)
	assert.Equal(t, "untracked.go", m.entries[2].Path)

	assert.Equal(t, 1, m.StagedCount())
	assert.Equal(t, 2, m.UnstagedCount())
}

func TestSetGitStatusClampsCursor(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.SetGitStatus(testStatus())
	m.cursor = 2

	m.SetGitStatus(&git.Status{
		Files: map[string]git.FileStatus{
			"changed.go": {Path: "changed.go", Staging: git.StatusUnmodified, Worktree: git.StatusModified},
		},
	})

	assert.Equal(t, 0, m.cursor)

	m.SetGitStatus(nil)
	assert.Empty(t, m.entries)
	assert.Equal(t, 0, m.cursor)
}

func TestStageToggle(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.Focus()
	m.SetGitStatus(testStatus())

	cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})

	require.NotNil(t, cmd)
	toggle, ok := cmd().(StageToggleMsg)
	require.True(t, ok)
	assert.Equal(t, "staged.go", toggle.Path)
	assert.True(t, toggle.IsStaged)
}

func TestCommitNeedsStagedFiles(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.Focus()

	t.Run("no staged files", func(t *testing.T) {
		m.SetGitStatus(&git.Status{
			Files: map[string]git.FileStatus{
				"changed.go": {Path: "changed.go", Staging: git.StatusUnmodified, Worktree: git.StatusModified},
			},
		})

		cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
		assert.Nil(t, cmd)
	})

	t.Run("with staged files", func(t *testing.T) {
		m.SetGitStatus(testStatus())

		cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
		require.NotNil(t, cmd)
		_, ok := cmd().(OpenCommitMsg)
		assert.True(t, ok)
	})
}

func TestOpenDiffAndFile(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.Focus()
	m.SetGitStatus(testStatus())

	t.Run("enter previews the diff", func(t *testing.T) {
		cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		require.NotNil(t, cmd)
		diff, ok := cmd().(OpenDiffMsg)
		require.True(t, ok)
		assert.Equal(t, "staged.go", diff.Path)
		assert.True(t, diff.Staged)
	})

	t.Run("o opens the file", func(t *testing.T) {
		m.cursor = 1
		cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})

		require.NotNil(t, cmd)
		open, ok := cmd().(OpenFileMsg)
		require.True(t, ok)
		assert.Equal(t, "changed.go", open.Path)
	})
}

func TestRefreshRequest(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.Focus()

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	require.NotNil(t, cmd)
	_, ok := cmd().(RefreshRequestMsg)
	assert.True(t, ok)
}

func TestIgnoresInputWhenBlurred(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.SetGitStatus(testStatus())

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.cursor)
}

func TestNavigation(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.Focus()
	m.SetGitStatus(testStatus())

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	// End and Home
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.Equal(t, 2, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, m.cursor)
}

func TestMouseClickPreviews(t *testing.T) {
	m := New()
	m.SetSize(40, 20)
	m.SetGitStatus(testStatus())

	// Row 0 is the header, so row 2 is the second entry
	cmd := m.Update(tea.MouseMsg{Y: 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	require.NotNil(t, cmd)
	diff, ok := cmd().(OpenDiffMsg)
	require.True(t, ok)
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, "changed.go", diff.Path)
}

func TestView(t *testing.T) {
	t.Run("empty for zero size", func(t *testing.T) {
		m := New()
		assert.Empty(t, m.View())
	})

	t.Run("clean tree message", func(t *testing.T) {
		m := New()
		m.SetSize(40, 20)

		view := m.View()
		assert.Contains(t, view, "Working tree clean")
	})

	t.Run("lists changes with counts", func(t *testing.T) {
		m := New()
		m.SetSize(40, 20)
		m.SetGitStatus(testStatus())

		view := m.View()
		assert.Contains(t, view, "1 staged, 2 changed")
		assert.Contains(t, view, "staged.go")
		assert.Contains(t, view, "changed.go")
	})
}
