package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/podexhq/podex/internal/layout"
)

func TestNew(t *testing.T) {
	m := New(layout.PanelGitHub)

	assert.Equal(t, layout.PanelGitHub, m.ID())
	assert.Equal(t, "GITHUB", m.Title())
	assert.False(t, m.Focused())
}

func TestTitlePerPanel(t *testing.T) {
	cases := map[layout.PanelID]string{
		layout.PanelPreview:    "PREVIEW",
		layout.PanelExtensions: "EXTENSIONS",
		layout.PanelUsage:      "USAGE",
		layout.PanelSkills:     "SKILLS",
	}

	for id, want := range cases {
		assert.Equal(t, want, New(id).Title())
	}
}

func TestView(t *testing.T) {
	m := New(layout.PanelSentry)

	assert.Empty(t, m.View(), "should render nothing before sizing")

	m.SetSize(40, 8)
	view := m.View()
	assert.Contains(t, view, "SENTRY lives in the web app")
	assert.Contains(t, view, "Open your workspace in the browser")
}

func TestUpdateIgnoresInput(t *testing.T) {
	m := New(layout.PanelProblems)
	m.SetSize(40, 8)
	m.Focus()

	assert.Nil(t, m.Update(struct{}{}))
	assert.Equal(t, "PROBLEMS", m.Title())
}

func TestScrollIndicatorHidden(t *testing.T) {
	m := New(layout.PanelUsage)

	assert.Less(t, m.ScrollPercent(), 0.0)
}
