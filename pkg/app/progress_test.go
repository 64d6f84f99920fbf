package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwatts/gbdl/pkg/services"
)

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm
}

func TestModelTracksCurrentIssue(t *testing.T) {
	m := newModel(nil)

	m = update(t, m, progressMsg(services.Progress{
		IssueID:     "ABC",
		Title:       "LIFE - Oct 3, 1969",
		CurrentPage: 4,
		TotalPages:  10,
		Status:      services.StatusDownloading,
	}))

	view := m.View()
	assert.Contains(t, view, "LIFE - Oct 3, 1969")
	assert.Contains(t, view, "page 4/10")
}

func TestModelCountsTerminalStates(t *testing.T) {
	m := newModel(nil)

	m = update(t, m, progressMsg(services.Progress{IssueID: "A", Status: services.StatusComplete}))
	m = update(t, m, progressMsg(services.Progress{
		IssueID: "B",
		Status:  services.StatusError,
		Err:     errors.New("listing unavailable"),
	}))
	m = update(t, m, progressMsg(services.Progress{IssueID: "C", Status: services.StatusComplete}))

	view := m.View()
	assert.Contains(t, view, "2 completed, 1 failed")
	assert.Contains(t, view, "B: listing unavailable")
}

func TestModelQuitsWhenChannelCloses(t *testing.T) {
	m := newModel(nil)

	next, cmd := m.Update(channelClosedMsg{})
	require.NotNil(t, cmd)
	assert.True(t, next.(model).done)
}
