package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/travisdwitt/erdling/internal/project"
)

// projectChangedMsg reports that the open project file was rewritten on
// disk by another process.
type projectChangedMsg struct {
	Path string
}

// watcherDoneMsg reports that the change watcher shut down.
type watcherDoneMsg struct{}

// watchCmd waits for the next change event from the project watcher.
// The returned command re-arms itself from Update after each event.
func watchCmd(w *project.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events
		if !ok {
			return watcherDoneMsg{}
		}
		return projectChangedMsg{Path: ev.Path}
	}
}
