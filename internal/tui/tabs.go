package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/model"
)

// DiagramTab holds the editing state for one open diagram: its scene
// graph and the viewport looking at it. The diagram data itself lives
// in the project, so closing a tab loses nothing but the viewport.
type DiagramTab struct {
	Scene *canvas.Scene
	View  *canvas.View
}

// NewDiagramTab builds a scene for the diagram and restores its
// persisted viewport. The restored scroll is applied once the pane
// reports a size.
func NewDiagramTab(p *model.Project, d *model.Diagram, theme canvas.Theme) *DiagramTab {
	scene := canvas.NewScene(p, d, theme)
	view := canvas.NewView(scene)
	view.RestoreViewState()
	return &DiagramTab{Scene: scene, View: view}
}

// Name returns the tab's diagram name.
func (t *DiagramTab) Name() string {
	return t.Scene.Diagram().Name
}

// Close persists the viewport into the diagram and detaches the view
// so a stale deferred scroll cannot land later.
func (t *DiagramTab) Close() {
	t.View.SaveViewState()
	t.View.Close()
}

// TabBar renders the open-diagram labels. Matching the single-buffer
// behavior of the status line, it collapses to nothing when only one
// diagram is open.
type TabBar struct {
	Tabs   []*DiagramTab
	Active int
	Width  int
	Dirty  bool
}

// View renders the tab bar as a single styled line.
func (tb TabBar) View() string {
	if len(tb.Tabs) <= 1 {
		return ""
	}

	var parts []string
	for i, tab := range tb.Tabs {
		label := tab.Name()
		if i == tb.Active {
			label = "[" + label + "]"
			if tb.Dirty {
				parts = append(parts, styleTabActive.Render(label)+styleTabDirty.Render("*"))
				continue
			}
			parts = append(parts, styleTabActive.Render(label))
		} else {
			parts = append(parts, styleTabInactive.Render(label))
		}
	}

	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().
		Width(tb.Width).
		PaddingLeft(2).
		Render(line)
}
