package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/geometry"
	"github.com/travisdwitt/erdling/internal/render"
)

// Zoom bounds for interactive zooming. The viewport itself accepts any
// positive zoom; these keep the cell grid within sane extents.
const (
	minZoom = 0.05
	maxZoom = 20.0
)

// wheelScrollCells is how many cells one wheel notch scrolls.
const wheelScrollCells = 3

// CanvasView is the diagram pane: it renders the active tab's scene
// through its viewport onto a cell grid and translates terminal mouse
// and key events into viewport gestures.
type CanvasView struct {
	Width  int // interior size in cells
	Height int

	// PanMode reroutes h/j/k/l and the arrows to scrolling.
	PanMode bool
	// Arranging waits for an align/distribute letter.
	Arranging bool
	// PanSpeed is cells moved per pan keypress; shift doubles it.
	PanSpeed int

	mouseHeld bool
	dragMoved bool
}

// SetSize records the pane's interior cell dimensions.
func (cv *CanvasView) SetSize(w, h int) {
	cv.Width = w
	cv.Height = h
}

// ViewportSize returns the pane extent in scene units at zoom 1.0.
func (cv *CanvasView) ViewportSize() (float64, float64) {
	return float64(cv.Width) * render.CellWidth, float64(cv.Height) * render.CellHeight
}

// cellToViewport maps a cell coordinate to the viewport point at the
// cell's center.
func cellToViewport(cx, cy int) geometry.Point {
	return geometry.Point{
		X: (float64(cx) + 0.5) * render.CellWidth,
		Y: (float64(cy) + 0.5) * render.CellHeight,
	}
}

// HandleMouse translates a terminal mouse event into viewport gestures.
// Cell-motion tracking reports drag motion as repeated button events,
// so a button event while a button is already held is a move.
func (cv *CanvasView) HandleMouse(msg tea.MouseMsg, tab *DiagramTab) (dirty bool) {
	if tab == nil {
		return false
	}
	at := cellToViewport(msg.X, msg.Y)

	switch msg.Type {
	case tea.MouseLeft:
		if cv.mouseHeld {
			tab.View.PointerMove(at)
			if tab.View.IsDraggingShapes() {
				cv.dragMoved = true
			}
			return false
		}
		cv.mouseHeld = true
		cv.dragMoved = false
		tab.View.PressPrimary(at, msg.Ctrl)

	case tea.MouseRight:
		if cv.mouseHeld {
			tab.View.PointerMove(at)
			return false
		}
		cv.mouseHeld = true
		tab.View.PressSecondary(at)

	case tea.MouseMotion:
		if cv.mouseHeld {
			tab.View.PointerMove(at)
			if tab.View.IsDraggingShapes() {
				cv.dragMoved = true
			}
		}

	case tea.MouseRelease:
		cv.mouseHeld = false
		if tab.View.IsPanning() {
			tab.View.ReleaseSecondary()
			return false
		}
		moved := cv.dragMoved && tab.View.IsDraggingShapes()
		cv.dragMoved = false
		tab.View.ReleasePrimary(msg.Ctrl)
		return moved

	case tea.MouseWheelUp:
		if msg.Alt {
			cv.wheelZoom(tab.View, at, true)
		} else {
			tab.View.ScrollBy(geometry.Point{Y: -wheelScrollCells * render.CellHeight})
		}

	case tea.MouseWheelDown:
		if msg.Alt {
			cv.wheelZoom(tab.View, at, false)
		} else {
			tab.View.ScrollBy(geometry.Point{Y: wheelScrollCells * render.CellHeight})
		}
	}
	return false
}

func (cv *CanvasView) wheelZoom(v *canvas.View, anchor geometry.Point, in bool) {
	factor := canvas.WheelZoomFactor
	if !in {
		factor = 1 / canvas.WheelZoomFactor
	}
	if next := v.Zoom() * factor; next < minZoom || next > maxZoom {
		return
	}
	v.WheelZoom(anchor, in)
}

func (cv *CanvasView) stepZoom(v *canvas.View, in bool) {
	factor := canvas.StepZoomIn
	if !in {
		factor = canvas.StepZoomOut
	}
	if next := v.Zoom() * factor; next < minZoom || next > maxZoom {
		return
	}
	v.ZoomStep(in)
}

// HandleKey processes a key event against the active tab. It reports
// whether the key was consumed, whether the diagram changed, and an
// optional status line for the user.
func (cv *CanvasView) HandleKey(msg tea.KeyMsg, keys KeyMap, tab *DiagramTab) (handled, dirty bool, status string) {
	if tab == nil {
		return false, false, ""
	}

	if cv.Arranging {
		return cv.handleArrangeKey(msg, tab)
	}

	if cv.PanMode {
		switch msg.String() {
		case "h", "left", "l", "right", "k", "up", "j", "down",
			"H", "shift+left", "L", "shift+right", "K", "shift+up", "J", "shift+down":
			cv.pan(tab.View, msg.String())
			return true, false, ""
		case "z", "esc":
			cv.PanMode = false
			return true, false, ""
		}
		// Everything else keeps its normal meaning while pan mode is on.
	}

	switch {
	case key.Matches(msg, keys.PanMode):
		cv.PanMode = !cv.PanMode
		return true, false, ""

	case key.Matches(msg, keys.Arrange):
		cv.Arranging = true
		return true, false, "arrange: l/r/t/b align, h/v distribute"

	case key.Matches(msg, keys.SelectAll):
		tab.Scene.Selection().SelectAll(tab.Scene.Shapes())
		return true, false, ""

	case key.Matches(msg, keys.Cancel):
		tab.Scene.Selection().Clear()
		return true, false, ""

	case key.Matches(msg, keys.ZoomIn):
		cv.stepZoom(tab.View, true)
		return true, false, ""

	case key.Matches(msg, keys.ZoomOut):
		cv.stepZoom(tab.View, false)
		return true, false, ""

	case key.Matches(msg, keys.ZoomReset):
		tab.View.ZoomTo(1.0)
		return true, false, ""

	case key.Matches(msg, keys.Fit):
		tab.View.FitToView()
		return true, false, ""

	case key.Matches(msg, keys.Remove):
		selected := tab.Scene.Selection().Selected()
		if len(selected) == 0 {
			return true, false, "nothing selected"
		}
		tab.Scene.RemoveShapes(selected)
		return true, true, fmt.Sprintf("removed %d from diagram", len(selected))
	}

	return false, false, ""
}

// handleArrangeKey applies one align/distribute letter and leaves
// arrange mode. Unknown keys stay in arrange mode; esc leaves it.
func (cv *CanvasView) handleArrangeKey(msg tea.KeyMsg, tab *DiagramTab) (handled, dirty bool, status string) {
	selected := tab.Scene.Selection().Selected()

	switch msg.String() {
	case "esc":
		cv.Arranging = false
		return true, false, ""
	case "l", "r", "t", "b":
		cv.Arranging = false
		if len(selected) < 2 {
			return true, false, "select at least 2 shapes to align"
		}
		edges := map[string]canvas.Edge{
			"l": canvas.EdgeLeft, "r": canvas.EdgeRight,
			"t": canvas.EdgeTop, "b": canvas.EdgeBottom,
		}
		tab.Scene.Align(selected, edges[msg.String()])
		return true, true, fmt.Sprintf("aligned %d shapes", len(selected))
	case "h", "v":
		cv.Arranging = false
		if len(selected) < 3 {
			return true, false, "select at least 3 shapes to distribute"
		}
		axis := canvas.Horizontal
		if msg.String() == "v" {
			axis = canvas.Vertical
		}
		tab.Scene.Distribute(selected, axis)
		return true, true, fmt.Sprintf("distributed %d shapes", len(selected))
	}
	return true, false, "arrange: l/r/t/b align, h/v distribute"
}

// pan scrolls the viewport by whole cells in the key's direction.
func (cv *CanvasView) pan(v *canvas.View, key string) {
	speed := cv.PanSpeed
	if speed < 1 {
		speed = 1
	}
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		speed *= 2
	}

	dx := float64(speed) * render.CellWidth
	dy := float64(speed) * render.CellHeight
	switch key {
	case "h", "left", "H", "shift+left":
		v.ScrollBy(geometry.Point{X: -dx})
	case "l", "right", "L", "shift+right":
		v.ScrollBy(geometry.Point{X: dx})
	case "k", "up", "K", "shift+up":
		v.ScrollBy(geometry.Point{Y: -dy})
	case "j", "down", "J", "shift+down":
		v.ScrollBy(geometry.Point{Y: dy})
	}
}

// View renders the tab's scene into the pane as styled terminal lines.
func (cv *CanvasView) View(tab *DiagramTab) string {
	if tab == nil || cv.Width <= 0 || cv.Height <= 0 {
		return ""
	}

	g := render.NewGrid(cv.Width, cv.Height)
	t := render.Transform{Zoom: tab.View.Zoom(), Scroll: tab.View.Scroll()}
	opts := render.Options{ShowSelection: true}
	if band, ok := tab.View.RubberBand(); ok {
		opts.Band = &band
	}
	render.DrawScene(g, tab.Scene, t, opts)

	bg := tab.Scene.Theme().Background()
	lines := make([]string, cv.Height)
	for y := 0; y < cv.Height; y++ {
		lines[y] = styleGridRow(g, y, bg)
	}
	return strings.Join(lines, "\n")
}

// styleGridRow converts one grid row into a styled string, grouping
// consecutive cells of the same color into a single render call.
func styleGridRow(g *render.Grid, y int, bg string) string {
	var b strings.Builder
	var run []rune
	x := 0
	for x < g.W {
		color := g.Color(x, y)
		run = run[:0]
		for x < g.W && g.Color(x, y) == color {
			run = append(run, g.Rune(x, y))
			x++
		}
		b.WriteString(cellStyle(color, bg).Render(string(run)))
	}
	return b.String()
}
