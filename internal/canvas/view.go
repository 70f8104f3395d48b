package canvas

import (
	"github.com/travisdwitt/erdling/internal/geometry"
)

// Discrete zoom factors: wheel steps and toolbar-style steps.
const (
	WheelZoomFactor = 1.15
	StepZoomIn      = 1.2
	StepZoomOut     = 0.8
)

// pointerState tracks what the current pointer interaction is doing.
type pointerState int

const (
	stateIdle pointerState = iota
	statePanning
	stateRubberBand
	stateShapeDrag
)

// View interprets pointer and wheel input into pan, zoom, and
// selection actions, owns the scroll/zoom transform, and persists view
// state to the diagram. The viewport mapping is
//
//	viewport = scene*zoom - scroll
//
// Scroll values are clamped to the scene rect only when applied, never
// when stored.
type View struct {
	scene *Scene

	zoom   float64
	scroll geometry.Point

	viewportW float64
	viewportH float64
	sized     bool
	closed    bool

	// pendingScroll holds a restored scroll offset until the viewport
	// reports its size; applying earlier would clamp to (0,0).
	pendingScroll *geometry.Point

	state       pointerState
	lastPointer geometry.Point
	bandOrigin  geometry.Point
	bandCurrent geometry.Point
}

// NewView creates a view over the scene with default transform:
// zoom 1.0, scroll (0,0).
func NewView(scene *Scene) *View {
	return &View{scene: scene, zoom: 1.0}
}

// Scene returns the scene this view presents.
func (v *View) Scene() *Scene { return v.scene }

// Zoom returns the current scale.
func (v *View) Zoom() float64 { return v.zoom }

// Scroll returns the current scroll offset.
func (v *View) Scroll() geometry.Point { return v.scroll }

// IsPanning reports whether a secondary-button pan is in progress.
func (v *View) IsPanning() bool { return v.state == statePanning }

// IsDraggingShapes reports whether a primary-button shape drag is in
// progress.
func (v *View) IsDraggingShapes() bool { return v.state == stateShapeDrag }

// RubberBand returns the active rubber-band rect in scene coordinates.
func (v *View) RubberBand() (geometry.Rect, bool) {
	if v.state != stateRubberBand {
		return geometry.Rect{}, false
	}
	return geometry.RectFromPoints(v.bandOrigin, v.bandCurrent), true
}

// ViewportToScene maps a viewport point to scene coordinates.
func (v *View) ViewportToScene(p geometry.Point) geometry.Point {
	return p.Add(v.scroll).Scale(1 / v.zoom)
}

// SceneToViewport maps a scene point to viewport coordinates.
func (v *View) SceneToViewport(p geometry.Point) geometry.Point {
	return p.Scale(v.zoom).Sub(v.scroll)
}

// SetViewportSize records the rendered viewport extent. The first call
// also releases a deferred scroll restore, because scroll clamping is
// meaningless before the content layout is known. A closed view
// discards the pending scroll instead.
func (v *View) SetViewportSize(w, h float64) {
	v.viewportW = w
	v.viewportH = h
	v.sized = true

	if v.pendingScroll != nil {
		if !v.closed {
			v.scroll = v.clampScroll(*v.pendingScroll)
		}
		v.pendingScroll = nil
	} else {
		v.scroll = v.clampScroll(v.scroll)
	}
}

// Close marks the view dead. Any still-pending deferred scroll restore
// becomes a no-op.
func (v *View) Close() {
	v.closed = true
	v.state = stateIdle
}

// Closed reports whether Close has been called.
func (v *View) Closed() bool { return v.closed }

// clampScroll clips a scroll offset to the scene rect at the current
// zoom. Before the viewport size is known the offset passes through
// untouched.
func (v *View) clampScroll(p geometry.Point) geometry.Point {
	if !v.sized {
		return p
	}
	maxX := SceneSize*v.zoom - v.viewportW
	maxY := SceneSize*v.zoom - v.viewportH
	return geometry.Point{
		X: clamp(p.X, 0, max(maxX, 0)),
		Y: clamp(p.Y, 0, max(maxY, 0)),
	}
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ScrollBy shifts the viewport. An ordinary wheel event scrolls; it
// never zooms.
func (v *View) ScrollBy(delta geometry.Point) {
	v.scroll = v.clampScroll(v.scroll.Add(delta))
}

// WheelZoom zooms by one wheel step anchored at the cursor, so the
// scene point under the cursor stays under it.
func (v *View) WheelZoom(anchor geometry.Point, in bool) {
	factor := WheelZoomFactor
	if !in {
		factor = 1 / WheelZoomFactor
	}
	v.zoomAnchored(anchor, factor)
}

// ZoomStep zooms by a toolbar step anchored at the viewport center.
func (v *View) ZoomStep(in bool) {
	factor := StepZoomIn
	if !in {
		factor = StepZoomOut
	}
	v.zoomAnchored(geometry.Point{X: v.viewportW / 2, Y: v.viewportH / 2}, factor)
}

// ZoomTo sets an absolute scale, keeping the viewport center fixed.
// Scale must be positive; anything else is ignored.
func (v *View) ZoomTo(scale float64) {
	if scale <= 0 {
		return
	}
	v.zoomAnchored(geometry.Point{X: v.viewportW / 2, Y: v.viewportH / 2}, scale/v.zoom)
}

func (v *View) zoomAnchored(anchor geometry.Point, factor float64) {
	anchorScene := v.ViewportToScene(anchor)
	v.zoom, v.scroll = geometry.ZoomAt(v.zoom, anchor, anchorScene, factor)
	v.scroll = v.clampScroll(v.scroll)
}

// FitToView scales and scrolls so the whole content is visible,
// keeping aspect ratio. A no-op before the viewport size is known or
// when the diagram is empty.
func (v *View) FitToView() {
	bounds := v.scene.ContentBounds()
	if !v.sized || bounds.IsEmpty() {
		return
	}
	v.zoom = min(v.viewportW/bounds.W, v.viewportH/bounds.H)
	center := bounds.Center().Scale(v.zoom)
	v.scroll = v.clampScroll(geometry.Point{
		X: center.X - v.viewportW/2,
		Y: center.Y - v.viewportH/2,
	})
}

// PressSecondary begins a pan when the press lands on empty canvas.
// Returns true when panning started, so the frontend can switch the
// cursor to its closed-hand indicator.
func (v *View) PressSecondary(at geometry.Point) bool {
	if v.state != stateIdle {
		return false
	}
	if v.scene.ShapeAt(v.ViewportToScene(at)) != nil {
		return false
	}
	v.state = statePanning
	v.lastPointer = at
	return true
}

// PressPrimary dispatches a primary-button press: on a shape it
// updates the selection (toggle with the modifier held) and begins a
// drag-move; on empty canvas it begins a rubber-band selection.
func (v *View) PressPrimary(at geometry.Point, toggleMod bool) {
	if v.state != stateIdle {
		return
	}
	scenePos := v.ViewportToScene(at)
	if shape := v.scene.ShapeAt(scenePos); shape != nil {
		sel := v.scene.Selection()
		if toggleMod {
			sel.Toggle(shape)
		} else if !sel.Contains(shape) {
			sel.SelectOnly(shape)
		}
		v.state = stateShapeDrag
		v.lastPointer = at
		return
	}
	v.state = stateRubberBand
	v.bandOrigin = scenePos
	v.bandCurrent = scenePos
}

// PointerMove advances the current interaction: pans 1:1 with the
// pointer, grows the rubber band, or drags the selected shapes.
func (v *View) PointerMove(at geometry.Point) {
	switch v.state {
	case statePanning:
		delta := at.Sub(v.lastPointer)
		v.lastPointer = at
		v.scroll = v.clampScroll(v.scroll.Sub(delta))
	case stateRubberBand:
		v.bandCurrent = v.ViewportToScene(at)
	case stateShapeDrag:
		delta := at.Sub(v.lastPointer).Scale(1 / v.zoom)
		v.lastPointer = at
		v.scene.TranslateShapes(v.scene.Selection().Selected(), delta)
	}
}

// ReleaseSecondary ends a pan.
func (v *View) ReleaseSecondary() {
	if v.state == statePanning {
		v.state = stateIdle
	}
}

// ReleasePrimary ends a rubber band or shape drag. A rubber band
// replaces the selection with the enclosed shapes, or unions them when
// the modifier is held; a shape drag commits the moved positions.
func (v *View) ReleasePrimary(unionMod bool) {
	switch v.state {
	case stateRubberBand:
		rect := geometry.RectFromPoints(v.bandOrigin, v.bandCurrent)
		enclosed := v.scene.ShapesIn(rect)
		if unionMod {
			v.scene.Selection().ReplaceUnion(enclosed)
		} else {
			v.scene.Selection().Replace(enclosed)
		}
	case stateShapeDrag:
		v.scene.CommitPositions()
	}
	if v.state == stateRubberBand || v.state == stateShapeDrag {
		v.state = stateIdle
	}
}

// SaveViewState writes the current zoom and scroll into the diagram.
// Called on tab close, project save, and application close. Values are
// stored raw; clamping happens only on restore.
func (v *View) SaveViewState() {
	d := v.scene.Diagram()
	d.ZoomLevel = v.zoom
	d.ScrollX = v.scroll.X
	d.ScrollY = v.scroll.Y
}

// RestoreViewState applies the diagram's persisted view state. Zoom
// applies immediately; the scroll offset is deferred until the
// viewport reports its size, because clamping against unknown content
// bounds would silently land on (0,0). A diagram never saved restores
// the defaults.
func (v *View) RestoreViewState() {
	d := v.scene.Diagram()
	v.zoom = d.ZoomLevel
	if v.zoom <= 0 {
		v.zoom = 1.0
	}
	restored := geometry.Point{X: d.ScrollX, Y: d.ScrollY}
	if v.sized {
		v.scroll = v.clampScroll(restored)
		return
	}
	v.pendingScroll = &restored
}
