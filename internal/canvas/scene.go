// Package canvas implements the diagram canvas core: shapes derived
// from placed schema objects, foreign-key connections, the selection
// set, the scene controller that owns them, and the viewport transform.
// The package is rendering-agnostic; the terminal frontend and the PNG
// exporter both draw from the same scene. Everything here runs on the
// single UI event loop, so no locking is needed.
package canvas

import (
	"sort"

	"github.com/samber/lo"

	"github.com/travisdwitt/erdling/internal/geometry"
	"github.com/travisdwitt/erdling/internal/model"
)

// SceneSize is the fixed square scene rect, matching the persisted
// coordinate space. Scroll ranges derive from it.
const SceneSize = 2000.0

// Edge selects which side Align works on.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Axis selects the direction Distribute works along.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// Scene owns the authoritative shape and connection lists for one open
// diagram. Shapes are transient projections of the diagram's placed
// items over the live project graph; Refresh rebuilds them and drops
// anything that no longer resolves.
type Scene struct {
	project *model.Project
	diagram *model.Diagram

	theme       Theme
	shapes      []*Shape
	byRef       map[string]*Shape
	connections []*Connection
	selection   *Selection
}

// NewScene builds the scene for a diagram, silently skipping placed
// items whose object no longer exists.
func NewScene(project *model.Project, diagram *model.Diagram, theme Theme) *Scene {
	s := &Scene{
		project: project,
		diagram: diagram,
		theme:   theme,
	}
	s.selection = newSelection(s)
	s.rebuild()
	return s
}

// Diagram returns the diagram this scene projects.
func (s *Scene) Diagram() *model.Diagram { return s.diagram }

// Project returns the project graph the scene reads.
func (s *Scene) Project() *model.Project { return s.project }

// Theme returns the active theme.
func (s *Scene) Theme() Theme { return s.theme }

// Shapes returns the shapes in placement order. Callers must not
// modify the slice.
func (s *Scene) Shapes() []*Shape { return s.shapes }

// Connections returns the current connections. Callers must not
// modify the slice.
func (s *Scene) Connections() []*Connection { return s.connections }

// Selection returns the scene's selection set.
func (s *Scene) Selection() *Selection { return s.selection }

// SceneRect returns the fixed scene rectangle.
func (s *Scene) SceneRect() geometry.Rect {
	return geometry.Rect{X: 0, Y: 0, W: SceneSize, H: SceneSize}
}

// ShapeByRef finds a placed shape by its object ref.
func (s *Scene) ShapeByRef(ref string) (*Shape, bool) {
	sh, ok := s.byRef[ref]
	return sh, ok
}

// AddShape places an object on the diagram. Placing a ref that is
// already on the diagram, or one that does not resolve, is a silent
// no-op returning nil.
func (s *Scene) AddShape(t model.ObjectType, ref string, pos geometry.Point) *Shape {
	if _, exists := s.byRef[ref]; exists {
		return nil
	}
	obj, ok := s.project.Resolve(t, ref)
	if !ok {
		return nil
	}

	item := model.PlacedItem{ObjectType: t, ObjectRef: ref, X: pos.X, Y: pos.Y}
	s.diagram.AddItem(item)

	shape := newShape(item, obj, s.theme)
	s.shapes = append(s.shapes, shape)
	s.byRef[ref] = shape
	s.rebuildConnections()
	return shape
}

// RemoveShapes drops the given shapes and their placements. The
// underlying schema objects are untouched; connections touching a
// removed shape go with it and the selection is pruned.
func (s *Scene) RemoveShapes(shapes []*Shape) {
	if len(shapes) == 0 {
		return
	}
	before := s.selection.refs()

	doomed := make(map[*Shape]struct{}, len(shapes))
	for _, sh := range shapes {
		doomed[sh] = struct{}{}
	}

	kept := s.shapes[:0]
	for _, sh := range s.shapes {
		if _, dead := doomed[sh]; dead {
			delete(s.byRef, sh.Ref)
			s.diagram.RemoveItem(sh.Ref)
			continue
		}
		kept = append(kept, sh)
	}
	s.shapes = kept

	s.rebuildConnections()
	s.selection.prune(before)
}

// Refresh rebuilds shapes and connections from the current project
// state. Placements whose object no longer resolves are dropped from
// the diagram; the selection survives by ref where possible.
func (s *Scene) Refresh() {
	before := s.selection.refs()
	selected := make(map[string]struct{}, len(before))
	for _, ref := range before {
		selected[ref] = struct{}{}
	}

	s.rebuild()

	s.selection.members = make(map[*Shape]struct{})
	for _, sh := range s.shapes {
		if _, was := selected[sh.Ref]; was {
			s.selection.members[sh] = struct{}{}
			sh.SetSelected(true)
		}
	}
	s.selection.notifyIfChanged(before)
}

// rebuild derives shapes from the diagram's items, dropping dangling
// placements, then re-derives connections.
func (s *Scene) rebuild() {
	s.shapes = nil
	s.byRef = make(map[string]*Shape)

	kept := s.diagram.Items[:0]
	for _, item := range s.diagram.Items {
		obj, ok := s.project.Resolve(item.ObjectType, item.ObjectRef)
		if !ok {
			continue
		}
		kept = append(kept, item)
		shape := newShape(item, obj, s.theme)
		s.shapes = append(s.shapes, shape)
		s.byRef[item.ObjectRef] = shape
	}
	s.diagram.Items = kept

	s.rebuildConnections()
}

// rebuildConnections re-derives connections from the project's
// foreign keys, keeping only those with both endpoints placed. Keys
// are walked in sorted order so the connection list is deterministic.
func (s *Scene) rebuildConnections() {
	s.connections = nil

	keys := lo.Keys(s.project.ForeignKeys)
	sort.Strings(keys)

	for _, key := range keys {
		tableRef, column, ok := model.SplitForeignKeyRef(key)
		if !ok {
			continue
		}
		fk := s.project.ForeignKeys[key]
		src, srcPlaced := s.byRef[tableRef]
		dst, dstPlaced := s.byRef[fk.TargetTable]
		if !srcPlaced || !dstPlaced {
			continue
		}
		s.connections = append(s.connections, &Connection{
			Source:       src,
			Target:       dst,
			SourceColumn: column,
			TargetColumn: fk.TargetColumn,
		})
	}
}

// ShapeAt returns the topmost shape under a scene point, or nil.
func (s *Scene) ShapeAt(p geometry.Point) *Shape {
	for i := len(s.shapes) - 1; i >= 0; i-- {
		if s.shapes[i].ContainsPoint(p) {
			return s.shapes[i]
		}
	}
	return nil
}

// ShapesIn returns the shapes intersecting a scene rect, in placement
// order. Used by rubber-band selection.
func (s *Scene) ShapesIn(r geometry.Rect) []*Shape {
	return lo.Filter(s.shapes, func(sh *Shape, _ int) bool {
		return sh.BoundingRect().Intersects(r)
	})
}

// ContentBounds returns the union of all shape rects. Empty when the
// diagram has no shapes.
func (s *Scene) ContentBounds() geometry.Rect {
	var bounds geometry.Rect
	for _, sh := range s.shapes {
		bounds = bounds.Union(sh.BoundingRect())
	}
	return bounds
}

// TranslateShapes moves shapes by a scene-space delta without touching
// the diagram; CommitPositions persists the result on drag release.
func (s *Scene) TranslateShapes(shapes []*Shape, delta geometry.Point) {
	for _, sh := range shapes {
		sh.X += delta.X
		sh.Y += delta.Y
	}
}

// MoveShape places one shape at an absolute scene position.
func (s *Scene) MoveShape(sh *Shape, pos geometry.Point) {
	sh.SetPos(pos)
}

// CommitPositions writes every shape's position back into the
// diagram's placed items.
func (s *Scene) CommitPositions() {
	for _, sh := range s.shapes {
		s.diagram.UpdateItemPosition(sh.Ref, sh.X, sh.Y)
	}
}

// Align moves every given shape so its chosen edge matches the
// extremum of that edge across the group: the minimum for left/top,
// the maximum for right/bottom. Fewer than two shapes is a no-op, and
// shapes already on the extremum stay put, which makes Align
// idempotent.
func (s *Scene) Align(shapes []*Shape, edge Edge) {
	if len(shapes) < 2 {
		return
	}

	rects := lo.Map(shapes, func(sh *Shape, _ int) geometry.Rect { return sh.BoundingRect() })

	var target float64
	switch edge {
	case EdgeLeft:
		target = rects[0].Left()
		for _, r := range rects[1:] {
			target = min(target, r.Left())
		}
	case EdgeRight:
		target = rects[0].Right()
		for _, r := range rects[1:] {
			target = max(target, r.Right())
		}
	case EdgeTop:
		target = rects[0].Top()
		for _, r := range rects[1:] {
			target = min(target, r.Top())
		}
	case EdgeBottom:
		target = rects[0].Bottom()
		for _, r := range rects[1:] {
			target = max(target, r.Bottom())
		}
	}

	for _, sh := range shapes {
		switch edge {
		case EdgeLeft:
			sh.X = target
		case EdgeRight:
			sh.X = target - sh.W
		case EdgeTop:
			sh.Y = target
		case EdgeBottom:
			sh.Y = target - sh.H
		}
	}
	s.CommitPositions()
}

// Distribute spaces shapes evenly along an axis. The outermost two
// shapes keep their positions; the gaps between consecutive shapes
// become equal. Fewer than three shapes is a no-op.
func (s *Scene) Distribute(shapes []*Shape, axis Axis) {
	if len(shapes) < 3 {
		return
	}

	sorted := make([]*Shape, len(shapes))
	copy(sorted, shapes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if axis == Horizontal {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	first := sorted[0]
	last := sorted[len(sorted)-1]

	if axis == Horizontal {
		span := (last.X + last.W) - first.X
		total := lo.SumBy(sorted, func(sh *Shape) float64 { return sh.W })
		gap := (span - total) / float64(len(sorted)-1)
		x := first.X + first.W + gap
		for _, sh := range sorted[1 : len(sorted)-1] {
			sh.X = x
			x += sh.W + gap
		}
	} else {
		span := (last.Y + last.H) - first.Y
		total := lo.SumBy(sorted, func(sh *Shape) float64 { return sh.H })
		gap := (span - total) / float64(len(sorted)-1)
		y := first.Y + first.H + gap
		for _, sh := range sorted[1 : len(sorted)-1] {
			sh.Y = y
			y += sh.H + gap
		}
	}
	s.CommitPositions()
}

// SetTheme recolors the background and every shape. Geometry is
// untouched, so bounding rects before and after are identical.
func (s *Scene) SetTheme(dark bool) {
	s.theme = Theme{Dark: dark}
	for _, sh := range s.shapes {
		sh.ApplyTheme(s.theme)
	}
}

// SelectedObjects resolves the selected shapes to their domain
// objects, in scene order. This is what selection listeners and the
// property inspector receive.
func (s *Scene) SelectedObjects() []model.Object {
	var objects []model.Object
	for _, sh := range s.shapes {
		if !s.selection.Contains(sh) {
			continue
		}
		if obj, ok := s.project.Resolve(sh.Kind, sh.Ref); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

// SyncConnections writes the current connection list into the
// diagram's persisted records. Called before a project save.
func (s *Scene) SyncConnections() {
	s.diagram.Connections = lo.Map(s.connections, func(c *Connection, _ int) model.ConnectionRecord {
		return model.ConnectionRecord{
			SourceTable:    c.Source.Ref,
			TargetTable:    c.Target.Ref,
			ConnectionType: "foreign_key",
			Label:          c.Label(),
		}
	})
}
