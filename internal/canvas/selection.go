package canvas

import (
	"github.com/samber/lo"

	"github.com/travisdwitt/erdling/internal/model"
)

// Listener receives the ordered list of selected domain objects after
// every selection change. Empty and mixed-type lists are both legal.
type Listener func(selected []model.Object)

// Selection is the single source of truth for what is selected,
// regardless of how the selection was made (click, toggle,
// rubber-band, select-all). Membership is always a subset of the
// scene's live shapes; the scene prunes on shape removal.
type Selection struct {
	scene     *Scene
	members   map[*Shape]struct{}
	listeners []Listener
}

func newSelection(scene *Scene) *Selection {
	return &Selection{
		scene:   scene,
		members: make(map[*Shape]struct{}),
	}
}

// AddListener registers a selection-change observer.
func (sel *Selection) AddListener(l Listener) {
	sel.listeners = append(sel.listeners, l)
}

// Contains reports membership.
func (sel *Selection) Contains(s *Shape) bool {
	_, ok := sel.members[s]
	return ok
}

// Len returns the number of selected shapes.
func (sel *Selection) Len() int { return len(sel.members) }

// Selected returns the selected shapes in scene order.
func (sel *Selection) Selected() []*Shape {
	return lo.Filter(sel.scene.shapes, func(s *Shape, _ int) bool {
		return sel.Contains(s)
	})
}

// SelectOnly clears the set and selects one shape. A plain click.
func (sel *Selection) SelectOnly(s *Shape) {
	before := sel.refs()
	sel.reset()
	sel.add(s)
	sel.notifyIfChanged(before)
}

// Toggle inserts the shape if absent and removes it if present. A
// ctrl-click.
func (sel *Selection) Toggle(s *Shape) {
	before := sel.refs()
	if sel.Contains(s) {
		sel.remove(s)
	} else {
		sel.add(s)
	}
	sel.notifyIfChanged(before)
}

// SelectAll replaces the set with all given shapes.
func (sel *Selection) SelectAll(shapes []*Shape) {
	before := sel.refs()
	sel.reset()
	for _, s := range shapes {
		sel.add(s)
	}
	sel.notifyIfChanged(before)
}

// Clear empties the set. Escape, or a click on empty canvas.
func (sel *Selection) Clear() {
	before := sel.refs()
	sel.reset()
	sel.notifyIfChanged(before)
}

// Replace sets the selection to exactly the given shapes. A plain
// rubber-band release.
func (sel *Selection) Replace(shapes []*Shape) {
	sel.SelectAll(shapes)
}

// ReplaceUnion unions the given shapes with the current selection. A
// rubber-band release with the modifier key held.
func (sel *Selection) ReplaceUnion(shapes []*Shape) {
	before := sel.refs()
	for _, s := range shapes {
		sel.add(s)
	}
	sel.notifyIfChanged(before)
}

func (sel *Selection) add(s *Shape) {
	if s == nil || sel.Contains(s) {
		return
	}
	sel.members[s] = struct{}{}
	s.SetSelected(true)
}

func (sel *Selection) remove(s *Shape) {
	if !sel.Contains(s) {
		return
	}
	delete(sel.members, s)
	s.SetSelected(false)
}

func (sel *Selection) reset() {
	for s := range sel.members {
		s.SetSelected(false)
	}
	sel.members = make(map[*Shape]struct{})
}

// prune drops members no longer present in the scene and notifies when
// that removed anything. Called by the scene after shape removal and
// refresh.
func (sel *Selection) prune(before []string) {
	live := make(map[*Shape]struct{}, len(sel.scene.shapes))
	for _, s := range sel.scene.shapes {
		live[s] = struct{}{}
	}
	for s := range sel.members {
		if _, ok := live[s]; !ok {
			delete(sel.members, s)
		}
	}
	sel.notifyIfChanged(before)
}

// refs returns the ordered refs of the current members, the identity
// used to decide whether a mutation actually changed the selection.
func (sel *Selection) refs() []string {
	return lo.Map(sel.Selected(), func(s *Shape, _ int) string { return s.Ref })
}

func (sel *Selection) notifyIfChanged(before []string) {
	if equalStrings(before, sel.refs()) {
		return
	}
	objects := sel.scene.SelectedObjects()
	for _, l := range sel.listeners {
		l(objects)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
