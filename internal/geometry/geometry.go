// Package geometry provides the 2D primitives and view-transform math
// used by the diagram canvas. All coordinates are float64 scene units.
package geometry

// Point is a position in scene or viewport coordinates.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p with both components multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Left returns the x coordinate of the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of the rect.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// IsEmpty reports whether the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether r and other overlap. Touching edges count
// as an intersection, matching rubber-band enclosure behavior.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.X <= other.Right() && other.X <= r.Right() &&
		r.Y <= other.Bottom() && other.Y <= r.Bottom()
}

// Union returns the smallest rect containing both rects. An empty rect
// is treated as the identity.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	return Rect{
		X: x,
		Y: y,
		W: max(r.Right(), other.Right()) - x,
		H: max(r.Bottom(), other.Bottom()) - y,
	}
}

// RectFromPoints returns the normalized rect spanning two opposite
// corners, in any order. Used for rubber-band drag rectangles.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: min(a.X, b.X),
		Y: min(a.Y, b.Y),
		W: max(a.X, b.X) - min(a.X, b.X),
		H: max(a.Y, b.Y) - min(a.Y, b.Y),
	}
}

// ZoomAt rescales a view transform around a fixed anchor. The viewport
// mapping is viewport = scene*scale - scroll; after the call the scene
// point that was under anchorViewport still maps to anchorViewport.
//
// anchorScene is the scene-coordinate position under the anchor before
// zooming, i.e. (anchorViewport + oldScroll) / oldScale. Factor must be
// positive; discrete wheel steps use 1.15 and 1/1.15.
func ZoomAt(scale float64, anchorViewport, anchorScene Point, factor float64) (float64, Point) {
	newScale := scale * factor
	newScroll := anchorScene.Scale(newScale).Sub(anchorViewport)
	return newScale, newScroll
}
