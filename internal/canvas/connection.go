package canvas

import (
	"math"

	"github.com/travisdwitt/erdling/internal/geometry"
)

// Connection is the visual edge for one foreign key between two placed
// shapes. Connections have no identity of their own; the scene rebuilds
// them from the project's foreign-key map on every refresh.
type Connection struct {
	Source       *Shape
	Target       *Shape
	SourceColumn string
	TargetColumn string
}

// Endpoints picks the facing edges of the two shapes: when the centers
// are further apart horizontally than vertically the line runs between
// left/right edge midpoints, otherwise between top/bottom midpoints.
// The choice is deterministic for any pair of rectangles.
func (c *Connection) Endpoints() (geometry.Point, geometry.Point) {
	src := c.Source.BoundingRect()
	dst := c.Target.BoundingRect()
	delta := dst.Center().Sub(src.Center())

	if math.Abs(delta.X) >= math.Abs(delta.Y) {
		if delta.X >= 0 {
			return geometry.Point{X: src.Right(), Y: src.Center().Y},
				geometry.Point{X: dst.Left(), Y: dst.Center().Y}
		}
		return geometry.Point{X: src.Left(), Y: src.Center().Y},
			geometry.Point{X: dst.Right(), Y: dst.Center().Y}
	}
	if delta.Y >= 0 {
		return geometry.Point{X: src.Center().X, Y: src.Bottom()},
			geometry.Point{X: dst.Center().X, Y: dst.Top()}
	}
	return geometry.Point{X: src.Center().X, Y: src.Top()},
		geometry.Point{X: dst.Center().X, Y: dst.Bottom()}
}

// Label describes the relationship for persisted records and exports.
func (c *Connection) Label() string {
	return c.SourceColumn + " -> " + c.TargetColumn
}
