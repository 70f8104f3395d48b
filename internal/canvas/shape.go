package canvas

import (
	"unicode/utf8"

	"github.com/travisdwitt/erdling/internal/geometry"
	"github.com/travisdwitt/erdling/internal/model"
)

// Text metrics shared by every renderer, so the terminal grid and the
// PNG exporter agree on shape extents.
const (
	// CharWidth is the horizontal advance per rune in scene units.
	CharWidth = 8.0
	// TitleHeight covers the title row including its separator.
	TitleHeight = 30.0
	// RowHeight is the height of one column row.
	RowHeight = 20.0
	// MinTableWidth is the narrowest a table shape may be.
	MinTableWidth = 150.0

	titlePadding = 10.0
	rowPadding   = 20.0
)

// Shape is the in-memory visual node for one placed object. Shapes are
// a projection of a PlacedItem plus the resolved schema object; they
// are rebuilt on every refresh and never the source of truth.
type Shape struct {
	Ref   string
	Kind  model.ObjectType
	Title string
	Rows  []string

	X float64
	Y float64
	W float64
	H float64

	Fill     string
	Selected bool

	BorderColor    string
	BorderWidth    float64
	TextColor      string
	SeparatorColor string

	theme Theme
}

// newShape builds a shape from a placement and its resolved object,
// laying out geometry from the shared text metrics. Explicit size
// overrides on the placement win over computed extents.
func newShape(item model.PlacedItem, obj model.Object, theme Theme) *Shape {
	s := &Shape{
		Ref:   item.ObjectRef,
		Kind:  item.ObjectType,
		X:     item.X,
		Y:     item.Y,
		theme: theme,
	}

	switch o := obj.(type) {
	case *model.Table:
		s.Title = o.Name
		s.Fill = o.FillColor()
		for _, col := range o.Columns {
			s.Rows = append(s.Rows, col.RowText())
		}
	case *model.Sequence:
		s.Title = "SEQ: " + o.FullName()
	case *model.Domain:
		s.Title = "DOM: " + o.Name
	case *model.Owner:
		s.Title = "OWN: " + o.Name
	}

	s.layout()
	if item.Width != nil {
		s.W = *item.Width
	}
	if item.Height != nil {
		s.H = *item.Height
	}
	s.restyle()
	return s
}

// layout computes W and H from the title and rows. Tables are clamped
// to MinTableWidth; marker shapes size to their text. An empty column
// list leaves just the title row.
func (s *Shape) layout() {
	width := float64(utf8.RuneCountInString(s.Title))*CharWidth + titlePadding
	if s.Kind == model.TypeTable && width < MinTableWidth {
		width = MinTableWidth
	}
	for _, row := range s.Rows {
		if w := float64(utf8.RuneCountInString(row))*CharWidth + rowPadding; w > width {
			width = w
		}
	}
	s.W = width
	s.H = TitleHeight + float64(len(s.Rows))*RowHeight
}

// restyle resolves colors from the selection state and theme.
func (s *Shape) restyle() {
	if s.Selected {
		s.BorderColor = s.theme.SelectedBorder()
		s.BorderWidth = 3
	} else {
		s.BorderColor = s.theme.ShapeBorder()
		s.BorderWidth = 1
	}
	s.TextColor = s.theme.Text()
	s.SeparatorColor = s.theme.Separator()
}

// SetSelected flips the selection border. Selected shapes carry the
// 3px accent border; unselected ones the 1px theme neutral.
func (s *Shape) SetSelected(selected bool) {
	s.Selected = selected
	s.restyle()
}

// ApplyTheme recolors the shape without altering geometry.
func (s *Shape) ApplyTheme(theme Theme) {
	s.theme = theme
	s.restyle()
}

// BoundingRect returns the shape's rectangle in scene coordinates.
func (s *Shape) BoundingRect() geometry.Rect {
	return geometry.Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
}

// ContainsPoint is the hit test for input dispatch.
func (s *Shape) ContainsPoint(p geometry.Point) bool {
	return s.BoundingRect().Contains(p)
}

// SetPos moves the shape's top-left corner.
func (s *Shape) SetPos(p geometry.Point) {
	s.X = p.X
	s.Y = p.Y
}
