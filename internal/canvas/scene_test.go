package canvas

import (
	"math"
	"testing"

	"github.com/travisdwitt/erdling/internal/geometry"
	"github.com/travisdwitt/erdling/internal/model"
)

const tol = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) <= tol }

func fixtureProject() *model.Project {
	p := model.NewProject("demo")
	p.Owners = []*model.Owner{{Name: "APP"}}
	p.Tables = []*model.Table{
		{Owner: "APP", Name: "USERS", Columns: []model.Column{
			{Name: "ID", DataType: "NUMBER"},
			{Name: "EMAIL", DataType: "VARCHAR2(200)", Nullable: true},
		}},
		{Owner: "APP", Name: "ORDERS", Columns: []model.Column{
			{Name: "ID", DataType: "NUMBER"},
			{Name: "USER_ID", DataType: "NUMBER"},
		}},
		{Owner: "APP", Name: "PRODUCTS", Columns: []model.Column{
			{Name: "ID", DataType: "NUMBER"},
			{Name: "NAME", DataType: "VARCHAR2(100)", Nullable: true},
		}},
	}
	p.Sequences = []*model.Sequence{{Owner: "APP", Name: "ORDERS_SEQ"}}
	p.ForeignKeys["APP.ORDERS.USER_ID"] = model.ForeignKey{TargetTable: "APP.USERS", TargetColumn: "ID"}
	return p
}

func fixtureScene() (*model.Project, *model.Diagram, *Scene) {
	p := fixtureProject()
	d := model.NewDiagram("main")
	d.AddItem(model.PlacedItem{ObjectType: model.TypeTable, ObjectRef: "APP.USERS", X: 0, Y: 0})
	d.AddItem(model.PlacedItem{ObjectType: model.TypeTable, ObjectRef: "APP.ORDERS", X: 300, Y: 0})
	d.AddItem(model.PlacedItem{ObjectType: model.TypeTable, ObjectRef: "APP.PRODUCTS", X: 600, Y: 0})
	p.Diagrams = append(p.Diagrams, d)
	return p, d, NewScene(p, d, Theme{})
}

// sizedScene builds a scene whose three shapes have the explicit
// geometry (0,0,100,50), (50,80,100,50), (200,10,100,50).
func sizedScene() *Scene {
	p := fixtureProject()
	d := model.NewDiagram("main")
	w, h := 100.0, 50.0
	for _, pl := range []struct {
		ref  string
		x, y float64
	}{
		{"APP.USERS", 0, 0},
		{"APP.ORDERS", 50, 80},
		{"APP.PRODUCTS", 200, 10},
	} {
		width, height := w, h
		d.AddItem(model.PlacedItem{
			ObjectType: model.TypeTable,
			ObjectRef:  pl.ref,
			X:          pl.x,
			Y:          pl.y,
			Width:      &width,
			Height:     &height,
		})
	}
	p.Diagrams = append(p.Diagrams, d)
	return NewScene(p, d, Theme{})
}

func TestSceneBuildsShapesAndConnections(t *testing.T) {
	t.Parallel()

	_, _, s := fixtureScene()

	if got := len(s.Shapes()); got != 3 {
		t.Fatalf("len(Shapes) = %d, want 3", got)
	}
	if got := len(s.Connections()); got != 1 {
		t.Fatalf("len(Connections) = %d, want 1", got)
	}
	c := s.Connections()[0]
	if c.Source.Ref != "APP.ORDERS" || c.Target.Ref != "APP.USERS" {
		t.Errorf("connection %s -> %s, want APP.ORDERS -> APP.USERS", c.Source.Ref, c.Target.Ref)
	}
	if c.SourceColumn != "USER_ID" || c.TargetColumn != "ID" {
		t.Errorf("connection columns %s -> %s, want USER_ID -> ID", c.SourceColumn, c.TargetColumn)
	}
}

func TestSceneAddShapeRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, d, s := fixtureScene()

	added := s.AddShape(model.TypeSequence, "APP.ORDERS_SEQ", geometry.Point{X: 10, Y: 10})
	if added == nil {
		t.Fatal("first placement returned nil")
	}

	dup := s.AddShape(model.TypeSequence, "APP.ORDERS_SEQ", geometry.Point{X: 99, Y: 99})
	if dup != nil {
		t.Error("duplicate placement returned a shape, want nil")
	}

	count := 0
	for _, sh := range s.Shapes() {
		if sh.Ref == "APP.ORDERS_SEQ" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shapes for APP.ORDERS_SEQ = %d, want exactly 1", count)
	}

	items := 0
	for _, item := range d.Items {
		if item.ObjectRef == "APP.ORDERS_SEQ" {
			items++
		}
	}
	if items != 1 {
		t.Errorf("placed items for APP.ORDERS_SEQ = %d, want exactly 1", items)
	}

	first, _ := d.Item("APP.ORDERS_SEQ")
	if first.X != 10 || first.Y != 10 {
		t.Errorf("placement moved to (%v, %v), duplicate add must not touch it", first.X, first.Y)
	}
}

func TestSceneAddShapeUnresolvableIsNoop(t *testing.T) {
	t.Parallel()

	_, d, s := fixtureScene()

	if got := s.AddShape(model.TypeTable, "APP.NO_SUCH", geometry.Point{}); got != nil {
		t.Error("unresolvable ref returned a shape, want nil")
	}
	if len(d.Items) != 3 {
		t.Errorf("items = %d after failed add, want 3", len(d.Items))
	}
}

func TestSceneRemoveShapesPrunesEverything(t *testing.T) {
	t.Parallel()

	_, d, s := fixtureScene()
	users, _ := s.ShapeByRef("APP.USERS")
	s.Selection().SelectAll(s.Shapes())

	s.RemoveShapes([]*Shape{users})

	if _, ok := s.ShapeByRef("APP.USERS"); ok {
		t.Error("APP.USERS still present after removal")
	}
	if _, ok := d.Item("APP.USERS"); ok {
		t.Error("placement still present after removal")
	}
	if len(s.Connections()) != 0 {
		t.Errorf("connections = %d after removing an endpoint, want 0", len(s.Connections()))
	}
	if s.Selection().Contains(users) {
		t.Error("removed shape still selected")
	}
	if _, ok := s.Project().TableByRef("APP.USERS"); !ok {
		t.Error("removing a shape must not delete the table from the project")
	}
	assertSelectionSubset(t, s)
}

func TestSceneRefreshDropsDanglingRefs(t *testing.T) {
	t.Parallel()

	p, d, s := fixtureScene()
	s.Selection().SelectAll(s.Shapes())

	// Delete the USERS table upstream; its placement now dangles.
	kept := p.Tables[:0]
	for _, tbl := range p.Tables {
		if tbl.FullName() != "APP.USERS" {
			kept = append(kept, tbl)
		}
	}
	p.Tables = kept

	s.Refresh()

	if _, ok := s.ShapeByRef("APP.USERS"); ok {
		t.Error("dangling shape survived refresh")
	}
	if _, ok := d.Item("APP.USERS"); ok {
		t.Error("dangling placement survived refresh")
	}
	if len(s.Connections()) != 0 {
		t.Errorf("connections = %d after target vanished, want 0", len(s.Connections()))
	}
	if got := s.Selection().Len(); got != 2 {
		t.Errorf("selection length after refresh = %d, want 2 survivors", got)
	}
	assertSelectionSubset(t, s)
}

func TestSceneRefreshPicksUpColumnChanges(t *testing.T) {
	t.Parallel()

	p, _, s := fixtureScene()
	users, _ := s.ShapeByRef("APP.USERS")
	heightBefore := users.H

	tbl, _ := p.TableByRef("APP.USERS")
	tbl.Columns = append(tbl.Columns, model.Column{Name: "CREATED_AT", DataType: "DATE"})

	s.Refresh()

	users, ok := s.ShapeByRef("APP.USERS")
	if !ok {
		t.Fatal("APP.USERS missing after refresh")
	}
	if want := heightBefore + RowHeight; users.H != want {
		t.Errorf("H = %v after adding a column, want %v", users.H, want)
	}
}

func TestSceneAlign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edge  Edge
		check func(t *testing.T, shapes []*Shape)
	}{
		{"left to minimum", EdgeLeft, func(t *testing.T, shapes []*Shape) {
			for _, sh := range shapes {
				if !approx(sh.X, 0) {
					t.Errorf("%s.X = %v, want 0", sh.Ref, sh.X)
				}
			}
		}},
		{"right to maximum", EdgeRight, func(t *testing.T, shapes []*Shape) {
			for _, sh := range shapes {
				if !approx(sh.X+sh.W, 300) {
					t.Errorf("%s right edge = %v, want 300", sh.Ref, sh.X+sh.W)
				}
			}
		}},
		{"top to minimum", EdgeTop, func(t *testing.T, shapes []*Shape) {
			for _, sh := range shapes {
				if !approx(sh.Y, 0) {
					t.Errorf("%s.Y = %v, want 0", sh.Ref, sh.Y)
				}
			}
		}},
		{"bottom to maximum", EdgeBottom, func(t *testing.T, shapes []*Shape) {
			for _, sh := range shapes {
				if !approx(sh.Y+sh.H, 130) {
					t.Errorf("%s bottom edge = %v, want 130", sh.Ref, sh.Y+sh.H)
				}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := sizedScene()
			s.Align(s.Shapes(), tt.edge)
			tt.check(t, s.Shapes())
		})
	}
}

func TestSceneAlignIsIdempotent(t *testing.T) {
	t.Parallel()

	s := sizedScene()
	s.Align(s.Shapes(), EdgeLeft)

	after := make(map[string]geometry.Rect)
	for _, sh := range s.Shapes() {
		after[sh.Ref] = sh.BoundingRect()
	}

	s.Align(s.Shapes(), EdgeLeft)
	for _, sh := range s.Shapes() {
		if sh.BoundingRect() != after[sh.Ref] {
			t.Errorf("%s moved on second align: %+v != %+v", sh.Ref, sh.BoundingRect(), after[sh.Ref])
		}
	}
}

func TestSceneAlignFewShapesIsNoop(t *testing.T) {
	t.Parallel()

	s := sizedScene()
	only := s.Shapes()[0]
	before := only.BoundingRect()

	s.Align(nil, EdgeLeft)
	s.Align([]*Shape{only}, EdgeRight)

	if only.BoundingRect() != before {
		t.Errorf("single shape moved by align: %+v != %+v", only.BoundingRect(), before)
	}
}

func TestSceneDistributeHorizontal(t *testing.T) {
	t.Parallel()

	s := sizedScene()
	s.Distribute(s.Shapes(), Horizontal)

	users, _ := s.ShapeByRef("APP.USERS")
	orders, _ := s.ShapeByRef("APP.ORDERS")
	products, _ := s.ShapeByRef("APP.PRODUCTS")

	// Outermost shapes keep their positions.
	if !approx(users.X, 0) || !approx(products.X, 200) {
		t.Errorf("outer shapes moved: USERS.X=%v PRODUCTS.X=%v, want 0 and 200", users.X, products.X)
	}

	// Gaps between consecutive shapes are equal.
	gap1 := orders.X - (users.X + users.W)
	gap2 := products.X - (orders.X + orders.W)
	if !approx(gap1, gap2) {
		t.Errorf("gaps unequal: %v vs %v", gap1, gap2)
	}
}

func TestSceneDistributeVertical(t *testing.T) {
	t.Parallel()

	s := sizedScene()
	s.Distribute(s.Shapes(), Vertical)

	// USERS (y 0) and ORDERS (y 80) are outermost; PRODUCTS moves.
	users, _ := s.ShapeByRef("APP.USERS")
	orders, _ := s.ShapeByRef("APP.ORDERS")
	products, _ := s.ShapeByRef("APP.PRODUCTS")

	if !approx(users.Y, 0) || !approx(orders.Y, 80) {
		t.Errorf("outer shapes moved: USERS.Y=%v ORDERS.Y=%v, want 0 and 80", users.Y, orders.Y)
	}
	gap1 := products.Y - (users.Y + users.H)
	gap2 := orders.Y - (products.Y + products.H)
	if !approx(gap1, gap2) {
		t.Errorf("gaps unequal: %v vs %v", gap1, gap2)
	}
}

func TestSceneDistributeFewShapesIsNoop(t *testing.T) {
	t.Parallel()

	s := sizedScene()
	pair := s.Shapes()[:2]
	before := []geometry.Rect{pair[0].BoundingRect(), pair[1].BoundingRect()}

	s.Distribute(pair, Horizontal)

	if pair[0].BoundingRect() != before[0] || pair[1].BoundingRect() != before[1] {
		t.Error("distribute with two shapes moved them, want no-op")
	}
}

// TestSceneAlignThenDistribute walks the reference scenario: three
// 100x50 shapes at (0,0), (50,80), (200,10); align top puts all at
// y=0; distribute horizontal recomputes the middle x to 100.
func TestSceneAlignThenDistribute(t *testing.T) {
	t.Parallel()

	s := sizedScene()

	s.Align(s.Shapes(), EdgeTop)
	for _, sh := range s.Shapes() {
		if !approx(sh.Y, 0) {
			t.Fatalf("%s.Y = %v after align top, want 0", sh.Ref, sh.Y)
		}
	}

	s.Distribute(s.Shapes(), Horizontal)

	orders, _ := s.ShapeByRef("APP.ORDERS")
	if !approx(orders.X, 100) {
		t.Errorf("middle shape X = %v, want 100", orders.X)
	}

	// Operations landed in the diagram too.
	item, _ := s.Diagram().Item("APP.ORDERS")
	if !approx(item.X, 100) || !approx(item.Y, 0) {
		t.Errorf("persisted position = (%v, %v), want (100, 0)", item.X, item.Y)
	}
}

func TestSceneSetTheme(t *testing.T) {
	t.Parallel()

	_, _, s := fixtureScene()

	rects := make(map[string]geometry.Rect)
	for _, sh := range s.Shapes() {
		rects[sh.Ref] = sh.BoundingRect()
	}

	s.SetTheme(true)
	if got := s.Theme().Background(); got != "#2b2b2b" {
		t.Errorf("dark background = %q, want #2b2b2b", got)
	}
	s.SetTheme(false)
	if got := s.Theme().Background(); got != "#ffffff" {
		t.Errorf("light background = %q, want #ffffff", got)
	}

	for _, sh := range s.Shapes() {
		if sh.BoundingRect() != rects[sh.Ref] {
			t.Errorf("%s geometry changed across theme toggles", sh.Ref)
		}
	}
}

func TestSceneShapeAtPrefersTopmost(t *testing.T) {
	t.Parallel()

	p := fixtureProject()
	d := model.NewDiagram("overlap")
	w, h := 100.0, 50.0
	for _, ref := range []string{"APP.USERS", "APP.ORDERS"} {
		width, height := w, h
		d.AddItem(model.PlacedItem{ObjectType: model.TypeTable, ObjectRef: ref, X: 0, Y: 0, Width: &width, Height: &height})
	}
	p.Diagrams = append(p.Diagrams, d)
	s := NewScene(p, d, Theme{})

	hit := s.ShapeAt(geometry.Point{X: 50, Y: 25})
	if hit == nil || hit.Ref != "APP.ORDERS" {
		t.Errorf("ShapeAt = %v, want topmost APP.ORDERS", hit)
	}
	if miss := s.ShapeAt(geometry.Point{X: 500, Y: 500}); miss != nil {
		t.Errorf("ShapeAt over empty canvas = %v, want nil", miss)
	}
}

func TestSceneSyncConnections(t *testing.T) {
	t.Parallel()

	_, d, s := fixtureScene()
	s.SyncConnections()

	if len(d.Connections) != 1 {
		t.Fatalf("persisted connections = %d, want 1", len(d.Connections))
	}
	rec := d.Connections[0]
	want := model.ConnectionRecord{
		SourceTable:    "APP.ORDERS",
		TargetTable:    "APP.USERS",
		ConnectionType: "foreign_key",
		Label:          "USER_ID -> ID",
	}
	if rec != want {
		t.Errorf("record = %+v, want %+v", rec, want)
	}
}

// assertSelectionSubset checks the standing invariant that every
// selected shape is a live scene shape.
func assertSelectionSubset(t *testing.T, s *Scene) {
	t.Helper()
	live := make(map[*Shape]struct{})
	for _, sh := range s.Shapes() {
		live[sh] = struct{}{}
	}
	for _, sh := range s.Selection().Selected() {
		if _, ok := live[sh]; !ok {
			t.Errorf("selection contains %s which is not in the scene", sh.Ref)
		}
	}
	if s.Selection().Len() != len(s.Selection().Selected()) {
		t.Errorf("selection Len %d != ordered members %d", s.Selection().Len(), len(s.Selection().Selected()))
	}
}
