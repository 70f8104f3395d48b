package model

// PlacedItem is one object placement on a diagram: which object, where,
// and optionally an explicit size overriding the computed one.
type PlacedItem struct {
	ObjectType ObjectType `json:"object_type"`
	ObjectRef  string     `json:"object_name"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      *float64   `json:"width,omitempty"`
	Height     *float64   `json:"height,omitempty"`
}

// ConnectionRecord is the persisted form of a routed relationship.
// Records are re-derived from the project's foreign keys on save; the
// live routing state never depends on them.
type ConnectionRecord struct {
	SourceTable    string `json:"source_table"`
	TargetTable    string `json:"target_table"`
	ConnectionType string `json:"connection_type"`
	Label          string `json:"label,omitempty"`
}

// Diagram is one canvas worth of placements plus its persisted view
// state. Zoom and scroll are stored exactly as saved; clamping to
// content bounds happens only when a viewport applies them.
type Diagram struct {
	GUID        string             `json:"guid,omitempty"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	IsActive    bool               `json:"is_active,omitempty"`
	ZoomLevel   float64            `json:"zoom_level"`
	ScrollX     float64            `json:"scroll_x"`
	ScrollY     float64            `json:"scroll_y"`
	Items       []PlacedItem       `json:"items"`
	Connections []ConnectionRecord `json:"connections,omitempty"`
}

// NewDiagram creates an empty diagram with default view state.
func NewDiagram(name string) *Diagram {
	return &Diagram{
		GUID:      newGUID(),
		Name:      name,
		ZoomLevel: 1.0,
	}
}

// Item returns the placement for ref, if any.
func (d *Diagram) Item(ref string) (PlacedItem, bool) {
	for _, item := range d.Items {
		if item.ObjectRef == ref {
			return item, true
		}
	}
	return PlacedItem{}, false
}

// AddItem places an object, replacing any existing placement with the
// same ref so the item list stays duplicate-free.
func (d *Diagram) AddItem(item PlacedItem) {
	d.RemoveItem(item.ObjectRef)
	d.Items = append(d.Items, item)
}

// RemoveItem drops the placement for ref. Missing refs are a no-op.
func (d *Diagram) RemoveItem(ref string) {
	kept := d.Items[:0]
	for _, item := range d.Items {
		if item.ObjectRef != ref {
			kept = append(kept, item)
		}
	}
	d.Items = kept
}

// UpdateItemPosition moves an existing placement. Unknown refs are
// ignored.
func (d *Diagram) UpdateItemPosition(ref string, x, y float64) {
	for i := range d.Items {
		if d.Items[i].ObjectRef == ref {
			d.Items[i].X = x
			d.Items[i].Y = y
			return
		}
	}
}

// normalize repairs values a hand-edited or older project file may
// carry: non-positive zoom becomes 1.0 and a missing GUID is assigned.
func (d *Diagram) normalize() {
	if d.ZoomLevel <= 0 {
		d.ZoomLevel = 1.0
	}
	if d.GUID == "" {
		d.GUID = newGUID()
	}
}
