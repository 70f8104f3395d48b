package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

func newGUID() string { return uuid.NewString() }

// Project is the root of the object graph: all schema objects, the
// foreign keys relating them, and the diagrams placing them.
type Project struct {
	GUID              string                `json:"guid,omitempty"`
	Name              string                `json:"name"`
	Description       string                `json:"description,omitempty"`
	Owners            []*Owner              `json:"owners"`
	Tables            []*Table              `json:"tables"`
	Sequences         []*Sequence           `json:"sequences"`
	Domains           []*Domain             `json:"domains"`
	ForeignKeys       map[string]ForeignKey `json:"foreign_keys"`
	Diagrams          []*Diagram            `json:"diagrams"`
	LastActiveDiagram string                `json:"last_active_diagram,omitempty"`
}

// NewProject creates an empty named project.
func NewProject(name string) *Project {
	return &Project{
		GUID:        newGUID(),
		Name:        name,
		ForeignKeys: make(map[string]ForeignKey),
	}
}

// TableByRef finds a table by its "owner.name" ref.
func (p *Project) TableByRef(ref string) (*Table, bool) {
	return lo.Find(p.Tables, func(t *Table) bool { return t.FullName() == ref })
}

// SequenceByRef finds a sequence by its "owner.name" ref.
func (p *Project) SequenceByRef(ref string) (*Sequence, bool) {
	return lo.Find(p.Sequences, func(s *Sequence) bool { return s.FullName() == ref })
}

// DomainByName finds a domain by name.
func (p *Project) DomainByName(name string) (*Domain, bool) {
	return lo.Find(p.Domains, func(d *Domain) bool { return d.Name == name })
}

// OwnerByName finds an owner by name.
func (p *Project) OwnerByName(name string) (*Owner, bool) {
	return lo.Find(p.Owners, func(o *Owner) bool { return o.Name == name })
}

// DiagramByName finds a diagram by name.
func (p *Project) DiagramByName(name string) (*Diagram, bool) {
	return lo.Find(p.Diagrams, func(d *Diagram) bool { return d.Name == name })
}

// Resolve maps a placed item's type and ref to the live object. The
// second result is false when the object no longer exists, which is how
// dangling placements are detected and dropped.
func (p *Project) Resolve(t ObjectType, ref string) (Object, bool) {
	switch t {
	case TypeTable:
		if tbl, ok := p.TableByRef(ref); ok {
			return tbl, true
		}
	case TypeSequence:
		if seq, ok := p.SequenceByRef(ref); ok {
			return seq, true
		}
	case TypeDomain:
		if dom, ok := p.DomainByName(ref); ok {
			return dom, true
		}
	case TypeOwner:
		if own, ok := p.OwnerByName(ref); ok {
			return own, true
		}
	}
	return nil, false
}

// Normalize repairs loadable defects after unmarshalling: nil
// collections, missing GUIDs, and non-positive diagram zoom. Safe to
// call repeatedly.
func (p *Project) Normalize() {
	if p.ForeignKeys == nil {
		p.ForeignKeys = make(map[string]ForeignKey)
	}
	if p.GUID == "" {
		p.GUID = newGUID()
	}
	for _, o := range p.Owners {
		if o.GUID == "" {
			o.GUID = newGUID()
		}
	}
	for _, t := range p.Tables {
		if t.GUID == "" {
			t.GUID = newGUID()
		}
	}
	for _, s := range p.Sequences {
		if s.GUID == "" {
			s.GUID = newGUID()
		}
	}
	for _, d := range p.Domains {
		if d.GUID == "" {
			d.GUID = newGUID()
		}
	}
	for _, d := range p.Diagrams {
		d.normalize()
	}
}

// Validate checks referential integrity across the graph and returns
// every problem found, aggregated. A nil result means the project is
// consistent. Validation never mutates the project; repairs belong to
// Normalize.
func (p *Project) Validate() error {
	var errs *multierror.Error

	if p.Name == "" {
		errs = multierror.Append(errs, fmt.Errorf("project has no name"))
	}

	for _, t := range p.Tables {
		if t.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("table %s has no name", t.GUID))
		}
		if t.Owner == "" {
			errs = multierror.Append(errs, fmt.Errorf("table %q has no owner", t.Name))
		} else if _, ok := p.OwnerByName(t.Owner); !ok {
			errs = multierror.Append(errs, fmt.Errorf("table %q references unknown owner %q", t.Name, t.Owner))
		}
	}

	for _, dup := range lo.FindDuplicatesBy(p.Tables, func(t *Table) string { return t.FullName() }) {
		errs = multierror.Append(errs, fmt.Errorf("duplicate table %q", dup.FullName()))
	}
	for _, dup := range lo.FindDuplicatesBy(p.Sequences, func(s *Sequence) string { return s.FullName() }) {
		errs = multierror.Append(errs, fmt.Errorf("duplicate sequence %q", dup.FullName()))
	}
	for _, dup := range lo.FindDuplicatesBy(p.Domains, func(d *Domain) string { return d.Name }) {
		errs = multierror.Append(errs, fmt.Errorf("duplicate domain %q", dup.Name))
	}
	for _, dup := range lo.FindDuplicatesBy(p.Owners, func(o *Owner) string { return o.Name }) {
		errs = multierror.Append(errs, fmt.Errorf("duplicate owner %q", dup.Name))
	}

	for key, fk := range p.ForeignKeys {
		tableRef, column, ok := SplitForeignKeyRef(key)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("foreign key %q is not owner.table.column", key))
			continue
		}
		src, found := p.TableByRef(tableRef)
		if !found {
			errs = multierror.Append(errs, fmt.Errorf("foreign key %q references unknown source table %q", key, tableRef))
		} else if !tableHasColumn(src, column) {
			errs = multierror.Append(errs, fmt.Errorf("foreign key %q references unknown column %q", key, column))
		}
		dst, found := p.TableByRef(fk.TargetTable)
		if !found {
			errs = multierror.Append(errs, fmt.Errorf("foreign key %q references unknown target table %q", key, fk.TargetTable))
		} else if fk.TargetColumn != "" && !tableHasColumn(dst, fk.TargetColumn) {
			errs = multierror.Append(errs, fmt.Errorf("foreign key %q references unknown target column %q", key, fk.TargetColumn))
		}
	}

	for _, d := range p.Diagrams {
		for _, item := range d.Items {
			if _, err := ParseObjectType(string(item.ObjectType)); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("diagram %q: %w", d.Name, err))
			}
		}
	}
	for _, dup := range lo.FindDuplicatesBy(p.Diagrams, func(d *Diagram) string { return d.Name }) {
		errs = multierror.Append(errs, fmt.Errorf("duplicate diagram %q", dup.Name))
	}

	return errs.ErrorOrNil()
}

func tableHasColumn(t *Table, name string) bool {
	return lo.ContainsBy(t.Columns, func(c Column) bool { return c.Name == name })
}
