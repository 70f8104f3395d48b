package model

import (
	"fmt"
	"strings"
)

// Column is one column of a table.
type Column struct {
	GUID     string `json:"guid,omitempty"`
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// RowText renders the column the way table shapes display it.
func (c Column) RowText() string {
	text := fmt.Sprintf("%s: %s", c.Name, c.DataType)
	if !c.Nullable {
		text += " NOT NULL"
	}
	return text
}

// Key is a primary or unique key on a table.
type Key struct {
	GUID    string   `json:"guid,omitempty"`
	Name    string   `json:"name"`
	Type    string   `json:"type"` // "primary" or "unique"
	Columns []string `json:"columns"`
}

// Index is a secondary index on a table.
type Index struct {
	GUID    string   `json:"guid,omitempty"`
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// Default fill colors for table shapes, keyed by stereotype.
const (
	colorDefault   = "#4C4C4C"
	colorBusiness  = "#081B2A"
	colorTechnical = "#360A3C"
)

// Table is a relational table owned by a schema owner.
type Table struct {
	GUID        string   `json:"guid,omitempty"`
	Owner       string   `json:"owner"`
	Name        string   `json:"name"`
	Tablespace  string   `json:"tablespace,omitempty"`
	Stereotype  string   `json:"stereotype,omitempty"`
	Color       string   `json:"color,omitempty"`
	Domain      string   `json:"domain,omitempty"`
	Editionable bool     `json:"editionable,omitempty"`
	Columns     []Column `json:"columns"`
	Keys        []Key    `json:"keys,omitempty"`
	Indexes     []Index  `json:"indexes,omitempty"`
}

// FullName returns the qualified "owner.name" identity.
func (t *Table) FullName() string {
	return t.Owner + "." + t.Name
}

// FillColor returns the table's explicit color, falling back to the
// stereotype default.
func (t *Table) FillColor() string {
	if t.Color != "" {
		return t.Color
	}
	return DefaultColorForStereotype(t.Stereotype)
}

// DefaultColorForStereotype maps a stereotype to its legacy fill color.
func DefaultColorForStereotype(stereotype string) string {
	switch strings.ToLower(stereotype) {
	case "business":
		return colorBusiness
	case "technical":
		return colorTechnical
	default:
		return colorDefault
	}
}

func (t *Table) Ref() string         { return t.FullName() }
func (t *Table) Kind() ObjectType    { return TypeTable }
func (t *Table) DisplayName() string { return t.FullName() }

// Sequence is a database sequence generator.
type Sequence struct {
	GUID        string `json:"guid,omitempty"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	StartWith   int64  `json:"start_with,omitempty"`
	IncrementBy int64  `json:"increment_by,omitempty"`
	MinValue    int64  `json:"min_value,omitempty"`
	MaxValue    int64  `json:"max_value,omitempty"`
	CacheSize   int64  `json:"cache_size,omitempty"`
	Cycle       bool   `json:"cycle,omitempty"`
}

// FullName returns the qualified "owner.name" identity.
func (s *Sequence) FullName() string {
	return s.Owner + "." + s.Name
}

func (s *Sequence) Ref() string         { return s.FullName() }
func (s *Sequence) Kind() ObjectType    { return TypeSequence }
func (s *Sequence) DisplayName() string { return s.FullName() }

// Domain is a named data type shared by columns.
type Domain struct {
	GUID     string `json:"guid,omitempty"`
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

func (d *Domain) Ref() string         { return d.Name }
func (d *Domain) Kind() ObjectType    { return TypeDomain }
func (d *Domain) DisplayName() string { return d.Name }

// Owner is a schema owner (user) grouping tables and sequences.
type Owner struct {
	GUID        string   `json:"guid,omitempty"`
	Name        string   `json:"name"`
	Tablespaces []string `json:"tablespaces,omitempty"`
	Editionable bool     `json:"editionable,omitempty"`
}

func (o *Owner) Ref() string         { return o.Name }
func (o *Owner) Kind() ObjectType    { return TypeOwner }
func (o *Owner) DisplayName() string { return o.Name }

// ForeignKey records the target of one foreign-key column. The project
// keys these by "owner.table.column" of the source.
type ForeignKey struct {
	TargetTable  string `json:"target_table"`
	TargetColumn string `json:"target_column"`
}

// SplitForeignKeyRef splits an "owner.table.column" key into the
// source table ref and column name. The column is everything after the
// last dot, so owners with dots in their names are not supported, same
// as the persisted format.
func SplitForeignKeyRef(key string) (tableRef, column string, ok bool) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	tableRef = key[:i]
	column = key[i+1:]
	if !strings.Contains(tableRef, ".") {
		return "", "", false
	}
	return tableRef, column, true
}
