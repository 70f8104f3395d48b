// Package model holds the project object graph: schema objects
// (owners, tables, sequences, domains), foreign keys, and the diagrams
// that place them on a canvas. The canvas packages read this graph and
// write back only diagram placement and view state.
package model

import "fmt"

// ObjectType identifies which kind of schema object a diagram item
// references.
type ObjectType string

const (
	TypeTable    ObjectType = "table"
	TypeSequence ObjectType = "sequence"
	TypeDomain   ObjectType = "domain"
	TypeOwner    ObjectType = "owner"
)

// ParseObjectType validates a serialized object type.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeTable, TypeSequence, TypeDomain, TypeOwner:
		return t, nil
	default:
		return "", fmt.Errorf("unknown object type %q", s)
	}
}

// Object is a schema object that can be placed on a diagram. Selection
// listeners and the property inspector receive Objects, never shapes.
type Object interface {
	// Ref is the identity key used by diagram items: "owner.name" for
	// tables and sequences, the bare name for domains and owners.
	Ref() string
	// Kind reports the object type.
	Kind() ObjectType
	// DisplayName is the human-readable label for browsers and panels.
	DisplayName() string
}
