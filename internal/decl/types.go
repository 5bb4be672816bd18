package decl

import (
	"fmt"
	"strings"
)

// TypeDesc is the raw type descriptor for a struct member. It records the
// declared shape without interpreting it.
type TypeDesc struct {
	// Base is the normalized base type name, e.g. "int", "unsigned long",
	// "char", "bool". Empty when the base is a struct, union, or function.
	Base string
	// Struct is the referenced struct name when IsStruct is set. Empty for an
	// anonymous inline struct.
	Struct string
	// PtrDepth counts pointer indirections applied to the base type.
	PtrDepth int
	// ArrayLens holds one entry per array rank, outermost first. A negative
	// length marks an incomplete dimension (flexible array member).
	ArrayLens []int
	// IsStruct marks a struct base type.
	IsStruct bool
	// IsUnion marks a union base type.
	IsUnion bool
	// IsFunc marks a function type (a function-pointer member).
	IsFunc bool
	// Const records a const qualifier. It does not affect classification.
	Const bool
}

// IsPointer returns true if the descriptor has pointer indirection.
func (d TypeDesc) IsPointer() bool {
	return d.PtrDepth > 0
}

// IsArray returns true if the descriptor has at least one array dimension.
func (d TypeDesc) IsArray() bool {
	return len(d.ArrayLens) > 0
}

// String returns a readable rendering for diagnostics, e.g. "struct Point*",
// "char[64]", "unsigned int".
func (d TypeDesc) String() string {
	var sb strings.Builder

	switch {
	case d.IsFunc:
		sb.WriteString("function")
	case d.IsUnion:
		sb.WriteString("union")
		if d.Struct != "" {
			sb.WriteString(" " + d.Struct)
		}
	case d.IsStruct:
		sb.WriteString("struct")
		if d.Struct != "" {
			sb.WriteString(" " + d.Struct)
		}
	default:
		sb.WriteString(d.Base)
	}

	sb.WriteString(strings.Repeat("*", d.PtrDepth))

	for _, n := range d.ArrayLens {
		if n < 0 {
			sb.WriteString("[]")
			continue
		}

		fmt.Fprintf(&sb, "[%d]", n)
	}

	return sb.String()
}

// MemberDef describes one struct member. Name is used verbatim as the wire
// map key.
type MemberDef struct {
	Name string
	Type TypeDesc
}

// StructDef is a named struct declaration with ordered members. Member order
// fixes wire map entry order and decode dispatch order. Immutable after
// construction.
type StructDef struct {
	// Name is the unique struct name.
	Name string
	// Tagged is true when the struct was declared with a struct tag, so
	// generated code must refer to it as "struct Name" rather than a typedef
	// alias.
	Tagged bool
	// Members in declaration order.
	Members []MemberDef
}

// CType returns the C type expression for this struct, honoring whether it is
// referenced through a tag or a typedef alias.
func (s *StructDef) CType() string {
	if s.Tagged {
		return "struct " + s.Name
	}

	return s.Name
}

// StructSet is an ordered collection of struct definitions preserving
// declaration order, with name lookup.
type StructSet struct {
	structs []*StructDef
	byName  map[string]*StructDef
}

// NewStructSet creates an empty StructSet.
func NewStructSet() *StructSet {
	return &StructSet{byName: make(map[string]*StructDef)}
}

// Add appends a struct definition. Duplicate names are rejected.
func (s *StructSet) Add(def *StructDef) error {
	if def.Name == "" {
		return fmt.Errorf("struct definition without a name")
	}

	if _, ok := s.byName[def.Name]; ok {
		return fmt.Errorf("duplicate struct definition %q", def.Name)
	}

	s.structs = append(s.structs, def)
	s.byName[def.Name] = def

	return nil
}

// Get returns the struct definition with the given name, or nil.
func (s *StructSet) Get(name string) *StructDef {
	return s.byName[name]
}

// All returns the struct definitions in declaration order. Callers must not
// mutate the returned slice.
func (s *StructSet) All() []*StructDef {
	return s.structs
}

// Len returns the number of struct definitions.
func (s *StructSet) Len() int {
	return len(s.structs)
}
