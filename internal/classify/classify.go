package classify

import (
	"fmt"

	"cborgen/internal/decl"
	"cborgen/internal/diagnostic"
)

// Classify resolves a raw type descriptor to its serialization category.
// It is total: every descriptor maps to exactly one Classification, and
// anything outside the wire contract maps to CatUnsupported.
func Classify(d decl.TypeDesc) Classification {
	switch {
	case d.IsUnion:
		return unsupported("union types are not supported")
	case d.IsFunc:
		return unsupported("function pointers are not supported")
	case len(d.ArrayLens) >= 2:
		return unsupported("multi-dimensional arrays are not supported")
	case len(d.ArrayLens) == 1 && d.ArrayLens[0] < 0:
		return unsupported("flexible array members are not supported")
	}

	if d.IsStruct {
		return classifyStruct(d)
	}

	if d.Base == "char" && !d.IsPointer() && len(d.ArrayLens) == 1 {
		return Classification{Cat: CatFixedText, Capacity: d.ArrayLens[0]}
	}

	if d.Base == "char" && d.PtrDepth == 1 && !d.IsArray() {
		return Classification{Cat: CatTextPointer}
	}

	if kind, ok := ScalarKind(d.Base); ok && !d.IsPointer() {
		if len(d.ArrayLens) == 1 {
			return Classification{Cat: CatScalarArray, Scalar: kind, Length: d.ArrayLens[0]}
		}

		return Classification{Cat: CatScalar, Scalar: kind}
	}

	return unsupported(fmt.Sprintf("unrecognized type %s", d))
}

func classifyStruct(d decl.TypeDesc) Classification {
	if d.Struct == "" {
		return unsupported("anonymous struct types are not supported")
	}

	switch {
	case d.PtrDepth == 0 && !d.IsArray():
		return Classification{Cat: CatNested, Target: d.Struct}
	case d.PtrDepth == 1 && !d.IsArray():
		return Classification{Cat: CatNestedPointer, Target: d.Struct}
	case d.PtrDepth == 0 && len(d.ArrayLens) == 1:
		return Classification{Cat: CatNestedArray, Target: d.Struct, Length: d.ArrayLens[0]}
	default:
		return unsupported(fmt.Sprintf("unsupported struct shape %s", d))
	}
}

func unsupported(reason string) Classification {
	return Classification{Cat: CatUnsupported, Reason: reason}
}

// Member is a declared member together with its resolved classification.
type Member struct {
	decl.MemberDef
	Class Classification
}

// Struct is a classified struct definition, ready for ordering and emission.
type Struct struct {
	Def     *decl.StructDef
	Members []Member
}

// Name returns the struct name.
func (s *Struct) Name() string {
	return s.Def.Name
}

// EmittedMembers returns the members that participate in the wire shape, in
// declaration order.
func (s *Struct) EmittedMembers() []Member {
	out := make([]Member, 0, len(s.Members))

	for _, m := range s.Members {
		if m.Class.Cat == CatUnsupported {
			continue
		}

		out = append(out, m)
	}

	return out
}

// Set classifies every member of every struct in declaration order. Members
// that classify as CatUnsupported are kept in the model (so the emitter can
// skip them explicitly) and reported as warnings; they never fail the struct.
func Set(set *decl.StructSet, diags *diagnostic.Diagnostics) []*Struct {
	out := make([]*Struct, 0, set.Len())

	for _, def := range set.All() {
		cs := &Struct{Def: def, Members: make([]Member, 0, len(def.Members))}

		for _, m := range def.Members {
			class := Classify(m.Type)
			if class.Cat == CatUnsupported {
				diags.AddWarning("member_unsupported",
					fmt.Sprintf("skipping member: %s", class.Reason),
					def.Name, m.Name)
			}

			cs.Members = append(cs.Members, Member{MemberDef: m, Class: class})
		}

		out = append(out, cs)
	}

	return out
}
