package classify

//go:generate go tool stringer -type=Category -output=category_string.go

// Category is the closed classification of a member's storage shape.
type Category int

const (
	CatInvalid Category = iota

	CatScalar        // single scalar value
	CatFixedText     // fixed-capacity char buffer, capacity includes the terminator slot
	CatTextPointer   // nullable pointer to a char buffer of assumed capacity
	CatNested        // struct embedded by value
	CatNestedPointer // nullable pointer to a struct
	CatScalarArray   // fixed-length scalar sequence
	CatNestedArray   // fixed-length sequence of by-value structs
	CatUnsupported   // excluded from codegen with a diagnostic
)

// Classification is the resolved category of a member plus category-specific
// metadata. Exactly the fields relevant to Cat are set; the rest are zero.
type Classification struct {
	Cat Category

	// Scalar kind, for CatScalar and CatScalarArray.
	Scalar Kind
	// Capacity of the char buffer, for CatFixedText.
	Capacity int
	// Target struct name, for CatNested, CatNestedPointer, and CatNestedArray.
	Target string
	// Length of the array, for CatScalarArray and CatNestedArray.
	Length int
	// Reason the member is excluded, for CatUnsupported.
	Reason string
}

// ByValue returns true if the classification embeds the target struct by
// value, which is what creates a dependency ordering edge.
func (c Classification) ByValue() bool {
	return c.Cat == CatNested || c.Cat == CatNestedArray
}

// References returns true if the classification names a target struct at all.
func (c Classification) References() bool {
	switch c.Cat {
	case CatNested, CatNestedPointer, CatNestedArray:
		return true
	default:
		return false
	}
}
