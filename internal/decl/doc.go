// Package decl holds the normalized in-memory declaration model.
//
// The structural parser produces a StructSet of StructDef values; each member
// carries a raw TypeDesc describing the declared C type shape. The model is
// purely syntactic: assigning serialization meaning to a TypeDesc is the
// classifier's job.
//
// Key types:
//   - TypeDesc: base type name, pointer depth, array dimensions, type flags
//   - MemberDef: member name (verbatim wire map key) + TypeDesc
//   - StructDef: unique name + ordered members
//   - StructSet: ordered collection with name lookup
package decl
