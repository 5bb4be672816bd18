// Package parse is the structural parser: it consumes a bounded C-family
// header subset and produces the declaration model.
//
// Supported at the top level: struct definitions, typedefs of structs and
// scalar types, forward declarations. Inside structs: scalar members with
// pointer/array declarators, struct members by value and by pointer, char
// buffers and char pointers, plus union, function-pointer, and flexible-array
// members (the classifier rejects those, so the parser only needs to record
// their shape). Preprocessor lines and comments are skipped, not interpreted.
//
// Anonymous struct definitions not bound to a typedef alias are dropped: they
// cannot be referenced, so nothing generated could ever reach them.
package parse
