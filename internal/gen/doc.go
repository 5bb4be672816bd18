// Package gen emits the paired CBOR encode/decode C procedures for classified
// structs and assembles them into the generated header and source files.
package gen
