// Package plan validates struct references and orders the structs so
// generated procedures are defined before they are called.
package plan
