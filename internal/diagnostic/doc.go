// Package diagnostic provides structured warnings and errors for the
// codec generator.
//
// Key capabilities:
//   - Unsupported-member warnings with struct/member context
//   - Fatal findings (cycles, unresolved struct references)
//   - Stable, human-readable formatting for CLI output
package diagnostic
