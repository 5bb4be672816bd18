// Package classify maps raw member type descriptors to a closed set of
// serialization categories.
//
// Classify is total and deterministic: it never fails, and every construct it
// cannot serialize lands in CatUnsupported with a reason. The category set is
// closed on purpose; the emitter switches over it exhaustively, so an
// unhandled case is a build-time defect rather than corrupt wire data.
package classify
