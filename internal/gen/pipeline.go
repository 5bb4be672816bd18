package gen

import (
	"fmt"

	"cborgen/internal/classify"
	"cborgen/internal/config"
	"cborgen/internal/diagnostic"
	"cborgen/internal/parse"
	"cborgen/internal/plan"
)

// Run executes the full generation pipeline on header source: parse,
// classify, order, emit, assemble. Diagnostics are returned even on failure
// so callers can report what went wrong per struct and member.
func Run(src []byte, opts config.Options) ([]GeneratedFile, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}

	set, err := parse.File(src)
	if err != nil {
		return nil, diags, fmt.Errorf("parsing header: %w", err)
	}

	structs := classify.Set(set, diags)

	ordered, err := plan.Resolve(structs, diags)
	if err != nil {
		return nil, diags, err
	}

	codecs, err := NewEmitter(opts.TextPointerCapacity).Emit(ordered)
	if err != nil {
		return nil, diags, err
	}

	return BuildFiles(codecs, opts), diags, nil
}
