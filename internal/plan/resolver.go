package plan

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cborgen/internal/classify"
	"cborgen/internal/diagnostic"
)

// CycleError reports a by-value dependency cycle. Names lists the structs on
// the cycle in sorted order.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("by-value dependency cycle among structs: %s", strings.Join(e.Names, ", "))
}

// Resolve checks that every referenced struct exists and returns the structs
// reordered so each by-value dependency precedes its dependents. Pointer
// references do not constrain the order; they are satisfied by prototypes.
//
// Ties are broken by declaration order, so output is deterministic for a
// given input.
func Resolve(structs []*classify.Struct, diags *diagnostic.Diagnostics) ([]*classify.Struct, error) {
	index := make(map[string]int, len(structs))
	for i, s := range structs {
		index[s.Name()] = i
	}

	if err := checkTargets(structs, index, diags); err != nil {
		return nil, err
	}

	deps := make([][]int, len(structs))

	for i, s := range structs {
		for _, m := range s.Members {
			if !m.Class.ByValue() {
				continue
			}

			deps[i] = append(deps[i], index[m.Class.Target])
		}
	}

	order, err := topoSort(len(structs), func(i int) []int { return deps[i] })
	if err != nil {
		return nil, cycleError(structs, deps, order)
	}

	out := make([]*classify.Struct, 0, len(structs))
	for _, i := range order {
		out = append(out, structs[i])
	}

	return out, nil
}

func checkTargets(structs []*classify.Struct, index map[string]int, diags *diagnostic.Diagnostics) error {
	missing := 0

	for _, s := range structs {
		for _, m := range s.Members {
			if !m.Class.References() {
				continue
			}

			if _, ok := index[m.Class.Target]; !ok {
				diags.AddError("unknown_struct",
					fmt.Sprintf("references undeclared struct %q", m.Class.Target),
					s.Name(), m.Name)
				missing++
			}
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d unresolved struct reference(s)", missing)
	}

	return nil
}

// cycleError names the structs sitting on a by-value cycle. The partial
// order leaves unordered both the cycle members and everything downstream of
// them, so nodes that nothing remaining depends on are peeled off first.
func cycleError(structs []*classify.Struct, deps [][]int, partial []int) *CycleError {
	left := make(map[int]bool, len(structs))
	for i := range structs {
		left[i] = true
	}

	for _, i := range partial {
		delete(left, i)
	}

	for changed := true; changed; {
		changed = false

		neededBy := make(map[int]int, len(left))

		for j := range left {
			for _, d := range deps[j] {
				if left[d] {
					neededBy[d]++
				}
			}
		}

		for i := range left {
			if neededBy[i] == 0 {
				delete(left, i)
				changed = true
			}
		}
	}

	names := make([]string, 0, len(left))
	for i := range left {
		names = append(names, structs[i].Name())
	}

	sort.Strings(names)

	return &CycleError{Names: names}
}

// topoSort returns node indices in dependency order.
//
// depsFn(i) yields indices that must come before i. When multiple nodes are
// ready, the smallest index wins. On a cycle the partial order is returned
// alongside the error so the caller can name the offenders.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := 0; i < n; i++ {
		for _, d := range depsFn(i) {
			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	sort.Ints(ready)

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)

		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return order, errors.New("cycle detected")
	}

	return order, nil
}
