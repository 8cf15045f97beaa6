// Package slices holds generic helpers the standard x/exp/slices package lacks.
package slices

import (
	"fmt"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	goslices "golang.org/x/exp/slices"
)

// Batches splits s into consecutive batches of size elements, the last of which may be shorter.
// Batches share the backing array of s. An empty s yields no batches.
func Batches[S ~[]E, E any](s S, size int) []S {
	if size < 1 {
		panic(fmt.Sprintf("batch size is %d but must be at least 1", size))
	}
	batches := make([]S, 0, (len(s)+size-1)/size)
	for len(s) > size {
		batches = append(batches, s[:size:size])
		s = s[size:]
	}
	if len(s) > 0 {
		batches = append(batches, s)
	}
	return batches
}

// Flatten concatenates the slices of s.
func Flatten[S ~[]E, E any](s []S) S {
	n := 0
	for _, si := range s {
		n += len(si)
	}
	flat := make(S, 0, n)
	for _, si := range s {
		flat = append(flat, si...)
	}
	return flat
}

// GroupBy maps every element of s with value and groups the results by key. Within a group the order of s
// is kept.
func GroupBy[S ~[]E, E any, K comparable, V any](s S, key func(E) K, value func(E) V) map[K][]V {
	groups := make(map[K][]V)
	for _, e := range s {
		k := key(e)
		groups[k] = append(groups[k], value(e))
	}
	return groups
}

// Identity can be passed to GroupBy to group the elements themselves.
func Identity[E any](e E) E {
	return e
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[M ~map[K]V, K constraints.Ordered, V any](m M) []K {
	keys := maps.Keys(m)
	goslices.Sort(keys)
	return keys
}
