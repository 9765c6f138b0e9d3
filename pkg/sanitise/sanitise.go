// Package sanitise turns an unsorted multiset of nullifiers into the
// strictly-increasing, duplicate-free SortedSet every downstream component
// (gap algebra, tree build) assumes. Grounded on the teacher's preference
// for single-pass, allocation-conscious slice helpers
// (pkg/field.Field2Bytes's buffer reuse is the closest teacher analogue of
// this in-place-compaction style).
package sanitise

import (
	"sort"

	"github.com/zair-project/nonmembership/pkg/nullifier"
)

// SortedSet is a strictly increasing, duplicate-free sequence of nullifiers.
// Callers must treat it as read-only once built.
type SortedSet []nullifier.Nullifier

// Sanitise sorts in by unsigned lexicographic order and removes consecutive
// duplicates in place, returning the strictly-increasing result. No failure
// modes (spec.md §4.1).
func Sanitise(in []nullifier.Nullifier) SortedSet {
	if len(in) == 0 {
		return SortedSet{}
	}

	sort.Slice(in, func(i, j int) bool { return in[i].Less(in[j]) })

	out := in[:1]
	for i := 1; i < len(in); i++ {
		if !in[i].Equal(out[len(out)-1]) {
			out = append(out, in[i])
		}
	}
	return SortedSet(out)
}

// Len is the number of distinct nullifiers in the set.
func (s SortedSet) Len() int { return len(s) }
