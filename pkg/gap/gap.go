// Package gap implements the gap algebra: bounds of a leaf index's open
// interval in a sorted chain set, and the mapping from a user's unseen
// nullifier to its unique gap index.
//
// Grounded on original_source/crates/zair-nonmembership/src/{core,pool/sapling}.rs:
// core.rs's TreePosition/validate_leaf_count shape and pool/sapling.rs's
// exact sapling_gap_bounds boundary logic (replicated here pool-agnostically
// since both pools share the same interval algebra per spec.md §9 "two hash
// families, one algebra").
package gap

import (
	"fmt"
	"sort"

	"github.com/zair-project/nonmembership/pkg/nullifier"
	"github.com/zair-project/nonmembership/pkg/sanitise"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

// Bounds is the open interval (Left, Right) a gap leaf represents.
type Bounds struct {
	Left, Right nullifier.Nullifier
}

// TreePosition is a per-claim record: a user's nullifier, the gap index it
// occupies, and that gap's bounds.
type TreePosition struct {
	Target       nullifier.Nullifier
	LeafPosition int
	Left, Right  nullifier.Nullifier
}

// GapBounds returns the bounds of leaf index i in the sorted chain set c,
// per spec.md §4.2:
//
//	C empty:        (MIN, MAX) at i=0; error for any other i.
//	i == 0:         (MIN, C[0])
//	i == n:         (C[n-1], MAX)
//	0 < i < n:      (C[i-1], C[i])
//	otherwise:      error
func GapBounds(c sanitise.SortedSet, i int, pool nullifier.Pool) (Bounds, error) {
	n := len(c)
	max := nullifier.Max(pool)

	if n == 0 {
		if i != 0 {
			return Bounds{}, zerr.OutOfRange(fmt.Errorf("gap index %d out of range for empty set", i))
		}
		return Bounds{Left: nullifier.Min, Right: max}, nil
	}

	switch {
	case i == 0:
		return Bounds{Left: nullifier.Min, Right: c[0]}, nil
	case i == n:
		return Bounds{Left: c[n-1], Right: max}, nil
	case i > 0 && i < n:
		return Bounds{Left: c[i-1], Right: c[i]}, nil
	default:
		return Bounds{}, zerr.OutOfRange(fmt.Errorf("gap index %d out of range for set of size %d", i, n))
	}
}

// Locate performs a binary search for u in c. If u is present, it is spent
// (found=true, idx meaningless for gap purposes). Otherwise idx is the gap
// index u would occupy if inserted (spec.md §4.2's "Err-branch index").
func Locate(c sanitise.SortedSet, u nullifier.Nullifier) (idx int, found bool) {
	idx = sort.Search(len(c), func(i int) bool { return !c[i].Less(u) })
	if idx < len(c) && c[idx].Equal(u) {
		return idx, true
	}
	return idx, false
}

// MapUserPositions produces a TreePosition for every user nullifier not
// present in c. Orchard requires canonical-form validation on every element
// of both c and users prior to mapping; the first violation aborts with
// NonCanonicalNullifier{set, index} and no positions are returned (spec.md
// §4.2, §8 "Orchard canonical-form rejection").
func MapUserPositions(c sanitise.SortedSet, users []nullifier.Nullifier, pool nullifier.Pool) ([]TreePosition, error) {
	if pool == nullifier.PoolOrchard {
		for i, v := range c {
			if !nullifier.Canonical(v) {
				return nil, &zerr.NonCanonicalNullifier{Set: "chain", Index: i}
			}
		}
		for i, v := range users {
			if !nullifier.Canonical(v) {
				return nil, &zerr.NonCanonicalNullifier{Set: "user", Index: i}
			}
		}
	}

	positions := make([]TreePosition, 0, len(users))
	for _, u := range users {
		idx, found := Locate(c, u)
		if found {
			continue // spent; caller reports NotEligible, not an error here
		}
		b, err := GapBounds(c, idx, pool)
		if err != nil {
			return nil, err
		}
		positions = append(positions, TreePosition{
			Target:       u,
			LeafPosition: idx,
			Left:         b.Left,
			Right:        b.Right,
		})
	}
	return positions, nil
}
