// Package nmtree implements the non-membership tree: two interchangeable
// backends (dense, sparse) over the same gap-leaf set, fixed depth D=32,
// sharing one poolhash.Combiner and zero-subtree chain so that the
// equivalence contract (spec.md §4.4, §8 "Dense ≡ Sparse") is structural
// rather than merely tested.
//
// Dense is adapted from the teacher's pkg/merkle.SparseMerkleTree (despite
// its name, that type is fully materialized over the real-leaf range — the
// teacher's naming is inherited from an earlier revision, not carried here).
// Sparse is a from-scratch mark-driven generalization of the teacher's
// pkg/merkle.CheckpointedSMT: instead of persisting fixed preset *levels*
// and rebuilding gaps from re-read file chunks, it recomputes node values
// on demand with memoization, since a gap leaf is O(1)-derivable from the
// chain SortedSet (unlike the teacher's file-chunk leaves, which needed the
// checkpoint/parallel-rehash scheme specifically because re-deriving a leaf
// meant re-reading and re-hashing file data).
package nmtree

import (
	"io"
	"math/big"
)

// Depth is the fixed non-membership tree depth (spec.md §3: "Fixed depth
// D = 32").
const Depth = 32

// MaxLeaves is the capacity bound: |leaves| < 2^Depth (spec.md §4.4).
const MaxLeaves = uint64(1) << Depth

// Tree is the common interface both backends satisfy.
type Tree interface {
	Root() *big.Int
	NumLeaves() int
	// Witness returns the Depth sibling hashes from leaf i to the root.
	// The sparse backend returns zerr.WitnessUnavailable for an unmarked i.
	Witness(i int) ([]*big.Int, error)
	Save(w io.Writer) error
}

// ProgressFunc is called whenever the completed fraction of a build crosses
// a 10% boundary (spec.md §4.4; supplemented by
// original_source/crates/zair-nonmembership/src/core.rs's
// should_report_progress).
type ProgressFunc func(current, total int)

// progressCrossed reports whether current/total has advanced past the next
// 10% boundary since lastPct, returning the updated lastPct. Ported
// verbatim (in spirit) from should_report_progress.
func progressCrossed(current, total, lastPct int) (pct int, crossed bool) {
	if total <= 0 {
		return lastPct, false
	}
	pct = current * 100 / total
	if pct/10 > lastPct/10 {
		return pct, true
	}
	return lastPct, false
}

func reportProgress(cb ProgressFunc, current, total int, lastPct *int) {
	if cb == nil {
		return
	}
	pct, crossed := progressCrossed(current, total, *lastPct)
	if crossed {
		*lastPct = pct
		cb(current, total)
	}
}
