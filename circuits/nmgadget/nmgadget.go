// Package nmgadget is the in-circuit non-membership tree verifier shared by
// the Sapling and Orchard claim circuits. It must reproduce pkg/poolhash's
// leaf/internal domain-tagged hashing bit-for-bit (spec.md §4.6: "must equal
// the in-circuit ... derivation bit-for-bit"), so the gadget hashes with the
// same tag = pool<<16 | level scheme, walking Depth levels from leaf to
// root.
//
// Grounded on circuits/poi.MerkleProofCircuit's Poseidon2
// MerkleDamgardHasher walk, generalized from a fixed hash to per-level
// domain tags and from direction bits to the fixed even/odd leaf-index
// parity pkg/nmtree's dense/sparse backends both use.
package nmgadget

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// Depth mirrors pkg/nmtree.Depth; duplicated here (rather than imported) to
// keep circuits free of non-circuit package dependencies, matching the
// teacher's per-circuit-package constant duplication (circuits/poi vs
// circuits/fsp each carry their own MaxTreeDepth).
const Depth = 32

// LeafLevelTag mirrors the leaf-reserved tag in pkg/poolhash, kept in sync
// by the shared domain-tag derivation (spec.md §4.3's structural
// second-preimage protection).
const LeafLevelTag = 0xFF

// Gadget verifies one non-membership witness: leaf = Leaf(left, right) under
// PoolTag, climbed through Depth levels of Siblings to Root.
type Gadget struct {
	PoolTag frontend.Variable // 0 = Sapling, 1 = Orchard; fixed per circuit instance, not witnessed per-claim

	Left, Right  frontend.Variable
	Siblings     [Depth]frontend.Variable
	// LeafIndexBits[i] is bit i of the leaf's gap index, LSB first, matching
	// pkg/nmtree's idx/2 descent (idx even -> sibling combines on the right;
	// idx odd -> sibling combines on the left).
	LeafIndexBits [Depth]frontend.Variable
}

// Define returns the reconstructed root. Callers assert it equals the
// circuit's public non-membership anchor.
func (g *Gadget) Define(api frontend.API) (frontend.Variable, error) {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	tag := func(level int) frontend.Variable {
		if level == LeafLevelTag {
			return api.Add(api.Mul(g.PoolTag, 1<<16), LeafLevelTag)
		}
		return api.Add(api.Mul(g.PoolTag, 1<<16), level)
	}

	hasher.Reset()
	hasher.Write(tag(LeafLevelTag))
	hasher.Write(g.Left, g.Right)
	current := hasher.Sum()

	for lvl := 0; lvl < Depth; lvl++ {
		sibling := g.Siblings[lvl]
		direction := g.LeafIndexBits[lvl]

		left := api.Select(direction, sibling, current)
		right := api.Select(direction, current, sibling)

		hasher.Reset()
		hasher.Write(tag(lvl))
		hasher.Write(left, right)
		current = hasher.Sum()
	}

	return current, nil
}
