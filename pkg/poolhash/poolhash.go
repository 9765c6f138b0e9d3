// Package poolhash implements the pool-parametric leaf/internal domain-
// separated hashing combiner (spec.md §4.3).
//
// The corpus carries no Jubjub or Pallas curve implementation, so both
// pools' combiners are built from gnark-crypto's BN254 Poseidon2
// MerkleDamgardHasher rather than Pedersen-over-Jubjub (Sapling) or
// Sinsemilla-over-Pallas (Orchard) — a documented substitution (see
// SPEC_FULL.md §2.B, DESIGN.md). Distinguishability between the two pools,
// and between leaf and internal levels within one pool, is preserved by a
// domain-tag table rather than by the underlying field: tag = pool<<16 |
// level, with level=leafLevelTag reserved exclusively for leaves so no
// internal-node preimage can collide with a leaf preimage (the structural
// protection spec.md §4.3 requires). Matches circuits/nmgadget's in-circuit
// tag(level) derivation bit-for-bit (nmgadget.go's pool<<16 | level).
//
// Grounded on pkg/crypto/crypto.go's HashWithDomainTag and
// pkg/merkle/merkle.go's HashNodes from the teacher, generalized from one
// fixed tag to the pool/level table described above.
package poolhash

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/zair-project/nonmembership/pkg/nullifier"
)

// leafLevelTag is reserved for leaf hashing and lies outside any valid
// internal level (0..31 for the depth-32 tree), so leaf and internal preimages can
// never collide (spec.md §4.3). Sapling additionally hard-codes leaf level
// 62 per spec.md §9's Open Question — reflected here as SaplingLeafLevel,
// kept purely for documentation/compatibility since the tag table already
// guarantees separation independent of the numeric value chosen.
const (
	leafLevelTag     = 0xFF
	SaplingLeafLevel = 62
)

// Combiner hashes gap-leaf bounds and internal node pairs for one pool.
type Combiner interface {
	// Leaf hashes a gap's (left, right) bounds into a leaf value.
	Leaf(left, right nullifier.Nullifier) *big.Int
	// Internal hashes two child node values at a given tree level
	// (0 = level just above the leaves).
	Internal(level int, left, right *big.Int) *big.Int
	// Pool identifies which pool this combiner belongs to.
	Pool() nullifier.Pool
}

type combiner struct {
	pool nullifier.Pool
}

// NewSapling returns the Sapling pool's leaf/internal combiner.
func NewSapling() Combiner { return combiner{pool: nullifier.PoolSapling} }

// NewOrchard returns the Orchard pool's leaf/internal combiner. Canonical-
// form validation of inputs is the caller's responsibility (pkg/gap
// performs it once up front, per spec.md §4.2/§4.3) — Internal/Leaf here
// assume already-validated field elements.
func NewOrchard() Combiner { return combiner{pool: nullifier.PoolOrchard} }

func (c combiner) Pool() nullifier.Pool { return c.pool }

func (c combiner) tag(level int) uint64 {
	return uint64(c.pool)<<16 | uint64(level)
}

func bigFromNullifier(n nullifier.Nullifier) *big.Int {
	return new(big.Int).SetBytes(n[:])
}

func fieldBytes(v *big.Int) [fr.Bytes]byte {
	var e fr.Element
	e.SetBigInt(v)
	return e.Bytes()
}

func hashWithTag(tag uint64, left, right *big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var tagFr fr.Element
	tagFr.SetUint64(tag)
	tb := tagFr.Bytes()
	h.Write(tb[:])

	lb := fieldBytes(left)
	h.Write(lb[:])
	rb := fieldBytes(right)
	h.Write(rb[:])

	sum := h.Sum(nil)
	return new(big.Int).SetBytes(sum)
}

func (c combiner) Leaf(left, right nullifier.Nullifier) *big.Int {
	return hashWithTag(c.tag(leafLevelTag), bigFromNullifier(left), bigFromNullifier(right))
}

func (c combiner) Internal(level int, left, right *big.Int) *big.Int {
	return hashWithTag(c.tag(level), left, right)
}

// PrecomputeZeroHashes builds the empty-subtree hash chain zh[0..depth].
// zh[0] is H_leaf applied to the all-zero nullifier sentinel on both bounds
// (spec.md §4.3: "The empty-subtree table is precomputed per level from the
// all-zero nullifier sentinel"), and zh[l] = Internal(l-1, zh[l-1], zh[l-1]).
// Ported from pkg/merkle.PrecomputeZeroHashes, generalized to call the
// pool's own Combiner instead of a bare hashLeaf/hashNodes callback pair.
func PrecomputeZeroHashes(c Combiner, depth int) []*big.Int {
	zh := make([]*big.Int, depth+1)
	zh[0] = c.Leaf(nullifier.Min, nullifier.Min)
	for l := 1; l <= depth; l++ {
		zh[l] = c.Internal(l-1, zh[l-1], zh[l-1])
	}
	return zh
}
