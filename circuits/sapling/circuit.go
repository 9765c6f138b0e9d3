// Package sapling is the Sapling pool's Groth16 claim circuit: note
// opening, commitment-tree membership, non-membership, hiding-nullifier
// derivation, value commitment, and spend-auth key re-randomization, all
// proved in one relation (spec.md §3, §4.5, §4.6).
//
// The corpus carries no Jubjub (twisted Edwards) curve gadget, so Pedersen
// note/value commitments and spend-auth-key re-randomization — which in the
// original scheme are elliptic-curve operations over Jubjub — are modeled
// here as Poseidon2 scalar commitments instead, the same substitution
// pkg/poolhash already documents for leaf/internal hashing. The Y-coordinate
// public inputs are carried as constrained-zero placeholders so the public
// input shape still matches spec.md §4.5's column layout exactly.
//
// Circuit skeleton (public/private Variable layout, Define structure)
// grounded on circuits/poi.PoICircuit; Merkle-climb style grounded on
// circuits/poi.MerkleProofCircuit, generalized via circuits/nmgadget.
package sapling

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"github.com/zair-project/nonmembership/circuits/nmgadget"
)

// CommitmentTreeDepth is the Sapling note-commitment tree's fixed depth.
const CommitmentTreeDepth = 32

// PoolTag is Sapling's pool identifier within pkg/poolhash's domain-tag
// scheme (nullifier.PoolSapling, duplicated as a circuit-time constant).
const PoolTag = 0

// CommitmentGadget verifies note-commitment-tree membership: a leaf
// reachable through Depth Poseidon2 hash levels to a public root. Grounded
// on circuits/poi.MerkleProofCircuit, generalized to operate over an
// opaque leaf commitment rather than fixed file-chunk bytes.
type CommitmentGadget struct {
	Root       frontend.Variable
	Leaf       frontend.Variable
	AuthPath   [CommitmentTreeDepth]frontend.Variable
	Directions [CommitmentTreeDepth]frontend.Variable
}

func (g *CommitmentGadget) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	current := g.Leaf
	for i := 0; i < CommitmentTreeDepth; i++ {
		sibling := g.AuthPath[i]
		direction := g.Directions[i]

		left := api.Select(direction, sibling, current)
		right := api.Select(direction, current, sibling)

		hasher.Reset()
		hasher.Write(left, right)
		current = hasher.Sum()
	}

	api.AssertIsEqual(current, g.Root)
	return nil
}

// claimWitness is the private witness shared by both value-commitment
// scheme variants: note opening, commitment-tree membership, non-
// membership, hiding-nullifier derivation, and the spend-auth/value-
// commitment scalar substitutes.
type claimWitness struct {
	// Note opening (simplified: a single opaque note-commitment leaf
	// derived off-circuit from diversifier/pk_d/value/rcm, since no Jubjub
	// Pedersen-commitment gadget exists in the corpus).
	NoteCommitmentLeaf frontend.Variable
	Commitment         CommitmentGadget

	// Non-membership (pkg/nmgadget).
	NonMembership nmgadget.Gadget

	// Hiding nullifier derivation inputs (must match hidingnf.Sapling's
	// construction off-circuit, substituted here with the same Poseidon2
	// primitive pkg/poolhash uses rather than BLAKE2b, since BLAKE2b has no
	// circuit-friendly gadget in the corpus; spec.md §4.6 only binds Sapling
	// to a "32-byte-output hash personalized by the target-chain
	// identifier" computable in-circuit, which this satisfies structurally).
	SourceNullifier   frontend.Variable
	TargetIDField     frontend.Variable
	Personalization   frontend.Variable

	// Spend-auth re-randomization and value-commitment scalar substitutes.
	Ak    frontend.Variable // spend authorizing key base point, substituted as a scalar
	Alpha frontend.Variable // re-randomization scalar
	Value frontend.Variable
	Rcv   frontend.Variable
}

func (w *claimWitness) define(api frontend.API) (nmRoot, hidingNf, rk, cv frontend.Variable, err error) {
	if err := w.Commitment.Define(api); err != nil {
		return nil, nil, nil, nil, err
	}

	nmRoot, err = w.NonMembership.Define(api)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	hasher.Reset()
	hasher.Write(w.Personalization, w.SourceNullifier, w.TargetIDField)
	hidingNf = hasher.Sum()

	hasher.Reset()
	hasher.Write(w.Ak, w.Alpha)
	rk = hasher.Sum()

	hasher.Reset()
	hasher.Write(w.Value, w.Rcv)
	cv = hasher.Sum()

	return nmRoot, hidingNf, rk, cv, nil
}

// NativeCircuit proves a Sapling claim under the native value-commitment
// scheme: 7 public scalars (rk.x, rk.y, cv.x, cv.y, cm_root, nf_gap_root,
// airdrop_nf), per spec.md §4.5.
type NativeCircuit struct {
	RkX       frontend.Variable `gnark:",public"`
	RkY       frontend.Variable `gnark:",public"`
	CvX       frontend.Variable `gnark:",public"`
	CvY       frontend.Variable `gnark:",public"`
	CmRoot    frontend.Variable `gnark:",public"`
	NfGapRoot frontend.Variable `gnark:",public"`
	AirdropNf frontend.Variable `gnark:",public"`

	Witness claimWitness
}

func (c *NativeCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Witness.Commitment.Root, c.CmRoot)
	c.Witness.NonMembership.PoolTag = PoolTag

	root, hidingNf, rk, cv, err := c.Witness.define(api)
	if err != nil {
		return err
	}

	api.AssertIsEqual(root, c.NfGapRoot)
	api.AssertIsEqual(hidingNf, c.AirdropNf)
	api.AssertIsEqual(rk, c.RkX)
	api.AssertIsEqual(0, c.RkY)
	api.AssertIsEqual(cv, c.CvX)
	api.AssertIsEqual(0, c.CvY)

	return nil
}

// Sha256Circuit proves a Sapling claim under the SHA-256 value-commitment
// scheme: 13 public scalars (rk.x, rk.y, 8 cv words, cm_root, nf_gap_root,
// airdrop_nf), per spec.md §4.5. A genuine in-circuit SHA-256 gadget is not
// exercised here: the cv scalar is instead split into 8 32-bit words via
// bit decomposition, a documented simplification of the real scheme's
// "hash the value-commitment point with SHA-256" step (DESIGN.md) — the
// corpus's sha2/uint gadget surface could not be grounded with confidence
// from the available example set.
type Sha256Circuit struct {
	RkX          frontend.Variable    `gnark:",public"`
	RkY          frontend.Variable    `gnark:",public"`
	CvSha256Word [8]frontend.Variable `gnark:",public"`
	CmRoot       frontend.Variable    `gnark:",public"`
	NfGapRoot    frontend.Variable    `gnark:",public"`
	AirdropNf    frontend.Variable    `gnark:",public"`

	Witness claimWitness
}

func (c *Sha256Circuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Witness.Commitment.Root, c.CmRoot)
	c.Witness.NonMembership.PoolTag = PoolTag

	root, hidingNf, rk, cv, err := c.Witness.define(api)
	if err != nil {
		return err
	}

	api.AssertIsEqual(root, c.NfGapRoot)
	api.AssertIsEqual(hidingNf, c.AirdropNf)
	api.AssertIsEqual(rk, c.RkX)
	api.AssertIsEqual(0, c.RkY)

	cvBits := api.ToBinary(cv, 256)
	for i := 0; i < 8; i++ {
		word := frontend.Variable(0)
		for j := 0; j < 32; j++ {
			word = api.Add(word, api.Mul(cvBits[i*32+j], 1<<uint(j)))
		}
		api.AssertIsEqual(word, c.CvSha256Word[i])
	}

	return nil
}
