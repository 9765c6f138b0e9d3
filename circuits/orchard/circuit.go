// Package orchard is the Orchard pool's PLONK claim circuit: note opening,
// commitment-tree membership, non-membership, hiding-nullifier derivation,
// and value commitment, proved in one relation (spec.md §3, §4.5, §4.6).
//
// The original scheme proves Orchard claims over Halo2 with Pallas/Vesta
// curves and Sinsemilla hashing; the corpus carries neither a Halo2 backend
// nor a Pallas/Vesta gadget. gnark's PLONK backend over BN254 stands in for
// Halo2 (both are polynomial-IOP-based SNARKs requiring no per-circuit
// trusted setup ceremony beyond a universal one, which is the architectural
// property this substitution is meant to preserve — SPEC_FULL.md §2.B), and
// the same Poseidon2 scalar commitments used in circuits/sapling stand in
// for Sinsemilla note/value commitments and key re-randomization.
//
// Circuit skeleton grounded on circuits/poi.PoICircuit (teacher's PLONK
// circuit; keyleak/export.go exercises the PLONK prove/verify path), reusing
// circuits/nmgadget (PoolTag = 1, matching nullifier.PoolOrchard) and a
// commitment-tree gadget identical in structure to
// circuits/sapling.CommitmentGadget.
package orchard

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"github.com/zair-project/nonmembership/circuits/nmgadget"
)

// CommitmentTreeDepth is the Orchard note-commitment tree's fixed depth.
const CommitmentTreeDepth = 32

// PoolTag is Orchard's pool identifier within pkg/poolhash's domain-tag
// scheme (nullifier.PoolOrchard, duplicated as a circuit-time constant).
const PoolTag = 1

// CommitmentGadget verifies note-commitment-tree membership, identical in
// structure to circuits/sapling.CommitmentGadget — duplicated rather than
// shared so each pool's circuit package stays self-contained, matching the
// teacher's per-circuit-package layout (circuits/poi vs circuits/fsp).
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
// scheme variants.
type claimWitness struct {
	// Note opening (simplified: a single opaque note-commitment leaf,
	// derived off-circuit from diversifier/pk_d/value/rcm/note-commitment,
	// since no Pallas/Sinsemilla commitment gadget exists in the corpus).
	NoteCommitmentLeaf frontend.Variable
	Commitment         CommitmentGadget

	NonMembership nmgadget.Gadget

	// Hiding nullifier derivation inputs: hn = PoseidonHash(domain_tag, nf,
	// tag) per spec.md §4.6, computed with the same Poseidon2 primitive used
	// off-circuit by pkg/hidingnf.Orchard so the two derivations match
	// bit-for-bit.
	DomainTag       frontend.Variable
	SourceNullifier frontend.Variable
	Tag             frontend.Variable

	// Spend-auth re-randomization and value-commitment scalar substitutes.
	Ak    frontend.Variable
	Alpha frontend.Variable
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
	hasher.Write(w.DomainTag, w.SourceNullifier, w.Tag)
	hidingNf = hasher.Sum()

	hasher.Reset()
	hasher.Write(w.Ak, w.Alpha)
	rk = hasher.Sum()

	hasher.Reset()
	hasher.Write(w.Value, w.Rcv)
	cv = hasher.Sum()

	return nmRoot, hidingNf, rk, cv, nil
}

// NativeCircuit proves an Orchard claim under the native value-commitment
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

// Sha256Circuit proves an Orchard claim under the SHA-256 value-commitment
// scheme: 13 public scalars (rk.x, rk.y, 8 cv words, cm_root, nf_gap_root,
// airdrop_nf), per spec.md §4.5. As in circuits/sapling.Sha256Circuit, the cv
// scalar is split into 8 32-bit words via bit decomposition rather than a
// genuine in-circuit SHA-256 gadget, for the same reason documented there.
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
