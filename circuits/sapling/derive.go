package sapling

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// poseidonOf hashes a sequence of field elements with the same off-circuit
// Poseidon2 MerkleDamgardHasher primitive pkg/poolhash and pkg/hidingnf.Orchard
// already commit to, so the result matches what claimWitness.define computes
// in-circuit via gnark/std/hash.NewMerkleDamgardHasher bit-for-bit.
func poseidonOf(elems ...*big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()
	for _, v := range elems {
		var e fr.Element
		e.SetBigInt(v)
		b := e.Bytes()
		h.Write(b[:])
	}
	sum := h.Sum(nil)
	return new(big.Int).SetBytes(sum)
}

// BindSecrets writes the freshly sampled re-randomization scalar alpha and
// value-commitment blinding scalar rcv into the witness, then derives the
// same rk/cv/hiding_nf values claimWitness.define constrains in-circuit from
// those (now witnessed) scalars. Callers must do this before building the
// proving witness so the rk/cv/hiding_nf handed back to the caller are
// provably the ones bound inside the proof (spec.md §3's ClaimProof
// invariant: rk is derived from the same alpha witnessed inside the proof).
func (w *claimWitness) BindSecrets(alpha, rcv *big.Int) (rk, cv, hidingNf *big.Int) {
	w.Alpha = alpha
	w.Rcv = rcv

	ak, _ := w.Ak.(*big.Int)
	value, _ := w.Value.(*big.Int)
	personalization, _ := w.Personalization.(*big.Int)
	sourceNullifier, _ := w.SourceNullifier.(*big.Int)
	targetIDField, _ := w.TargetIDField.(*big.Int)

	rk = poseidonOf(ak, alpha)
	cv = poseidonOf(value, rcv)
	hidingNf = poseidonOf(personalization, sourceNullifier, targetIDField)
	return rk, cv, hidingNf
}
