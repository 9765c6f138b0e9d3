package orchard

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// poseidonOf mirrors circuits/sapling's off-circuit Poseidon2 helper: the
// same MerkleDamgardHasher primitive pkg/poolhash and pkg/hidingnf.Orchard
// use, so results match claimWitness.define's in-circuit derivations
// bit-for-bit.
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

// BindSecrets writes alpha/rcv into the witness and derives rk/cv/hiding_nf
// from them, mirroring circuits/sapling.claimWitness.BindSecrets — see its
// doc comment for why this must run before the witness is proved.
func (w *claimWitness) BindSecrets(alpha, rcv *big.Int) (rk, cv, hidingNf *big.Int) {
	w.Alpha = alpha
	w.Rcv = rcv

	ak, _ := w.Ak.(*big.Int)
	value, _ := w.Value.(*big.Int)
	domainTag, _ := w.DomainTag.(*big.Int)
	sourceNullifier, _ := w.SourceNullifier.(*big.Int)
	tag, _ := w.Tag.(*big.Int)

	rk = poseidonOf(ak, alpha)
	cv = poseidonOf(value, rcv)
	hidingNf = poseidonOf(domainTag, sourceNullifier, tag)
	return rk, cv, hidingNf
}
