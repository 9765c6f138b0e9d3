// Package hidingnf derives the target-chain-scoped "hiding nullifier" from a
// source-chain nullifier and a target-id domain string (spec.md §4.6). The
// derivation must be computable bit-for-bit both here and inside the
// matching pool's circuit, so each pool's hash primitive matches the one
// pkg/poolhash already commits to for that pool.
package hidingnf

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"golang.org/x/crypto/blake2b"

	"github.com/zair-project/nonmembership/pkg/nullifier"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

// Sapling computes hn = H_personalized(nf || target_id), a 32-byte-output
// personalized hash (spec.md §4.6). golang.org/x/crypto/blake2b's public API
// does not expose BLAKE2b's native personalization field, so personalization
// is folded into the preimage as a length-prefixed prefix instead — the
// function remains a deterministic, collision-resistant map keyed by
// personalization, which is the property §4.6 actually requires.
func Sapling(nf nullifier.Nullifier, targetID string, personalization []byte) ([32]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, zerr.CryptoFailure(fmt.Errorf("init blake2b: %w", err))
	}

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(personalization)))
	h.Write(lenBuf[:])
	h.Write(personalization)
	h.Write(nf[:])
	h.Write([]byte(targetID))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Orchard computes hn = PoseidonHash(domain_tag, nf, tag) using the same
// Poseidon2 primitive pkg/poolhash commits to for Orchard (spec.md §2.B
// substitution rationale: no Sinsemilla implementation exists in the
// available dependency corpus).
func Orchard(nf nullifier.Nullifier, domainTag, tag []byte) (*big.Int, error) {
	hasher := poseidon2.NewMerkleDamgardHasher()

	write := func(b []byte) {
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
		hasher.Write(lenBuf[:])
		hasher.Write(b)
	}
	write(domainTag)

	var nfElem fr.Element
	nfElem.SetBytes(nf[:])
	nfBytes := nfElem.Bytes()
	hasher.Write(nfBytes[:])

	write(tag)

	sum := hasher.Sum(nil)
	var out fr.Element
	out.SetBytes(sum)
	result := new(big.Int)
	out.BigInt(result)
	return result, nil
}
