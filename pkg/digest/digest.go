// Package digest builds the claim-submission signature digest (spec.md
// §4.7), grounded on
// original_source/crates/zair-sdk/src/commands/signature_digest.rs.
//
// The original's hash_proof_bundle only counts Orchard proofs (its Orchard
// submission path was a stub, Vec<()>); this package hashes every Orchard
// entry's fields too, completing the layout spec.md §4.7 actually specifies
// (SPEC_FULL.md §2.C).
package digest

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/zair-project/nonmembership/pkg/zerr"
)

// SignaturePreimageTag is the domain marker prepended to every signature
// digest preimage.
var SignaturePreimageTag = [8]byte{'Z', 'A', 'I', 'R', '_', 'S', 'I', 'G'}

// SignatureVersion is the protocol version byte embedded in every preimage.
const SignatureVersion uint8 = 1

// Pool mirrors the submission-schema pool byte (spec.md §4.7: "pool ∈
// {0:Sapling, 1:Orchard}").
type Pool uint8

const (
	PoolSapling Pool = 0
	PoolOrchard Pool = 1
)

// HashBytes hashes arbitrary bytes to 32 bytes with BLAKE2b-256.
func HashBytes(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// HashMessage hashes caller-supplied message bytes for submission signing.
func HashMessage(message []byte) [32]byte {
	return HashBytes(message)
}

// SaplingProofEntry is one Sapling proof's digest-relevant fields.
type SaplingProofEntry struct {
	ZkProof          [192]byte
	Rk               [32]byte
	Cv               *[32]byte // nil if absent (Sha256 scheme used instead)
	CvSha256         *[32]byte // nil if absent
	AirdropNullifier [32]byte
}

// OrchardProofEntry is one Orchard proof's digest-relevant fields. Orchard's
// proof length is scheme-dependent (spec.md §3: "Proof bytes (Sapling: 192;
// Orchard: scheme-dependent)"), so ZkProof is a slice here, unlike Sapling's
// fixed array.
type OrchardProofEntry struct {
	ZkProof          []byte
	Rk               [32]byte
	Cv               *[32]byte
	CvSha256         *[32]byte
	AirdropNullifier [32]byte
}

// ProofBundle is the unsigned proof bundle hashed in schema-declared order
// (spec.md §4.7).
type ProofBundle struct {
	SaplingProofs []SaplingProofEntry
	OrchardProofs []OrchardProofEntry
}

func writeOption(preimage []byte, payload *[32]byte) []byte {
	if payload == nil {
		return append(preimage, 0x00)
	}
	preimage = append(preimage, 0x01)
	return append(preimage, payload[:]...)
}

// HashProofBundle hashes the unsigned proof bundle in canonical serialized
// order: u32_LE(n_sapling) ‖ Σ proof_entry_sapling ‖ u32_LE(n_orchard) ‖
// Σ proof_entry_orchard; each entry: zkproof ‖ rk ‖ opt(cv) ‖
// opt(cv_sha256) ‖ airdrop_nf (spec.md §4.7). Proofs are hashed in their
// existing order; no sorting is applied.
func HashProofBundle(bundle ProofBundle) ([32]byte, error) {
	if len(bundle.SaplingProofs) > int(^uint32(0)) {
		return [32]byte{}, zerr.InvalidInputEncoding(fmt.Errorf("sapling proof count exceeds u32 max"))
	}
	if len(bundle.OrchardProofs) > int(^uint32(0)) {
		return [32]byte{}, zerr.InvalidInputEncoding(fmt.Errorf("orchard proof count exceeds u32 max"))
	}

	var preimage []byte
	var countBuf [4]byte

	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(bundle.SaplingProofs)))
	preimage = append(preimage, countBuf[:]...)
	for _, p := range bundle.SaplingProofs {
		preimage = append(preimage, p.ZkProof[:]...)
		preimage = append(preimage, p.Rk[:]...)
		preimage = writeOption(preimage, p.Cv)
		preimage = writeOption(preimage, p.CvSha256)
		preimage = append(preimage, p.AirdropNullifier[:]...)
	}

	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(bundle.OrchardProofs)))
	preimage = append(preimage, countBuf[:]...)
	for _, p := range bundle.OrchardProofs {
		preimage = append(preimage, p.ZkProof...)
		preimage = append(preimage, p.Rk[:]...)
		preimage = writeOption(preimage, p.Cv)
		preimage = writeOption(preimage, p.CvSha256)
		preimage = append(preimage, p.AirdropNullifier[:]...)
	}

	return HashBytes(preimage), nil
}

// SignatureDigest builds the 32-byte message signed by spend authorization
// keys: ZAIR_SIG ‖ version:u8 ‖ pool:u8 ‖ target_id_len:u8 ‖ target_id ‖
// proof_hash ‖ message_hash (spec.md §4.7).
func SignatureDigest(pool Pool, targetID string, proofHash, messageHash [32]byte) ([32]byte, error) {
	if len(targetID) > 255 {
		return [32]byte{}, zerr.InvalidInputEncoding(fmt.Errorf("target_id length %d exceeds 255 bytes", len(targetID)))
	}

	var preimage []byte
	preimage = append(preimage, SignaturePreimageTag[:]...)
	preimage = append(preimage, SignatureVersion)
	preimage = append(preimage, byte(pool))
	preimage = append(preimage, byte(len(targetID)))
	preimage = append(preimage, []byte(targetID)...)
	preimage = append(preimage, proofHash[:]...)
	preimage = append(preimage, messageHash[:]...)

	return HashBytes(preimage), nil
}
