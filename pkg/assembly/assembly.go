// Package assembly combines commitment-tree membership evidence (from the
// out-of-scope scanner collaborator) with non-membership evidence to build
// the public/private circuit inputs for each pool (spec.md §4.5).
//
// Grounded field-for-field on
// original_source/crates/zair-orchard-proofs/src/instance.rs's to_instance
// (public-input scalar column) and
// original_source/crates/zair-sapling-proofs/src/types.rs's
// ClaimProofInputs (commitment/non-membership evidence shape).
package assembly

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/zair-project/nonmembership/pkg/nullifier"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

// ValueCommitmentScheme selects the public-input column layout (spec.md
// §4.5).
type ValueCommitmentScheme int

const (
	SchemeNative ValueCommitmentScheme = iota
	SchemeSha256
)

// CommitmentEvidence is the note-commitment-tree membership data supplied by
// the scanner collaborator (out of scope; consumed through this shape).
type CommitmentEvidence struct {
	Diversifier      [11]byte
	PkD              [32]byte
	Value            uint64
	Rcm              [32]byte
	AuthPath         [][32]byte // note's commitment-tree auth path
	Position         uint64
	NoteCommitment   *[32]byte // Orchard only; nil for Sapling
	CommitmentAnchor [32]byte
}

// NonMembershipEvidence is the gap-tree witness for a claim (spec.md §4.5).
type NonMembershipEvidence struct {
	Left, Right  nullifier.Nullifier
	LeafPosition int
	Siblings     []*big.Int // Depth entries, leaf to root
	Anchor       *big.Int   // non-membership tree root at snapshot time
}

// Point is an affine curve point. The identity is never a valid point here
// (spec.md §4.5: "any point passed in as the identity is rejected"); use
// CoordsOrZero to encode an absent point as (0, 0).
type Point struct {
	X, Y *big.Int
}

// IsIdentity reports whether p is the additive identity (both coordinates
// zero), the encoding this module uses for "absent point" — never a valid
// witnessed point.
func (p Point) IsIdentity() bool {
	return (p.X == nil || p.X.Sign() == 0) && (p.Y == nil || p.Y.Sign() == 0)
}

// RejectIdentity returns an error if p is the identity point, per spec.md
// §4.5/§4.8's "identity points -> reject" rule.
func RejectIdentity(p Point) error {
	if p.IsIdentity() {
		return zerr.InvalidInputEncoding(fmt.Errorf("identity point rejected"))
	}
	return nil
}

// CoordsOrZero returns (0, 0) for the identity and the affine coordinates
// otherwise, per spec.md §4.5 ("Infinity-point coordinates are encoded as
// (0, 0)") — grounded on instance.rs's coords_or_zero.
func CoordsOrZero(p *Point) (x, y *big.Int) {
	if p == nil || p.IsIdentity() {
		return big.NewInt(0), big.NewInt(0)
	}
	return p.X, p.Y
}

// PublicInputs produces the exact scalar column for a scheme (spec.md
// §4.5).
type PublicInputs interface {
	Scalars() []*big.Int
	Scheme() ValueCommitmentScheme
}

// NativeInputs is the 7-scalar native value-commitment column:
// (rk.x, rk.y, cv.x, cv.y, cm_root, nf_gap_root, airdrop_nf).
type NativeInputs struct {
	Rk         Point
	Cv         Point
	CmRoot     *big.Int
	NfGapRoot  *big.Int
	AirdropNf  *big.Int
}

func (n NativeInputs) Scheme() ValueCommitmentScheme { return SchemeNative }

func (n NativeInputs) Scalars() []*big.Int {
	cvX, cvY := CoordsOrZero(&n.Cv)
	return []*big.Int{n.Rk.X, n.Rk.Y, cvX, cvY, n.CmRoot, n.NfGapRoot, n.AirdropNf}
}

// Sha256Inputs is the 13-scalar SHA-256 value-commitment column:
// (rk.x, rk.y, cv_sha256[0..8] as 8 big-endian 32-bit words, cm_root,
// nf_gap_root, airdrop_nf).
type Sha256Inputs struct {
	Rk        Point
	CvSha256  [32]byte
	CmRoot    *big.Int
	NfGapRoot *big.Int
	AirdropNf *big.Int
}

func (s Sha256Inputs) Scheme() ValueCommitmentScheme { return SchemeSha256 }

func (s Sha256Inputs) Scalars() []*big.Int {
	scalars := make([]*big.Int, 0, 13)
	scalars = append(scalars, s.Rk.X, s.Rk.Y)
	for i := 0; i < 8; i++ {
		word := s.CvSha256[i*4 : i*4+4]
		scalars = append(scalars, new(big.Int).SetBytes(word))
	}
	scalars = append(scalars, s.CmRoot, s.NfGapRoot, s.AirdropNf)
	return scalars
}

// valueCommitmentSha256Prefix is the fixed ASCII domain prefix for the
// SHA-256 value-commitment preimage.
var valueCommitmentSha256Prefix = [4]byte{'Z', 'a', 'i', 'r'}

// CvSha256 computes the SHA-256 value-commitment scheme's cv: SHA256("Zair"
// || LE64(value) || rcv). This is the language-independent core helper
// spec.md §3 names as the "value commitment … sha256 32" data-model entity
// and §4.5/§4.7 use as the SHA-256 scheme's public cv/ClaimEntry.cv_sha256
// field — grounded field-for-field on
// original_source/crates/zair-core/src/base/value_commitment.rs's
// cv_sha256_preimage/cv_sha256 (preimage layout: 4-byte prefix, 8-byte
// little-endian value, 32-byte rcv).
func CvSha256(value uint64, rcv [32]byte) [32]byte {
	var preimage [44]byte
	copy(preimage[0:4], valueCommitmentSha256Prefix[:])
	binary.LittleEndian.PutUint64(preimage[4:12], value)
	copy(preimage[12:44], rcv[:])
	return sha256.Sum256(preimage[:])
}

// ClaimInputs is the fully assembled per-claim input set handed to a pool's
// prover (spec.md §3 "ClaimInputs").
type ClaimInputs struct {
	Commitment    CommitmentEvidence
	NonMembership NonMembershipEvidence
	Public        PublicInputs
}

// Assemble checks that the non-membership witness has exactly nmDepth
// siblings and builds ClaimInputs; anchors are not checked here. It
// does not perform cryptographic work; it only binds the evidence shapes
// together (spec.md §4.5).
func Assemble(commitment CommitmentEvidence, nm NonMembershipEvidence, public PublicInputs, nmDepth int) (*ClaimInputs, error) {
	if len(nm.Siblings) != nmDepth {
		return nil, zerr.InvalidInputEncoding(fmt.Errorf("non-membership witness has %d siblings, want %d", len(nm.Siblings), nmDepth))
	}
	return &ClaimInputs{Commitment: commitment, NonMembership: nm, Public: public}, nil
}
