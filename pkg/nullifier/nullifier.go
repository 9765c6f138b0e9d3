// Package nullifier defines the 32-byte nullifier primitive: total
// ordering, pool tagging, MIN/MAX sentinels, byte-reversal helpers, and
// canonical-encoding validation for the Orchard field.
//
// Grounded on original_source/crates/zair-core/src/base/{mod,utils}.rs,
// adapted to idiomatic Go. The corpus carries no Jubjub/Pallas field
// implementation, so canonical-form validation reuses gnark-crypto's BN254
// scalar field (fr.Element) as the documented stand-in for Orchard's
// pallas::Base — see SPEC_FULL.md §2.B and DESIGN.md for the substitution
// write-up. Sapling nullifiers are any 32-byte string and need no
// canonical-form check, per spec.md §3.
package nullifier

import (
	"bytes"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Size is the fixed byte length of a nullifier.
const Size = 32

// Nullifier is a 32-byte value with unsigned lexicographic ordering.
type Nullifier [Size]byte

// Pool tags which hash family/commitment-tree a nullifier belongs to.
type Pool uint8

const (
	PoolSapling Pool = iota
	PoolOrchard
)

func (p Pool) String() string {
	if p == PoolOrchard {
		return "Orchard"
	}
	return "Sapling"
}

// AsByte returns the wire encoding of the pool tag (0=Sapling, 1=Orchard),
// per spec.md §4.7's digest preimage layout.
func (p Pool) AsByte() byte { return byte(p) }

// Min is the all-zero sentinel, used as the left bound of gap index 0 for
// both pools.
var Min = Nullifier{}

// MaxSapling is the all-0xff sentinel (spec.md §4.2: "MAX = 0xff...ff for
// Sapling").
var MaxSapling = func() Nullifier {
	var n Nullifier
	for i := range n {
		n[i] = 0xff
	}
	return n
}()

// MaxOrchard is the canonical encoding of (p-1) for the Orchard base field
// (spec.md §9: "Orchard MAX sentinel is the canonical encoding of p-1 ...
// reimplementations MUST NOT use 0xff...ff, which is non-canonical"). Under
// the BN254-as-pallas::Base substitution (SPEC_FULL.md §2.B) this is
// fr.Modulus() - 1, big-endian encoded.
var MaxOrchard = func() Nullifier {
	var minusOne fr.Element
	minusOne.SetUint64(1)
	var zero fr.Element
	minusOne.Sub(&zero, &minusOne) // 0 - 1 == p - 1 in the field
	b := minusOne.Bytes()
	var n Nullifier
	copy(n[:], b[:])
	return n
}()

// Max returns the pool-appropriate MAX sentinel.
func Max(pool Pool) Nullifier {
	if pool == PoolOrchard {
		return MaxOrchard
	}
	return MaxSapling
}

// Less implements the total order sort.Slice needs: unsigned lexicographic
// byte comparison.
func (n Nullifier) Less(other Nullifier) bool {
	return bytes.Compare(n[:], other[:]) < 0
}

// Equal reports byte-for-byte equality.
func (n Nullifier) Equal(other Nullifier) bool { return n == other }

// Reversed returns a copy of n with its bytes in reverse order, for the
// reversed-hex encoding spec.md §6 requires of Sapling anchors. Grounded on
// original_source/crates/zair-core/src/base/utils.rs's reverse_bytes.
func (n Nullifier) Reversed() Nullifier {
	var out Nullifier
	for i := range n {
		out[i] = n[Size-1-i]
	}
	return out
}

// Canonical reports whether n is the canonical encoding of an Orchard
// base-field element (i.e. n < field modulus, big-endian). Sapling
// nullifiers accept any 32-byte string and never call this.
func Canonical(n Nullifier) bool {
	var e fr.Element
	// SetBytesCanonical returns an error on any encoding >= the modulus.
	_, err := e.SetBytesCanonical(n[:])
	return err == nil
}
