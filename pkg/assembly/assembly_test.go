package assembly

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"
)

func TestCoordsOrZeroIdentity(t *testing.T) {
	x, y := CoordsOrZero(nil)
	if x.Sign() != 0 || y.Sign() != 0 {
		t.Fatal("nil point should encode as (0, 0)")
	}
	x, y = CoordsOrZero(&Point{})
	if x.Sign() != 0 || y.Sign() != 0 {
		t.Fatal("zero point should encode as (0, 0)")
	}
}

func TestCoordsOrZeroNonIdentity(t *testing.T) {
	p := &Point{X: big.NewInt(3), Y: big.NewInt(4)}
	x, y := CoordsOrZero(p)
	if x.Cmp(big.NewInt(3)) != 0 || y.Cmp(big.NewInt(4)) != 0 {
		t.Fatal("non-identity point coordinates must pass through unchanged")
	}
}

func TestRejectIdentity(t *testing.T) {
	if err := RejectIdentity(Point{}); err == nil {
		t.Fatal("expected error for identity point")
	}
	if err := RejectIdentity(Point{X: big.NewInt(1), Y: big.NewInt(2)}); err != nil {
		t.Fatalf("unexpected error for non-identity point: %v", err)
	}
}

func TestNativeInputsScalarOrder(t *testing.T) {
	n := NativeInputs{
		Rk:        Point{X: big.NewInt(1), Y: big.NewInt(2)},
		Cv:        Point{X: big.NewInt(3), Y: big.NewInt(4)},
		CmRoot:    big.NewInt(5),
		NfGapRoot: big.NewInt(6),
		AirdropNf: big.NewInt(7),
	}
	got := n.Scalars()
	if len(got) != 7 {
		t.Fatalf("native inputs must have 7 scalars, got %d", len(got))
	}
	for i, want := range []int64{1, 2, 3, 4, 5, 6, 7} {
		if got[i].Cmp(big.NewInt(want)) != 0 {
			t.Errorf("scalar %d = %v, want %d", i, got[i], want)
		}
	}
}

func TestNativeInputsIdentityCv(t *testing.T) {
	n := NativeInputs{
		Rk:        Point{X: big.NewInt(1), Y: big.NewInt(2)},
		Cv:        Point{},
		CmRoot:    big.NewInt(5),
		NfGapRoot: big.NewInt(6),
		AirdropNf: big.NewInt(7),
	}
	got := n.Scalars()
	if got[2].Sign() != 0 || got[3].Sign() != 0 {
		t.Error("identity cv should encode as (0, 0) in scalar column")
	}
}

func TestSha256InputsScalarCount(t *testing.T) {
	s := Sha256Inputs{
		Rk:        Point{X: big.NewInt(1), Y: big.NewInt(2)},
		CmRoot:    big.NewInt(3),
		NfGapRoot: big.NewInt(4),
		AirdropNf: big.NewInt(5),
	}
	got := s.Scalars()
	if len(got) != 13 {
		t.Fatalf("sha256 inputs must have 13 scalars, got %d", len(got))
	}
}

// TestCvSha256TestVector is scenario #4 from spec.md §8: for value = 1 and
// rcv = [0, 1, 2, …, 31], cv_sha256 must equal the fixed test vector.
func TestCvSha256TestVector(t *testing.T) {
	var rcv [32]byte
	for i := range rcv {
		rcv[i] = byte(i)
	}

	want, err := hex.DecodeString("6b9b2a5866113176dc8c7f5003d7ebdfd3f9f33c92160457f83fcd82b8486e71")
	if err != nil {
		t.Fatalf("decode test vector: %v", err)
	}

	got := CvSha256(1, rcv)
	if !bytes.Equal(got[:], want) {
		t.Fatalf("cv_sha256(1, [0..31]) = %x, want %x", got, want)
	}
}

// TestCvSha256ValueDependence is scenario #5 from spec.md §8: with a fixed
// rcv, cv_sha256(1) != cv_sha256(2).
func TestCvSha256ValueDependence(t *testing.T) {
	var rcv [32]byte
	for i := range rcv {
		rcv[i] = byte(i)
	}

	a := CvSha256(1, rcv)
	b := CvSha256(2, rcv)
	if bytes.Equal(a[:], b[:]) {
		t.Fatal("cv_sha256 must depend on value: cv_sha256(1, rcv) == cv_sha256(2, rcv)")
	}
}

func TestAssembleValidatesSiblingCount(t *testing.T) {
	nm := NonMembershipEvidence{Siblings: make([]*big.Int, 31)}
	pub := NativeInputs{CmRoot: big.NewInt(0), NfGapRoot: big.NewInt(0), AirdropNf: big.NewInt(0)}
	if _, err := Assemble(CommitmentEvidence{}, nm, pub, 32); err == nil {
		t.Fatal("expected error for wrong sibling count")
	}
	nm.Siblings = make([]*big.Int, 32)
	if _, err := Assemble(CommitmentEvidence{}, nm, pub, 32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
