package prover

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/frontend"

	"github.com/zair-project/nonmembership/circuits/orchard"
	"github.com/zair-project/nonmembership/circuits/sapling"
	"github.com/zair-project/nonmembership/pkg/assembly"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

func TestKeyCacheReusesEntry(t *testing.T) {
	cache := NewKeyCache()
	key := CacheKey{Scheme: assembly.SchemeNative, TargetID: "t", TargetIDLen: 1}

	calls := 0
	init := func() (any, error) {
		calls++
		return "value", nil
	}

	v1, err := cache.getOrInit(key, init)
	if err != nil {
		t.Fatalf("first getOrInit: %v", err)
	}
	v2, err := cache.getOrInit(key, init)
	if err != nil {
		t.Fatalf("second getOrInit: %v", err)
	}
	if v1 != v2 {
		t.Errorf("expected identical cached value, got %v and %v", v1, v2)
	}
	if calls != 1 {
		t.Errorf("expected init to run once, ran %d times", calls)
	}
}

func TestKeyCacheDistinctKeysInitSeparately(t *testing.T) {
	cache := NewKeyCache()
	calls := 0
	init := func() (any, error) {
		calls++
		return calls, nil
	}

	keyA := CacheKey{Scheme: assembly.SchemeNative, TargetID: "a", TargetIDLen: 1}
	keyB := CacheKey{Scheme: assembly.SchemeNative, TargetID: "b", TargetIDLen: 1}

	if _, err := cache.getOrInit(keyA, init); err != nil {
		t.Fatalf("init a: %v", err)
	}
	if _, err := cache.getOrInit(keyB, init); err != nil {
		t.Fatalf("init b: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 distinct inits, got %d", calls)
	}
}

func TestKeyCachePoisonsOnPanic(t *testing.T) {
	cache := NewKeyCache()
	key := CacheKey{Scheme: assembly.SchemeNative, TargetID: "panicker", TargetIDLen: 8}

	if _, err := cache.getOrInit(key, func() (any, error) {
		panic("simulated corrupt key file")
	}); err == nil || !zerr.Is(err, zerr.KindCacheUnavailable) {
		t.Fatalf("expected CacheUnavailable from the panicking init, got %v", err)
	}

	if !cache.poisoned {
		t.Fatal("expected cache to be poisoned after a panicking init")
	}

	_, err := cache.getOrInit(key, func() (any, error) { return "never reached", nil })
	if err == nil || !zerr.Is(err, zerr.KindCacheUnavailable) {
		t.Fatalf("expected CacheUnavailable after poisoning, got %v", err)
	}
}

func TestRequireKRejectsMismatch(t *testing.T) {
	err := requireK("orchard", 10, 11)
	if err == nil {
		t.Fatal("expected error for k mismatch")
	}
	if !zerr.Is(err, zerr.KindParameterMismatch) {
		t.Errorf("expected ParameterMismatch kind, got %v", err)
	}
}

func TestRequireKAcceptsMatch(t *testing.T) {
	if err := requireK("orchard", 10, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSaplingPublicAssignmentUnsupportedType(t *testing.T) {
	_, err := saplingPublicAssignment(unknownPublicInputs{})
	if err == nil || !zerr.Is(err, zerr.KindParameterMismatch) {
		t.Fatalf("expected ParameterMismatch for unknown input type, got %v", err)
	}
}

type unknownPublicInputs struct{}

func (unknownPublicInputs) Scalars() []*big.Int { return nil }
func (unknownPublicInputs) Scheme() assembly.ValueCommitmentScheme {
	return assembly.SchemeNative
}

// TestCvWordLimbsRoundTrip checks that cvSha256Bytes's byte layout round-trips
// through the same SetBytes(word) convention saplingPublicAssignment and
// orchardPublicAssignment already use to parse an assembly.Sha256Inputs.CvSha256
// array back into circuit words.
func TestCvWordLimbsRoundTrip(t *testing.T) {
	cv, ok := new(big.Int).SetString("123456789abcdef0123456789abcdef0", 16)
	if !ok {
		t.Fatal("failed to parse test scalar")
	}

	words := cvWordLimbs(cv)
	packed := cvSha256Bytes(words)

	for i := 0; i < 8; i++ {
		got := new(big.Int).SetBytes(packed[i*4 : i*4+4])
		if got.Cmp(words[i]) != 0 {
			t.Errorf("word %d: packed round-trip = %v, want %v", i, got, words[i])
		}
	}
}

// TestBindSaplingSecretsNativeCircuit checks that bindSaplingSecrets writes
// alpha/rcv into the witness and that the public fields it sets are
// consistent with those same values (rk = Poseidon2(ak, alpha), cv =
// Poseidon2(value, rcv)), so the caller-visible rk/cv always match what the
// witness proves.
func TestBindSaplingSecretsNativeCircuit(t *testing.T) {
	circuit := &sapling.NativeCircuit{}
	circuit.Witness.Ak = big.NewInt(11)
	circuit.Witness.Value = big.NewInt(22)
	circuit.Witness.Personalization = big.NewInt(33)
	circuit.Witness.SourceNullifier = big.NewInt(44)
	circuit.Witness.TargetIDField = big.NewInt(55)

	alpha := big.NewInt(66)
	rcv := big.NewInt(77)

	rk, cv, hidingNf, err := bindSaplingSecrets(circuit, alpha, rcv)
	if err != nil {
		t.Fatalf("bindSaplingSecrets: %v", err)
	}

	if circuit.Witness.Alpha != alpha || circuit.Witness.Rcv != rcv {
		t.Fatal("alpha/rcv were not written into the witness")
	}
	if circuit.RkX != rk || circuit.CvX != cv || circuit.AirdropNf != hidingNf {
		t.Fatal("public fields do not match the derived rk/cv/hiding_nf")
	}
	if circuit.RkY.(*big.Int).Sign() != 0 || circuit.CvY.(*big.Int).Sign() != 0 {
		t.Fatal("rk.y/cv.y placeholders must be zero")
	}

	// Re-deriving from the same inputs a second time must reproduce the
	// identical rk/cv, since both are deterministic functions of their inputs.
	again := &sapling.NativeCircuit{}
	again.Witness.Ak = big.NewInt(11)
	again.Witness.Value = big.NewInt(22)
	again.Witness.Personalization = big.NewInt(33)
	again.Witness.SourceNullifier = big.NewInt(44)
	again.Witness.TargetIDField = big.NewInt(55)
	rk2, cv2, hidingNf2, err := bindSaplingSecrets(again, alpha, rcv)
	if err != nil {
		t.Fatalf("bindSaplingSecrets (second): %v", err)
	}
	if rk.Cmp(rk2) != 0 || cv.Cmp(cv2) != 0 || hidingNf.Cmp(hidingNf2) != 0 {
		t.Fatal("rk/cv/hiding_nf must be deterministic given the same witness and secrets")
	}
}

func TestBindSaplingSecretsSha256Circuit(t *testing.T) {
	circuit := &sapling.Sha256Circuit{}
	circuit.Witness.Ak = big.NewInt(1)
	circuit.Witness.Value = big.NewInt(2)
	circuit.Witness.Personalization = big.NewInt(3)
	circuit.Witness.SourceNullifier = big.NewInt(4)
	circuit.Witness.TargetIDField = big.NewInt(5)

	_, cv, _, err := bindSaplingSecrets(circuit, big.NewInt(6), big.NewInt(7))
	if err != nil {
		t.Fatalf("bindSaplingSecrets: %v", err)
	}

	words := cvWordLimbs(cv)
	for i := 0; i < 8; i++ {
		w, ok := circuit.CvSha256Word[i].(*big.Int)
		if !ok || w.Cmp(words[i]) != 0 {
			t.Errorf("CvSha256Word[%d] = %v, want %v", i, circuit.CvSha256Word[i], words[i])
		}
	}
}

func TestBindSaplingSecretsUnsupportedType(t *testing.T) {
	_, _, _, err := bindSaplingSecrets(unknownCircuit{}, big.NewInt(1), big.NewInt(1))
	if err == nil || !zerr.Is(err, zerr.KindParameterMismatch) {
		t.Fatalf("expected ParameterMismatch for unsupported witness type, got %v", err)
	}
}

func TestBindOrchardSecretsNativeCircuit(t *testing.T) {
	circuit := &orchard.NativeCircuit{}
	circuit.Witness.Ak = big.NewInt(11)
	circuit.Witness.Value = big.NewInt(22)
	circuit.Witness.DomainTag = big.NewInt(33)
	circuit.Witness.SourceNullifier = big.NewInt(44)
	circuit.Witness.Tag = big.NewInt(55)

	alpha := big.NewInt(66)
	rcv := big.NewInt(77)

	rk, cv, hidingNf, err := bindOrchardSecrets(circuit, alpha, rcv)
	if err != nil {
		t.Fatalf("bindOrchardSecrets: %v", err)
	}

	if circuit.Witness.Alpha != alpha || circuit.Witness.Rcv != rcv {
		t.Fatal("alpha/rcv were not written into the witness")
	}
	if circuit.RkX != rk || circuit.CvX != cv || circuit.AirdropNf != hidingNf {
		t.Fatal("public fields do not match the derived rk/cv/hiding_nf")
	}
}

func TestBindOrchardSecretsUnsupportedType(t *testing.T) {
	_, _, _, err := bindOrchardSecrets(unknownCircuit{}, big.NewInt(1), big.NewInt(1))
	if err == nil || !zerr.Is(err, zerr.KindParameterMismatch) {
		t.Fatalf("expected ParameterMismatch for unsupported witness type, got %v", err)
	}
}

// unknownCircuit satisfies frontend.Circuit for the unsupported-type test
// cases above without pulling in a real sapling/orchard circuit.
type unknownCircuit struct{}

func (unknownCircuit) Define(_ frontend.API) error { return nil }
