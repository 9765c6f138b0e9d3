package submission

import (
	"encoding/json"
	"testing"

	"github.com/zair-project/nonmembership/pkg/nullifier"
)

func nf(b byte) nullifier.Nullifier {
	var n nullifier.Nullifier
	n[31] = b
	return n
}

func TestEnsureUniqueAirdropNullifiersAccepts(t *testing.T) {
	entries := []ClaimEntry{
		{AirdropNullifier: nf(1)},
		{AirdropNullifier: nf(2)},
		{AirdropNullifier: nf(3)},
	}
	if err := EnsureUniqueAirdropNullifiers(entries, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureUniqueAirdropNullifiersRejectsDuplicate(t *testing.T) {
	entries := []ClaimEntry{
		{AirdropNullifier: nf(7)},
		{AirdropNullifier: nf(7)},
	}
	if err := EnsureUniqueAirdropNullifiers(entries, "test"); err == nil {
		t.Fatal("expected error for duplicate nullifier")
	}
}

func TestClaimSubmissionValidateChecksBothPools(t *testing.T) {
	s := ClaimSubmission{
		Sapling: []ClaimEntry{{AirdropNullifier: nf(1)}, {AirdropNullifier: nf(1)}},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for duplicate sapling nullifier")
	}

	s2 := ClaimSubmission{
		Orchard: []ClaimEntry{{AirdropNullifier: nf(1)}, {AirdropNullifier: nf(1)}},
	}
	if err := s2.Validate(); err == nil {
		t.Fatal("expected error for duplicate orchard nullifier")
	}
}

func TestHexBytesRoundTrip(t *testing.T) {
	orig := HexBytes{0xDE, 0xAD, 0xBE, 0xEF}
	b, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got HexBytes
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(got) != string(orig) {
		t.Errorf("round trip mismatch: got %x, want %x", got, orig)
	}
}

func TestSortedAirdropNullifiers(t *testing.T) {
	s := ClaimSubmission{
		Sapling: []ClaimEntry{{AirdropNullifier: nf(5)}, {AirdropNullifier: nf(2)}},
		Orchard: []ClaimEntry{{AirdropNullifier: nf(9)}, {AirdropNullifier: nf(1)}},
	}
	sorted := s.SortedAirdropNullifiers()
	if len(sorted) != 4 {
		t.Fatalf("expected 4 nullifiers, got %d", len(sorted))
	}
	for i := 1; i < len(sorted); i++ {
		if !sorted[i-1].Less(sorted[i]) {
			t.Errorf("not strictly sorted at index %d", i)
		}
	}
}

func TestSubmissionJSONRoundTrip(t *testing.T) {
	s := ClaimSubmission{
		Pool:        PoolSapling,
		TargetID:    "target",
		ProofHash:   HexBytes{1, 2, 3},
		MessageHash: HexBytes{4, 5, 6},
		Sapling: []ClaimEntry{
			{ZkProof: HexBytes{7, 8}, Rk: HexBytes{9}, AirdropNullifier: nf(1), SpendAuthSig: HexBytes{10}},
		},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got ClaimSubmission
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.TargetID != s.TargetID || len(got.Sapling) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
