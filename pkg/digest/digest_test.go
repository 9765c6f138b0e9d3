package digest

import "testing"

func fill(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func fixedArray192(b byte) (out [192]byte) {
	copy(out[:], fill(b, 192))
	return out
}

func fixedArray32(b byte) (out [32]byte) {
	copy(out[:], fill(b, 32))
	return out
}

func TestHashProofBundleDeterministicAndOrdered(t *testing.T) {
	cv0 := fixedArray32(3)
	nf0 := fixedArray32(4)
	p0 := SaplingProofEntry{ZkProof: fixedArray192(1), Rk: fixedArray32(2), Cv: &cv0, AirdropNullifier: nf0}

	cvSha1 := fixedArray32(7)
	nf1 := fixedArray32(6)
	p1 := SaplingProofEntry{ZkProof: fixedArray192(9), Rk: fixedArray32(8), CvSha256: &cvSha1, AirdropNullifier: nf1}

	a := ProofBundle{SaplingProofs: []SaplingProofEntry{p0, p1}}
	b := ProofBundle{SaplingProofs: []SaplingProofEntry{p1, p0}}

	ah, err := HashProofBundle(a)
	if err != nil {
		t.Fatalf("HashProofBundle: %v", err)
	}
	ah2, err := HashProofBundle(a)
	if err != nil {
		t.Fatalf("HashProofBundle: %v", err)
	}
	bh, err := HashProofBundle(b)
	if err != nil {
		t.Fatalf("HashProofBundle: %v", err)
	}

	if ah != ah2 {
		t.Error("hash must be deterministic")
	}
	if ah == bh {
		t.Error("hash must depend on proof order")
	}
}

func TestHashProofBundleOrchardEntriesAffectHash(t *testing.T) {
	base := ProofBundle{}
	baseHash, _ := HashProofBundle(base)

	withOrchard := ProofBundle{
		OrchardProofs: []OrchardProofEntry{
			{ZkProof: []byte{1, 2, 3}, Rk: fixedArray32(5), AirdropNullifier: fixedArray32(6)},
		},
	}
	withOrchardHash, _ := HashProofBundle(withOrchard)

	if baseHash == withOrchardHash {
		t.Error("orchard proof entries must affect the bundle hash, not just the count")
	}

	// A second orchard proof with different zkproof bytes must change the hash.
	withDifferentOrchard := ProofBundle{
		OrchardProofs: []OrchardProofEntry{
			{ZkProof: []byte{9, 9, 9}, Rk: fixedArray32(5), AirdropNullifier: fixedArray32(6)},
		},
	}
	withDifferentHash, _ := HashProofBundle(withDifferentOrchard)
	if withOrchardHash == withDifferentHash {
		t.Error("orchard proof bytes must be part of the preimage")
	}
}

func TestSignatureDigestRejectsLongTargetID(t *testing.T) {
	longID := string(fill('a', 256))
	_, err := SignatureDigest(PoolSapling, longID, [32]byte{}, [32]byte{})
	if err == nil {
		t.Fatal("expected error for target_id exceeding 255 bytes")
	}
}

func TestSignatureDigestDeterministic(t *testing.T) {
	proofHash := fixedArray32(1)
	messageHash := fixedArray32(2)
	a, err := SignatureDigest(PoolOrchard, "target-chain", proofHash, messageHash)
	if err != nil {
		t.Fatalf("SignatureDigest: %v", err)
	}
	b, err := SignatureDigest(PoolOrchard, "target-chain", proofHash, messageHash)
	if err != nil {
		t.Fatalf("SignatureDigest: %v", err)
	}
	if a != b {
		t.Error("signature digest must be deterministic")
	}

	c, err := SignatureDigest(PoolSapling, "target-chain", proofHash, messageHash)
	if err != nil {
		t.Fatalf("SignatureDigest: %v", err)
	}
	if a == c {
		t.Error("distinct pool byte must change the digest")
	}
}
