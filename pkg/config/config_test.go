package config

import (
	"encoding/json"
	"testing"
)

func TestReversedHex32RoundTrip(t *testing.T) {
	var h ReversedHex32
	for i := range h {
		h[i] = byte(i)
	}
	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got ReversedHex32
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != h {
		t.Errorf("round trip mismatch: got %v, want %v", got, h)
	}
}

func TestReversedHex32ByteOrder(t *testing.T) {
	var h ReversedHex32
	h[0] = 0xAA
	h[31] = 0xBB
	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("Unmarshal to string: %v", err)
	}
	if s[:2] != "bb" || s[len(s)-2:] != "aa" {
		t.Errorf("expected reversed byte order in hex string, got %q", s)
	}
}

func TestHex32NaturalOrder(t *testing.T) {
	var h Hex32
	h[0] = 0xAA
	h[31] = 0xBB
	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("Unmarshal to string: %v", err)
	}
	if s[:2] != "aa" || s[len(s)-2:] != "bb" {
		t.Errorf("expected natural byte order in hex string, got %q", s)
	}
}

func TestHex32RejectsWrongLength(t *testing.T) {
	var h Hex32
	if err := json.Unmarshal([]byte(`"aabb"`), &h); err == nil {
		t.Fatal("expected error for short hex string")
	}
}

func TestPoolTargetingValidatesLength(t *testing.T) {
	p := PoolTargeting{TargetID: "this-target-id-is-too-long", ValueCommitmentScheme: SchemeNative}
	if err := p.Validate(8); err == nil {
		t.Fatal("expected error for over-length target_id")
	}
}

func TestPoolTargetingRejectsUnknownScheme(t *testing.T) {
	p := PoolTargeting{TargetID: "ok", ValueCommitmentScheme: "unknown"}
	if err := p.Validate(32); err == nil {
		t.Fatal("expected error for unknown value_commitment_scheme")
	}
}

func TestAirdropConfigurationValidatesSnapshotRange(t *testing.T) {
	c := AirdropConfiguration{
		SnapshotRange: HeightRange{Start: 100, End: 50},
		Sapling:       PoolTargeting{TargetID: "ok", ValueCommitmentScheme: SchemeNative},
		Orchard:       PoolTargeting{TargetID: "ok", ValueCommitmentScheme: SchemeNative},
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for start > end")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	raw := `{
		"snapshot_range": {"start": 1, "end": 100},
		"non_membership_tree_anchors": {"sapling": "` + hex64('a') + `", "orchard": "` + hex64('b') + `"},
		"note_commitment_tree_anchors": {"sapling": "` + hex64('c') + `", "orchard": "` + hex64('d') + `"},
		"hiding_factor": {"sapling": {"personalization": "ZAirdropHidingNF"}, "orchard": {"domain": "zair-domain", "tag": "hiding"}},
		"sapling": {"target_id": "ab", "value_commitment_scheme": "native"},
		"orchard": {"target_id": "cdef", "value_commitment_scheme": "sha256"}
	}`
	c, err := Load([]byte(raw))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SnapshotRange.Start != 1 || c.SnapshotRange.End != 100 {
		t.Error("snapshot range not parsed correctly")
	}
	if c.Sapling.ValueCommitmentScheme != SchemeNative {
		t.Error("sapling scheme not parsed correctly")
	}
}

func hex64(fill byte) string {
	s := make([]byte, 64)
	for i := range s {
		s[i] = fill
	}
	return string(s)
}
