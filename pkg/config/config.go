// Package config defines the airdrop configuration file schema (spec.md
// §6) and its hex-encoded, pool-specific byte-ordering JSON round-trip.
// The MarshalJSON/UnmarshalJSON idiom here follows
// pkg/rpc.BlockNumber.UnmarshalJSON from the wyf-ACCEPT-eth2030 example
// repo (the teacher's own config package carries no JSON schema to ground
// on — it is plain Go constants).
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/zair-project/nonmembership/pkg/zerr"
)

// Hex32 is a 32-byte value JSON-encoded as a natural-order hex string
// (Orchard anchors, spec.md §6).
type Hex32 [32]byte

func (h Hex32) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h[:]))
}

func (h *Hex32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("hex32: %w", err))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("hex32: %w", err))
	}
	if len(b) != 32 {
		return zerr.InvalidInputEncoding(fmt.Errorf("hex32: want 32 bytes, got %d", len(b)))
	}
	copy(h[:], b)
	return nil
}

// ReversedHex32 is a 32-byte value JSON-encoded as a reversed-byte-order hex
// string (Sapling anchors, spec.md §6: "Sapling is hex-encoded in reversed
// byte order").
type ReversedHex32 [32]byte

func (h ReversedHex32) MarshalJSON() ([]byte, error) {
	var rev [32]byte
	for i := 0; i < 32; i++ {
		rev[i] = h[31-i]
	}
	return json.Marshal(hex.EncodeToString(rev[:]))
}

func (h *ReversedHex32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("reversed_hex32: %w", err))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("reversed_hex32: %w", err))
	}
	if len(b) != 32 {
		return zerr.InvalidInputEncoding(fmt.Errorf("reversed_hex32: want 32 bytes, got %d", len(b)))
	}
	for i := 0; i < 32; i++ {
		h[i] = b[31-i]
	}
	return nil
}

// HeightRange is the inclusive snapshot height range (spec.md §6).
type HeightRange struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// TreeAnchors holds the per-pool 32-byte anchor for one tree kind, Sapling
// reversed-hex and Orchard natural-hex (spec.md §6).
type TreeAnchors struct {
	Sapling ReversedHex32 `json:"sapling"`
	Orchard Hex32         `json:"orchard"`
}

// SaplingHidingFactor is the personalization string used by hidingnf.Sapling.
type SaplingHidingFactor struct {
	Personalization string `json:"personalization"`
}

// OrchardHidingFactor is the domain/tag pair used by hidingnf.Orchard.
type OrchardHidingFactor struct {
	Domain string `json:"domain"`
	Tag    string `json:"tag"`
}

// HidingFactor fixes the tags driving hiding-nullifier derivation (spec.md
// §4.6, §6). Changing these fields changes the hiding nullifier and is a
// snapshot-incompatible change.
type HidingFactor struct {
	Sapling SaplingHidingFactor `json:"sapling"`
	Orchard OrchardHidingFactor `json:"orchard"`
}

// ValueCommitmentScheme is the JSON-level value-commitment scheme selector
// (spec.md §6: "value_commitment_scheme ∈ {native, sha256}").
type ValueCommitmentScheme string

const (
	SchemeNative ValueCommitmentScheme = "native"
	SchemeSha256 ValueCommitmentScheme = "sha256"
)

// PoolTargeting is the per-pool target-id and value-commitment scheme
// (spec.md §6).
type PoolTargeting struct {
	TargetID              string                 `json:"target_id"`
	ValueCommitmentScheme ValueCommitmentScheme `json:"value_commitment_scheme"`
}

// Validate enforces the per-pool target-id length/UTF-8 bound (spec.md §6:
// "Sapling ≤ 8 bytes, Orchard ≤ 32 bytes; both valid UTF-8").
func (p PoolTargeting) Validate(maxLen int) error {
	if !utf8.ValidString(p.TargetID) {
		return zerr.InvalidInputEncoding(fmt.Errorf("target_id is not valid UTF-8"))
	}
	if len(p.TargetID) > maxLen {
		return zerr.InvalidInputEncoding(fmt.Errorf("target_id length %d exceeds %d bytes", len(p.TargetID), maxLen))
	}
	switch p.ValueCommitmentScheme {
	case SchemeNative, SchemeSha256:
	default:
		return zerr.InvalidInputEncoding(fmt.Errorf("unknown value_commitment_scheme %q", p.ValueCommitmentScheme))
	}
	return nil
}

const (
	saplingTargetIDMaxLen = 8
	orchardTargetIDMaxLen = 32
)

// AirdropConfiguration is the full configuration file schema (spec.md §3,
// §6).
type AirdropConfiguration struct {
	SnapshotRange            HeightRange   `json:"snapshot_range"`
	NonMembershipTreeAnchors TreeAnchors   `json:"non_membership_tree_anchors"`
	NoteCommitmentTreeAnchors TreeAnchors  `json:"note_commitment_tree_anchors"`
	HidingFactor             HidingFactor  `json:"hiding_factor"`
	Sapling                  PoolTargeting `json:"sapling"`
	Orchard                  PoolTargeting `json:"orchard"`
}

// Validate checks the cross-field invariants JSON unmarshaling alone cannot
// express: the snapshot range ordering and per-pool target-id bounds.
func (c AirdropConfiguration) Validate() error {
	if c.SnapshotRange.Start > c.SnapshotRange.End {
		return zerr.InvalidInputEncoding(fmt.Errorf("snapshot_range.start %d exceeds end %d", c.SnapshotRange.Start, c.SnapshotRange.End))
	}
	if err := c.Sapling.Validate(saplingTargetIDMaxLen); err != nil {
		return err
	}
	if err := c.Orchard.Validate(orchardTargetIDMaxLen); err != nil {
		return err
	}
	return nil
}

// Load parses and validates a configuration file's JSON bytes.
func Load(data []byte) (*AirdropConfiguration, error) {
	var c AirdropConfiguration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, zerr.InvalidInputEncoding(fmt.Errorf("parse config: %w", err))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
