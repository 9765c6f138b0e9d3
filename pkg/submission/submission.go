// Package submission implements the claim-submission file schema (spec.md
// §6: "Submission file (JSON)") and duplicate-nullifier rejection, grounded
// on original_source/crates/zair-sdk/src/commands/nullifier_uniqueness.rs.
//
// The original's submission path built an Orchard Vec<()> placeholder (its
// Orchard proving backend was unfinished); this package carries a full
// Orchard []ClaimEntry alongside Sapling's, per SPEC_FULL.md §2.C.
package submission

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zair-project/nonmembership/pkg/nullifier"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

// HexBytes round-trips arbitrary-length byte slices as lowercase hex in
// JSON, matching the submission file's "(hex)"-suffixed fields (spec.md
// §6).
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("hex_bytes: %w", err))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("hex_bytes: %w", err))
	}
	*h = b
	return nil
}

// ClaimEntry is one proved claim within a submission (spec.md §6:
// "ClaimEntry = {zkproof (hex), rk (hex), cv?, cv_sha256?, airdrop_nullifier,
// spend_auth_sig (hex, 64 bytes)}").
type ClaimEntry struct {
	ZkProof         HexBytes  `json:"zkproof"`
	Rk              HexBytes  `json:"rk"`
	Cv              *HexBytes `json:"cv,omitempty"`
	CvSha256        *HexBytes `json:"cv_sha256,omitempty"`
	AirdropNullifier nullifier.Nullifier `json:"airdrop_nullifier"`
	SpendAuthSig    HexBytes  `json:"spend_auth_sig"`
}

// Pool mirrors the submission-schema pool byte (spec.md §4.7).
type Pool uint8

const (
	PoolSapling Pool = 0
	PoolOrchard Pool = 1
)

// ClaimSubmission is the full submission file schema: {pool, target_id,
// proof_hash (hex), message_hash (hex), sapling: [ClaimEntry], orchard:
// [ClaimEntry]} (spec.md §6).
type ClaimSubmission struct {
	Pool        Pool         `json:"pool"`
	TargetID    string       `json:"target_id"`
	ProofHash   HexBytes     `json:"proof_hash"`
	MessageHash HexBytes     `json:"message_hash"`
	Sapling     []ClaimEntry `json:"sapling"`
	Orchard     []ClaimEntry `json:"orchard"`
}

// EnsureUniqueAirdropNullifiers rejects a claim collection containing a
// duplicate airdrop nullifier, reporting the first duplicate's index and
// context label. Ported from ensure_unique_airdrop_nullifiers, generalized
// from BTreeSet-backed dedup to a Go map.
func EnsureUniqueAirdropNullifiers(entries []ClaimEntry, context string) error {
	seen := make(map[nullifier.Nullifier]int, len(entries))
	for index, entry := range entries {
		if firstIdx, ok := seen[entry.AirdropNullifier]; ok {
			return zerr.IntegrityFailure(fmt.Errorf(
				"duplicate %s entry for airdrop nullifier at index %d (first seen at index %d)",
				context, index, firstIdx))
		}
		seen[entry.AirdropNullifier] = index
	}
	return nil
}

// Validate checks a submission's structural invariants: unique airdrop
// nullifiers within each pool section.
func (s ClaimSubmission) Validate() error {
	if err := EnsureUniqueAirdropNullifiers(s.Sapling, "sapling"); err != nil {
		return err
	}
	if err := EnsureUniqueAirdropNullifiers(s.Orchard, "orchard"); err != nil {
		return err
	}
	return nil
}

// SortedAirdropNullifiers returns every airdrop nullifier across both pool
// sections, sorted ascending — used by downstream chain-side uniqueness
// checks that must compare against the chain's recorded nullifier set.
func (s ClaimSubmission) SortedAirdropNullifiers() []nullifier.Nullifier {
	all := make([]nullifier.Nullifier, 0, len(s.Sapling)+len(s.Orchard))
	for _, e := range s.Sapling {
		all = append(all, e.AirdropNullifier)
	}
	for _, e := range s.Orchard {
		all = append(all, e.AirdropNullifier)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })
	return all
}
