package poolhash

import (
	"testing"

	"github.com/zair-project/nonmembership/pkg/nullifier"
)

func nf(b byte) nullifier.Nullifier {
	var n nullifier.Nullifier
	n[31] = b
	return n
}

func TestLeafDeterministic(t *testing.T) {
	c := NewSapling()
	a := c.Leaf(nf(1), nf(2))
	b := c.Leaf(nf(1), nf(2))
	if a.Cmp(b) != 0 {
		t.Error("Leaf is not deterministic")
	}
}

func TestLeafDiffersFromInternal(t *testing.T) {
	c := NewSapling()
	leaf := c.Leaf(nf(1), nf(2))
	internal := c.Internal(0, leaf, leaf)
	if leaf.Cmp(internal) == 0 {
		t.Error("leaf hash collided with internal hash at level 0")
	}
}

func TestPoolsDiffer(t *testing.T) {
	sap := NewSapling().Leaf(nf(1), nf(2))
	orc := NewOrchard().Leaf(nf(1), nf(2))
	if sap.Cmp(orc) == 0 {
		t.Error("Sapling and Orchard leaf hashes collided")
	}
}

func TestInternalLevelsDiffer(t *testing.T) {
	c := NewSapling()
	leaf := c.Leaf(nf(1), nf(2))
	l0 := c.Internal(0, leaf, leaf)
	l1 := c.Internal(1, leaf, leaf)
	if l0.Cmp(l1) == 0 {
		t.Error("internal hashes at different levels collided")
	}
}

func TestPrecomputeZeroHashesChain(t *testing.T) {
	c := NewSapling()
	zh := PrecomputeZeroHashes(c, 4)
	if len(zh) != 5 {
		t.Fatalf("len = %d, want 5", len(zh))
	}
	for l := 1; l < len(zh); l++ {
		want := c.Internal(l-1, zh[l-1], zh[l-1])
		if zh[l].Cmp(want) != 0 {
			t.Errorf("zh[%d] mismatch", l)
		}
	}
}
