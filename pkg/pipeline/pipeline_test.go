package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/zair-project/nonmembership/pkg/nullifier"
)

func writeNullifierFile(t *testing.T, dir, name string, vals []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, vals, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func nfBytes(bs ...byte) []byte {
	var out []byte
	for _, b := range bs {
		rec := make([]byte, 32)
		rec[31] = b
		out = append(out, rec...)
	}
	return out
}

func TestFileSourceReadsBothPoolsInOrder(t *testing.T) {
	dir := t.TempDir()
	saplingPath := writeNullifierFile(t, dir, "sapling.bin", nfBytes(1, 2))
	orchardPath := writeNullifierFile(t, dir, "orchard.bin", nfBytes(9))

	src, err := OpenFileSource(saplingPath, orchardPath)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	var got []PoolNullifier
	for {
		pn, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, pn)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 nullifiers, got %d", len(got))
	}
	if got[0].Pool != nullifier.PoolSapling || got[1].Pool != nullifier.PoolSapling {
		t.Error("expected first two entries tagged Sapling")
	}
	if got[2].Pool != nullifier.PoolOrchard {
		t.Error("expected third entry tagged Orchard")
	}
}

func TestFileSourceRejectsMisalignedLength(t *testing.T) {
	dir := t.TempDir()
	saplingPath := writeNullifierFile(t, dir, "sapling.bin", make([]byte, 33))
	orchardPath := writeNullifierFile(t, dir, "orchard.bin", nil)

	src, err := OpenFileSource(saplingPath, orchardPath)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	if _, err := src.Next(ctx); err != nil {
		t.Fatalf("first record should be readable: %v", err)
	}
	if _, err := src.Next(ctx); err == nil {
		t.Fatal("expected error for misaligned trailing byte")
	}
}

func TestBuildSnapshotProducesDenseTreesByDefault(t *testing.T) {
	dir := t.TempDir()
	saplingPath := writeNullifierFile(t, dir, "sapling.bin", nfBytes(5, 10, 20))
	orchardPath := writeNullifierFile(t, dir, "orchard.bin", nfBytes(3))

	src, err := OpenFileSource(saplingPath, orchardPath)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	snap, err := BuildSnapshot(context.Background(), src, nil, nil, nil)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if snap.Sapling.NumLeaves() != 4 {
		t.Errorf("expected 4 sapling leaves (3 nullifiers + 1 gap), got %d", snap.Sapling.NumLeaves())
	}
	if snap.Orchard.NumLeaves() != 2 {
		t.Errorf("expected 2 orchard leaves (1 nullifier + 1 gap), got %d", snap.Orchard.NumLeaves())
	}
}

func TestBuildSnapshotHonorsMarkedForSparse(t *testing.T) {
	dir := t.TempDir()
	saplingPath := writeNullifierFile(t, dir, "sapling.bin", nfBytes(5, 10))
	orchardPath := writeNullifierFile(t, dir, "orchard.bin", nil)

	src, err := OpenFileSource(saplingPath, orchardPath)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	snap, err := BuildSnapshot(context.Background(), src, []int{0}, nil, nil)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if _, err := snap.Sapling.Witness(0); err != nil {
		t.Errorf("marked leaf 0 should have a witness: %v", err)
	}
	if _, err := snap.Sapling.Witness(1); err == nil {
		t.Error("unmarked leaf 1 should not have a witness")
	}
}

func TestBuildSnapshotCancellation(t *testing.T) {
	dir := t.TempDir()
	saplingPath := writeNullifierFile(t, dir, "sapling.bin", nfBytes(1))
	orchardPath := writeNullifierFile(t, dir, "orchard.bin", nil)

	src, err := OpenFileSource(saplingPath, orchardPath)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildSnapshot(ctx, src, nil, nil, nil); err == nil {
		t.Error("expected cancellation error from BuildSnapshot on a cancelled context")
	}
}
