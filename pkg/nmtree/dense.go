package nmtree

import (
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"

	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zair-project/nonmembership/pkg/gap"
	"github.com/zair-project/nonmembership/pkg/nullifier"
	"github.com/zair-project/nonmembership/pkg/poolhash"
	"github.com/zair-project/nonmembership/pkg/sanitise"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

// Dense fully materializes every internal node reachable from the real gap
// leaves (levels[0] = leaves .. levels[Depth] = root); positions past the
// physical leaf count fall back to the zero-subtree table for their level.
// Adapted from pkg/merkle.SparseMerkleTree.
type Dense struct {
	root      *big.Int
	numLeaves int
	combiner  poolhash.Combiner
	levels    []map[int]*big.Int
	zeroHash  []*big.Int
}

// BuildDense builds the dense backend: leaf i (0..len(c), inclusive, per
// spec.md §4.2's gap-index range) is H_leaf(gap_bounds(c, i)). Leaf hashing
// is parallelized across a worker pool, mirroring
// pkg/merkle.GenerateSparseMerkleTree.
func BuildDense(c sanitise.SortedSet, pool nullifier.Pool, combiner poolhash.Combiner, progress ProgressFunc) (*Dense, error) {
	total := len(c) + 1 // gap indices 0..len(c) inclusive
	if uint64(total) >= MaxLeaves {
		return nil, zerr.OutOfRange(fmt.Errorf("leaf count %d exceeds capacity 2^%d", total, Depth))
	}
	if total < 1 {
		return nil, zerr.OutOfRange(fmt.Errorf("leaf count must be >= 1"))
	}

	zeroHash := poolhash.PrecomputeZeroHashes(combiner, Depth)

	leafHashes := make([]*big.Int, total)
	numWorkers := runtime.NumCPU()
	if numWorkers > total {
		numWorkers = total
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	work := make(chan int, total)
	errs := make([]error, total)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				b, err := gap.GapBounds(c, i, pool)
				if err != nil {
					errs[i] = err
					continue
				}
				leafHashes[i] = combiner.Leaf(b.Left, b.Right)
			}
		}()
	}
	for i := 0; i < total; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	levels := make([]map[int]*big.Int, Depth+1)
	for i := range levels {
		levels[i] = make(map[int]*big.Int)
	}
	for i, h := range leafHashes {
		levels[0][i] = h
	}

	lastPct := 0
	for lvl := 0; lvl < Depth; lvl++ {
		parentIdx := make(map[int]bool)
		for idx := range levels[lvl] {
			parentIdx[idx/2] = true
		}
		for p := range parentIdx {
			left, ok := levels[lvl][p*2]
			if !ok {
				left = zeroHash[lvl]
			}
			right, ok := levels[lvl][p*2+1]
			if !ok {
				right = zeroHash[lvl]
			}
			levels[lvl+1][p] = combiner.Internal(lvl, left, right)
		}
		reportProgress(progress, lvl+1, Depth, &lastPct)
	}

	root, ok := levels[Depth][0]
	if !ok {
		root = zeroHash[Depth]
	}

	return &Dense{
		root:      root,
		numLeaves: total,
		combiner:  combiner,
		levels:    levels,
		zeroHash:  zeroHash,
	}, nil
}

func (d *Dense) Root() *big.Int  { return d.root }
func (d *Dense) NumLeaves() int  { return d.numLeaves }
func (d *Dense) Combiner() poolhash.Combiner { return d.combiner }

// Witness returns the Depth sibling hashes from leaf i to the root. Dense
// never rejects a position within [0, 2^Depth): positions past the
// physical leaf count simply walk the zero-subtree table.
func (d *Dense) Witness(i int) ([]*big.Int, error) {
	if i < 0 {
		return nil, zerr.OutOfRange(fmt.Errorf("leaf index %d out of range", i))
	}
	siblings := make([]*big.Int, Depth)
	idx := i
	for lvl := 0; lvl < Depth; lvl++ {
		sibIdx := idx ^ 1
		h, ok := d.levels[lvl][sibIdx]
		if !ok {
			h = d.zeroHash[lvl]
		}
		siblings[lvl] = h
		idx /= 2
	}
	return siblings, nil
}

// Save writes the dense tree in the format:
//
//	uint32(numLeaves)
//	for level 0..Depth: uint32(count) | [uint32(index) | 32-byte hash]*count
//
// Zero hashes are never stored — they are recomputed on load from the
// combiner. Ported from pkg/merkle.SparseMerkleTree.Save.
func (d *Dense) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(d.numLeaves)); err != nil {
		return zerr.IoFailure(fmt.Errorf("write numLeaves: %w", err))
	}
	for lvl := 0; lvl <= Depth; lvl++ {
		m := d.levels[lvl]
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return zerr.IoFailure(fmt.Errorf("write level %d count: %w", lvl, err))
		}
		indices := make([]int, 0, len(m))
		for idx := range m {
			indices = append(indices, idx)
		}
		sortInts(indices)
		for _, idx := range indices {
			if err := binary.Write(w, binary.BigEndian, uint32(idx)); err != nil {
				return zerr.IoFailure(fmt.Errorf("write level %d index: %w", lvl, err))
			}
			var e fr.Element
			e.SetBigInt(m[idx])
			b := e.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return zerr.IoFailure(fmt.Errorf("write level %d hash: %w", lvl, err))
			}
		}
	}
	return nil
}

// LoadDense reads a tree written by Save, recomputing the zero-subtree
// chain from combiner.
func LoadDense(r io.Reader, combiner poolhash.Combiner) (*Dense, error) {
	var numLeaves uint32
	if err := binary.Read(r, binary.BigEndian, &numLeaves); err != nil {
		return nil, zerr.IoFailure(fmt.Errorf("read numLeaves: %w", err))
	}

	zeroHash := poolhash.PrecomputeZeroHashes(combiner, Depth)
	levels := make([]map[int]*big.Int, Depth+1)
	for lvl := 0; lvl <= Depth; lvl++ {
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, zerr.IoFailure(fmt.Errorf("read level %d count: %w", lvl, err))
		}
		m := make(map[int]*big.Int, count)
		var buf [32]byte
		for j := uint32(0); j < count; j++ {
			var idx uint32
			if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
				return nil, zerr.IoFailure(fmt.Errorf("read level %d index: %w", lvl, err))
			}
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, zerr.IoFailure(fmt.Errorf("read level %d hash: %w", lvl, err))
			}
			var e fr.Element
			e.SetBytes(buf[:])
			v := new(big.Int)
			e.BigInt(v)
			m[int(idx)] = v
		}
		levels[lvl] = m
	}

	root, ok := levels[Depth][0]
	if !ok {
		root = zeroHash[Depth]
	}

	return &Dense{
		root:      root,
		numLeaves: int(numLeaves),
		combiner:  combiner,
		levels:    levels,
		zeroHash:  zeroHash,
	}, nil
}

// sortInts sorts ascending via insertion sort, suitable for the typically
// small per-level entry counts. Ported from pkg/merkle.sortInts.
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && s[j] > key {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}
