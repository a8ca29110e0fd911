package skeincoin

import (
	"testing"
)

func chainRec(hash, prev Uint256) *BlockRec {
	return &BlockRec{
		Block: &Block{
			BlockHeader: &BlockHeader{PrevHash: prev},
		},
		Hash: hash,
	}
}

func Test_blkNodeStack(t *testing.T) {

	var stack blkNodeStack

	stack.push(&blkNode{})
	stack.push(&blkNode{})

	if len(stack) != 2 {
		t.Error("len(stack) != 2")
	}
}

func Test_blkGraph_heights(t *testing.T) {

	g := newBlkGraph(100)

	var prev Uint256
	recs := make([]*BlockRec, 0, 10)
	for i := byte(1); i <= 10; i++ {
		hash := Uint256{i}
		br := chainRec(hash, prev)
		if i == 1 {
			br.Height = 1000 // the seed height
		}
		if err := g.add(br); err != nil {
			t.Fatalf("add: %v", err)
		}
		recs = append(recs, br)
		prev = hash
	}

	for i, br := range recs {
		if br.Height != 1000+i {
			t.Errorf("block %d height = %d, want %d", i, br.Height, 1000+i)
		}
		if br.Orphan {
			t.Errorf("block %d marked orphan on a straight chain", i)
		}
	}

	// Unknown parent is an error.
	if err := g.add(chainRec(Uint256{0xff}, Uint256{0xee})); err == nil {
		t.Error("block with unknown parent added")
	}
}

func Test_blkGraph_split(t *testing.T) {

	g := newBlkGraph(100)

	// A trunk of 5, then two competing branches off block 3: one of
	// length 2 and one of length 4. The shorter one is orphaned.
	var prev Uint256
	for i := byte(1); i <= 5; i++ {
		hash := Uint256{i}
		g.add(chainRec(hash, prev))
		prev = hash
	}

	short := make([]*BlockRec, 0, 2)
	prev = Uint256{3}
	for i := byte(1); i <= 2; i++ {
		hash := Uint256{3, i}
		br := chainRec(hash, prev)
		g.add(br)
		short = append(short, br)
		prev = hash
	}

	long := make([]*BlockRec, 0, 4)
	prev = Uint256{3}
	for i := byte(1); i <= 4; i++ {
		hash := Uint256{3, 0, i}
		br := chainRec(hash, prev)
		g.add(br)
		long = append(long, br)
		prev = hash
	}

	for i, br := range short {
		if !br.Orphan {
			t.Errorf("short branch block %d not orphaned", i)
		}
	}
	for i, br := range long {
		if br.Orphan {
			t.Errorf("long branch block %d orphaned", i)
		}
	}

	// Draining the graph must not panic and must empty it.
	for len(g.byHash) > 0 {
		g.deleteTop()
	}
}

func Test_blockStream(t *testing.T) {

	out := make(chan *BlockRec, 64)
	in := NewBlockStream(out, 3)

	// Feed a chain of 6 out of order: the children of block 2 arrive
	// before block 2 itself.
	var hashes [7]Uint256
	for i := 1; i <= 6; i++ {
		hashes[i] = Uint256{byte(i)}
	}
	recs := make(map[Uint256]*BlockRec)
	for i := 1; i <= 6; i++ {
		recs[hashes[i]] = chainRec(hashes[i], hashes[i-1])
	}
	recs[hashes[1]].Height = 1

	for _, i := range []int{1, 3, 4, 2, 5, 6} {
		in <- recs[hashes[i]]
	}
	close(in)

	got := make([]*BlockRec, 0, 6)
	for br := range out {
		got = append(got, br)
	}

	if len(got) != 6 {
		t.Fatalf("streamed %d blocks, want 6", len(got))
	}
	seen := make(map[Uint256]bool)
	for _, br := range got {
		seen[br.Hash] = true
		if want := int(br.Hash[0]); br.Height != want {
			t.Errorf("block %v height = %d, want %d", br.Hash, br.Height, want)
		}
		if br.Orphan {
			t.Errorf("block %v marked orphan", br.Hash)
		}
	}
	if len(seen) != 6 {
		t.Error("duplicate blocks in the stream")
	}
}
