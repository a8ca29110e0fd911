package skeincoin

import (
	"bytes"
	"testing"
)

// testTx makes a unique, valid-enough transaction for hashing tests.
func testTx(seed byte) *Tx {
	return &Tx{
		Version: 1,
		TxIns: TxInList{{
			PrevOut:   OutPoint{Hash: Uint256{seed}, N: 0},
			ScriptSig: []byte{seed, seed},
			Sequence:  0xffffffff,
		}},
		TxOuts:   TxOutList{{Value: int64(seed) * 1000, ScriptPubKey: []byte{opDup}}},
		LockTime: 0,
	}
}

func testBlock(n int) *Block {
	b := &Block{BlockHeader: &BlockHeader{Version: BlockVersionDefault}}
	for i := 0; i < n; i++ {
		b.Txs = append(b.Txs, testTx(byte(i+1)))
	}
	return b
}

func Test_buildMerkleTree(t *testing.T) {

	// No transactions hash to all zeros.
	empty := &Block{BlockHeader: &BlockHeader{}}
	if root := empty.BuildMerkleTree(); root != (Uint256{}) {
		t.Errorf("empty block merkle root = %v", root)
	}

	// A single transaction is its own root.
	one := testBlock(1)
	if root := one.BuildMerkleTree(); root != one.Txs[0].Hash() {
		t.Error("single tx root != tx hash")
	}

	// Two transactions combine.
	two := testBlock(2)
	want := merkleHash(two.Txs[0].Hash(), two.Txs[1].Hash())
	if root := two.BuildMerkleTree(); root != want {
		t.Error("two tx root mismatch")
	}

	// An odd level pairs its last node with itself.
	three := testBlock(3)
	want = merkleHash(
		merkleHash(three.Txs[0].Hash(), three.Txs[1].Hash()),
		merkleHash(three.Txs[2].Hash(), three.Txs[2].Hash()),
	)
	if root := three.BuildMerkleTree(); root != want {
		t.Error("three tx root mismatch")
	}
}

func Test_merkleBranch(t *testing.T) {

	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 11} {
		b := testBlock(n)
		root := b.BuildMerkleTree()

		for i := 0; i < n; i++ {
			branch := b.MerkleBranch(i)
			if got := CheckMerkleBranch(b.Txs[i].Hash(), branch, i); got != root {
				t.Errorf("n=%d index=%d: branch does not verify", n, i)
			}
			// A wrong leaf must not verify (n == 1 has an empty
			// branch, any leaf is its own root there).
			if n > 1 {
				if got := CheckMerkleBranch(Uint256{0xde, 0xad}, branch, i); got == root {
					t.Errorf("n=%d index=%d: bogus leaf verified", n, i)
				}
			}
		}

		// Out of range indexes yield no branch.
		if b.MerkleBranch(n) != nil {
			t.Errorf("n=%d: branch for out-of-range index", n)
		}
	}

	// A negative index is explicitly unverifiable.
	b := testBlock(4)
	root := b.BuildMerkleTree()
	if got := CheckMerkleBranch(b.Txs[0].Hash(), b.MerkleBranch(0), -1); got == root {
		t.Error("index -1 verified")
	}
}

func Test_block_serialization(t *testing.T) {

	b := testBlock(3)
	b.Magic = MainNetMagic
	b.MerkleRoot = b.BuildMerkleTree()
	b.Bits = 0x1e0fffff
	b.Time = 1_400_000_000

	buf := new(bytes.Buffer)
	if err := BinWrite(b, buf); err != nil {
		t.Fatalf("BinWrite: %v", err)
	}

	back := Block{Magic: MainNetMagic}
	if err := BinRead(&back, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("BinRead: %v", err)
	}

	if back.BlockHeader.Hash() != b.BlockHeader.Hash() {
		t.Error("header hash changed across serialization")
	}
	if len(back.Txs) != len(b.Txs) {
		t.Fatalf("tx count %d != %d", len(back.Txs), len(b.Txs))
	}
	for i := range b.Txs {
		if back.Txs[i].Hash() != b.Txs[i].Hash() {
			t.Errorf("tx %d hash changed across serialization", i)
		}
	}

	// Wrong magic is rejected.
	bad := Block{Magic: TestNetMagic}
	if err := BinRead(&bad, bytes.NewReader(buf.Bytes())); err == nil {
		t.Error("wrong magic accepted")
	}
}
