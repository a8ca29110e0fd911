package skeincoin

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

type Block struct {
	Magic uint32
	*BlockHeader
	Txs TxList

	// Flattened level-by-level merkle tree, derived from Txs. Guarded
	// by mtMtx: concurrent first builds are serialized, and a rebuild
	// always produces the same tree.
	mtMtx      sync.Mutex
	merkleTree []Uint256
}

func (b *Block) Size() int {
	return b.BlockHeader.Size() + b.Txs.Size()
}

func (b *Block) BinRead(r io.Reader) error {
	m, err := readMagic(r)
	if err != nil {
		return err
	}

	if b.Magic > 0 && b.Magic != m {
		return fmt.Errorf("Bad magic: %d", m)
	}

	var size uint32
	err = BinRead(&size, r)
	if err != nil {
		return err
	}

	var bh BlockHeader
	err = BinRead(&bh, r)
	if err != nil {
		return err
	}
	b.BlockHeader = &bh

	return BinRead(&b.Txs, r)
}

func (b *Block) BinWrite(w io.Writer) error {
	body := new(bytes.Buffer)
	if err := BinWrite(b.BlockHeader, body); err != nil {
		return err
	}
	if err := BinWrite(&b.Txs, body); err != nil {
		return err
	}
	if err := BinWrite(b.Magic, w); err != nil {
		return err
	}
	if err := BinWrite(uint32(body.Len()), w); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// merkleHash combines two nodes. Tree levels hash with the general
// object hash, not the header proof-of-work hash.
func merkleHash(left, right Uint256) Uint256 {
	var cat [64]byte
	copy(cat[:32], left[:])
	copy(cat[32:], right[:])
	return ShaSha256(cat[:])
}

// BuildMerkleTree computes the tree over the transaction hashes and
// returns the root, zero if the block has no transactions. Level 0 is
// the transaction hashes in order; each level pairs neighbors, and an
// odd element at the end pairs with itself. That self-pairing means
// two different transaction lists can produce the same root, which is
// why CheckBlock separately rejects duplicate transaction hashes.
func (b *Block) BuildMerkleTree() Uint256 {
	b.mtMtx.Lock()
	defer b.mtMtx.Unlock()
	return b.buildMerkleTree()
}

func (b *Block) buildMerkleTree() Uint256 {
	b.merkleTree = b.merkleTree[:0]
	for _, tx := range b.Txs {
		b.merkleTree = append(b.merkleTree, tx.Hash())
	}
	j := 0
	for size := len(b.Txs); size > 1; size = (size + 1) / 2 {
		for i := 0; i < size; i += 2 {
			i2 := i + 1
			if i2 > size-1 {
				i2 = size - 1
			}
			b.merkleTree = append(b.merkleTree,
				merkleHash(b.merkleTree[j+i], b.merkleTree[j+i2]))
		}
		j += size
	}
	if len(b.merkleTree) == 0 {
		return Uint256{}
	}
	return b.merkleTree[len(b.merkleTree)-1]
}

// MerkleBranch collects the sibling hashes proving the inclusion of
// the transaction at index.
func (b *Block) MerkleBranch(index int) []Uint256 {
	if index < 0 || index >= len(b.Txs) {
		return nil
	}
	b.mtMtx.Lock()
	defer b.mtMtx.Unlock()
	if len(b.merkleTree) == 0 {
		b.buildMerkleTree()
	}
	var branch []Uint256
	j := 0
	for size := len(b.Txs); size > 1; size = (size + 1) / 2 {
		i := index ^ 1
		if i > size-1 {
			i = size - 1
		}
		branch = append(branch, b.merkleTree[j+i])
		index >>= 1
		j += size
	}
	return branch
}

// CheckMerkleBranch replays the combination of hash with the branch
// siblings. The low bit of index picks the operand order at each
// level. An index of -1 means "no such leaf" and yields the zero
// hash. The caller compares the result to a known root.
func CheckMerkleBranch(hash Uint256, branch []Uint256, index int) Uint256 {
	if index == -1 {
		return Uint256{}
	}
	for _, otherside := range branch {
		if index&1 != 0 {
			hash = merkleHash(otherside, hash)
		} else {
			hash = merkleHash(hash, otherside)
		}
		index >>= 1
	}
	return hash
}
