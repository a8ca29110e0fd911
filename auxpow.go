package skeincoin

import (
	"bytes"
	"encoding/binary"
	"io"
)

// mergedMiningHeader marks the chain merkle root inside the parent
// chain coinbase scriptSig.
var mergedMiningHeader = []byte{0xfa, 0xbe, 'm', 'm'}

// maxChainBranchLen caps the chain merkle tree at 2^30 merged chains.
const maxChainBranchLen = 30

// AuxPow is a merged-mining proof: a coinbase transaction of a block
// on the parent chain committing to our block hash, with the merkle
// branches tying everything together. The proof-of-work itself is the
// parent block's, checked by the caller against this block's target.
type AuxPow struct {
	CoinbaseTx Tx
	HashBlock  Uint256

	// Branch and index of the coinbase within the parent block.
	CoinbaseBranch []Uint256
	CoinbaseIndex  int32

	// Branch and slot of our chain in the chain merkle tree whose
	// root the parent coinbase commits to.
	ChainBranch []Uint256
	ChainIndex  int32

	ParentBlock BlockHeader
}

func (ap *AuxPow) ParentBlockHash() Uint256 {
	return ap.ParentBlock.Hash()
}

func (ap *AuxPow) Size() int {
	buf := new(bytes.Buffer)
	BinWrite(ap, buf)
	return buf.Len()
}

func readHashList(r io.Reader) ([]Uint256, error) {
	var list []Uint256
	err := readList(r, func(r io.Reader) error {
		var h Uint256
		if err := BinRead(&h, r); err != nil {
			return err
		}
		list = append(list, h)
		return nil
	})
	return list, err
}

func writeHashList(list []Uint256, w io.Writer) error {
	return writeList(w, len(list), func(w io.Writer, i int) error {
		return BinWrite(list[i], w)
	})
}

func (ap *AuxPow) BinRead(r io.Reader) (err error) {
	if err = BinRead(&ap.CoinbaseTx, r); err != nil {
		return err
	}
	if err = BinRead(&ap.HashBlock, r); err != nil {
		return err
	}
	if ap.CoinbaseBranch, err = readHashList(r); err != nil {
		return err
	}
	if err = BinRead(&ap.CoinbaseIndex, r); err != nil {
		return err
	}
	if ap.ChainBranch, err = readHashList(r); err != nil {
		return err
	}
	if err = BinRead(&ap.ChainIndex, r); err != nil {
		return err
	}
	return ap.ParentBlock.binReadFixed(r)
}

func (ap *AuxPow) BinWrite(w io.Writer) (err error) {
	if err = BinWrite(&ap.CoinbaseTx, w); err != nil {
		return err
	}
	if err = BinWrite(ap.HashBlock, w); err != nil {
		return err
	}
	if err = writeHashList(ap.CoinbaseBranch, w); err != nil {
		return err
	}
	if err = BinWrite(ap.CoinbaseIndex, w); err != nil {
		return err
	}
	if err = writeHashList(ap.ChainBranch, w); err != nil {
		return err
	}
	if err = BinWrite(ap.ChainIndex, w); err != nil {
		return err
	}
	return ap.ParentBlock.binWriteFixed(w)
}

// Check validates the structural proof: the coinbase is really the
// parent block's coinbase, it commits to a chain merkle tree that
// contains hashAuxBlock, and our chain occupies the slot it is
// supposed to, so one parent block cannot carry proofs for the same
// chain twice.
func (ap *AuxPow) Check(hashAuxBlock Uint256, chainID int32, params *Params) error {
	if ap.CoinbaseIndex != 0 {
		return logError("AuxPow() : aux pow is not a generate")
	}

	if !params.TestNet && ap.ParentBlock.ChainID() == chainID {
		return logError("AuxPow() : aux pow parent has our chain ID")
	}

	if len(ap.ChainBranch) > maxChainBranchLen {
		return logError("AuxPow() : aux pow chain merkle branch too long")
	}

	// Root of the chain merkle tree this block claims membership in,
	// in the byte order it would appear inside a script.
	rootHash := CheckMerkleBranch(hashAuxBlock, ap.ChainBranch, int(ap.ChainIndex))
	vchRootHash := make([]byte, 32)
	for i, b := range rootHash {
		vchRootHash[31-i] = b
	}

	if CheckMerkleBranch(ap.CoinbaseTx.Hash(), ap.CoinbaseBranch, int(ap.CoinbaseIndex)) != ap.ParentBlock.MerkleRoot {
		return logError("AuxPow() : aux pow merkle root incorrect")
	}

	if len(ap.CoinbaseTx.TxIns) == 0 {
		return logError("AuxPow() : aux pow coinbase has no inputs")
	}
	script := ap.CoinbaseTx.TxIns[0].ScriptSig

	pcHead := bytes.Index(script, mergedMiningHeader)
	pc := bytes.Index(script, vchRootHash)
	if pc == -1 {
		return logError("AuxPow() : aux pow missing chain merkle root in parent coinbase")
	}

	if pcHead != -1 {
		// Enforce only one chain merkle root by checking that a
		// single instance of the merged mining header exists just
		// before.
		if bytes.Index(script[pcHead+1:], mergedMiningHeader) != -1 {
			return logError("AuxPow() : multiple merged mining headers in coinbase")
		}
		if pcHead+len(mergedMiningHeader) != pc {
			return logError("AuxPow() : merged mining header is not just before chain merkle root")
		}
	} else {
		// For backward compatibility: the merkle root must start
		// early in the coinbase, so that the same work cannot also
		// satisfy a different chain merkle tree further in.
		if pc > 20 {
			return logError("AuxPow() : aux pow chain merkle root must start in the first 20 bytes of the parent coinbase")
		}
	}

	// The remainder pins down this chain's slot in the tree.
	pc += len(vchRootHash)
	if len(script)-pc < 8 {
		return logError("AuxPow() : aux pow missing chain merkle tree size and nonce in parent coinbase")
	}
	size := int32(binary.LittleEndian.Uint32(script[pc:]))
	nonce := int32(binary.LittleEndian.Uint32(script[pc+4:]))
	if int(size) != 1<<len(ap.ChainBranch) {
		return logError("AuxPow() : aux pow merkle branch size does not match parent coinbase")
	}

	// A pseudo-random slot, fixed for a given size/nonce/chain
	// combination, so the producer cannot grind chain positions.
	rand := uint32(nonce)
	rand = rand*1103515245 + 12345
	rand += uint32(chainID)
	rand = rand*1103515245 + 12345
	if uint32(ap.ChainIndex) != rand%uint32(size) {
		return logError("AuxPow() : aux pow wrong index")
	}

	return nil
}
