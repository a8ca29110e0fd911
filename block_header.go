package skeincoin

import (
	"bytes"
	"io"
)

// Block version layout: low byte is the base version, bit 8 flags an
// attached aux proof-of-work, the upper 16 bits carry the chain ID
// used by merged mining.
const (
	BlockVersionDefault    = 2
	BlockVersionAuxPow     = 1 << 8
	BlockVersionChainStart = 1 << 16
)

type BlockHeader struct {
	Version    int32
	PrevHash   Uint256
	MerkleRoot Uint256
	Time       uint32
	Bits       uint32
	Nonce      uint32

	// Present iff Version has the aux-PoW flag, owned by the header.
	AuxPow *AuxPow
}

func (bh *BlockHeader) ChainID() int32 {
	return bh.Version / BlockVersionChainStart
}

func (bh *BlockHeader) IsAuxPow() bool {
	return bh.Version&BlockVersionAuxPow != 0
}

// SetAuxPow attaches or clears the aux proof-of-work record, keeping
// the version flag bit in sync with the payload.
func (bh *BlockHeader) SetAuxPow(pow *AuxPow) {
	if pow != nil {
		bh.Version |= BlockVersionAuxPow
	} else {
		bh.Version &^= BlockVersionAuxPow
	}
	bh.AuxPow = pow
}

// Hash covers the fixed header fields only. The aux-PoW record never
// contributes to block identity.
func (bh *BlockHeader) Hash() Uint256 {
	buf := new(bytes.Buffer)
	bh.binWriteFixed(buf)
	return SkeinSha256(buf.Bytes())
}

func (bh *BlockHeader) Size() int {
	size := 80
	if bh.IsAuxPow() && bh.AuxPow != nil {
		size += bh.AuxPow.Size()
	}
	return size
}

// The 80 fixed bytes, shared by hashing and serialization. The parent
// header inside an aux-PoW record is read this way too, regardless of
// what its own version bits claim.
func (bh *BlockHeader) binReadFixed(r io.Reader) (err error) {
	if err = BinRead(&bh.Version, r); err != nil {
		return err
	}
	if err = BinRead(&bh.PrevHash, r); err != nil {
		return err
	}
	if err = BinRead(&bh.MerkleRoot, r); err != nil {
		return err
	}
	if err = BinRead(&bh.Time, r); err != nil {
		return err
	}
	if err = BinRead(&bh.Bits, r); err != nil {
		return err
	}
	return BinRead(&bh.Nonce, r)
}

func (bh *BlockHeader) binWriteFixed(w io.Writer) (err error) {
	if err = BinWrite(bh.Version, w); err != nil {
		return err
	}
	if err = BinWrite(bh.PrevHash, w); err != nil {
		return err
	}
	if err = BinWrite(bh.MerkleRoot, w); err != nil {
		return err
	}
	if err = BinWrite(bh.Time, w); err != nil {
		return err
	}
	if err = BinWrite(bh.Bits, w); err != nil {
		return err
	}
	return BinWrite(bh.Nonce, w)
}

func (bh *BlockHeader) BinRead(r io.Reader) error {
	if err := bh.binReadFixed(r); err != nil {
		return err
	}
	bh.AuxPow = nil
	if bh.IsAuxPow() {
		var pow AuxPow
		if err := BinRead(&pow, r); err != nil {
			return err
		}
		bh.AuxPow = &pow
	}
	return nil
}

func (bh *BlockHeader) BinWrite(w io.Writer) error {
	if err := bh.binWriteFixed(w); err != nil {
		return err
	}
	if bh.IsAuxPow() && bh.AuxPow != nil {
		return BinWrite(bh.AuxPow, w)
	}
	return nil
}

// CheckProofOfWork layers the merged-mining rules over the plain
// target check. Aux-PoW is gated by height, and to keep work done for
// another merged chain from being replayed here, a header at or past
// the gate must carry our chain ID (testnet excepted).
func (bh *BlockHeader) CheckProofOfWork(height int, params *Params) error {
	if height >= params.AuxPowStartHeight {
		if !params.TestNet && bh.ChainID() != params.ChainID {
			return logError("CheckProofOfWork() : block does not have our chain ID")
		}

		if bh.AuxPow != nil {
			if err := bh.AuxPow.Check(bh.Hash(), bh.ChainID(), params); err != nil {
				return logError("CheckProofOfWork() : AUX POW is not valid: %v", err)
			}
			// The work was done on the parent chain block.
			return CheckProofOfWork(bh.AuxPow.ParentBlockHash(), bh.Bits, params)
		}
		return CheckProofOfWork(bh.Hash(), bh.Bits, params)
	}

	if bh.AuxPow != nil {
		return logError("CheckProofOfWork() : AUX POW is not allowed at this block")
	}
	return CheckProofOfWork(bh.Hash(), bh.Bits, params)
}
