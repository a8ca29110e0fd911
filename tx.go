package skeincoin

import (
	"bytes"
	"io"
)

type Tx struct {
	Version  int32
	TxIns    TxInList
	TxOuts   TxOutList
	LockTime uint32
}

// Hash of the canonical serialization. Derived, never stored - any
// field change changes the hash.
func (tx *Tx) Hash() Uint256 {
	buf := new(bytes.Buffer)
	BinWrite(tx, buf)
	return ShaSha256(buf.Bytes())
}

// A coinbase transaction has exactly one input and that input
// references no previous output.
func (tx *Tx) IsCoinBase() bool {
	return len(tx.TxIns) == 1 && tx.TxIns[0].PrevOut.IsNull()
}

func (tx *Tx) Size() int {
	version, locktime := 4, 4
	return version + tx.TxIns.Size() + tx.TxOuts.Size() + locktime
}

func (tx *Tx) BinRead(r io.Reader) (err error) {
	if err = BinRead(&tx.Version, r); err != nil {
		return err
	}
	if err = BinRead(&tx.TxIns, r); err != nil {
		return err
	}
	if err = BinRead(&tx.TxOuts, r); err != nil {
		return err
	}
	if err = BinRead(&tx.LockTime, r); err != nil {
		return err
	}
	return nil
}

func (tx *Tx) BinWrite(w io.Writer) (err error) {
	if err = BinWrite(tx.Version, w); err != nil {
		return err
	}
	if err = BinWrite(&tx.TxIns, w); err != nil {
		return err
	}
	if err = BinWrite(&tx.TxOuts, w); err != nil {
		return err
	}
	if err = BinWrite(tx.LockTime, w); err != nil {
		return err
	}
	return nil
}

type TxList []*Tx

func (tl *TxList) BinRead(r io.Reader) error {
	return readList(r, func(r io.Reader) error {
		var tx Tx
		if err := BinRead(&tx, r); err != nil {
			return err
		}
		*tl = append(*tl, &tx)
		return nil
	})
}

func (tl *TxList) BinWrite(w io.Writer) error {
	return writeList(w, len(*tl), func(w io.Writer, i int) error {
		return BinWrite((*tl)[i], w)
	})
}

func (tl *TxList) Size() int {
	result := varIntSize(uint64(len(*tl)))
	for _, t := range *tl {
		result += t.Size()
	}
	return result
}
