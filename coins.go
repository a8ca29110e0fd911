package skeincoin

import (
	"fmt"
	"io"
)

// Coins is the unspent output state of a single transaction: a sparse
// vector of its outputs where a nil (or nulled) slot means spent.
// Once every output is spent the entry is pruned from its store, so
// the serialized form below never represents an empty entry.
type Coins struct {
	Version  int32
	CoinBase bool
	Height   int64
	Outs     []*TxOut
}

// NewCoins records the outputs created by tx at the given height.
func NewCoins(tx *Tx, height int64) *Coins {
	outs := make([]*TxOut, len(tx.TxOuts))
	for i, o := range tx.TxOuts {
		cp := *o
		outs[i] = &cp
	}
	return &Coins{
		Version:  tx.Version,
		CoinBase: tx.IsCoinBase(),
		Height:   height,
		Outs:     outs,
	}
}

func (c *Coins) isAvail(n int) bool {
	return n < len(c.Outs) && c.Outs[n] != nil && !c.Outs[n].IsNull()
}

// Cleanup drops trailing spent slots. An entry that becomes empty is
// pruned by the owning store, there is no implicit destruction.
func (c *Coins) Cleanup() {
	n := len(c.Outs)
	for n > 0 && !c.isAvail(n-1) {
		n--
	}
	c.Outs = c.Outs[:n]
}

func (c *Coins) IsPruned() bool {
	for i := range c.Outs {
		if c.isAvail(i) {
			return false
		}
	}
	return true
}

// CalcMaskSize sizes the spentness bitmask of the serialized form.
// Outputs 0 and 1 have dedicated bits in the header code, each byte
// of the mask covers 8 further outputs. Returns the number of mask
// bytes up to and including the last used one, and how many of those
// are non-zero.
func (c *Coins) CalcMaskSize() (nBytes, nNonzeroBytes int) {
	lastUsedByte := 0
	for b := 0; 2+b*8 < len(c.Outs); b++ {
		zero := true
		for i := 0; i < 8 && 2+b*8+i < len(c.Outs); i++ {
			if c.isAvail(2 + b*8 + i) {
				zero = false
				break
			}
		}
		if !zero {
			lastUsedByte = b + 1
			nNonzeroBytes++
		}
	}
	return lastUsedByte, nNonzeroBytes
}

// TxInUndo is what it takes to restore one spent output. When the
// spend emptied the whole entry it also carries the entry metadata,
// since the entry itself is gone; Height > 0 signals that case.
type TxInUndo struct {
	TxOut    TxOut
	CoinBase bool
	Height   int64
	Version  int32
}

// Spend nulls the referenced output, returning the undo record. The
// caller must have exclusive access to the entry; range errors and
// double spends leave it untouched.
func (c *Coins) Spend(out OutPoint) (TxInUndo, error) {
	if int(out.N) >= len(c.Outs) {
		return TxInUndo{}, fmt.Errorf("Spend() : output index %d out of range", out.N)
	}
	if !c.isAvail(int(out.N)) {
		return TxInUndo{}, fmt.Errorf("Spend() : output %d already spent", out.N)
	}
	undo := TxInUndo{TxOut: *c.Outs[out.N]}
	c.Outs[out.N] = nil
	c.Cleanup()
	if len(c.Outs) == 0 {
		undo.Height = c.Height
		undo.CoinBase = c.CoinBase
		undo.Version = c.Version
	}
	return undo, nil
}

func writeCompressedTxOut(o *TxOut, w io.Writer) error {
	if err := writeVarInt(CompressAmount(uint64(o.Value)), w); err != nil {
		return err
	}
	if code, payload := compressScript(o.ScriptPubKey); code >= 0 {
		if err := writeVarInt(uint64(code), w); err != nil {
			return err
		}
		_, err := w.Write(payload)
		return err
	}
	if err := writeVarInt(uint64(len(o.ScriptPubKey)+specialScripts), w); err != nil {
		return err
	}
	_, err := w.Write(o.ScriptPubKey)
	return err
}

func readCompressedTxOut(r io.Reader) (*TxOut, error) {
	amt, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	out := TxOut{Value: int64(DecompressAmount(amt))}
	size, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if size < specialScripts {
		buf := make([]byte, getSpecialSize(int(size)))
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out.ScriptPubKey = decompressScript(int(size), buf)
		if out.ScriptPubKey == nil {
			return nil, fmt.Errorf("invalid compressed script of type %d", size)
		}
		return &out, nil
	}
	buf := make([]byte, size-specialScripts)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out.ScriptPubKey = buf
	return &out, nil
}

// Serialized coin entry layout:
//   varint version
//   varint code: bit 0 coinbase, bit 1 output 0 unspent, bit 2
//     output 1 unspent, higher bits the non-zero mask byte count
//     (offset by one when bits 1-2 are both clear)
//   the spentness bitmask up to its last used byte
//   a compressed TxOut per unspent output, in order
//   varint height
func (c *Coins) BinWrite(w io.Writer) error {
	first, second := c.isAvail(0), c.isAvail(1)
	nMaskSize, nMaskCode := c.CalcMaskSize()
	if !first && !second && nMaskCode == 0 {
		return fmt.Errorf("cannot serialize pruned coins")
	}

	adj := 0
	if !first && !second {
		adj = 1
	}
	code := uint64(8 * (nMaskCode - adj))
	if c.CoinBase {
		code |= 1
	}
	if first {
		code |= 2
	}
	if second {
		code |= 4
	}

	if err := writeVarInt(uint64(uint32(c.Version)), w); err != nil {
		return err
	}
	if err := writeVarInt(code, w); err != nil {
		return err
	}
	for b := 0; b < nMaskSize; b++ {
		var chAvail byte
		for i := 0; i < 8 && 2+b*8+i < len(c.Outs); i++ {
			if c.isAvail(2 + b*8 + i) {
				chAvail |= 1 << i
			}
		}
		if _, err := w.Write([]byte{chAvail}); err != nil {
			return err
		}
	}
	for i := range c.Outs {
		if c.isAvail(i) {
			if err := writeCompressedTxOut(c.Outs[i], w); err != nil {
				return err
			}
		}
	}
	return writeVarInt(uint64(c.Height), w)
}

func (c *Coins) BinRead(r io.Reader) error {
	ver, err := readVarInt(r)
	if err != nil {
		return err
	}
	c.Version = int32(ver)

	code, err := readVarInt(r)
	if err != nil {
		return err
	}
	c.CoinBase = code&1 != 0
	avail := []bool{code&2 != 0, code&4 != 0}
	nMaskCode := code / 8
	if code&6 == 0 {
		nMaskCode++
	}
	for nMaskCode > 0 {
		var ch [1]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			return err
		}
		for p := 0; p < 8; p++ {
			avail = append(avail, ch[0]&(1<<p) != 0)
		}
		if ch[0] != 0 {
			nMaskCode--
		}
	}

	c.Outs = make([]*TxOut, len(avail))
	for i, a := range avail {
		if !a {
			continue
		}
		out, err := readCompressedTxOut(r)
		if err != nil {
			return err
		}
		c.Outs[i] = out
	}

	h, err := readVarInt(r)
	if err != nil {
		return err
	}
	c.Height = int64(h)
	c.Cleanup()
	return nil
}

// Undo record layout: varint height*2+coinbase (zero when the entry
// survived the spend), varint version when height is present, then
// the compressed output.
func (u *TxInUndo) BinWrite(w io.Writer) error {
	code := uint64(u.Height) * 2
	if u.CoinBase {
		code |= 1
	}
	if err := writeVarInt(code, w); err != nil {
		return err
	}
	if u.Height > 0 {
		if err := writeVarInt(uint64(uint32(u.Version)), w); err != nil {
			return err
		}
	}
	return writeCompressedTxOut(&u.TxOut, w)
}

func (u *TxInUndo) BinRead(r io.Reader) error {
	code, err := readVarInt(r)
	if err != nil {
		return err
	}
	u.Height = int64(code / 2)
	u.CoinBase = code&1 != 0
	if u.Height > 0 {
		ver, err := readVarInt(r)
		if err != nil {
			return err
		}
		u.Version = int32(ver)
	}
	out, err := readCompressedTxOut(r)
	if err != nil {
		return err
	}
	u.TxOut = *out
	return nil
}
