package skeincoin

import (
	"bytes"
	"io"
	"testing"
)

func Test_varInt(t *testing.T) {

	values := []uint64{
		0, 1, 0xfc, 0xfd, 0xfe, 0xff, 0x1234, 0xfffe,
		0x10000, 0x12345678, 0xfffffffe,
		0x100000000, 0x1234567890abcdef, 0xffffffffffffffff,
	}

	for _, v := range values {
		buf := new(bytes.Buffer)
		if err := writeVarInt(v, buf); err != nil {
			t.Fatalf("writeVarInt(%d): %v", v, err)
		}
		if buf.Len() != varIntSize(v) {
			t.Errorf("varIntSize(%d) = %d, wrote %d", v, varIntSize(v), buf.Len())
		}
		got, err := readVarInt(buf)
		if err != nil {
			t.Fatalf("readVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("varint round trip of %d came back as %d", v, got)
		}
	}

	// Single byte values stay single bytes.
	buf := new(bytes.Buffer)
	writeVarInt(0x42, buf)
	if !bytes.Equal(buf.Bytes(), []byte{0x42}) {
		t.Errorf("writeVarInt(0x42) = %x", buf.Bytes())
	}

	// Truncated input is an error, not a zero.
	if _, err := readVarInt(bytes.NewReader([]byte{0xfd, 0x01})); err == nil {
		t.Error("truncated varint read successfully")
	}
}

func Test_readString(t *testing.T) {

	buf := new(bytes.Buffer)
	if err := writeString([]byte("skein"), buf); err != nil {
		t.Fatalf("writeString: %v", err)
	}
	s, err := readString(buf)
	if err != nil {
		t.Fatalf("readString: %v", err)
	}
	if string(s) != "skein" {
		t.Errorf("round trip came back as %q", s)
	}

	// A length prefix pointing past the data is an error.
	if _, err := readString(bytes.NewReader([]byte{0x10, 'x'})); err != io.ErrUnexpectedEOF {
		t.Errorf("truncated string error = %v", err)
	}
}

func Test_tx_serialization(t *testing.T) {

	tx := &Tx{
		Version: 1,
		TxIns: TxInList{
			{PrevOut: OutPoint{Hash: Uint256{1}, N: 3}, ScriptSig: []byte{1, 2, 3}, Sequence: 0xffffffff},
			{PrevOut: OutPoint{Hash: Uint256{2}, N: 0}, ScriptSig: nil, Sequence: 0},
		},
		TxOuts: TxOutList{
			{Value: 5_000_000_000, ScriptPubKey: p2pkhScript(7)},
			{Value: 0, ScriptPubKey: []byte{0x6a}},
		},
		LockTime: 500_000,
	}

	buf := new(bytes.Buffer)
	if err := BinWrite(tx, buf); err != nil {
		t.Fatalf("BinWrite: %v", err)
	}
	if buf.Len() != tx.Size() {
		t.Errorf("Size() = %d, wrote %d", tx.Size(), buf.Len())
	}

	var back Tx
	if err := BinRead(&back, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("BinRead: %v", err)
	}
	if back.Hash() != tx.Hash() {
		t.Error("hash changed across serialization")
	}
	if back.LockTime != tx.LockTime || len(back.TxIns) != 2 || len(back.TxOuts) != 2 {
		t.Error("fields changed across serialization")
	}
}
