package coredb

import (
	"encoding/binary"
	"io"

	"github.com/sheepman0/skeincoin"
)

// Undo records for a block are stored as a plain counted list, in
// block order (the disconnect path walks them backwards).

func writeUndoList(undos []skeincoin.TxInUndo, w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(undos))); err != nil {
		return err
	}
	for i := range undos {
		if err := skeincoin.BinWrite(&undos[i], w); err != nil {
			return err
		}
	}
	return nil
}

func readUndoList(r io.Reader) ([]skeincoin.TxInUndo, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	undos := make([]skeincoin.TxInUndo, count)
	for i := range undos {
		if err := skeincoin.BinRead(&undos[i], r); err != nil {
			return nil, err
		}
	}
	return undos, nil
}
