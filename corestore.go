package skeincoin

import (
	"bufio"
	"io"
)

// NewBlockStore returns a reader over the concatenated blkNNNNN.dat
// files in dir, starting at the given file index. Blocks come out in
// file order, which is arrival order, not chain order - see the block
// stream for how that is resolved.
func NewBlockStore(dir string, start int) (io.Reader, error) {
	fb, err := newFileBundle(dir, start)
	if err != nil {
		return nil, err
	}

	return bufio.NewReaderSize(fb, 64*1024), nil
}
