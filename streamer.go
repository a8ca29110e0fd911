package skeincoin

// A block file bundle is not guaranteed to contain blocks in chain
// order, and it may contain orphans: nodes store whatever they were
// relayed, and a block's orphan status is only knowable from its
// descendants. The stream therefore holds blocks in a fixed-size
// trailing buffer while the graph assigns heights and flips orphan
// flags; by the time a block leaves the buffer its height and orphan
// status are settled. Blocks whose parent has not appeared yet are
// set aside and retried on every subsequent arrival.

// NewBlockStream returns a channel to feed BlockRecs into; resolved
// records come out of out, which is closed when the input closes.
func NewBlockStream(out chan<- *BlockRec, size int) chan<- *BlockRec {
	in := make(chan *BlockRec)
	go blockStreamWorker(in, out, size)
	return in
}

func blockStreamWorker(in <-chan *BlockRec, out chan<- *BlockRec, size int) {

	trail := blockRecQueue{}
	graph := newBlkGraph(size)
	retry := make(map[Uint256]*BlockRec)

	for br := range in {
		if err := graph.add(br); err != nil { // add sets height and orphan
			// out of order block, retried below until its parent shows
			retry[br.Hash] = br
			log.Debugf("Setting aside out-of-order block (pending: %d) %v", len(retry), br.Hash)
			continue
		}
		trail.push(br)

		// every new connection may unblock pending blocks
		progress := true
		for progress {
			progress = false
			for hash, r := range retry {
				if err := graph.add(r); err == nil {
					delete(retry, hash)
					trail.push(r)
					progress = true
				}
			}
		}

		for trail.size() >= size {
			out <- trail.pop()
		}
	}

	if len(retry) > 0 {
		log.Warnf("%d blocks never connected to the chain, dropped.", len(retry))
	}

	for trail.size() > 0 {
		out <- trail.pop()
	}

	close(out)
}

type blockRecQueue []*BlockRec

// fifo push (yes, these must be pointer methods)
func (q *blockRecQueue) push(n *BlockRec) {
	*q = append(*q, n)
}

func (q *blockRecQueue) pop() (n *BlockRec) {
	if len(*q) == 0 {
		return nil
	}
	n, *q = (*q)[0], (*q)[1:]
	return n
}

func (q *blockRecQueue) size() int {
	return len(*q)
}
