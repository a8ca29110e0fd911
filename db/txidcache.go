package db

import (
	"sync"

	"github.com/sheepman0/skeincoin"
)

// An output can only be spent once. We increment a count for every
// output a transaction creates and decrement it at every check,
// purging the entry when the count reaches 0. The cache is of limited
// size and misses are unavoidable; a miss just means the database row
// keeps a null prevout_tx_id which can be reconciled with SQL later.

// Use only the first N bytes of the txid to save memory.
const hashPrefixSize = 10

type idOutCnt struct {
	id  int64
	cnt uint16
}

type txIdCache struct {
	mtx  sync.Mutex
	m    map[[hashPrefixSize]byte]*idOutCnt
	sz   int
	hits int
	miss int
	evic int
}

func newTxIdCache(sz int) *txIdCache {
	alloc := 1024 * 1024
	if sz < alloc {
		alloc = sz
	}
	return &txIdCache{
		m:  make(map[[hashPrefixSize]byte]*idOutCnt, alloc),
		sz: sz,
	}
}

func keyPrefix(hash skeincoin.Uint256) (key [hashPrefixSize]byte) {
	copy(key[:], hash[:hashPrefixSize])
	return key
}

func (c *txIdCache) add(hash skeincoin.Uint256, id int64, outCnt int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if len(c.m) >= c.sz {
		// evict an arbitrary entry, map iteration order serves as a
		// cheap approximation of random
		for k := range c.m {
			delete(c.m, k)
			c.evic++
			break
		}
	}
	c.m[keyPrefix(hash)] = &idOutCnt{id: id, cnt: uint16(outCnt)}
}

// check returns the cached id for hash, -1 on a miss. Every hit uses
// up one of the entry's output counts.
func (c *txIdCache) check(hash skeincoin.Uint256) int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	key := keyPrefix(hash)
	entry, ok := c.m[key]
	if !ok {
		c.miss++
		return -1
	}
	c.hits++
	entry.cnt--
	if entry.cnt == 0 {
		delete(c.m, key)
	}
	return entry.id
}
