// Package coredb is the chainstate: the set of live coin entries,
// one record per transaction with unspent outputs, plus the per-block
// undo data needed to roll a connected block back.
package coredb

import (
	"bytes"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/sheepman0/skeincoin"
)

// Key prefixes. Coin entries are keyed by creating txid, undo data by
// block hash.
const (
	prefixCoins = 'c'
	prefixUndo  = 'u'
	keyBest     = 'B'
)

type CoinsDB struct {
	db *leveldb.DB
}

func Open(path string) (*CoinsDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &CoinsDB{db: db}, nil
}

func OpenReadOnly(path string) (*CoinsDB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &CoinsDB{db: db}, nil
}

func (c *CoinsDB) Close() error {
	return c.db.Close()
}

func coinsKey(txid skeincoin.Uint256) []byte {
	return append([]byte{prefixCoins}, txid[:]...)
}

func undoKey(hash skeincoin.Uint256) []byte {
	return append([]byte{prefixUndo}, hash[:]...)
}

// GetCoins returns the coin entry for txid, or nil if the
// transaction has no unspent outputs.
func (c *CoinsDB) GetCoins(txid skeincoin.Uint256) (*skeincoin.Coins, error) {
	val, err := c.db.Get(coinsKey(txid), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var coins skeincoin.Coins
	if err := skeincoin.BinRead(&coins, bytes.NewReader(val)); err != nil {
		return nil, err
	}
	return &coins, nil
}

// IsUTXO reports whether output n of transaction hash is unspent.
func (c *CoinsDB) IsUTXO(hash skeincoin.Uint256, n uint32) (bool, error) {
	coins, err := c.GetCoins(hash)
	if err != nil || coins == nil {
		return false, err
	}
	return int(n) < len(coins.Outs) && coins.Outs[n] != nil && !coins.Outs[n].IsNull(), nil
}

func (c *CoinsDB) BestBlock() (skeincoin.Uint256, error) {
	val, err := c.db.Get([]byte{keyBest}, nil)
	if err == leveldb.ErrNotFound {
		return skeincoin.Uint256{}, nil
	}
	if err != nil {
		return skeincoin.Uint256{}, err
	}
	return skeincoin.Uint256FromBytes(val), nil
}

func putCoins(batch *leveldb.Batch, txid skeincoin.Uint256, coins *skeincoin.Coins) error {
	if coins.IsPruned() {
		batch.Delete(coinsKey(txid))
		return nil
	}
	buf := new(bytes.Buffer)
	if err := skeincoin.BinWrite(coins, buf); err != nil {
		return err
	}
	batch.Put(coinsKey(txid), buf.Bytes())
	return nil
}

// ConnectBlock applies a block to the coin set: spends every input
// of every non-coinbase transaction, registers the outputs every
// transaction creates, and stores the undo records under the block
// hash so the block can be disconnected again. The whole block is
// written as one batch; on any error nothing is applied.
func (c *CoinsDB) ConnectBlock(b *skeincoin.Block, height int) error {
	batch := new(leveldb.Batch)
	blockHash := b.BlockHeader.Hash()

	// entries touched during this block, a tx can be spent from twice
	touched := make(map[skeincoin.Uint256]*skeincoin.Coins)
	fetch := func(txid skeincoin.Uint256) (*skeincoin.Coins, error) {
		if coins, ok := touched[txid]; ok {
			return coins, nil
		}
		coins, err := c.GetCoins(txid)
		if err != nil || coins == nil {
			return nil, err
		}
		touched[txid] = coins
		return coins, nil
	}

	var undos []skeincoin.TxInUndo
	for _, tx := range b.Txs {
		if !tx.IsCoinBase() {
			for _, tin := range tx.TxIns {
				coins, err := fetch(tin.PrevOut.Hash)
				if err != nil {
					return err
				}
				if coins == nil {
					return fmt.Errorf("ConnectBlock() : missing coins for %v", tin.PrevOut.Hash)
				}
				undo, err := coins.Spend(tin.PrevOut)
				if err != nil {
					return fmt.Errorf("ConnectBlock() : %v:%d: %v", tin.PrevOut.Hash, tin.PrevOut.N, err)
				}
				undos = append(undos, undo)
			}
		}
		// outputs created here are spendable later in this same block
		touched[tx.Hash()] = skeincoin.NewCoins(tx, int64(height))
	}
	for txid, coins := range touched {
		if err := putCoins(batch, txid, coins); err != nil {
			return err
		}
	}

	undoBuf := new(bytes.Buffer)
	if err := writeUndoList(undos, undoBuf); err != nil {
		return err
	}
	batch.Put(undoKey(blockHash), undoBuf.Bytes())
	batch.Put([]byte{keyBest}, blockHash[:])

	return c.db.Write(batch, nil)
}

// DisconnectBlock is the inverse of ConnectBlock: created entries are
// dropped and every spent output is restored from the undo records,
// including entries that had been pruned entirely.
func (c *CoinsDB) DisconnectBlock(b *skeincoin.Block) error {
	blockHash := b.BlockHeader.Hash()
	val, err := c.db.Get(undoKey(blockHash), nil)
	if err != nil {
		return fmt.Errorf("DisconnectBlock() : no undo data for %v: %v", blockHash, err)
	}
	undos, err := readUndoList(bytes.NewReader(val))
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	created := make(map[skeincoin.Uint256]bool, len(b.Txs))
	for _, tx := range b.Txs {
		created[tx.Hash()] = true
		batch.Delete(coinsKey(tx.Hash()))
	}

	touched := make(map[skeincoin.Uint256]*skeincoin.Coins)
	u := len(undos)
	for t := len(b.Txs) - 1; t >= 0; t-- {
		tx := b.Txs[t]
		if tx.IsCoinBase() {
			continue
		}
		for i := len(tx.TxIns) - 1; i >= 0; i-- {
			u--
			if u < 0 {
				return fmt.Errorf("DisconnectBlock() : too few undo records for %v", blockHash)
			}
			undo := undos[u]
			prevout := tx.TxIns[i].PrevOut
			if created[prevout.Hash] {
				// an output of this very block, the entry is gone
				// with the block
				continue
			}

			coins := touched[prevout.Hash]
			if coins == nil {
				if coins, err = c.GetCoins(prevout.Hash); err != nil {
					return err
				}
			}
			if coins == nil {
				// the spend pruned the entry, metadata comes from undo
				coins = &skeincoin.Coins{
					Version:  undo.Version,
					CoinBase: undo.CoinBase,
					Height:   undo.Height,
				}
			}
			for len(coins.Outs) <= int(prevout.N) {
				coins.Outs = append(coins.Outs, nil)
			}
			restored := undo.TxOut
			coins.Outs[prevout.N] = &restored
			touched[prevout.Hash] = coins
		}
	}
	if u != 0 {
		return fmt.Errorf("DisconnectBlock() : %d undo records left over for %v", u, blockHash)
	}

	for txid, coins := range touched {
		if err := putCoins(batch, txid, coins); err != nil {
			return err
		}
	}
	batch.Delete(undoKey(blockHash))
	batch.Put([]byte{keyBest}, b.BlockHeader.PrevHash[:])

	return c.db.Write(batch, nil)
}

// CoinsCount walks the store and returns the number of live entries.
func (c *CoinsDB) CoinsCount() (int, error) {
	iter := c.db.NewIterator(util.BytesPrefix([]byte{prefixCoins}), nil)
	defer iter.Release()
	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}
