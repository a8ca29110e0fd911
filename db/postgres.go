// Package db archives the chain into Postgres for exploration. This
// is a write-mostly schema: blocks, transactions and their ins/outs,
// bulk-loaded with COPY.
package db

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/sheepman0/skeincoin"
)

// In these structures most integers are uint32. Postgres does not
// have unsigned int types, so everything is stored as the signed type
// of the same width, 0xFFFFFFFF becomes -1 and so on. The bits are
// all there, which is what matters.

type PGWriter struct {
	db      *sql.DB
	cache   *txIdCache
	pending []*skeincoin.BlockRec

	blockId int64
	txId    int64

	// Blocks per COPY batch.
	FlushEvery int
}

func NewPGWriter(connstr string, cacheSize int) (*PGWriter, error) {
	db, err := sql.Open("postgres", connstr)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}

	w := &PGWriter{
		db:         db,
		cache:      newTxIdCache(cacheSize),
		FlushEvery: 100,
	}
	if err := w.db.QueryRow(
		"SELECT COALESCE(MAX(id), 0), (SELECT COALESCE(MAX(id), 0) FROM txs) FROM blocks").
		Scan(&w.blockId, &w.txId); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *PGWriter) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	return w.db.Close()
}

// WriteBlock queues a resolved block for the next COPY batch.
func (w *PGWriter) WriteBlock(br *skeincoin.BlockRec) error {
	w.pending = append(w.pending, br)
	if len(w.pending) >= w.FlushEvery {
		return w.flush()
	}
	return nil
}

// LastHeight is the tip of what has been archived so far, -1 for an
// empty database.
func (w *PGWriter) LastHeight() (int, error) {
	var height int
	err := w.db.QueryRow("SELECT COALESCE(MAX(height), -1) FROM blocks WHERE NOT orphan").Scan(&height)
	return height, err
}

func (w *PGWriter) flush() error {
	if len(w.pending) == 0 {
		return nil
	}

	dbtx, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer dbtx.Rollback()

	if err := w.copyBlocks(dbtx); err != nil {
		return err
	}
	if err := w.copyTxs(dbtx); err != nil {
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return err
	}

	w.pending = w.pending[:0]
	return nil
}

func (w *PGWriter) copyBlocks(dbtx *sql.Tx) error {
	stmt, err := dbtx.Prepare(pq.CopyIn("blocks",
		"id", "height", "hash", "version", "prevhash", "merkleroot",
		"time", "bits", "nonce", "orphan"))
	if err != nil {
		return err
	}
	for _, br := range w.pending {
		w.blockId++
		bh := br.Block.BlockHeader
		if _, err := stmt.Exec(w.blockId, br.Height, br.Hash[:],
			int32(bh.Version), bh.PrevHash[:], bh.MerkleRoot[:],
			int32(bh.Time), int32(bh.Bits), int32(bh.Nonce), br.Orphan); err != nil {
			return err
		}
	}
	if _, err := stmt.Exec(); err != nil {
		return err
	}
	return stmt.Close()
}

func (w *PGWriter) copyTxs(dbtx *sql.Tx) error {
	txStmt, err := dbtx.Prepare(pq.CopyIn("txs", "id", "block_id", "n", "txid", "version", "locktime"))
	if err != nil {
		return err
	}

	type flatTx struct {
		id int64
		tx *skeincoin.Tx
	}
	var flat []flatTx

	blockId := w.blockId - int64(len(w.pending))
	for _, br := range w.pending {
		blockId++
		for n, tx := range br.Block.Txs {
			w.txId++
			hash := tx.Hash()
			w.cache.add(hash, w.txId, len(tx.TxOuts))
			if _, err := txStmt.Exec(w.txId, blockId, n, hash[:],
				tx.Version, int32(tx.LockTime)); err != nil {
				return err
			}
			flat = append(flat, flatTx{w.txId, tx})
		}
	}
	if _, err := txStmt.Exec(); err != nil {
		return err
	}
	if err := txStmt.Close(); err != nil {
		return err
	}

	inStmt, err := dbtx.Prepare(pq.CopyIn("txins",
		"tx_id", "n", "prevout_hash", "prevout_n", "prevout_tx_id", "scriptsig", "sequence"))
	if err != nil {
		return err
	}
	for _, ft := range flat {
		for n, tin := range ft.tx.TxIns {
			var prevoutTxId interface{} // null on a cache miss or coinbase
			if !tin.PrevOut.IsNull() {
				if id := w.cache.check(tin.PrevOut.Hash); id != -1 {
					prevoutTxId = id
				}
			}
			if _, err := inStmt.Exec(ft.id, n, tin.PrevOut.Hash[:],
				int32(tin.PrevOut.N), prevoutTxId, tin.ScriptSig,
				int32(tin.Sequence)); err != nil {
				return err
			}
		}
	}
	if _, err := inStmt.Exec(); err != nil {
		return err
	}
	if err := inStmt.Close(); err != nil {
		return err
	}

	outStmt, err := dbtx.Prepare(pq.CopyIn("txouts", "tx_id", "n", "value", "scriptpubkey"))
	if err != nil {
		return err
	}
	for _, ft := range flat {
		for n, tout := range ft.tx.TxOuts {
			if _, err := outStmt.Exec(ft.id, n, tout.Value, tout.ScriptPubKey); err != nil {
				return err
			}
		}
	}
	if _, err := outStmt.Exec(); err != nil {
		return err
	}
	return outStmt.Close()
}

func createTables(db *sql.DB) error {
	sqls := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
		   id           BIGINT NOT NULL PRIMARY KEY,
		   height       INT NOT NULL,
		   hash         BYTEA NOT NULL,
		   version      INT NOT NULL,
		   prevhash     BYTEA NOT NULL,
		   merkleroot   BYTEA NOT NULL,
		   time         INT NOT NULL,
		   bits         INT NOT NULL,
		   nonce        INT NOT NULL,
		   orphan       BOOLEAN NOT NULL DEFAULT false)`,
		`CREATE TABLE IF NOT EXISTS txs (
		   id           BIGINT NOT NULL PRIMARY KEY,
		   block_id     BIGINT NOT NULL,
		   n            INT NOT NULL,
		   txid         BYTEA NOT NULL,
		   version      INT NOT NULL,
		   locktime     INT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS txins (
		   tx_id        BIGINT NOT NULL,
		   n            INT NOT NULL,
		   prevout_hash BYTEA NOT NULL,
		   prevout_n    INT NOT NULL,
		   prevout_tx_id BIGINT,
		   scriptsig    BYTEA NOT NULL,
		   sequence     INT NOT NULL,
		   PRIMARY KEY (tx_id, n))`,
		`CREATE TABLE IF NOT EXISTS txouts (
		   tx_id        BIGINT NOT NULL,
		   n            INT NOT NULL,
		   value        BIGINT NOT NULL,
		   scriptpubkey BYTEA NOT NULL,
		   PRIMARY KEY (tx_id, n))`,
		`CREATE INDEX IF NOT EXISTS blocks_height_idx ON blocks(height)`,
		`CREATE INDEX IF NOT EXISTS blocks_hash_idx ON blocks(hash)`,
		`CREATE INDEX IF NOT EXISTS txs_txid_idx ON txs(txid)`,
	}
	for _, s := range sqls {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("createTables: %v", err)
		}
	}
	return nil
}
