package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/sheepman0/skeincoin"
)

type Config struct {
	ConnectString string
}

type Explorer struct {
	db *sqlx.DB
}

func NewExplorer(cfg Config) (*Explorer, error) {
	conn, err := sqlx.Connect("postgres", cfg.ConnectString)
	if err != nil {
		return nil, err
	}
	e := &Explorer{db: conn}
	if err := e.db.Ping(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Explorer) SelectMaxHeight() (int, error) {

	stmt := "SELECT MAX(height) AS height FROM blocks"

	var height int
	if err := e.db.Get(&height, stmt); err != nil {
		return 0, err
	}

	return height, nil
}

func (e *Explorer) SelectBlocksJson(height, limit int) ([]string, error) {
	stmt := "SELECT to_json(b.*) AS block " +
		"FROM (SELECT height, hash, version, prevhash, merkleroot, time, bits, nonce, orphan " +
		"FROM blocks " +
		"WHERE height <= $1 " +
		"ORDER BY height DESC LIMIT $2 ) b"

	var blocks []string
	if err := e.db.Select(&blocks, stmt, height, limit); err != nil {
		return nil, err
	}

	return blocks, nil
}

func (e *Explorer) SelectBlockByHashJson(hash skeincoin.Uint256) (*string, error) {
	stmt := "SELECT to_json(b.*) AS block FROM ( " +
		"SELECT height, hash, version, prevhash, merkleroot, time, bits, nonce, orphan " +
		"FROM blocks " +
		"WHERE hash = $1 " +
		") b"

	var block string
	if err := e.db.Get(&block, stmt, hash[:]); err != nil {
		return nil, err
	}

	return &block, nil
}

func (e *Explorer) SelectTxByHashJson(txid skeincoin.Uint256) (*string, error) {
	stmt := `SELECT to_json(t.*) AS tx
  FROM (
    SELECT t.n, t.txid, t.version, t.locktime, b.hash AS block_hash, b.height
      FROM txs t
      JOIN blocks b ON b.id = t.block_id
     WHERE t.txid = $1
  ) t`

	var tx string
	if err := e.db.Get(&tx, stmt, txid[:]); err != nil {
		return nil, err
	}

	return &tx, nil
}
