package coredb

import (
	"testing"

	"github.com/sheepman0/skeincoin"
)

func p2pkhScript(fill byte) []byte {
	script := make([]byte, 25)
	script[0] = 0x76 // OP_DUP
	script[1] = 0xa9 // OP_HASH160
	script[2] = 20
	for i := 3; i < 23; i++ {
		script[i] = fill
	}
	script[23] = 0x88 // OP_EQUALVERIFY
	script[24] = 0xac // OP_CHECKSIG
	return script
}

func coinbaseTx(tag byte) *skeincoin.Tx {
	return &skeincoin.Tx{
		Version: 1,
		TxIns: skeincoin.TxInList{{
			PrevOut:   skeincoin.OutPoint{N: skeincoin.NullOutN},
			ScriptSig: []byte{tag, 0x01},
			Sequence:  0xffffffff,
		}},
		TxOuts: skeincoin.TxOutList{{
			Value:        50 * 100_000_000,
			ScriptPubKey: p2pkhScript(tag),
		}},
	}
}

func spendTx(prev skeincoin.Uint256, n uint32, value int64, tag byte) *skeincoin.Tx {
	return &skeincoin.Tx{
		Version: 1,
		TxIns: skeincoin.TxInList{{
			PrevOut:  skeincoin.OutPoint{Hash: prev, N: n},
			Sequence: 0xffffffff,
		}},
		TxOuts: skeincoin.TxOutList{{
			Value:        value,
			ScriptPubKey: p2pkhScript(tag),
		}},
	}
}

func testBlock(prev skeincoin.Uint256, txs ...*skeincoin.Tx) *skeincoin.Block {
	b := &skeincoin.Block{
		BlockHeader: &skeincoin.BlockHeader{
			Version:  2,
			PrevHash: prev,
			Time:     1_400_000_000,
			Bits:     0x1e0fffff,
		},
		Txs: txs,
	}
	b.MerkleRoot = b.BuildMerkleTree()
	return b
}

func Test_connectDisconnect(t *testing.T) {

	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	// Block 1 creates a coinbase output.
	b1 := testBlock(skeincoin.Uint256{}, coinbaseTx(1))
	cb1 := b1.Txs[0].Hash()
	if err := db.ConnectBlock(b1, 1); err != nil {
		t.Fatalf("ConnectBlock(b1): %v", err)
	}

	if utxo, _ := db.IsUTXO(cb1, 0); !utxo {
		t.Error("coinbase output of b1 not a UTXO")
	}
	if best, _ := db.BestBlock(); best != b1.BlockHeader.Hash() {
		t.Error("best block != b1")
	}

	// Block 2 spends it, and the change gets spent again within the
	// same block.
	spend := spendTx(cb1, 0, 49*100_000_000, 2)
	respend := spendTx(spend.Hash(), 0, 48*100_000_000, 3)
	b2 := testBlock(b1.BlockHeader.Hash(), coinbaseTx(2), spend, respend)
	if err := db.ConnectBlock(b2, 2); err != nil {
		t.Fatalf("ConnectBlock(b2): %v", err)
	}

	if utxo, _ := db.IsUTXO(cb1, 0); utxo {
		t.Error("spent coinbase of b1 still a UTXO")
	}
	if coins, _ := db.GetCoins(cb1); coins != nil {
		t.Error("fully spent entry not pruned")
	}
	if utxo, _ := db.IsUTXO(spend.Hash(), 0); utxo {
		t.Error("same-block spent output still a UTXO")
	}
	if utxo, _ := db.IsUTXO(respend.Hash(), 0); !utxo {
		t.Error("output of the respend not a UTXO")
	}

	// A block spending a missing output does not connect, and
	// changes nothing.
	missing := testBlock(b2.BlockHeader.Hash(), coinbaseTx(9),
		spendTx(skeincoin.Uint256{0xee}, 0, 1, 9))
	if err := db.ConnectBlock(missing, 3); err == nil {
		t.Error("block spending a missing output connected")
	}
	if best, _ := db.BestBlock(); best != b2.BlockHeader.Hash() {
		t.Error("failed connect moved the best block")
	}

	// Disconnecting b2 restores the coinbase of b1 with its metadata
	// and drops everything b2 created.
	if err := db.DisconnectBlock(b2); err != nil {
		t.Fatalf("DisconnectBlock(b2): %v", err)
	}
	coins, err := db.GetCoins(cb1)
	if err != nil || coins == nil {
		t.Fatalf("coinbase of b1 not restored: %v", err)
	}
	if !coins.CoinBase || coins.Height != 1 {
		t.Errorf("restored metadata: coinbase=%v height=%d", coins.CoinBase, coins.Height)
	}
	if coins.Outs[0].Value != 50*100_000_000 {
		t.Errorf("restored value = %d", coins.Outs[0].Value)
	}
	for _, tx := range b2.Txs {
		if c, _ := db.GetCoins(tx.Hash()); c != nil {
			t.Errorf("entry for %v survived the disconnect", tx.Hash())
		}
	}
	if best, _ := db.BestBlock(); best != b1.BlockHeader.Hash() {
		t.Error("best block != b1 after disconnect")
	}

	if count, _ := db.CoinsCount(); count != 1 {
		t.Errorf("CoinsCount = %d, want 1", count)
	}
}
