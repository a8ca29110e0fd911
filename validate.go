package skeincoin

import (
	"time"
)

// ValidationState collects the outcome of a check: the first reject
// reason and the misbehavior penalty a caller may want to apply to
// whoever relayed the offending data. It is an output channel only.
type ValidationState struct {
	RejectReason string
	DoSScore     int
}

// DoS records err as the reject reason with the given penalty and
// passes err through, so checks read as
// "return state.DoS(100, logError(...))".
func (s *ValidationState) DoS(score int, err error) error {
	if err != nil && s.RejectReason == "" {
		s.RejectReason = err.Error()
	}
	s.DoSScore += score
	return err
}

// Invalid records a rejection that carries no penalty.
func (s *ValidationState) Invalid(err error) error {
	return s.DoS(0, err)
}

// GetLegacySigOpCount counts signature operations in all of a
// transaction's scripts, without evaluating any of them.
func GetLegacySigOpCount(tx *Tx) int {
	count := 0
	for _, tin := range tx.TxIns {
		count += scriptSigOpCount(tin.ScriptSig)
	}
	for _, tout := range tx.TxOuts {
		count += scriptSigOpCount(tout.ScriptPubKey)
	}
	return count
}

// CheckTransaction is the context-free structural check of a single
// transaction. It needs no chain state and runs identically on every
// node.
func CheckTransaction(tx *Tx, params *Params, state *ValidationState) error {
	if len(tx.TxIns) == 0 {
		return state.DoS(10, logError("CheckTransaction() : vin empty"))
	}
	if len(tx.TxOuts) == 0 {
		return state.DoS(10, logError("CheckTransaction() : vout empty"))
	}
	if tx.Size() > params.MaxBlockSize {
		return state.DoS(100, logError("CheckTransaction() : size limits failed"))
	}

	valueOut := int64(0)
	for _, tout := range tx.TxOuts {
		if tout.Value < 0 {
			return state.DoS(100, logError("CheckTransaction() : txout.nValue negative"))
		}
		if tout.Value > MaxMoney {
			return state.DoS(100, logError("CheckTransaction() : txout.nValue too high"))
		}
		valueOut += tout.Value
		if valueOut < 0 || valueOut > MaxMoney {
			return state.DoS(100, logError("CheckTransaction() : txout total out of range"))
		}
	}

	seen := make(map[OutPoint]bool, len(tx.TxIns))
	for _, tin := range tx.TxIns {
		if seen[tin.PrevOut] {
			return state.DoS(100, logError("CheckTransaction() : duplicate inputs"))
		}
		seen[tin.PrevOut] = true
	}

	if tx.IsCoinBase() {
		if len(tx.TxIns[0].ScriptSig) < 2 || len(tx.TxIns[0].ScriptSig) > 100 {
			return state.DoS(100, logError("CheckTransaction() : coinbase script size"))
		}
	} else {
		for _, tin := range tx.TxIns {
			if tin.PrevOut.IsNull() {
				return state.DoS(10, logError("CheckTransaction() : prevout is null"))
			}
		}
	}

	return nil
}

// CheckBlock runs the context-free acceptance rules for a candidate
// block: everything that can be verified from the block alone plus
// the claimed height, before any chain state is consulted. Checks
// short-circuit in order, so the recorded reject reason is always the
// first rule violated.
func (b *Block) CheckBlock(height int, params *Params, adjTime time.Time, state *ValidationState) error {
	// Size limits
	if len(b.Txs) == 0 || len(b.Txs) > params.MaxBlockSize || b.Size() > params.MaxBlockSize {
		return state.DoS(100, logError("CheckBlock() : size limits failed"))
	}

	// Proof of work, including the merged mining gate
	if err := b.BlockHeader.CheckProofOfWork(height, params); err != nil {
		return state.DoS(50, err)
	}

	// Timestamp no more than 2 hours past our adjusted clock
	if int64(b.Time) > adjTime.Unix()+2*60*60 {
		return state.Invalid(logError("CheckBlock() : block timestamp too far in the future"))
	}

	// First transaction must be coinbase, the rest must not be
	if !b.Txs[0].IsCoinBase() {
		return state.DoS(100, logError("CheckBlock() : first tx is not coinbase"))
	}
	for i := 1; i < len(b.Txs); i++ {
		if b.Txs[i].IsCoinBase() {
			return state.DoS(100, logError("CheckBlock() : more than one coinbase"))
		}
	}

	for _, tx := range b.Txs {
		if err := CheckTransaction(tx, params, state); err != nil {
			return logError("CheckBlock() : CheckTransaction failed")
		}
	}

	// Build the merkle tree now, we need it below anyway and it
	// caches the transaction hashes for the rest of validation.
	b.BuildMerkleTree()

	// Duplicate txids would let two different transaction lists
	// produce the same merkle root via the odd-count duplication
	// rule, so they are rejected outright.
	uniqueTx := make(map[Uint256]bool, len(b.Txs))
	for _, tx := range b.Txs {
		uniqueTx[tx.Hash()] = true
	}
	if len(uniqueTx) != len(b.Txs) {
		return state.DoS(100, logError("CheckBlock() : duplicate transaction"))
	}

	sigOps := 0
	for _, tx := range b.Txs {
		sigOps += GetLegacySigOpCount(tx)
	}
	if sigOps > params.MaxBlockSigOps {
		return state.DoS(100, logError("CheckBlock() : out-of-bounds SigOpCount"))
	}

	// Check merkle root
	if b.MerkleRoot != b.BuildMerkleTree() {
		return state.DoS(100, logError("CheckBlock() : hashMerkleRoot mismatch"))
	}

	return nil
}
