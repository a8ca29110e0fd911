package skeincoin

import (
	"math/big"
)

// CompactToBig converts the compact "bits" representation of a target
// to a big.Int. The representation packs an unsigned base 256
// exponent in the top 8 bits, a sign bit at bit 23, and a 23-bit
// mantissa, so N = (-1^sign) * mantissa * 256^(exponent-3). Targets
// are never negative, the sign bit exists for legacy compatibility.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}

	return bn
}

// BigToCompact is the inverse of CompactToBig, rounding down to the
// 23 bits of mantissa precision the compact form can carry.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		// Use a copy to avoid modifying the caller's original number.
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	// A mantissa with the sign bit set has to be pushed into a higher
	// exponent.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// CheckProofOfWork checks hash against the claimed compact target:
// the decoded target must be positive, at or below the network
// difficulty floor, and the hash must not exceed it.
func CheckProofOfWork(hash Uint256, bits uint32, params *Params) error {
	target := CompactToBig(bits)

	if target.Sign() <= 0 || target.Cmp(params.PowLimit) > 0 {
		return logError("CheckProofOfWork() : nBits below minimum work")
	}

	if HashToBig(hash).Cmp(target) > 0 {
		return logError("CheckProofOfWork() : hash doesn't match nBits")
	}

	return nil
}
