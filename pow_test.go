package skeincoin

import (
	"math/big"
	"testing"
)

func Test_compactToBig(t *testing.T) {

	cases := []struct {
		compact uint32
		want    int64
	}{
		{0, 0},
		{0x01003456, 0},
		{0x01123456, 0x12},
		{0x02008000, 0x80},
		{0x03123456, 0x123456},
		{0x04123456, 0x12345600},
		{0x04923456, -0x12345600},
		{0x05009234, 0x92340000},
	}

	for _, c := range cases {
		if got := CompactToBig(c.compact); got.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("CompactToBig(%08x) = %v, want %d", c.compact, got, c.want)
		}
	}
}

func Test_bigToCompact_roundTrip(t *testing.T) {

	// Normalized compacts survive the round trip.
	for _, compact := range []uint32{0x1d00ffff, 0x1e0fffff, 0x1b0404cb, 0x03123456} {
		n := CompactToBig(compact)
		if got := BigToCompact(n); got != compact {
			t.Errorf("BigToCompact(CompactToBig(%08x)) = %08x", compact, got)
		}
	}

	if got := BigToCompact(big.NewInt(0)); got != 0 {
		t.Errorf("BigToCompact(0) = %08x", got)
	}

	// A mantissa with the top bit set moves into a higher exponent.
	n := big.NewInt(0x00800000)
	if got := BigToCompact(n); got != 0x04008000 {
		t.Errorf("BigToCompact(0x800000) = %08x, want 04008000", got)
	}
}

func Test_checkProofOfWork(t *testing.T) {

	params := &MainNetParams

	var zero Uint256 // the easiest hash there is

	// Difficulty floor itself accepts a zero hash.
	if err := CheckProofOfWork(zero, params.PowLimitBits, params); err != nil {
		t.Errorf("zero hash rejected at the difficulty floor: %v", err)
	}

	// A hash of all ones fails any sane target.
	var ones Uint256
	for i := range ones {
		ones[i] = 0xff
	}
	if err := CheckProofOfWork(ones, params.PowLimitBits, params); err == nil {
		t.Error("max hash accepted at the difficulty floor")
	}

	// Zero and negative targets fail regardless of hash.
	if err := CheckProofOfWork(zero, 0, params); err == nil {
		t.Error("zero target accepted")
	}
	if err := CheckProofOfWork(zero, 0x04923456, params); err == nil {
		t.Error("negative target accepted")
	}

	// Targets above the limit are below minimum work.
	easier := BigToCompact(new(big.Int).Lsh(params.PowLimit, 8))
	if err := CheckProofOfWork(zero, easier, params); err == nil {
		t.Error("target above the limit accepted")
	}

	// Borderline: hash exactly equal to the target passes.
	target := CompactToBig(params.PowLimitBits)
	var at Uint256
	for i, b := range target.FillBytes(make([]byte, 32)) {
		at[31-i] = b // internal order is reversed
	}
	if err := CheckProofOfWork(at, params.PowLimitBits, params); err != nil {
		t.Errorf("hash equal to target rejected: %v", err)
	}
}
