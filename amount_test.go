package skeincoin

import (
	"testing"
)

func Test_compressAmount(t *testing.T) {

	cases := []struct {
		amount, compressed uint64
	}{
		{0, 0},
		{1, 1},
		{9, 81},
		{10, 2},
		{100_000_000, 9},         // 1 coin
		{50 * 100_000_000, 0x32}, // 50 coins
		{123_456_789, 1_111_111_101},
	}

	for _, c := range cases {
		if got := CompressAmount(c.amount); got != c.compressed {
			t.Errorf("CompressAmount(%d) = %d, want %d", c.amount, got, c.compressed)
		}
	}

	// Round trip is exact for any value.
	amounts := []uint64{
		0, 1, 2, 9, 10, 11, 99, 100, 1000, 123_456_789,
		100_000_000, 50 * 100_000_000, 21 * 100_000_000,
		MaxMoney, MaxMoney - 1, 1<<53 - 1,
	}
	for _, a := range amounts {
		if got := DecompressAmount(CompressAmount(a)); got != a {
			t.Errorf("round trip of %d came back as %d", a, got)
		}
	}
}

func Test_decompressAmount_inverse(t *testing.T) {
	// Every compressed value decodes to something that compresses
	// back to it, i.e. the mapping is a bijection on its range.
	for x := uint64(0); x < 100_000; x++ {
		if got := CompressAmount(DecompressAmount(x)); got != x {
			t.Errorf("CompressAmount(DecompressAmount(%d)) = %d", x, got)
		}
	}
}
