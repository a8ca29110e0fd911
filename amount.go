package skeincoin

// Amount compression, as used in the chainstate coin records. The
// scheme favors round, decimal-denominated values:
// * 0 compresses to 0
// * otherwise divide by the largest possible power of 10, the
//   exponent e is at most 9
// * if e < 9, the last digit d of what remains cannot be 0; drop it
//   (divide by 10) leaving n, and store 1 + 10*(9*n + d - 1) + e
// * if e == 9, store 1 + 10*(n - 1) + 9
// This is decodable because d is in [1-9] and e is in [0-9]. It is a
// storage density trick only, the round trip is exact for any amount.

func CompressAmount(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	e := uint64(0)
	for n%10 == 0 && e < 9 {
		n /= 10
		e++
	}
	if e < 9 {
		d := n % 10 // 1..9, the loop above stops on non-zero
		n /= 10
		return 1 + (n*9+d-1)*10 + e
	}
	return 1 + (n-1)*10 + 9
}

func DecompressAmount(x uint64) uint64 {
	// x = 0  OR  x = 1+10*(9*n + d - 1) + e  OR  x = 1+10*(n - 1) + 9
	if x == 0 {
		return 0
	}
	x--
	e := x % 10
	x /= 10
	var n uint64
	if e < 9 {
		d := (x % 9) + 1
		x /= 9
		n = x*10 + d
	} else {
		n = x + 1
	}
	for e != 0 {
		n *= 10
		e--
	}
	return n
}
