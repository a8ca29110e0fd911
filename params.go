package skeincoin

import "math/big"

// Network magics, first bytes of every block in a blk file bundle.
const (
	MainNetMagic = 0xbfa126f7
	TestNetMagic = 0xbfa165f0
)

// MaxMoney is the total number of base units that can ever exist.
const MaxMoney = 42_000_000 * 100_000_000

// Params bundles the per-network consensus constants. A Params value
// is immutable and passed explicitly into every check that needs it,
// which keeps main and test networks testable side by side.
type Params struct {
	Name    string
	Magic   uint32
	TestNet bool

	// Highest permitted proof-of-work target, i.e. the difficulty
	// floor, in both forms.
	PowLimit     *big.Int
	PowLimitBits uint32

	MaxBlockSize   int
	MaxBlockSigOps int

	// Merged mining is accepted at this height and above. The chain
	// ID is carried in the upper bits of the block version and must
	// match ours, so work done for another merged chain cannot be
	// replayed here.
	AuxPowStartHeight int
	ChainID           int32
}

var MainNetParams = Params{
	Name:              "mainnet",
	Magic:             MainNetMagic,
	PowLimit:          new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 236), big.NewInt(1)),
	PowLimitBits:      0x1e0fffff,
	MaxBlockSize:      1_000_000,
	MaxBlockSigOps:    1_000_000 / 50,
	AuxPowStartHeight: 1_000_000,
	ChainID:           0x53,
}

var TestNetParams = Params{
	Name:              "testnet",
	Magic:             TestNetMagic,
	TestNet:           true,
	PowLimit:          new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 236), big.NewInt(1)),
	PowLimitBits:      0x1e0fffff,
	MaxBlockSize:      1_000_000,
	MaxBlockSigOps:    1_000_000 / 50,
	AuxPowStartHeight: 0, // always allowed on testnet
	ChainID:           0x53,
}
