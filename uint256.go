package skeincoin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/aead/skein"
)

// We're sticking with value rather than pointer for now, we think it's
// faster and safer.
type Uint256 [32]byte

func (u Uint256) String() string {
	for i := 0; i < 16; i++ {
		u[i], u[31-i] = u[31-i], u[i]
	}
	return hex.EncodeToString(u[:])
}

func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// sql.Scanner so that pq can scan these values from postgres
func (u *Uint256) Scan(value interface{}) error {
	if b, ok := value.([]byte); !ok {
		return fmt.Errorf("Unexpected type: %T", value)
	} else {
		copy(u[:], b)
	}
	return nil
}

// NB: we interpret this as little-endian. Traditionally transaction
// ids are printed in big-endian, i.e. reverse of this.
func ShaSha256(b []byte) Uint256 {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// SkeinSha256 is the header proof-of-work hash: a Skein-512 digest
// folded through SHA-256. Transactions and all other objects use
// ShaSha256, only block headers hash this way.
func SkeinSha256(b []byte) Uint256 {
	var sk [64]byte
	skein.Sum512(&sk, b, nil)
	return Uint256(sha256.Sum256(sk[:]))
}

// HashToBig converts a Uint256 into a big.Int suitable for target
// comparisons. The bytes are little-endian, big.Int wants big-endian.
func HashToBig(u Uint256) *big.Int {
	for i := 0; i < 16; i++ {
		u[i], u[31-i] = u[31-i], u[i]
	}
	return new(big.Int).SetBytes(u[:])
}

func Uint256FromBytes(from []byte) Uint256 {
	var result Uint256
	copy(result[:], from)
	return result
}

func Uint256FromString(from string) (Uint256, error) {
	if len(from) != 32*2 {
		return Uint256{}, fmt.Errorf("Incorrect length.")
	}
	b, err := hex.DecodeString(from)
	if err != nil {
		return Uint256{}, err
	}
	for i := 0; i < 16; i++ {
		b[i], b[31-i] = b[31-i], b[i]
	}
	return Uint256FromBytes(b), nil
}
