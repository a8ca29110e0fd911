package skeincoin

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// The handful of opcodes consensus code needs to know about.
const (
	opDup           = 0x76
	opEqual         = 0x87
	opEqualVerify   = 0x88
	opHash160       = 0xa9
	opCheckSig      = 0xac
	opCheckSigVer   = 0xad
	opCheckMulti    = 0xae
	opCheckMultiVer = 0xaf
	opPushData1     = 0x4c
	opPushData2     = 0x4d
	opPushData4     = 0x4e
)

// Script compression for chainstate coin records. Common script
// templates collapse to a small type code plus their payload:
//
//	0x00: pay-to-pubkey-hash, 20 byte payload
//	0x01: pay-to-script-hash, 20 byte payload
//	0x02, 0x03: pay-to-compressed-pubkey, code is the key prefix
//	0x04, 0x05: pay-to-uncompressed-pubkey, stored compressed
//
// Anything else is stored raw with its size offset by the number of
// special cases.
const specialScripts = 6

func compressScript(script []byte) (int, []byte) {
	// pay-to-pubkey-hash
	if len(script) == 25 && script[0] == opDup && script[1] == opHash160 &&
		script[2] == 20 && script[23] == opEqualVerify && script[24] == opCheckSig {
		return 0x00, script[3:23]
	}
	// pay-to-script-hash
	if len(script) == 23 && script[0] == opHash160 && script[1] == 20 &&
		script[22] == opEqual {
		return 0x01, script[2:22]
	}
	// pay-to-compressed-pubkey
	if len(script) == 35 && script[0] == 33 && script[34] == opCheckSig &&
		(script[1] == 0x02 || script[1] == 0x03) {
		return int(script[1]), script[2:34]
	}
	// pay-to-uncompressed-pubkey, only if the key actually is one
	if len(script) == 67 && script[0] == 65 && script[1] == 0x04 &&
		script[66] == opCheckSig {
		if _, err := btcec.ParsePubKey(script[1:66]); err == nil {
			return 0x04 | int(script[65]&0x01), script[2:34]
		}
	}
	return -1, nil
}

func getSpecialSize(size int) int {
	if size == 0 || size == 1 {
		return 20
	}
	if size >= 2 && size <= 5 {
		return 32
	}
	return 0
}

func decompressScript(size int, in []byte) []byte {
	switch size {
	case 0x00:
		script := make([]byte, 25)
		script[0] = opDup
		script[1] = opHash160
		script[2] = 20
		copy(script[3:], in)
		script[23] = opEqualVerify
		script[24] = opCheckSig
		return script
	case 0x01:
		script := make([]byte, 23)
		script[0] = opHash160
		script[1] = 20
		copy(script[2:], in)
		script[22] = opEqual
		return script
	case 0x02, 0x03:
		script := make([]byte, 35)
		script[0] = 33
		script[1] = byte(size)
		copy(script[2:], in)
		script[34] = opCheckSig
		return script
	case 0x04, 0x05:
		cKey := make([]byte, 33)
		cKey[0] = byte(size) - 2
		copy(cKey[1:], in)
		key, err := btcec.ParsePubKey(cKey)
		if err != nil {
			return nil
		}
		script := make([]byte, 67)
		script[0] = 65
		copy(script[1:], key.SerializeUncompressed())
		script[66] = opCheckSig
		return script
	}
	return nil
}

// scriptSigOpCount counts signature operations the legacy way:
// CHECKMULTISIG counts as 20 regardless of the actual key count.
// Unparseable tails simply stop the count, consensus does not reject
// on malformed scripts here.
func scriptSigOpCount(script []byte) int {
	count := 0
	for i := 0; i < len(script); {
		op := script[i]
		i++
		switch {
		case op > 0 && op < opPushData1:
			i += int(op)
		case op == opPushData1:
			if i >= len(script) {
				return count
			}
			i += 1 + int(script[i])
		case op == opPushData2:
			if i+1 >= len(script) {
				return count
			}
			i += 2 + (int(script[i]) | int(script[i+1])<<8)
		case op == opPushData4:
			if i+3 >= len(script) {
				return count
			}
			i += 4 + (int(script[i]) | int(script[i+1])<<8 |
				int(script[i+2])<<16 | int(script[i+3])<<24)
		case op == opCheckSig || op == opCheckSigVer:
			count++
		case op == opCheckMulti || op == opCheckMultiVer:
			count += 20
		}
	}
	return count
}
