package evm

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func newBigUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// addrBytes returns the byte form of a source address: the 20-byte decoding
// for a hex EVM address, or the raw UTF-8 bytes for any other chain's
// native string form.
func addrBytes(addr string) []byte {
	if strings.HasPrefix(addr, "0x") && len(addr) == 42 {
		return common.HexToAddress(addr).Bytes()
	}
	return []byte(addr)
}
