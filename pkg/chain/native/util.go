package native

import "math/big"

// nonceFromTxID derives a decimal nonce string from a native-chain tx id
// by treating the id's bytes as a big-endian integer. Deterministic: the
// same id always yields the same nonce.
func nonceFromTxID(txID string) string {
	n := new(big.Int)
	for i := 0; i < len(txID); i++ {
		n.Lsh(n, 8)
		n.Or(n, big.NewInt(int64(txID[i])))
	}
	return n.String()
}
