package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NodeIDLabel is the description stored alongside a signed node id.
const NodeIDLabel = "Node Id"

// Bytes32String encodes s as a right zero-padded, null-terminated bytes32.
func Bytes32String(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) > 31 {
		return out, fmt.Errorf("bytes32 string too long: %d bytes", len(s))
	}
	copy(out[:], s)
	return out, nil
}

// LeftPad32 encodes a non-negative integer as a big-endian bytes32.
func LeftPad32(v *big.Int) ([32]byte, error) {
	if v == nil || v.Sign() < 0 {
		return [32]byte{}, fmt.Errorf("invalid value for bytes32: %v", v)
	}
	if v.BitLen() > 256 {
		return [32]byte{}, fmt.Errorf("value exceeds 32 bytes: %s", v)
	}
	return common.BigToHash(v), nil
}
