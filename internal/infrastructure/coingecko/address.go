package coingecko

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// isValidContractAddress accepts 0x-prefixed or bare 20-byte hex addresses
func isValidContractAddress(address string) bool {
	return common.IsHexAddress(strings.TrimSpace(address))
}

// normalizeContractAddress returns the lower-case 0x form the provider indexes by
func normalizeContractAddress(address string) string {
	return strings.ToLower(common.HexToAddress(strings.TrimSpace(address)).Hex())
}
