package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NormalizeAddress returns the lowercased form used as cache and store key.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}

// ChecksumAddress returns the EIP-55 checksummed form for display.
func ChecksumAddress(address string) string {
	return common.HexToAddress(address).Hex()
}

// ShortenAddress renders 0xAAAA...BBBB for prompt and log output.
func ShortenAddress(address string) string {
	if len(address) < 16 {
		return address
	}
	return address[:10] + "..." + address[len(address)-6:]
}
