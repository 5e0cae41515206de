package utils

import "hash/crc32"

// GenerateCrc checksums data with the IEEE polynomial.
func GenerateCrc(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// CheckCrc reports whether crc matches data.
func CheckCrc(crc uint32, data []byte) bool {
	return GenerateCrc(data) == crc
}
