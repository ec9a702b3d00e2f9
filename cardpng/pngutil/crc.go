package pngutil

import (
	"hash"
	"hash/crc32"
)

// crcTable is the 256-entry lookup table for the reflected IEEE polynomial
// 0xEDB88320 that PNG mandates. It is built during package initialisation so
// concurrent first use never races on it.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksum returns the PNG chunk CRC-32 over the concatenation of parts. A
// chunk CRC covers the type followed by the data, so the usual call is
// Checksum(typ[:], data).
func Checksum(parts ...[]byte) uint32 {
	var crc uint32
	for _, p := range parts {
		crc = crc32.Update(crc, crcTable, p)
	}
	return crc
}

// NewHash returns a streaming hash that computes the same value as Checksum.
func NewHash() hash.Hash32 {
	return crc32.New(crcTable)
}
