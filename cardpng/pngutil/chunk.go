package pngutil

import (
	"encoding/binary"
	"fmt"
)

const (
	// Signature is the fixed 8-byte header of every PNG stream.
	Signature = "\x89PNG\r\n\x1a\n"

	// ChunkOverhead is the length, type and CRC bytes that wrap chunk data.
	ChunkOverhead = 12
)

// Chunk types this package cares about.
var (
	TypeIEND = ChunkType{'I', 'E', 'N', 'D'}
	TypeTEXT = ChunkType{'t', 'E', 'X', 't'}
)

// ChunkType is the 4-byte chunk tag. It is compared as an opaque value; the
// case bits are not interpreted.
type ChunkType [4]byte

func (t ChunkType) String() string {
	return string(t[:])
}

// Chunk is a single record of a PNG stream as seen by a Walker. Data and the
// slice returned by Bytes alias the walked stream and must not be modified.
type Chunk struct {
	Offset int // offset of the length field within the stream
	Length uint32
	Type   ChunkType
	Data   []byte
	CRC    uint32

	raw []byte
}

// Size returns the on-disk size of the chunk.
func (c Chunk) Size() int {
	return ChunkOverhead + int(c.Length)
}

// Bytes returns the raw on-disk bytes of the chunk.
func (c Chunk) Bytes() []byte {
	return c.raw
}

// Verify reports whether the stored CRC matches the type and data.
func (c Chunk) Verify() bool {
	return c.CRC == Checksum(c.Type[:], c.Data)
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s@%d len=%d crc=%08x", c.Type, c.Offset, c.Length, c.CRC)
}

// EncodeChunk assembles the on-disk bytes of a chunk: big-endian length,
// type, data and big-endian CRC over type and data.
func EncodeChunk(typ ChunkType, data []byte) []byte {
	buf := make([]byte, ChunkOverhead+len(data))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[4:8], typ[:])
	copy(buf[8:], data)
	binary.BigEndian.PutUint32(buf[8+len(data):], Checksum(typ[:], data))
	return buf
}

// HasSignature reports whether stream starts with the PNG signature.
func HasSignature(stream []byte) bool {
	return len(stream) >= len(Signature) && string(stream[:len(Signature)]) == Signature
}
