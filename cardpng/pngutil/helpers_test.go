package pngutil

import "bytes"

// ihdrData is a 1x1 8-bit truecolor header.
var ihdrData = []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

// idatData is opaque to the codec, so any bytes will do.
var idatData = []byte{0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0x00, 0x00, 0x03, 0x01, 0x01, 0x00}

// buildPNG concatenates the signature and the given encoded chunks.
func buildPNG(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(Signature)
	for _, c := range chunks {
		buf.Write(c)
	}
	return buf.Bytes()
}

func minimalPNG() []byte {
	return buildPNG(
		EncodeChunk(ChunkType{'I', 'H', 'D', 'R'}, ihdrData),
		EncodeChunk(ChunkType{'I', 'D', 'A', 'T'}, idatData),
		EncodeChunk(TypeIEND, nil),
	)
}
